// Copyright (C) 2024 Filmr Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package imagebuf

import "sync"

// Pool of constant-sized float32 buffers, reused across pipeline runs to
// cut allocation overhead on the ping-pong buffer pairs stages hand off
// between each other (spec.md §9 "Ownership of image buffers").
var poolFloat32 = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

func sizedPool(size int) *sync.Pool {
	poolFloat32.RLock()
	p := poolFloat32.m[size]
	poolFloat32.RUnlock()
	if p != nil {
		return p
	}
	poolFloat32.Lock()
	defer poolFloat32.Unlock()
	if p = poolFloat32.m[size]; p == nil {
		p = &sync.Pool{New: func() interface{} { return make([]float32, size) }}
		poolFloat32.m[size] = p
	}
	return p
}

// Get retrieves a W*H*3 buffer from the pool, zeroing it first.
func Get(width, height int) *Buffer {
	size := width * height * 3
	data := sizedPool(size).Get().([]float32)
	for i := range data {
		data[i] = 0
	}
	return &Buffer{Width: width, Height: height, Data: data}
}

// Put returns a buffer's backing array to the pool. The Buffer must not be
// used afterwards.
func Put(b *Buffer) {
	if b == nil || b.Data == nil {
		return
	}
	sizedPool(cap(b.Data)).Put(b.Data[:cap(b.Data)])
	b.Data = nil
}
