// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2023  the Archivekit Authors
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

package pdf

import "container/list"

// lruCache caches resolved indirect objects while a file is read.
// When the cache is full, the least recently used object is evicted.
type lruCache struct {
	capacity int
	order    *list.List // of cacheEntry, most recently used first
	entries  map[Reference]*list.Element
}

type cacheEntry struct {
	key Reference
	obj Object
}

func newCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[Reference]*list.Element, capacity),
	}
}

// Put stores an object in the cache.
func (c *lruCache) Put(key Reference, obj Object) {
	if elem, ok := c.entries[key]; ok {
		elem.Value = cacheEntry{key, obj}
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.entries, last.Value.(cacheEntry).key)
	}
	c.entries[key] = c.order.PushFront(cacheEntry{key, obj})
}

// Get returns a cached object.  A cache hit makes the object the most
// recently used one.
func (c *lruCache) Get(key Reference) (Object, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(cacheEntry).obj, true
}

// Has checks whether an object is in the cache, without updating the
// eviction order.
func (c *lruCache) Has(key Reference) bool {
	_, ok := c.entries[key]
	return ok
}
