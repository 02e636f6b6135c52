// Copyright 2019 The meridian Authors
// This file is part of the meridian library.
//
// The meridian library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The meridian library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the meridian library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	lru "github.com/hashicorp/golang-lru"
)

// CacheType selects the eviction policy used by NewCache.
type CacheType int

const (
	LRUCacheType CacheType = iota
	ARCCacheType
)

// DefaultCacheType selects the cache type NewCache builds.
var DefaultCacheType = LRUCacheType

// Cache is a size-bounded key/value cache. Implementations are safe for
// concurrent use.
type Cache interface {
	Add(key, value interface{}) (evicted bool)
	Get(key interface{}) (value interface{}, ok bool)
	Contains(key interface{}) bool
	Purge()
	Len() int
}

type lruCache struct {
	lru *lru.Cache
}

func (cache *lruCache) Add(key, value interface{}) (evicted bool) {
	return cache.lru.Add(key, value)
}

func (cache *lruCache) Get(key interface{}) (value interface{}, ok bool) {
	value, ok = cache.lru.Get(key)
	return
}

func (cache *lruCache) Contains(key interface{}) bool {
	return cache.lru.Contains(key)
}

func (cache *lruCache) Purge() {
	cache.lru.Purge()
}

func (cache *lruCache) Len() int {
	return cache.lru.Len()
}

type arcCache struct {
	arc *lru.ARCCache
}

func (cache *arcCache) Add(key, value interface{}) (evicted bool) {
	cache.arc.Add(key, value)
	return false
}

func (cache *arcCache) Get(key interface{}) (value interface{}, ok bool) {
	return cache.arc.Get(key)
}

func (cache *arcCache) Contains(key interface{}) bool {
	return cache.arc.Contains(key)
}

func (cache *arcCache) Purge() {
	cache.arc.Purge()
}

func (cache *arcCache) Len() int {
	return cache.arc.Len()
}

// NewCache creates a cache of the configured type. Size must be positive.
func NewCache(size int) Cache {
	switch DefaultCacheType {
	case ARCCacheType:
		arc, err := lru.NewARC(size)
		if err != nil {
			panic("common: bad cache size: " + err.Error())
		}
		return &arcCache{arc: arc}
	default:
		c, err := lru.New(size)
		if err != nil {
			panic("common: bad cache size: " + err.Error())
		}
		return &lruCache{lru: c}
	}
}
