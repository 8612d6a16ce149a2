// Package cache provides a sharded LRU cache used to keep decoded texture
// pixels between loads.
//
//	c := cache.NewSharded[string, *Entry](64, cache.StringHasher)
//	c.Set(path, entry)
//	entry, ok := c.Get(path)
//
// The cache splits keys over 16 shards, each with its own lock and LRU
// list, so loaders running on several goroutines rarely contend. Hits do
// not allocate.
//
// ShardedCache is safe for concurrent use and must not be copied after
// creation.
package cache
