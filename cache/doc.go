// Package cache provides the response cache for generated conversation
// replies.
//
// The cache is a fixed-capacity, least-recently-used store keyed by a
// stable fingerprint of the normalized user input and category. It is
// process-local and never persisted; a restart starts cold.
//
// # Usage
//
//	c := cache.NewLRU(256)
//	key := cache.Fingerprint("Hello, how are you?", "small_talk")
//
//	if entry, ok := c.Get(key); ok {
//	    // serve entry.Response / entry.Feedback
//	}
//	c.Put(key, cache.Entry{Response: reply, Feedback: fb})
//
// All methods are safe for concurrent use. The critical section covers
// only the map and recency-list operations, never the generation call.
package cache
