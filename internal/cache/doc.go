// Package cache memoises algorithm results.
//
// Entries expire lazily: a stale entry is removed by the Get that finds it,
// or by an explicit DeleteExpired sweep. There is no background goroutine.
//
// When the store is full, Put evicts the oldest 30% of entries by insertion
// time in one pass (FIFO, not LRU), so eviction cost is paid once per many
// inserts rather than on every insert.
package cache
