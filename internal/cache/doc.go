// Package cache provides a bounded, thread-safe LRU cache.
package cache
