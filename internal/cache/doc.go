// Package cache stores synthesized audio so repeating a cloud request for
// the same text and language does not hit the network again. A persistent
// zstd-compressed disk cache is fronted by a small in-memory LRU.
package cache
