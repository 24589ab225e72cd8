// Package cache memoizes extracted page text. TextCache keeps the pages of
// the active document in memory (L1) and can persist them in a compressed
// on-disk store (L2) so reopening a document skips extraction.
package cache
