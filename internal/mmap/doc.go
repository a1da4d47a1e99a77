// Package mmap maps files read-only into memory.
//
// On unix platforms files are mapped with golang.org/x/sys/unix. Elsewhere
// the file is read into a heap buffer so callers see the same API.
package mmap
