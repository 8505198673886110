// Package mmap maps snapshot files read-only into memory.
//
// On Unix systems files are mapped with mmap(2) and access hints are passed
// with madvise(2). Elsewhere the file is read into memory and hints are
// ignored. Callers must not touch Bytes after Close.
package mmap
