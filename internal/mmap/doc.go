// Package mmap provides read-only memory-mapped file access for zero-copy
// block reads.
//
// The table reader maps finished files so block fetches are plain slice
// operations instead of pread calls. Mapping is best effort: on platforms
// without mmap support, and for file abstractions that do not expose a real
// file descriptor, Map returns an error and callers fall back to ReadAt.
//
//	m, err := mmap.Map(f.Fd(), size)
//	if err != nil { /* fall back to f.ReadAt */ }
//	defer m.Close()
//	data := m.Bytes()
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must ensure no goroutine touches Bytes() after Close returns.
package mmap
