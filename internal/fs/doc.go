// Package fs provides the filesystem abstraction behind lsmkit's table
// writer and reader.
//
// The package defines two interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: the minimal operation set lsmkit needs (open, remove, stat)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the standard os package
//   - [FaultyFS]: test utility that injects I/O errors into matching files
//
// Production code uses fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
//
// Tests inject [FaultyFS] to exercise failure paths:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.InjectFault(".sst", fs.Fault{FailAfterBytes: 1024})
//
// # Design Notes
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem operations are fast and non-interruptible at the syscall
// level; adding context would add overhead without meaningful cancellation
// capability.
package fs
