//go:build linux

package sstable

import (
	"golang.org/x/sys/unix"

	"github.com/hupe1980/lsmkit/internal/fs"
)

// dropPageCache asks the kernel to evict the written range from the page
// cache. It needs a real file descriptor; wrapped files without one are
// silently skipped.
func dropPageCache(f fs.File, size int64) {
	fd, ok := f.(interface{ Fd() uintptr })
	if !ok {
		return
	}
	_ = unix.Fadvise(int(fd.Fd()), 0, size, unix.FADV_DONTNEED)
}
