//go:build !linux

package sstable

import "github.com/hupe1980/lsmkit/internal/fs"

func dropPageCache(f fs.File, size int64) {}
