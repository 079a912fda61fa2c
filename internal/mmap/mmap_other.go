//go:build !unix

package mmap

func osMap(fd uintptr, size int) ([]byte, error) {
	return nil, ErrUnsupported
}

func osUnmap(data []byte) error { return nil }

func osAdvise(data []byte, pattern AccessPattern) error { return nil }
