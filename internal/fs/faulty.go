package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes the failure behavior for files matching a rule.
// The zero value injects nothing.
type Fault struct {
	// OpenErr, when set, makes OpenFile fail immediately.
	OpenErr error

	// FailAfterBytes makes writes fail once this many bytes have been
	// written to the file. Zero or negative disables the limit.
	FailAfterBytes int64

	// FailOnSync makes Sync fail.
	FailOnSync bool

	// FailOnClose makes Close fail. The underlying file is still closed.
	FailOnClose bool

	// Err overrides ErrInjected as the returned error.
	Err error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects errors into files whose name
// contains a registered pattern. It exists for failure-path tests.
type FaultyFS struct {
	fs FileSystem

	mu    sync.Mutex
	rules []faultRule
}

type faultRule struct {
	pattern string
	fault   Fault
}

// NewFaultyFS returns a FaultyFS wrapping fsys, or Default when fsys is nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{fs: fsys}
}

// InjectFault registers a fault for every file whose name contains pattern.
// The most recently registered matching pattern wins.
func (f *FaultyFS) InjectFault(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, faultRule{pattern: pattern, fault: fault})
}

func (f *FaultyFS) faultFor(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var (
		match Fault
		found bool
	)
	for _, rule := range f.rules {
		if strings.Contains(name, rule.pattern) {
			match = rule.fault
			found = true
		}
	}
	return match, found
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	fault, found := f.faultFor(name)
	if found && fault.OpenErr != nil {
		return nil, fault.OpenErr
	}

	file, err := f.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if !found {
		return file, nil
	}
	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error              { return f.fs.Remove(name) }
func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.fs.Stat(name) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailAfterBytes > 0 && ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
		return 0, ff.fault.err()
	}
	n, err := ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		ff.File.Close()
		return ff.fault.err()
	}
	return ff.File.Close()
}
