// Package control guards a project against concurrent sync runs. The control
// file is a single memory-mapped page holding the tree generation, and an
// exclusive flock on it marks the holder as the only writer.
package control

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ControlSize = 4096       // 1 page
	Magic       = 0x54475359 // 'TGSY'
	FileName    = ".tagsync.lock"
)

var ErrBusy = errors.New("another sync is running on this project")

// Block is the layout of the control file.
type Block struct {
	Magic      uint32
	Version    uint32
	Generation uint64 // Atomic
	PID        uint32
	_          uint32
	Padding    [ControlSize - 24]byte
}

// Lock is a held control file.
type Lock struct {
	path string
	file *os.File
	data []byte
	ptr  *Block
}

// TryLock opens or creates the control file at path and takes an exclusive,
// non-blocking lock on it. It returns ErrBusy if another process holds it.
func TryLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open control file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrBusy, path)
		}
		return nil, fmt.Errorf("flock: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() < ControlSize {
		if err := f.Truncate(ControlSize); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("truncate: %w", err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, ControlSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: %w", err)
	}

	ptr := (*Block)(unsafe.Pointer(&data[0]))
	if ptr.Magic == 0 {
		ptr.Magic = Magic
		ptr.Version = 1
	} else if ptr.Magic != Magic {
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, fmt.Errorf("invalid magic: %x", ptr.Magic)
	}
	ptr.PID = uint32(os.Getpid())

	return &Lock{
		path: path,
		file: f,
		data: data,
		ptr:  ptr,
	}, nil
}

func (l *Lock) Path() string { return l.path }

// Generation returns the number of tree saves recorded in the control file.
func (l *Lock) Generation() uint64 {
	return atomic.LoadUint64(&l.ptr.Generation)
}

// Bump records a tree save and returns the new generation.
func (l *Lock) Bump() uint64 {
	return atomic.AddUint64(&l.ptr.Generation, 1)
}

// Release unmaps the control file and drops the lock. The file itself stays
// so the generation survives across runs.
func (l *Lock) Release() error {
	l.ptr.PID = 0
	if err := unix.Munmap(l.data); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close() // closing the descriptor releases the flock
}
