//go:build linux

package bufds

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const shmDir = "/dev/shm"

// SharedMemory is a file-backed mapping under /dev/shm. Its bytes can back a
// static container that several processes attach to, one at a time.
type SharedMemory struct {
	path    string
	raw     []byte
	created bool
}

// LoadShared maps the shared memory object name, creating it with size bytes
// when it does not exist yet. An existing object is mapped with its current
// size. Only WithLogger applies.
func LoadShared(name string, size int, opts ...Option) (*SharedMemory, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrFailure, "invalid shared memory size %d", size)
	}
	// TODO: portable shm_open
	filename := filepath.Join(shmDir, name)
	if file, err := os.OpenFile(
		filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600,
	); err == nil {
		// new file
		defer file.Close()

		buildOptions(opts).log.Info("creating shared memory object", "path", filename, "size", size)
		if err := unix.Ftruncate(int(file.Fd()), int64(size)); err != nil {
			_ = os.Remove(filename)
			return nil, errors.Wrapf(err, "truncating %s", filename)
		}
		return mapShared(file, filename, size, true)
	}

	file, err := os.OpenFile(filename, os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", filename)
	}
	if info.Size() == 0 {
		return nil, errors.Wrapf(ErrBufferTooSmall, "%s is empty", filename)
	}
	return mapShared(file, filename, int(info.Size()), false)
}

func mapShared(f *os.File, path string, size int, created bool) (*SharedMemory, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s", path)
	}
	return &SharedMemory{path: path, raw: data, created: created}, nil
}

// Bytes returns the mapped region. It stays valid until Close.
func (m *SharedMemory) Bytes() []byte { return m.raw }

// Created reports whether this call to LoadShared created the object, in
// which case the region is zeroed and has to be formatted with a NewStatic*
// constructor rather than attached to.
func (m *SharedMemory) Created() bool { return m.created }

func (m *SharedMemory) Path() string { return m.path }

// Close unmaps the region. The object stays in /dev/shm until Remove.
func (m *SharedMemory) Close() error {
	if m.raw == nil {
		return nil
	}
	raw := m.raw
	m.raw = nil
	return unix.Munmap(raw)
}

// Remove unlinks the shared memory object.
func (m *SharedMemory) Remove() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", m.path)
	}
	return nil
}
