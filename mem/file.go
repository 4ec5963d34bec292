// Package mem provides File, an in-memory file whose copies share storage.
//
// File is a ready-made resource for finarc: cloning is cheap, copies are
// synchronized through the shared storage, and Close must happen once.
package mem

import (
	"errors"
	"io"
	"sync"
)

var (
	errWhence = errors.New("mem.File.Seek: invalid whence")
	errOffset = errors.New("mem.File.Seek: negative position")
)

// File is an in-memory file.
//
// Copies made with Clone share one storage and see each other's writes.
// Each copy has its own cursor for Read, Write and Seek. Different copies
// are safe for concurrent use; a single copy is not, because of its cursor.
//
// Close is not idempotent: it releases the storage of every copy, and any
// later call on any copy, Close included, returns ErrClosed.
//
// Zero value is closed. Call New.
type File struct {
	store *store
	off   int64
}

type store struct {
	rw       sync.RWMutex
	segments segments
	closed   bool
}

// New returns an empty open File.
func New() File {
	return File{store: new(store)}
}

// Clone returns a copy sharing f's storage, with its cursor at f's position.
func (f File) Clone() (File, error) {
	s := f.store
	if s == nil {
		return File{}, ErrClosed
	}
	s.rw.RLock()
	defer s.rw.RUnlock()
	if s.closed {
		return File{}, ErrClosed
	}
	return File{store: s, off: f.off}, nil
}

// Closed reports whether the storage was closed through any copy.
func (f *File) Closed() bool {
	s := f.store
	if s == nil {
		return true
	}
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.closed
}

// Close releases the storage shared by all copies.
func (f *File) Close() error {
	s := f.store
	if s == nil {
		return ErrClosed
	}
	s.rw.Lock()
	defer s.rw.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.segments.close()
	return nil
}

// Size returns the current size of the file in bytes.
// Returns 0 once closed.
func (f *File) Size() int64 {
	s := f.store
	if s == nil {
		return 0
	}
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.segments.size()
}

// Offset returns the position of this copy's cursor.
func (f *File) Offset() int64 {
	return f.off
}

const segmentSize = 32 * 1024

// ReadFrom reads data from r until EOF and replaces the entire file content.
// The cursor ends up at the end of the new content.
// It implements io.ReaderFrom interface.
func (f *File) ReadFrom(r io.Reader) (n int64, err error) {
	s := f.store
	if s == nil {
		return 0, ErrClosed
	}
	s.rw.Lock()
	defer s.rw.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	s.segments.close()
	defer func() { f.off = n }()
	for {
		buf := make([]byte, segmentSize)
		c, err := r.Read(buf)
		if c > 0 {
			n += int64(c)
			s.segments = append(s.segments, segment{buf: buf[:c], end: n})
		}
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return n, err
		}
	}
}

// WriteTo writes the entire file content to w, ignoring the cursor.
// It implements io.WriterTo interface.
//
// WriteTo holds the exclusive lock for a consistent snapshot, since
// WriteAt through other copies changes bytes under the shared lock.
func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	s := f.store
	if s == nil {
		return 0, ErrClosed
	}
	s.rw.Lock()
	defer s.rw.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	for _, seg := range s.segments {
		c, err := w.Write(seg.buf)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return
}

// WriteAt writes len(p) bytes from p at byte offset off.
// It implements io.WriterAt interface.
//
// Writing past the end grows the file, filling the gap with zero bytes.
// Concurrent writes to the same range through different copies race on
// the bytes, not on the file structure.
func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	s := f.store
	if s == nil {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		if f.Closed() {
			return 0, ErrClosed
		}
		return 0, nil
	}

	size := off + int64(len(p))
	s.rw.RLock()
	// loop: a Truncate through another copy may shrink it between locks
	for !s.closed && size > s.segments.size() {
		s.rw.RUnlock()
		s.rw.Lock()
		if !s.closed {
			s.segments.grow(size)
		}
		s.rw.Unlock()
		s.rw.RLock()
	}
	defer s.rw.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.segments.writeAt(p, off), nil
}

// ReadAt reads len(p) bytes into p starting at byte offset off.
// It implements io.ReaderAt interface.
func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	s := f.store
	if s == nil {
		return 0, ErrClosed
	}
	s.rw.RLock()
	defer s.rw.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	return s.segments.readAt(p, off)
}

// Read reads from this copy's cursor and advances it.
func (f *File) Read(p []byte) (n int, err error) {
	n, err = f.ReadAt(p, f.off)
	f.off += int64(n)
	return
}

// Write writes at this copy's cursor and advances it.
func (f *File) Write(p []byte) (n int, err error) {
	n, err = f.WriteAt(p, f.off)
	f.off += int64(n)
	return
}

// Seek moves this copy's cursor. Other copies keep their positions.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.Closed() {
		return 0, ErrClosed
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += f.off
	case io.SeekEnd:
		offset += f.Size()
	default:
		return 0, errWhence
	}
	if offset < 0 {
		return 0, errOffset
	}
	f.off = offset
	return offset, nil
}

// Truncate changes the size of the file.
//
// Shrinking discards the extra data, growing fills with zero bytes.
// Cursors are left where they are.
func (f *File) Truncate(size int64) error {
	if size < 0 {
		return io.ErrUnexpectedEOF
	}
	s := f.store
	if s == nil {
		return ErrClosed
	}
	s.rw.Lock()
	defer s.rw.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.segments.truncate(size)
	return nil
}

// Sync is a no-op for in-memory files.
func (f *File) Sync() error {
	if f.Closed() {
		return ErrClosed
	}
	return nil
}
