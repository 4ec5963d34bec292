package mem

import (
	"io"
	"sort"
)

type segment struct {
	buf []byte
	end int64 // cumulative end offset
}

// segments is a file body split into chunks, ordered by offset.
// Chunks never overlap and are never empty.
type segments []segment

func (s *segments) close() {
	clear(*s)
	*s = nil
}

func (s segments) size() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].end
}

func (s segments) start(idx int) int64 {
	return s[idx].end - int64(len(s[idx].buf))
}

// seek returns the index of the chunk holding off, or len(s) past the end.
func (s segments) seek(off int64) int {
	return sort.Search(len(s), func(i int) bool {
		return s[i].end > off
	})
}

func (s *segments) grow(size int64) {
	if bias := size - s.size(); bias > 0 {
		*s = append(*s, segment{buf: make([]byte, bias), end: size})
	}
}

func (s *segments) truncate(size int64) {
	if size >= s.size() {
		s.grow(size)
		return
	}
	idx := s.seek(size)
	seg := &(*s)[idx]
	seg.buf = seg.buf[:size-s.start(idx)]
	seg.end = size
	if len(seg.buf) > 0 {
		idx++
	}
	clear((*s)[idx:])
	*s = (*s)[:idx]
}

// writeAt assumes the file already spans off+len(p).
func (s segments) writeAt(p []byte, off int64) (n int) {
	for idx := s.seek(off); n < len(p); idx++ {
		c := copy(s[idx].buf[off-s.start(idx):], p[n:])
		n += c
		off += int64(c)
	}
	return
}

func (s segments) readAt(p []byte, off int64) (n int, err error) {
	for idx := s.seek(off); n < len(p); idx++ {
		if idx == len(s) {
			return n, io.EOF
		}
		c := copy(p[n:], s[idx].buf[off-s.start(idx):])
		n += c
		off += int64(c)
	}
	return n, nil
}
