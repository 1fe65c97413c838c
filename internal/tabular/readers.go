package tabular

// readers.go holds the io.Reader wrappers applied to raw input before parsing.
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?' without buffering the file
//   - CountingReader: counts bytes for conversion statistics

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, _ := r.br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
			r.br.Discard(len(utf8BOM))
		}
	}
	return r.br.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' as data streams through.
// A multi-byte sequence split across two reads is held back until it is
// complete, so valid input passes through unchanged. Any len(p) > 0 works.
type UTF8Sanitizer struct {
	reader  io.Reader
	buf     []byte
	out     []byte // sanitized bytes not yet returned
	partial [utf8.UTFMax]byte
	npart   int
	err     error
}

const sanitizerBufSize = 4096

// NewUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader: r,
		buf:    make([]byte, sanitizerBufSize),
	}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads the next chunk behind any held-back partial rune and sanitizes
// it into s.out. It is only called once s.out is drained.
func (s *UTF8Sanitizer) fill() {
	start := copy(s.buf, s.partial[:s.npart])
	s.npart = 0

	n, err := s.reader.Read(s.buf[start:])
	s.err = err

	data := s.buf[:start+n]
	s.out = data[:s.sanitize(data, err != nil)]
}

// sanitize rewrites data in place and returns the number of bytes to emit.
// Unless final, an incomplete trailing rune is moved to s.partial.
func (s *UTF8Sanitizer) sanitize(data []byte, final bool) int {
	write := 0
	for read := 0; read < len(data); {
		b := data[read]
		if b < utf8.RuneSelf {
			data[write] = b
			write++
			read++
			continue
		}

		if !final && !utf8.FullRune(data[read:]) {
			s.npart = copy(s.partial[:], data[read:])
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
