package grid

// encoding.go cleans up text exports before they reach the CSV parser:
//
//   - The UTF-8 byte order mark written by Windows programs is dropped
//   - Invalid UTF-8 sequences are replaced with '?'
//
// Both transforms work on the stream, so memory use does not grow with the
// file size.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CleanText wraps r with BOM skipping and UTF-8 sanitizing.
func CleanText(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &utf8Sanitizer{src: br}
}

type utf8Sanitizer struct {
	src *bufio.Reader

	// Bytes of an encoded rune that did not fit into the previous Read.
	pending []byte
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) > 0 {
			c := copy(p[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}

		r, size, err := s.src.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if r == utf8.RuneError && size == 1 {
			r = '?'
		}

		var buf [utf8.UTFMax]byte
		w := utf8.EncodeRune(buf[:], r)
		c := copy(p[n:], buf[:w])
		n += c
		if c < w {
			s.pending = append(s.pending[:0], buf[c:w]...)
		}

		// Return what we have rather than block on the source.
		if s.src.Buffered() == 0 {
			break
		}
	}
	return n, nil
}
