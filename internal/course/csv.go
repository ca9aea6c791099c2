package course

// csv.go decodes an uploaded byte buffer into RawRows. The buffer is
// never converted to one big string: decoding streams through
// encoding/csv over small reader wrappers, so memory stays bounded by
// fixed-size read buffers regardless of upload size.
//
// The first line is the header and its cells become the RawRow keys
// verbatim -- casing and whitespace preserved, so the resolver's casing
// rules stay meaningful.

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

// contextCheckInterval is how often (in rows) parsing checks for
// cancellation. Checking every row is wasted work for large files.
const contextCheckInterval = 100

// ParseBuffer decodes buf as CSV and returns one RawRow per data line,
// in file order. A buffer with only a header (or nothing at all)
// returns an empty slice. Decode failures wrap ErrParse.
func ParseBuffer(ctx context.Context, buf []byte) ([]RawRow, error) {
	// BOM strip runs before UTF-8 sanitization.
	r := csv.NewReader(newUTF8Sanitizer(newBOMSkippingReader(bytes.NewReader(buf))))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var rows []RawRow
	for i := 0; ; i++ {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		row := make(RawRow, len(header))
		for j, key := range header {
			if j < len(record) {
				row[key] = record[j]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// bomSkippingReader strips a UTF-8 BOM (0xEF 0xBB 0xBF) from the start
// of the stream. Windows spreadsheet exports routinely prepend one,
// which would otherwise corrupt the first header cell.
type bomSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 && !(n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF) {
			r.pending = append(r.pending, buf[:n]...)
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly so a
// bad export cannot poison stored records. It buffers internally: a
// multi-byte sequence split across reads of the underlying stream is
// held back until the bytes that complete it arrive, and callers may
// read with buffers of any size.
type utf8Sanitizer struct {
	reader  io.Reader
	buf     []byte // scratch for underlying reads
	out     []byte // sanitized bytes not yet handed to the caller
	pending []byte // trailing bytes of a possibly unfinished sequence
	err     error  // deferred error from the underlying reader
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{reader: r, buf: make([]byte, 4096)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
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

// fill reads one chunk from the underlying reader and sanitizes it.
// While more input may follow, a trailing incomplete sequence is held
// back rather than replaced; once the reader reports an error nothing
// can complete it and it sanitizes like any other invalid bytes.
func (s *utf8Sanitizer) fill() {
	n, err := s.reader.Read(s.buf)
	data := append(s.pending, s.buf[:n]...)
	s.pending = nil

	if err == nil {
		if t := incompleteTrailing(data); t > 0 {
			s.pending = append([]byte(nil), data[len(data)-t:]...)
			data = data[:len(data)-t]
		}
	}

	s.out = sanitize(data)
	s.err = err
}

// sanitize replaces every byte that is not part of a valid UTF-8
// sequence with '?', in place.
func sanitize(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	for i := 0; i < len(data); {
		c, size := utf8.DecodeRune(data[i:])
		if c == utf8.RuneError && size == 1 {
			data[i] = '?'
		}
		i += size
	}
	return data
}

// incompleteTrailing reports how many bytes at the end of data form the
// start of an unfinished multi-byte UTF-8 sequence.
func incompleteTrailing(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			want := 2
			switch {
			case b >= 0xF0:
				want = 4
			case b >= 0xE0:
				want = 3
			}
			if i < want {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}
