// Package edgefile decodes link-graph edge files. Each line holds one
// directed edge written as source<TAB>target. Files may be plain text or
// gzip-compressed; compression is detected from the stream's magic bytes.
package edgefile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrMalformed is wrapped by every ParseError so callers can match any
// decode failure with errors.Is.
var ErrMalformed = errors.New("malformed edge line")

// maxLineBytes bounds a single edge line. Page identifiers in real link
// dumps are URLs or titles, well under this.
const maxLineBytes = 1 << 20

var gzipMagic = []byte{0x1f, 0x8b}

// Edge is one directed link from Source to Target.
type Edge struct {
	Source string
	Target string
}

// ParseError reports a line that does not split into exactly two
// tab-separated fields.
type ParseError struct {
	Line   int // 1-based line number
	Fields int
	Text   string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: expected 2 tab-separated fields, got %d: %q", e.Line, e.Fields, e.Text)
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *ParseError) Unwrap() error { return ErrMalformed }

// ParseLine splits a single edge line. Leading and trailing whitespace is
// trimmed first, so a trailing "\r" or stray tab does not count as a field.
func ParseLine(line string) (Edge, error) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) != 2 {
		return Edge{}, &ParseError{Fields: len(fields), Text: line}
	}
	return Edge{Source: fields[0], Target: fields[1]}, nil
}

// Reader yields edges from a decoded text stream one line at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader over r. The stream must already be
// decompressed; use Open for files that may be gzipped.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: sc}
}

// Next returns the next edge, or io.EOF once the stream is exhausted.
// A malformed line yields a *ParseError carrying its line number.
func (r *Reader) Next() (Edge, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return Edge{}, fmt.Errorf("edgefile: read line %d: %w", r.line+1, err)
		}
		return Edge{}, io.EOF
	}
	r.line++
	e, err := ParseLine(r.scanner.Text())
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = r.line
		}
		return Edge{}, err
	}
	return e, nil
}

// Line reports how many lines have been consumed so far.
func (r *Reader) Line() int { return r.line }

// File is a Reader bound to an open file on disk.
type File struct {
	*Reader
	path    string
	closers []io.Closer
}

// Open opens the edge file at path, transparently decompressing it when it
// starts with the gzip magic bytes.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("edgefile: open %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("edgefile: read %s: %w", path, err)
	}

	ef := &File{path: path, closers: []io.Closer{f}}
	if bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("edgefile: gunzip %s: %w", path, err)
		}
		ef.closers = append([]io.Closer{zr}, ef.closers...)
		ef.Reader = NewReader(zr)
		return ef, nil
	}
	ef.Reader = NewReader(br)
	return ef, nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// Close releases the decompressor (if any) and the underlying file.
func (f *File) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return fmt.Errorf("edgefile: close %s: %w", f.path, first)
	}
	return nil
}
