package edgefile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Edge
		wantErr bool
	}{
		{"simple", "A\tB", Edge{"A", "B"}, false},
		{"crlf", "A\tB\r", Edge{"A", "B"}, false},
		{"trailing tab trimmed", "A\tB\t", Edge{"A", "B"}, false},
		{"self loop", "X\tX", Edge{"X", "X"}, false},
		{"spaces inside ids", "New York\tLos Angeles", Edge{"New York", "Los Angeles"}, false},
		{"blank", "", Edge{}, true},
		{"single field", "A", Edge{}, true},
		{"space separated", "A B", Edge{}, true},
		{"three fields", "A\tB\tC", Edge{}, true},
		{"empty middle field", "A\t\tB", Edge{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("ParseLine(%q) error = %v, want ErrMalformed", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) unexpected error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func readAll(t *testing.T, r *Reader) ([]Edge, error) {
	t.Helper()
	var edges []Edge
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return edges, nil
		}
		if err != nil {
			return edges, err
		}
		edges = append(edges, e)
	}
}

func TestReader_Edges(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("A\tB\nB\tA\nB\tC\nC\tA\n"))
	got, err := readAll(t, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Edge{{"A", "B"}, {"B", "A"}, {"B", "C"}, {"C", "A"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if r.Line() != 4 {
		t.Errorf("Line() = %d, want 4", r.Line())
	}
}

func TestReader_ParseErrorCarriesLineNumber(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("A\tB\nbroken\nC\tD\n"))
	_, err := readAll(t, r)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Line != 2 {
		t.Errorf("ParseError.Line = %d, want 2", pe.Line)
	}
	if pe.Fields != 1 {
		t.Errorf("ParseError.Fields = %d, want 1", pe.Fields)
	}
	if !strings.Contains(pe.Error(), "line 2") {
		t.Errorf("error message %q should mention the line", pe.Error())
	}
}

func TestReader_Empty(t *testing.T) {
	t.Parallel()

	got, err := readAll(t, NewReader(strings.NewReader("")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no edges, got %v", got)
	}
}

func TestOpen_PlainText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.txt")
	if err := os.WriteFile(path, []byte("A\tB\nB\tC\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	got, err := readAll(t, f.Reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Edge{{"A", "B"}, {"B", "C"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if f.Path() != path {
		t.Errorf("Path() = %q, want %q", f.Path(), path)
	}
}

func TestOpen_Gzip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.srt.gz")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(out)
	if _, err := zw.Write([]byte("A\tB\nB\tA\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	got, err := readAll(t, f.Reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Edge{{"A", "B"}, {"B", "A"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if _, err := f.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() on empty file = %v, want io.EOF", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.gz"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want os.ErrNotExist", err)
	}
}
