// Package report turns scored page mappings into deterministic top-K
// reports and writes them as tab-separated text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// MaxEntries caps every report regardless of the requested k.
const MaxEntries = 100

// ScoreDigits is the number of decimal places rank scores are rounded to
// before they are compared and written.
const ScoreDigits = 12

// Value is the set of score types a report can rank.
type Value interface {
	~int | ~float64
}

// Entry is one line of a report.
type Entry[V Value] struct {
	ID       string
	Position int // 1-based index in report order
	Value    V
}

// TopK orders scores by descending value, ties broken by ascending
// identifier, and returns the first min(k, MaxEntries) entries with their
// 1-based positions. A k of zero or less yields an empty report.
func TopK[V Value](scores map[string]V, k int) []Entry[V] {
	entries := make([]Entry[V], 0, len(scores))
	for id, v := range scores {
		entries = append(entries, Entry[V]{ID: id, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].ID < entries[j].ID
	})

	limit := max(min(k, len(entries), MaxEntries), 0)
	entries = entries[:limit]
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// TopRanks rounds every score to ScoreDigits decimals and then selects the
// top k. Rounding happens first so that scores equal at that precision tie
// and fall back to identifier order.
func TopRanks(scores map[string]float64, k int) []Entry[float64] {
	rounded := make(map[string]float64, len(scores))
	for id, s := range scores {
		rounded[id] = Round(s, ScoreDigits)
	}
	return TopK(rounded, k)
}

// TopInlinks selects the top k pages by inlink count.
func TopInlinks(counts map[string]int, k int) []Entry[int] {
	return TopK(counts, k)
}

// Round returns x rounded to the given number of decimal places. The
// decimal expansion of x's exact binary value is rounded half to even, so
// Round(0.125, 2) is 0.12.
func Round(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', digits, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// FormatScore renders x as the shortest decimal that round-trips. Integral
// values keep a trailing ".0", and values below 1e-4 or at or above 1e16
// use exponent form such as "1e-05".
func FormatScore(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	if x == 0 {
		if math.Signbit(x) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(x, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteRanks writes one "id<TAB>position<TAB>score" line per entry.
func WriteRanks(w io.Writer, entries []Entry[float64]) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", e.ID, e.Position, FormatScore(e.Value)); err != nil {
			return fmt.Errorf("writing rank entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// WriteInlinks writes one "id<TAB>position<TAB>count" line per entry.
func WriteInlinks(w io.Writer, entries []Entry[int]) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\n", e.ID, e.Position, e.Value); err != nil {
			return fmt.Errorf("writing inlink entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// WriteFile creates (or truncates) path and hands a buffered writer to
// write, flushing and closing the file afterwards.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
