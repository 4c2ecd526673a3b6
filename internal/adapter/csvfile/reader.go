// Package csvfile streams EPA bulk export CSV files as header-keyed rows.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tapsafe/sdwis-ingest/internal/domain"
	"github.com/zeebo/xxh3"
)

const utf8BOM = "\ufeff"

// Options relaxes the parser for exports that are not strictly RFC 4180.
type Options struct {
	// RelaxQuotes accepts bare quotes inside unquoted fields and stray quotes in quoted ones.
	RelaxQuotes bool
	// RelaxColumnCount accepts rows with more or fewer fields than the header.
	RelaxColumnCount bool
}

// ParseError reports a fatal parse failure. Rows returned before it remain valid.
type ParseError struct {
	Row int // 1-based data row that failed
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse data row %d: %v", e.Row, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader pulls one row at a time. It never reads ahead of the caller, so a
// caller that stops calling Next stops consuming the file.
type Reader struct {
	csv    *csv.Reader
	closer io.Closer
	hasher *xxh3.Hasher
	header []string
	rows   int
	done   bool
}

// Open opens path for streaming.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	r := NewReader(f, opts)
	r.closer = f
	return r, nil
}

// NewReader wraps an arbitrary stream. The header row is read on the first call to Next.
func NewReader(src io.Reader, opts Options) *Reader {
	h := xxh3.New()
	cr := csv.NewReader(io.TeeReader(src, h))
	cr.LazyQuotes = opts.RelaxQuotes
	cr.ReuseRecord = true
	if opts.RelaxColumnCount {
		cr.FieldsPerRecord = -1
	}
	return &Reader{csv: cr, hasher: h}
}

// Next returns the next non-blank data row. It returns io.EOF at the end of
// the stream and a *ParseError when the file cannot be parsed further.
func (r *Reader) Next() (domain.RawRow, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.header == nil {
		if err := r.readHeader(); err != nil {
			r.done = true
			return nil, err
		}
	}

	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			r.done = true
			return nil, &ParseError{Row: r.rows + 1, Err: err}
		}
		if blank(record) {
			continue
		}
		r.rows++
		return r.toRow(record), nil
	}
}

// Fingerprint returns the xxh3 digest of every byte consumed so far. After
// io.EOF it identifies the whole file.
func (r *Reader) Fingerprint() string {
	return strconv.FormatUint(r.hasher.Sum64(), 16)
}

// Close releases the underlying file when the Reader owns it.
func (r *Reader) Close() error {
	r.done = true
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) readHeader() error {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return &ParseError{Row: 0, Err: fmt.Errorf("header: %w", err)}
	}
	header := make([]string, len(record))
	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		header[i] = strings.TrimSpace(name)
	}
	r.header = header
	return nil
}

func (r *Reader) toRow(record []string) domain.RawRow {
	row := make(domain.RawRow, len(r.header))
	for i, name := range r.header {
		if i >= len(record) {
			break
		}
		row[name] = strings.TrimSpace(record[i])
	}
	return row
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
