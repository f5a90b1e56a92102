// Package dataset reads the occupation, curriculum and admission tables.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Source opens a named dataset object.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// File describes one CSV object and its text encoding.
type File struct {
	Path     string
	Encoding string
}

// Files locates the three tables.
type Files struct {
	Occupations File
	Curricula   File
	Admissions  File
}

// Loader turns CSV objects from a Source into tables.
type Loader struct {
	source Source
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load reads all three tables. Any failure is fatal to index construction.
func (l *Loader) Load(ctx context.Context, files Files) (*domain.Dataset, error) {
	occupations, err := l.LoadTable(ctx, "occupations", files.Occupations)
	if err != nil {
		return nil, err
	}
	curricula, err := l.LoadTable(ctx, "curricula", files.Curricula)
	if err != nil {
		return nil, err
	}
	admissions, err := l.LoadTable(ctx, "admissions", files.Admissions)
	if err != nil {
		return nil, err
	}
	return &domain.Dataset{
		Occupations: occupations,
		Curricula:   curricula,
		Admissions:  admissions,
	}, nil
}

// LoadTable reads and decodes a single CSV object.
func (l *Loader) LoadTable(ctx context.Context, name string, f File) (*domain.Table, error) {
	rc, err := l.source.Open(ctx, f.Path)
	if err != nil {
		return nil, domain.Wrap(domain.ErrDatasetLoadFailed, fmt.Errorf("%s: %w", name, err))
	}
	defer rc.Close()

	r, err := decoder(rc, f.Encoding)
	if err != nil {
		return nil, domain.Wrap(domain.ErrDatasetLoadFailed, fmt.Errorf("%s: %w", name, err))
	}

	table, err := ReadCSV(name, r)
	if err != nil {
		return nil, domain.Wrap(domain.ErrDatasetLoadFailed, fmt.Errorf("%s: %w", name, err))
	}
	return table, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8", "utf-8-sig":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), nil
	case "cp949", "euc-kr", "euckr", "ms949":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ReadCSV parses CSV text into a table. Blank lines are skipped and short
// rows are padded to the header width.
func ReadCSV(name string, r io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &domain.Table{Name: name, Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+2, err)
		}
		if blank(rec) {
			continue
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		table.Rows = append(table.Rows, rec)
	}

	return table, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
