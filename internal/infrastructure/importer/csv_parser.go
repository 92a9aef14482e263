package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads a roster CSV with UTF-8 validation and BOM stripping.
// Headers are matched case-insensitively.
type CSVParser struct {
	reader     *csv.Reader
	headers    []string
	headerMap  map[string]int
	currentRow int
}

// NewCSVParser creates a parser from a reader. The input must be UTF-8; a
// leading byte-order mark is discarded.
func NewCSVParser(r io.Reader) (*CSVParser, error) {
	bufReader := bufio.NewReader(r)

	bom, err := bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	if len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = bufReader.Discard(3)
	}

	if err := validateUTF8(bufReader); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return &CSVParser{
		reader:    reader,
		headerMap: make(map[string]int),
	}, nil
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data))
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read roster file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if len(content) == checkSize {
		// The window may end mid-rune; trim up to three trailing
		// continuation bytes before judging validity.
		for i := 0; i < 3 && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader reads the header row and indexes it case-insensitively
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		header := strings.ToLower(strings.TrimSpace(h))
		p.headers[i] = header
		p.headerMap[header] = i
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}
	p.currentRow = 1
	return nil
}

// ColumnIndex returns the index of the first matching header alias
func (p *CSVParser) ColumnIndex(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := p.headerMap[alias]; ok {
			return idx, true
		}
	}
	return 0, false
}

// Row is one parsed data row with its 1-based line number
type Row struct {
	LineNumber int
	Fields     []string
}

// Get returns the field at the given column index, empty when the row is
// short
func (r *Row) Get(index int) string {
	if index < 0 || index >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[index])
}

// IsEmpty reports whether every field of the row is blank
func (r *Row) IsEmpty() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ReadAllRows reads the remaining data rows, skipping fully blank lines
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			break
		}
		p.currentRow++
		if err != nil {
			return rows, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
		}
		row := &Row{LineNumber: p.currentRow, Fields: record}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
