package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format decodes one file format into a header and raw records.
type Format interface {
	CanRead(filename string) bool
	Read(r io.Reader, opt Options) (header []string, rows [][]string, err error)
}

var registry []Format

// Register adds a format implementation; later registrations take precedence.
func Register(f Format) {
	registry = append([]Format{f}, registry...)
}

// formatFor selects a format based on filename, falling back to delimited text.
func formatFor(filename string) Format {
	for _, f := range registry {
		if f.CanRead(filename) {
			return f
		}
	}
	return delimitedFormat{}
}

func init() {
	Register(delimitedFormat{})
	Register(xlsxFormat{})
}

// errNoHeader marks input with no header row at all.
var errNoHeader = errors.New("no columns to parse from file")

type delimitedFormat struct{}

func (delimitedFormat) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedFormat) Read(src io.Reader, opt Options) ([]string, [][]string, error) {
	r := csv.NewReader(src)
	r.Comma = opt.Delimiter
	if r.Comma == 0 {
		r.Comma = ','
	}
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errNoHeader
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

type xlsxFormat struct{}

func (xlsxFormat) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Read loads the first sheet of the workbook.
func (xlsxFormat) Read(src io.Reader, _ Options) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errNoHeader
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, nil, errNoHeader
	}
	header, rows := records[0], records[1:]
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for len(header) < width {
		header = append(header, "")
	}
	return header, rows, nil
}
