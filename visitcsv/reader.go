package visitcsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/9seconds/geovisits/enrichlib"
)

const utf8BOM = "\ufeff"

// Reader is a wrapper over csv.Reader to convert each row into
// VisitRecord. The first row is a header.
type Reader struct {
	reader    *csv.Reader
	ipIndex   int
	pageIndex int
}

// Read returns a next record or io.EOF. Rows which are shorter than a
// header are accepted: absent cells are empty.
func (r *Reader) Read() (enrichlib.VisitRecord, error) {
	data, err := r.reader.Read()

	switch {
	case errors.Is(err, io.EOF):
		return enrichlib.VisitRecord{}, io.EOF
	case err != nil:
		return enrichlib.VisitRecord{}, fmt.Errorf("cannot read a record: %w", err)
	}

	return enrichlib.VisitRecord{
		IP:          cell(data, r.ipIndex),
		PageVisited: cell(data, r.pageIndex),
	}, nil
}

// NewReader reads a header and checks that it has all required
// columns. enrichlib.RequiredColumns are always required, extra is a list
// of additional columns.
//
// If some column is absent, *enrichlib.MissingColumnsError is
// returned: there is no sense to process such input.
func NewReader(src io.Reader, extra ...string) (*Reader, error) {
	reader := csv.NewReader(bufio.NewReader(src))
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	required := requiredColumns(extra)

	header, err := reader.Read()

	switch {
	case errors.Is(err, io.EOF):
		return nil, &enrichlib.MissingColumnsError{Missing: required}
	case err != nil:
		return nil, fmt.Errorf("cannot read a header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	if missing := enrichlib.MissingColumns(header, required); len(missing) > 0 {
		return nil, &enrichlib.MissingColumnsError{Missing: missing}
	}

	return &Reader{
		reader:    reader,
		ipIndex:   indexOf(header, enrichlib.ColumnIP),
		pageIndex: indexOf(header, enrichlib.ColumnPageVisited),
	}, nil
}

// ReadAll reads all records of the given CSV.
func ReadAll(src io.Reader, extra ...string) ([]enrichlib.VisitRecord, error) {
	reader, err := NewReader(src, extra...)
	if err != nil {
		return nil, err
	}

	rv := []enrichlib.VisitRecord{}

	for {
		record, err := reader.Read()

		switch {
		case errors.Is(err, io.EOF):
			return rv, nil
		case err != nil:
			return nil, err
		}

		rv = append(rv, record)
	}
}

func requiredColumns(extra []string) []string {
	rv := append([]string{}, enrichlib.RequiredColumns...)

	for _, v := range extra {
		if indexOf(rv, v) < 0 {
			rv = append(rv, v)
		}
	}

	return rv
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}

	return -1
}

func cell(data []string, index int) string {
	if index < len(data) {
		return data[index]
	}

	return ""
}
