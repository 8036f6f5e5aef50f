package visitcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/9seconds/geovisits/enrichlib"
)

// Header is a header of enriched CSV.
var Header = []string{
	"ip",
	"page_visited",
	"country_name",
	"city",
	"latitude",
	"longitude",
	"connection_type",
	"is_eu",
}

// Writer dumps enriched records as CSV. Unknown values are written as
// empty cells.
type Writer struct {
	writer        *csv.Writer
	headerWritten bool
}

func (w *Writer) Write(record enrichlib.EnrichedRecord) error {
	if err := w.writeHeader(); err != nil {
		return err
	}

	row := []string{
		record.IP,
		record.PageVisited,
		stringCell(record.CountryName),
		stringCell(record.City),
		floatCell(record.Latitude),
		floatCell(record.Longitude),
		stringCell(record.ConnectionType),
		boolCell(record.IsEU),
	}

	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("cannot write a record: %w", err)
	}

	return nil
}

// Flush writes a header if nothing was written yet and flushes buffered
// data.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}

	w.writer.Flush()

	return w.writer.Error()
}

func (w *Writer) writeHeader() error {
	if w.headerWritten {
		return nil
	}

	w.headerWritten = true

	if err := w.writer.Write(Header); err != nil {
		return fmt.Errorf("cannot write a header: %w", err)
	}

	return nil
}

func NewWriter(dst io.Writer) *Writer {
	return &Writer{
		writer: csv.NewWriter(dst),
	}
}

// WriteAll writes all records and flushes a writer.
func WriteAll(dst io.Writer, records []enrichlib.EnrichedRecord) error {
	writer := NewWriter(dst)

	for _, v := range records {
		if err := writer.Write(v); err != nil {
			return err
		}
	}

	return writer.Flush()
}

func stringCell(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

func floatCell(value *float64) string {
	if value == nil {
		return ""
	}

	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func boolCell(value *bool) string {
	if value == nil {
		return ""
	}

	return strconv.FormatBool(*value)
}
