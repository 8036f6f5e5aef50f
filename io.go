package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/9seconds/geovisits/visitcsv"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"

	stdStreamPath = "-"
)

type jsonOutput struct {
	Results []enrichlib.EnrichedRecord `json:"results"`
	Summary enrichlib.Summary          `json:"summary"`
	Metrics enrichlib.Metrics          `json:"metrics"`
}

func readInput(fs afero.Fs, path string, requiredColumns []string) ([]enrichlib.VisitRecord, error) {
	var src io.Reader = os.Stdin

	if path != stdStreamPath {
		file, err := fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open input: %w", err)
		}

		defer file.Close()

		src = file
	}

	return visitcsv.ReadAll(src, requiredColumns...)
}

func writeOutput(fs afero.Fs,
	path, format string,
	records []enrichlib.EnrichedRecord,
	summary enrichlib.Summary) (err error) {
	var dst io.Writer = os.Stdout

	if path != stdStreamPath {
		file, err := fs.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create output: %w", err)
		}

		defer func() {
			if closeErr := file.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("cannot close output: %w", closeErr)
			}
		}()

		dst = file
	}

	switch format {
	case formatJSON:
		encoder := json.NewEncoder(dst)

		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")

		return encoder.Encode(jsonOutput{
			Results: records,
			Summary: summary,
			Metrics: enrichlib.ComputeMetrics(records),
		})
	case formatCSV:
		return visitcsv.WriteAll(dst, records)
	}

	return fmt.Errorf("unknown output format %s", format)
}

func summaryLine(summary enrichlib.Summary) string {
	if summary.Enriched == 0 {
		return "No valid data was processed"
	}

	return fmt.Sprintf("Successfully processed %s of %s addresses: %s visits enriched, %s lookups failed, %s invalid addresses skipped",
		humanize.Comma(int64(summary.Succeeded)),
		humanize.Comma(int64(summary.UniqueIPs-summary.InvalidIPs)),
		humanize.Comma(int64(summary.Enriched)),
		humanize.Comma(int64(summary.Failed)),
		humanize.Comma(int64(summary.InvalidIPs)))
}
