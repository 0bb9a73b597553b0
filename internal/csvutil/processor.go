// Package csvutil reads CSV files record by record into typed values.
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// FieldsPerRecord sets the expected number of fields per record.
	// If 0, it's set to the number of fields in the first record.
	FieldsPerRecord int

	// SkipHeader discards the first record.
	SkipHeader bool

	// SkipInvalid logs and skips malformed or unparseable records instead
	// of returning an error.
	SkipInvalid bool
}

// ProcessCSV reads a CSV file and parses each record into type T.
// An empty file yields no items.
func ProcessCSV[T any](filename string, parser func([]string) (T, error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	return ProcessReader(csvFile, parser, opts)
}

// ProcessReader parses CSV records from r into type T.
func ProcessReader[T any](r io.Reader, parser func([]string) (T, error), opts ProcessorOptions) ([]T, error) {
	reader := csv.NewReader(r)
	if opts.FieldsPerRecord > 0 {
		reader.FieldsPerRecord = opts.FieldsPerRecord
	}

	if opts.SkipHeader {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
	}

	var items []T
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping unreadable record", "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		item, err := parser(record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}

		items = append(items, item)
	}

	return items, nil
}
