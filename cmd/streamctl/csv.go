package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// readSampleCSV reads a CSV file of numeric rows, each row holding one
// interleaved sample frame across columns (channels), and flattens it
// into a single interleaved buffer. All rows must have the same column
// count, which becomes the channel count.
func readSampleCSV(path string) (samples []float32, numChannels int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	var out []float32
	rowLen := -1

	for lineNum := 1; ; lineNum++ {
		record, readErr := r.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("input %s: line %d: %w", path, lineNum, readErr)
		}

		if rowLen == -1 {
			rowLen = len(record)
		} else if len(record) != rowLen {
			return nil, 0, fmt.Errorf("input %s: line %d: expected %d columns, got %d", path, lineNum, rowLen, len(record))
		}

		for _, field := range record {
			v, parseErr := strconv.ParseFloat(field, 32)
			if parseErr != nil {
				return nil, 0, fmt.Errorf("input %s: line %d: %w", path, lineNum, parseErr)
			}
			out = append(out, float32(v))
		}
	}

	return out, rowLen, nil
}

// writeSampleCSV writes an interleaved buffer back out as one row per
// frame of numChannels columns.
func writeSampleCSV(path string, samples []float32, numChannels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	record := make([]string, numChannels)
	for i := 0; i < len(samples); i += numChannels {
		for c := 0; c < numChannels; c++ {
			record[c] = strconv.FormatFloat(float64(samples[i+c]), 'g', -1, 32)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
	}

	return w.Error()
}
