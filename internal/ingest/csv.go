package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"entmatch/internal/textutil"
)

// nameColumns lists the accepted header names in priority order.
var nameColumns = []string{"names", "name"}

func parseCSV(ctx context.Context, data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("CSV file is empty")
	}
	if err != nil {
		return nil, csvError(err)
	}

	column := findColumn(header)
	if column < 0 {
		return nil, invalid(`CSV must have a "names" or "name" column`)
	}

	var (
		names []string
		rows  int
	)
	for {
		if rows%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if blankRecord(record) {
			continue
		}
		rows++
		if column >= len(record) {
			continue
		}
		if name := textutil.CleanName(record[column]); name != "" {
			names = append(names, name)
		}
	}

	if rows == 0 {
		return nil, invalid("CSV file is empty")
	}
	if len(names) == 0 {
		return nil, invalid("No valid names found in the CSV file")
	}
	return names, nil
}

func findColumn(header []string) int {
	cleaned := make([]string, len(header))
	for i, cell := range header {
		cleaned[i] = textutil.CleanName(cell)
	}
	for _, want := range nameColumns {
		for i, cell := range cleaned {
			if cell == want {
				return i
			}
		}
	}
	return -1
}

// blankRecord reports rows made only of empty cells, such as ",," lines.
func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func csvError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return invalid(fmt.Sprintf("Failed to parse CSV: line %d: %v", parseErr.Line, parseErr.Err))
	}
	return invalid(fmt.Sprintf("Failed to parse CSV: %v", err))
}
