package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// LoadCSV reads a CSV file into a header plus one map per row. Files that
// are not valid UTF-8 are re-read as Latin-1, which covers the older
// phishing corpora.
func LoadCSV(path string) (columns []string, rows []map[string]string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		data, err = io.ReadAll(transform.NewReader(
			bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s as latin-1: %w", path, err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row of %s: %w", path, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// WriteJSONL writes records as newline-delimited JSON.
func WriteJSONL(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write record to %s: %w", path, err)
		}
	}
	return nil
}

// WriteCSV writes records as a flat CSV with URLs space-joined.
func WriteCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"subject", "body", "urls", "from", "source", "label"}); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Subject,
			rec.Body,
			strings.Join(rec.URLs, " "),
			rec.Metadata.From,
			rec.Metadata.Source,
			rec.Label,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	return w.Error()
}
