// internal/output/csv.go
package output

import (
	"encoding/csv"
	"os"

	"github.com/bhzfoot/fixturebot/internal/normalize"
)

// CSVWriter writes the fixture set as CSV with a fixed header row.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates a CSV writer targeting filename.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{file: file, writer: csv.NewWriter(file)}, nil
}

// Write emits the header and one row per fixture.
func (w *CSVWriter) Write(fixtures []normalize.Fixture) error {
	if err := w.writer.Write(columns); err != nil {
		return err
	}
	for _, fixture := range fixtures {
		if err := w.writer.Write(fixtureRow(fixture)); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
