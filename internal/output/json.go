// internal/output/json.go
package output

import (
	"encoding/json"
	"os"

	"github.com/bhzfoot/fixturebot/internal/normalize"
)

// JSONWriter writes the fixture set as an indented JSON array.
type JSONWriter struct {
	file *os.File
}

// NewJSONWriter creates a JSON writer targeting filename.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{file: file}, nil
}

// Write encodes the fixtures.
func (w *JSONWriter) Write(fixtures []normalize.Fixture) error {
	if fixtures == nil {
		fixtures = []normalize.Fixture{}
	}
	encoder := json.NewEncoder(w.file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fixtures)
}

// Close closes the underlying file.
func (w *JSONWriter) Close() error {
	return w.file.Close()
}
