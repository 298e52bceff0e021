// internal/output/manager.go

// Package output exports a deduplicated fixture set to a local file. It backs
// dry runs, where fixtures are written out for inspection instead of being
// posted downstream.
package output

import (
	"fmt"

	"github.com/bhzfoot/fixturebot/internal/normalize"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// Writer persists a fixture set. Close must be called to flush.
type Writer interface {
	Write(fixtures []normalize.Fixture) error
	Close() error
}

// Manager resolves the configured format to a writer.
type Manager struct {
	format Format
	file   string
}

// NewManager creates an export manager for the given format and target file.
func NewManager(format, file string) (*Manager, error) {
	if file == "" {
		return nil, fmt.Errorf("output file is required")
	}
	switch Format(format) {
	case FormatJSON, FormatCSV, FormatExcel:
	case "":
		format = string(FormatJSON)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Manager{format: Format(format), file: file}, nil
}

// GetWriter returns a writer for the configured format.
func (m *Manager) GetWriter() (Writer, error) {
	switch m.format {
	case FormatJSON:
		return NewJSONWriter(m.file)
	case FormatCSV:
		return NewCSVWriter(m.file)
	case FormatExcel:
		return NewExcelWriter(m.file)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", m.format)
	}
}

// Write exports the fixtures using the configured format.
func (m *Manager) Write(fixtures []normalize.Fixture) error {
	writer, err := m.GetWriter()
	if err != nil {
		return fmt.Errorf("failed to get writer: %w", err)
	}
	if err := writer.Write(fixtures); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// columns is the fixed export column order shared by the tabular writers.
var columns = []string{
	"external_id",
	"competition",
	"match_datetime",
	"home_team",
	"away_team",
	"venue",
	"status",
	"round",
	"source",
}

func fixtureRow(f normalize.Fixture) []string {
	return []string{
		f.ExternalID,
		f.Competition,
		f.MatchDatetime,
		f.HomeTeam,
		f.AwayTeam,
		f.Venue,
		f.Status,
		f.Round,
		f.Source,
	}
}
