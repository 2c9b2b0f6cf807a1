package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"lottery/domain/entities"
)

// CSVExporter writes results as CSV
type CSVExporter struct{}

// NewCSVExporter creates a new csv exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType returns the csv MIME type
func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

// FileExtension returns "csv"
func (e *CSVExporter) FileExtension() string {
	return "csv"
}

// Export writes a header row and one row per winner in draw order
func (e *CSVExporter) Export(w io.Writer, result *entities.DrawResult) error {
	header, rows := table(result)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
