package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lottery/domain/entities"
)

// CSVStore reads the roster from a CSV file with a header row
type CSVStore struct {
	path string
	opts Options
}

// NewCSVStore creates a roster store over the CSV file at path
func NewCSVStore(path string, opts Options) *CSVStore {
	return &CSVStore{path: path, opts: opts}
}

// LoadRoster parses the whole file
func (s *CSVStore) LoadRoster(ctx context.Context) (entities.Roster, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.Roster{}, fmt.Errorf("%w: %s", entities.ErrMissingData, s.path)
	}
	if err != nil {
		return entities.Roster{}, fmt.Errorf("failed to open roster file %s: %w", s.path, err)
	}
	defer f.Close()

	roster, err := ReadCSV(f, s.opts)
	if err != nil {
		return entities.Roster{}, fmt.Errorf("invalid roster in %s: %w", s.path, err)
	}
	return roster, nil
}

// ReadCSV parses a roster from r
func ReadCSV(r io.Reader, opts Options) (entities.Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return entities.Roster{}, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return entities.Roster{}, fmt.Errorf("%w: roster file is empty", entities.ErrMissingData)
	}

	// Strip a UTF-8 byte order mark left by spreadsheet exports
	if len(records[0]) > 0 {
		records[0][0] = trimBOM(records[0][0])
	}

	return buildRoster(records[0], records[1:], opts)
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
