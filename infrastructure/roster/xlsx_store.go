package roster

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lottery/domain/entities"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// XLSXStore reads the roster from a spreadsheet: one header row, then one
// participant per row
type XLSXStore struct {
	path string
	opts Options
}

// NewXLSXStore creates a roster store over the workbook at path
func NewXLSXStore(path string, opts Options) *XLSXStore {
	return &XLSXStore{path: path, opts: opts}
}

// LoadRoster opens the workbook and reads the configured sheet
func (s *XLSXStore) LoadRoster(ctx context.Context) (entities.Roster, error) {
	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.Roster{}, fmt.Errorf("%w: %s", entities.ErrMissingData, s.path)
	}
	if err != nil {
		return entities.Roster{}, fmt.Errorf("failed to open roster workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := s.opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return entities.Roster{}, fmt.Errorf("%w: sheet %q not found in %s", entities.ErrMissingData, sheet, s.path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return entities.Roster{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return entities.Roster{}, fmt.Errorf("%w: sheet %q is empty", entities.ErrMissingData, sheet)
	}

	roster, err := buildRoster(rows[0], rows[1:], s.opts)
	if err != nil {
		return entities.Roster{}, fmt.Errorf("invalid roster in %s: %w", s.path, err)
	}

	log.WithFields(log.Fields{
		"path":         s.path,
		"sheet":        sheet,
		"participants": roster.Size(),
	}).Debug("Roster loaded from workbook")

	return roster, nil
}
