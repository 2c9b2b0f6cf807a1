package roster

import (
	"fmt"
	"strings"

	"lottery/domain/entities"
)

// Options selects the identifier and display columns of a roster table
type Options struct {
	// Sheet is the worksheet to read; empty means the first sheet (xlsx only)
	Sheet string
	// IDColumn holds the unique identifier; empty means the first column
	IDColumn string
	// NameColumn holds the display name; optional
	NameColumn string
}

// buildRoster turns a header row and data rows into a roster. Rows with no
// values are skipped, ragged rows are padded with empty cells.
func buildRoster(header []string, rows [][]string, opts Options) (entities.Roster, error) {
	columns := normalizeHeader(header)
	if len(columns) == 0 {
		return entities.Roster{}, fmt.Errorf("%w: roster has no header row", entities.ErrMissingData)
	}

	idIdx := 0
	if opts.IDColumn != "" {
		idIdx = indexOf(columns, opts.IDColumn)
		if idIdx < 0 {
			return entities.Roster{}, fmt.Errorf("identifier column %q not found in %v", opts.IDColumn, columns)
		}
	}

	nameIdx := -1
	if opts.NameColumn != "" {
		nameIdx = indexOf(columns, opts.NameColumn)
		if nameIdx < 0 {
			return entities.Roster{}, fmt.Errorf("name column %q not found in %v", opts.NameColumn, columns)
		}
	}

	roster := entities.Roster{Columns: columns}
	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, c := range columns {
			fields[c] = cell(row, i)
		}

		p := entities.Participant{
			ID:     cell(row, idIdx),
			Fields: fields,
		}
		if nameIdx >= 0 {
			p.Name = cell(row, nameIdx)
		}
		roster.Participants = append(roster.Participants, p)
	}

	if err := roster.Validate(); err != nil {
		return entities.Roster{}, err
	}
	return roster, nil
}

// normalizeHeader trims names, drops trailing empty headers, names empty
// headers by position and suffixes duplicates
func normalizeHeader(header []string) []string {
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}

	columns := make([]string, end)
	seen := make(map[string]int, end)
	for i := 0; i < end; i++ {
		name := strings.TrimSpace(header[i])
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
	}
	return columns
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
