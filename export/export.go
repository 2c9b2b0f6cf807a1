// Package export writes draw results as downloadable tables.
package export

import (
	"fmt"
	"strconv"

	"lottery/domain/entities"
	"lottery/domain/interfaces"
)

// BaseFileName is the download name without extension
const BaseFileName = "lottery_winners"

// RankColumn is prepended to every export and holds the 1-based draw order
const RankColumn = "Rank"

// New returns the exporter for a format name ("xlsx" or "csv")
func New(format string) (interfaces.Exporter, error) {
	switch format {
	case "xlsx", "":
		return NewXLSXExporter(), nil
	case "csv":
		return NewCSVExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// FileName returns the download file name for an exporter
func FileName(e interfaces.Exporter) string {
	return BaseFileName + "." + e.FileExtension()
}

// table flattens a result into a header and rows, winners in draw order
func table(result *entities.DrawResult) ([]string, [][]string) {
	columns := result.Columns
	if len(columns) == 0 {
		columns = []string{"ID", "Name"}
	}

	header := append([]string{RankColumn}, columns...)
	rows := make([][]string, len(result.Winners))
	for i, w := range result.Winners {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(i+1))
		for _, c := range columns {
			row = append(row, value(w, c))
		}
		rows[i] = row
	}
	return header, rows
}

func value(p entities.Participant, column string) string {
	if v, ok := p.Fields[column]; ok {
		return v
	}
	switch column {
	case "ID":
		return p.ID
	case "Name":
		return p.Name
	}
	return ""
}
