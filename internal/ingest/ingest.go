// Package ingest parses the raw delimited dataset into typed town records.
// CSV is the primary format; XLSX extracts from state portals are accepted
// through the same row semantics.
package ingest

import (
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/civicdata/cpahealth/internal/model"
)

// TownColumn is the record-key column in the source dataset.
const TownColumn = "TOWN"

// PopulationColumn is the per-capita denominator column.
const PopulationColumn = "population_count"

// Parse dispatches on the source name's extension: .xlsx goes to the XLSX
// reader, everything else is treated as CSV.
func Parse(data []byte, sourceName string) ([]model.Town, error) {
	if strings.EqualFold(path.Ext(sourceName), ".xlsx") {
		return ParseXLSX(data)
	}
	return ParseCSV(data)
}

// buildTowns maps positional rows onto the header and produces one town
// record per data row. The header must carry the town, population, and
// every funding column; health columns are carried when present.
func buildTowns(header []string, rows [][]string) ([]model.Town, error) {
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}

	required := []string{TownColumn, PopulationColumn}
	for _, k := range model.FundingKeys() {
		required = append(required, string(k))
	}
	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Wrapf(model.ErrMissingField, "ingest: header lacks column %q", col)
		}
	}

	// A fresh caser per call: cases.Caser is not safe for concurrent use.
	titleCaser := cases.Title(language.AmericanEnglish)

	towns := make([]model.Town, 0, len(rows))
	for rowNum, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if len(row) != len(header) {
			return nil, eris.Wrapf(model.ErrMalformedInput, "ingest: row %d has %d fields, header has %d", rowNum+2, len(row), len(header))
		}

		name := getCol(row, colIdx, TownColumn)
		if name == "" {
			return nil, eris.Wrapf(model.ErrMissingField, "ingest: row %d has empty %s", rowNum+2, TownColumn)
		}

		pop, err := requireFloat(row, colIdx, PopulationColumn)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: row %d (%s)", rowNum+2, name)
		}

		t := model.Town{
			Name:        name,
			DisplayName: titleCaser.String(strings.ToLower(name)),
			Population:  pop,
			Funding:     make(map[model.FundingKey]float64, len(model.FundingKeys())),
			Health:      make(map[model.HealthKey]float64, len(model.HealthKeys())),
		}

		for _, k := range model.FundingKeys() {
			v, err := requireFloat(row, colIdx, string(k))
			if err != nil {
				return nil, eris.Wrapf(err, "ingest: row %d (%s)", rowNum+2, name)
			}
			t.Funding[k] = v
		}

		// Health columns are lenient: blank, non-numeric, and non-finite
		// cells are skipped, not rejected. Finiteness matters here because
		// strconv accepts "NaN" and "Inf" spellings.
		for _, k := range model.HealthKeys() {
			raw := getCol(row, colIdx, string(k))
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			t.Health[k] = v
		}

		towns = append(towns, t)
	}

	return towns, nil
}

// getCol safely retrieves a trimmed column value from a row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// requireFloat parses a column that derivation cannot run without.
func requireFloat(row []string, colIdx map[string]int, col string) (float64, error) {
	raw := getCol(row, colIdx, col)
	if raw == "" {
		return 0, eris.Wrapf(model.ErrMissingField, "column %q is empty", col)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Wrapf(model.ErrMissingField, "column %q is not a finite number: %q", col, raw)
	}
	return v, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
