package ingest

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/civicdata/cpahealth/internal/model"
)

// ParseXLSX reads the first sheet of an XLSX workbook with the same row
// semantics as ParseCSV: first row is the header, blank rows are skipped.
func ParseXLSX(data []byte) ([]model.Town, error) {
	// tealeg/xlsx needs a file path.
	tmp, err := os.CreateTemp("", "cpahealth-*.xlsx")
	if err != nil {
		return nil, eris.Wrapf(model.ErrIngestion, "ingest: create temp xlsx: %v", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, eris.Wrapf(model.ErrIngestion, "ingest: write temp xlsx: %v", err)
	}
	_ = tmp.Close()

	f, err := xlsx.OpenFile(tmpPath)
	if err != nil {
		return nil, eris.Wrapf(model.ErrMalformedInput, "ingest: parse xlsx: %v", err)
	}

	if len(f.Sheets) == 0 {
		return nil, eris.Wrap(model.ErrMalformedInput, "ingest: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Wrap(model.ErrMalformedInput, "ingest: xlsx sheet has no header row")
	}

	header := rowToStrings(sheet.Rows[0])
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		// Pad short rows: xlsx drops trailing empty cells, which is not a
		// field-count violation the way a short CSV row is.
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		rows = append(rows, cells)
	}

	return buildTowns(header, rows)
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = strings.TrimSpace(cell.String())
	}
	return out
}
