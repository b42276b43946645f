package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/rotisserie/eris"

	"github.com/civicdata/cpahealth/internal/model"
)

// ParseCSV reads the delimited dataset and returns one town per data row.
// The first row is the field-name header; empty lines produce no record.
func ParseCSV(data []byte) ([]model.Town, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // field counts are checked against the header

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Wrap(model.ErrMalformedInput, "ingest: csv has no header row")
	}
	if err != nil {
		return nil, eris.Wrapf(model.ErrMalformedInput, "ingest: read csv header: %v", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(model.ErrMalformedInput, "ingest: read csv row: %v", err)
		}
		rows = append(rows, record)
	}

	return buildTowns(header, rows)
}
