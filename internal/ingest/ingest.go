// Package ingest loads the coded-record CSV into a coding.Dataset. It is the
// only place raw input is parsed; the engine packages never touch files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/monitoring"
	"github.com/intercoder-data/naics.report/internal/naics"
)

// Column names the loader requires. Matching is case-insensitive and
// order-independent; extra columns are ignored.
var requiredColumns = []string{"Contract", "Difficulty", "Service_Raw", "Coder", "Round", "NAICS_Raw"}

// Load reads the record CSV at path.
func Load(path string) (*coding.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	return ds, nil
}

// Read parses CSV record rows from r. Structural CSV errors and a missing
// required column are fatal; bad field values divert the row into the
// quality report and the load continues.
func Read(r io.Reader) (*coding.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	ds := coding.NewDataset(nil)
	row := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row++
		ds.Quality.TotalRows++

		rec, issue := parseRow(row, fields, cols)
		if issue != nil {
			ds.Quality.MalformedRows = append(ds.Quality.MalformedRows, *issue)
			continue
		}
		if rec.Missing {
			ds.Quality.MissingCodes++
		}
		if len(rec.Codes) > 1 {
			ds.Quality.MultiCode++
		}
		for _, code := range rec.Codes {
			if !naics.KnownSector(code) {
				ds.Quality.NoteUnknownSector(code)
			}
		}
		ds.Quality.KeptRows++
		ds.Records = append(ds.Records, rec)
	}

	monitoring.Stagef("ingest", "loaded %d rows: %d kept, %d missing codes, %d malformed",
		ds.Quality.TotalRows, ds.Quality.KeptRows, ds.Quality.MissingCodes, ds.Quality.MalformedCount())
	return ds, nil
}

// mapColumns resolves each required column to its position in the header.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		for _, want := range requiredColumns {
			if strings.EqualFold(name, want) {
				cols[want] = i
			}
		}
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("missing required column %q", want)
		}
	}
	return cols, nil
}

func parseRow(row int, fields []string, cols map[string]int) (coding.Record, *coding.ParseIssue) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	rec := coding.Record{
		Contract:   field("Contract"),
		Coder:      field("Coder"),
		ServiceRaw: field("Service_Raw"),
	}
	issue := func(token, reason string) *coding.ParseIssue {
		return &coding.ParseIssue{
			Row:      row,
			Contract: rec.Contract,
			Coder:    rec.Coder,
			Service:  rec.ServiceRaw,
			Token:    token,
			Reason:   reason,
		}
	}

	if rec.Contract == "" {
		return rec, issue("", "empty contract")
	}
	if rec.Coder == "" {
		return rec, issue("", "empty coder")
	}
	if rec.ServiceRaw == "" {
		return rec, issue("", "empty service name")
	}

	diff, err := coding.ParseDifficulty(field("Difficulty"))
	if err != nil {
		return rec, issue(field("Difficulty"), "unknown difficulty")
	}
	rec.Difficulty = diff

	round, err := strconv.Atoi(field("Round"))
	if err != nil {
		return rec, issue(field("Round"), "non-integer round")
	}
	rec.Round = round

	codes, missing, err := naics.ParseCodeSet(field("NAICS_Raw"))
	if err != nil {
		var mce *naics.MalformedCodeError
		if errors.As(err, &mce) {
			return rec, issue(mce.Token, mce.Reason)
		}
		return rec, issue(field("NAICS_Raw"), err.Error())
	}
	rec.Codes = codes
	rec.Missing = missing
	return rec, nil
}
