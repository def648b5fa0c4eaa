// Package ingest decodes the tabular response and requirement exports
// into typed records. All joins downstream work on typed records, so
// every loose convention of the export format (German headers, dotted
// timestamps, stringly scores) is validated here and nowhere else.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/stufe/internal/adapters/repository"
	"github.com/okian/stufe/internal/domain/competency"
)

// TimestampLayout is the export timestamp contract, e.g. "15.03.2024 10:30".
const TimestampLayout = "02.01.2006 15:04"

const (
	colTimestamp = "zeitpunkt"
	colProfile   = "profil"
	colRole      = "rolle"
)

// ReadResponses decodes a profile-response table. The header must carry
// the zeitpunkt, profil and rolle columns; every remaining column is
// treated as a question id with a 1..5 raw score. Empty score cells are
// skipped (the question was not part of that survey run).
func ReadResponses(r io.Reader) ([]competency.ResponseRecord, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}

	tsCol, err := columnIndex(header, colTimestamp)
	if err != nil {
		return nil, err
	}
	profileCol, err := columnIndex(header, colProfile)
	if err != nil {
		return nil, err
	}
	roleCol, err := columnIndex(header, colRole)
	if err != nil {
		return nil, err
	}

	out := make([]competency.ResponseRecord, 0, len(rows))
	for i, row := range rows {
		takenAt, err := parseTimestamp(row[tsCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		rec := competency.ResponseRecord{
			Profile: strings.TrimSpace(row[profileCol]),
			Role:    strings.TrimSpace(row[roleCol]),
			TakenAt: takenAt,
			Scores:  make(map[string]float64),
		}
		for col, name := range header {
			if col == tsCol || col == profileCol || col == roleCol {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			score, err := parseScore(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+2, name, err)
			}
			rec.Scores[strings.TrimSpace(name)] = score
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadRequirements decodes a role-requirement table into vectors ordered
// by the catalog's cluster order. The header must carry zeitpunkt and
// rolle plus one column per catalog cluster name.
func ReadRequirements(r io.Reader, catalog *competency.Catalog) ([]repository.Requirement, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}

	tsCol, err := columnIndex(header, colTimestamp)
	if err != nil {
		return nil, err
	}
	roleCol, err := columnIndex(header, colRole)
	if err != nil {
		return nil, err
	}

	names := catalog.Names()
	clusterCols := make([]int, len(names))
	for i, name := range names {
		idx, err := columnIndex(header, name)
		if err != nil {
			return nil, err
		}
		clusterCols[i] = idx
	}

	out := make([]repository.Requirement, 0, len(rows))
	for i, row := range rows {
		takenAt, err := parseTimestamp(row[tsCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		values := make([]float64, len(names))
		for j, col := range clusterCols {
			score, err := parseScore(strings.TrimSpace(row[col]))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+2, names[j], err)
			}
			values[j] = score
		}
		out = append(out, repository.Requirement{
			Role:    strings.TrimSpace(row[roleCol]),
			TakenAt: takenAt,
			Values:  values,
		})
	}
	return out, nil
}

func readTable(r io.Reader) (rows [][]string, header []string, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read table: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, ErrEmptyInput
	}
	return records[1:], records[0], nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

func parseTimestamp(cell string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(cell))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, cell)
	}
	return t, nil
}

func parseScore(cell string) (float64, error) {
	// Exports localize decimals with a comma.
	normalized := strings.ReplaceAll(cell, ",", ".")
	score, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedScore, cell)
	}
	if score < competency.MinScore || score > competency.MaxScore {
		return 0, fmt.Errorf("%w: %v out of range", ErrMalformedScore, score)
	}
	return score, nil
}
