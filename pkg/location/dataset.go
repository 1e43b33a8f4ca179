package location

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/devmap/devmap/pkg/errors"
)

// Kind distinguishes country datasets from city datasets.
type Kind string

const (
	KindCountries Kind = "countries"
	KindCities    Kind = "cities"
)

// ParseKind resolves a dataset kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCountries, "country", "":
		return KindCountries, nil
	case KindCities, "city":
		return KindCities, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown dataset kind %q (must be countries or cities)", s)
}

// columns maps header names in the TSV exports onto Location fields.
var columns = map[string]func(l *Location, v float64){
	"count":         func(l *Location, v float64) { l.Count = v },
	"logfollowers":  func(l *Location, v float64) { l.LogFollowers = v },
	"sqrtfollowers": func(l *Location, v float64) { l.SqrtFollowers = v },
	"sumfollowers":  func(l *Location, v float64) { l.Followers = v },
	"followers":     func(l *Location, v float64) { l.Followers = v },
	"population":    func(l *Location, v float64) { l.Population = v },
	"gdp":           func(l *Location, v float64) { l.GDP = v },
}

// ReadTSV parses a tab-separated location export with a header row.
//
// The header determines which columns are present, so both the country and
// the city exports are accepted. Empty cells and "None" (unknown values
// written by the export script) read as zero. Per-capita metrics are derived
// for every record.
func ReadTSV(r io.Reader) ([]*Location, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	if indexOf(header, "country") < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing country column")
	}

	var locs []*Location
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		l := &Location{}
		for i, name := range header {
			if i >= len(rec) {
				break
			}
			cell := strings.TrimSpace(rec[i])
			switch name {
			case "country":
				l.Country = cell
			case "state":
				l.State = noneToEmpty(cell)
			case "city":
				l.City = noneToEmpty(cell)
			default:
				set, ok := columns[name]
				if !ok {
					continue
				}
				v, err := parseNumber(cell)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d column %s", line, name)
				}
				set(l, v)
			}
		}
		l.Derive()
		locs = append(locs, l)
	}
	return locs, nil
}

// ReadTSVFile reads a location export from disk.
func ReadTSVFile(path string) ([]*Location, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	locs, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return locs, nil
}

// parseNumber reads a numeric cell. Missing values are zero; NaN and
// infinities are rejected so ranking sees only comparable values.
func parseNumber(s string) (float64, error) {
	if s == "" || s == "None" || s == "null" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func noneToEmpty(s string) string {
	if s == "None" {
		return ""
	}
	return s
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
