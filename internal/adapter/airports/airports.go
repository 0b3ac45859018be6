// Package airports resolves airport codes against the FAA NASR airport base
// dataset (APT_BASE.csv).
package airports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// record is one APT_BASE row. Columns not listed here are ignored.
type record struct {
	ArptID      string  `csv:"ARPT_ID"`
	ICAOID      string  `csv:"ICAO_ID"`
	Name        string  `csv:"ARPT_NAME"`
	CountryCode string  `csv:"COUNTRY_CODE"`
	StateName   string  `csv:"STATE_NAME"`
	Lat         float64 `csv:"LAT_DECIMAL,omitempty"`
	Lon         float64 `csv:"LONG_DECIMAL,omitempty"`
	Elevation   float64 `csv:"ELEV,omitempty"`
}

func (r record) toDomain() domain.Airport {
	return domain.Airport{
		Name:        strings.TrimSpace(r.Name),
		CountryCode: strings.TrimSpace(r.CountryCode),
		RegionName:  strings.TrimSpace(r.StateName),
		IATACode:    domain.NormalizeAirportCode(r.ArptID),
		ICAOCode:    domain.NormalizeAirportCode(r.ICAOID),
		Coordinates: domain.Coordinate{Lat: r.Lat, Lon: r.Lon},
		Elevation:   r.Elevation,
	}
}

// Database is an in-memory airport index keyed by FAA and ICAO identifiers.
// It is read-only after Load and safe for concurrent use.
type Database struct {
	airports []domain.Airport
	byCode   map[string]int
}

// Load decodes an APT_BASE CSV with a header row. When two rows share a code
// the first one wins.
func Load(r io.Reader) (*Database, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("airport data is empty")
		}
		return nil, fmt.Errorf("read airport header: %w", err)
	}

	var rows []record
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode airport data: %w", err)
	}

	db := &Database{
		airports: make([]domain.Airport, 0, len(rows)),
		byCode:   make(map[string]int, 2*len(rows)),
	}
	for _, row := range rows {
		a := row.toDomain()
		idx := len(db.airports)
		db.airports = append(db.airports, a)
		for _, code := range []string{a.IATACode, a.ICAOCode} {
			if code == "" {
				continue
			}
			if _, exists := db.byCode[code]; !exists {
				db.byCode[code] = idx
			}
		}
	}
	return db, nil
}

// Open loads the dataset from a file.
func Open(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airport data: %w", err)
	}
	defer f.Close()

	db, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Lookup resolves an FAA (ARPT_ID) or ICAO code, case-insensitively.
func (db *Database) Lookup(code string) (domain.Airport, error) {
	norm := domain.NormalizeAirportCode(code)
	if norm == "" {
		return domain.Airport{}, domain.InvalidParameter("airport", code, "is required")
	}
	idx, ok := db.byCode[norm]
	if !ok {
		return domain.Airport{}, fmt.Errorf("airport %q: %w", norm, domain.ErrNotFound)
	}
	return db.airports[idx], nil
}

// Len returns the number of airports loaded.
func (db *Database) Len() int { return len(db.airports) }

// All returns a copy of every loaded airport in file order.
func (db *Database) All() []domain.Airport {
	return slices.Clone(db.airports)
}
