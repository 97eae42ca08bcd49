// internal/stub/countries.go
//
// Embedded country reference data for the stub server.
//
// Responsibilities:
//   - Load the embedded dataset exactly once (sync.Once).
//   - Expose the wire-shaped catalog, id lookups, and a random answer
//     picker for new games.
//
// The dataset carries a centroid per country, used only server-side to
// produce guess feedback; centroids are never exposed on the wire.

package stub

import (
	_ "embed"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"

	"github.com/lexeme-dev/worldle/internal/api"
)

//go:embed countries.json
var embeddedCountries []byte

// countryRecord is the embedded dataset row: the wire Country fields
// plus a centroid.
type countryRecord struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ISO2      string  `json:"iso2"`
	ISO3      string  `json:"iso3"`
	Continent string  `json:"continent"`
	Region    string  `json:"region"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

var (
	initOnce   sync.Once
	records    []countryRecord
	recordByID map[int]countryRecord
	initialErr error
)

// initCountries decodes the embedded dataset exactly once.
func initCountries() error {
	initOnce.Do(func() {
		if err := json.Unmarshal(embeddedCountries, &records); err != nil {
			initialErr = err
			return
		}
		if len(records) == 0 {
			initialErr = errors.New("stub: embedded country list is empty")
			return
		}
		recordByID = make(map[int]countryRecord, len(records))
		for _, r := range records {
			recordByID[r.ID] = r
		}
	})
	return initialErr
}

// wireCountry converts a dataset row to its wire shape.
func wireCountry(r countryRecord) api.Country {
	iso2, iso3 := r.ISO2, r.ISO3
	continent, region := r.Continent, r.Region
	status := "member"
	return api.Country{
		ID:        r.ID,
		Name:      r.Name,
		ISO2:      &iso2,
		ISO3:      &iso3,
		Status:    &status,
		Continent: &continent,
		Region:    &region,
	}
}

// allCountries returns the full catalog in dataset order.
func allCountries() []api.Country {
	out := make([]api.Country, 0, len(records))
	for _, r := range records {
		out = append(out, wireCountry(r))
	}
	return out
}

// randomAnswer picks a country id for a new game.
func randomAnswer(rng *rand.Rand) int {
	return records[rng.Intn(len(records))].ID
}
