package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/elmswell/villagesigns/internal/config"
	"github.com/elmswell/villagesigns/internal/geo"
)

// Internal structures for Overpass JSON parsing
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Tags map[string]string `json:"tags"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
}

// buildQuery renders the Overpass QL query for all hamlet, village, town and
// city nodes inside the configured administrative area.
func buildQuery(county string, adminLevel int) string {
	return fmt.Sprintf(`[out:json][timeout:90];
area["name"=%q]["boundary"="administrative"]["admin_level"="%d"]->.county;
(
  node["place"~"^(hamlet|village|town|city)$"](area.county);
);
out body;`, county, adminLevel)
}

// fetchOverpass queries the Overpass API and normalizes the raw point
// features into the Settlement shape.
func fetchOverpass(client *http.Client, cfg *config.Config) ([]Settlement, error) {
	form := url.Values{"data": {buildQuery(cfg.County, cfg.AdminLevel)}}

	resp, err := client.Post(
		cfg.OverpassURL,
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	settlements := make([]Settlement, 0, len(body.Elements))
	for _, el := range body.Elements {
		settlements = append(settlements, Settlement{
			Name:  el.Tags["name"],
			Point: geo.Point{Lat: el.Lat, Lon: el.Lon},
			Place: Place(el.Tags["place"]),
		})
	}

	return normalize(settlements), nil
}
