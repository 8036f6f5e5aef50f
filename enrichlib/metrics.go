package enrichlib

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/pariz/gountries"
)

const (
	// DefaultTopLimit is a length of 'top' lists in Metrics.
	DefaultTopLimit = 5

	// DefaultPageSize is used by Paginate if page size is not positive.
	DefaultPageSize = 10
)

var countryQuery = gountries.New()

type CountStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CountryStat struct {
	CountStat

	Alpha2Code string `json:"alpha2_code"`
	Alpha3Code string `json:"alpha3_code"`
}

type MapPoint struct {
	IP          string  `json:"ip"`
	PageVisited string  `json:"page_visited"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	City        *string `json:"city"`
	CountryName *string `json:"country_name"`
}

type MapCenter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapView is a set of points with known coordinates. Center is a mean
// of all points, it is nil if there are no points at all.
type MapView struct {
	Center *MapCenter `json:"center"`
	Points []MapPoint `json:"points"`
}

// Metrics is an aggregated view on enriched records. Unknown values are
// never counted as a separate country, city or connection type.
type Metrics struct {
	TotalVisits        int           `json:"total_visits"`
	UniquePages        int           `json:"unique_pages"`
	Countries          int           `json:"countries"`
	ConnectionTypes    int           `json:"connection_types"`
	EUTrafficPercent   float64       `json:"eu_traffic_percent"`
	TopPages           []CountStat   `json:"top_pages"`
	TopCountries       []CountryStat `json:"top_countries"`
	TopCities          []CountStat   `json:"top_cities"`
	ConnectionTypeHits []CountStat   `json:"connection_type_hits"`
	Map                MapView       `json:"map"`
}

// ComputeMetrics aggregates given records. EU traffic is a share of
// records with is_eu == true among all records.
func ComputeMetrics(records []EnrichedRecord) Metrics {
	pages := counter{}
	countries := counter{}
	connections := counter{}
	cities := cityCounter{}
	euCount := 0

	rv := Metrics{
		TotalVisits:  len(records),
		TopCountries: []CountryStat{},
		Map: MapView{
			Points: []MapPoint{},
		},
	}

	for i := range records {
		record := &records[i]

		pages.Add(record.PageVisited)

		if record.CountryName != nil {
			countries.Add(*record.CountryName)
		}

		if record.ConnectionType != nil {
			connections.Add(*record.ConnectionType)
		}

		if record.City != nil {
			cities.Add(*record.City)
		}

		if record.IsEU != nil && *record.IsEU {
			euCount++
		}

		if record.HasCoordinates() {
			rv.Map.Points = append(rv.Map.Points, MapPoint{
				IP:          record.IP,
				PageVisited: record.PageVisited,
				Latitude:    *record.Latitude,
				Longitude:   *record.Longitude,
				City:        record.City,
				CountryName: record.CountryName,
			})
		}
	}

	rv.UniquePages = len(pages)
	rv.Countries = len(countries)
	rv.ConnectionTypes = len(connections)
	rv.TopPages = pages.Top(DefaultTopLimit)
	rv.TopCities = cities.Top(DefaultTopLimit)
	rv.ConnectionTypeHits = connections.Top(0)

	for _, v := range countries.Top(DefaultTopLimit) {
		stat := CountryStat{
			CountStat: v,
		}

		if country, err := countryQuery.FindCountryByName(v.Name); err == nil {
			stat.Alpha2Code = country.Alpha2
			stat.Alpha3Code = country.Alpha3
		}

		rv.TopCountries = append(rv.TopCountries, stat)
	}

	if len(records) > 0 {
		rv.EUTrafficPercent = 100 * float64(euCount) / float64(len(records))
	}

	if len(rv.Map.Points) > 0 {
		latitude, longitude := 0.0, 0.0

		for _, v := range rv.Map.Points {
			latitude += v.Latitude
			longitude += v.Longitude
		}

		rv.Map.Center = &MapCenter{
			Latitude:  latitude / float64(len(rv.Map.Points)),
			Longitude: longitude / float64(len(rv.Map.Points)),
		}
	}

	return rv
}

// FilterByPage returns records of the given page only. Empty page
// means 'all pages'.
func FilterByPage(records []EnrichedRecord, page string) []EnrichedRecord {
	if page == "" {
		return records
	}

	rv := []EnrichedRecord{}

	for _, v := range records {
		if v.PageVisited == page {
			rv = append(rv, v)
		}
	}

	return rv
}

// Paginate returns a page of records (1-based) and a total number of
// pages. Pages out of range are empty.
func Paginate(records []EnrichedRecord, page, size int) ([]EnrichedRecord, int) {
	if size <= 0 {
		size = DefaultPageSize
	}

	pages := (len(records) + size - 1) / size
	start := (page - 1) * size

	if page < 1 || start >= len(records) {
		return []EnrichedRecord{}, pages
	}

	end := start + size
	if end > len(records) {
		end = len(records)
	}

	return records[start:end], pages
}

type counter map[string]int

func (c counter) Add(name string) {
	c[name]++
}

// Top returns most frequent names. Ties are ordered by name. If limit
// is not positive, all names are returned.
func (c counter) Top(limit int) []CountStat {
	rv := make([]CountStat, 0, len(c))

	for k, v := range c {
		rv = append(rv, CountStat{Name: k, Count: v})
	}

	sortCountStats(rv)

	if limit > 0 && len(rv) > limit {
		rv = rv[:limit]
	}

	return rv
}

// cityCounter groups different spellings of the same city name (like
// Frankfurt am Main and Frankfurt-am-Main) by their phonetic key.
type cityCounter struct {
	counts counter
	names  map[string]string
}

func (c *cityCounter) Add(name string) {
	if c.counts == nil {
		c.counts = counter{}
		c.names = map[string]string{}
	}

	key, _ := matchr.DoubleMetaphone(name)
	if key == "" {
		key = strings.ToLower(name)
	}

	if _, ok := c.names[key]; !ok {
		c.names[key] = name
	}

	c.counts.Add(key)
}

func (c *cityCounter) Top(limit int) []CountStat {
	rv := c.counts.Top(0)

	for i := range rv {
		rv[i].Name = c.names[rv[i].Name]
	}

	sortCountStats(rv)

	if limit > 0 && len(rv) > limit {
		rv = rv[:limit]
	}

	return rv
}

func sortCountStats(stats []CountStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}

		return stats[i].Name < stats[j].Name
	})
}
