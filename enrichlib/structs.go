package enrichlib

import (
	"fmt"
	"net"
)

// VisitRecord is a single row of input: some IP address has visited some
// page. Many records may share the same IP.
type VisitRecord struct {
	IP          string `json:"ip"`
	PageVisited string `json:"page_visited"`
}

// GeoRecord is a result of the lookup for a single IP address.
//
// All fields are optional because provider may omit any of them. nil
// means 'unknown'. Please do not confuse it with an empty string: empty
// string is a value which was returned by a provider.
type GeoRecord struct {
	CountryName    *string  `json:"country_name"`
	City           *string  `json:"city"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	ConnectionType *string  `json:"connection_type"`
	IsEU           *bool    `json:"is_eu"`
}

// HasCoordinates checks if both latitude and longitude are known.
func (g GeoRecord) HasCoordinates() bool {
	return g.Latitude != nil && g.Longitude != nil
}

// EnrichedRecord is a VisitRecord merged with a GeoRecord of its IP.
type EnrichedRecord struct {
	VisitRecord
	GeoRecord
}

// Progress is an event which is emitted after each lookup attempt.
type Progress struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	IP        string `json:"ip"`
}

// Summary describes how a run went.
type Summary struct {
	Records    int `json:"records"`
	UniqueIPs  int `json:"unique_ips"`
	InvalidIPs int `json:"invalid_ips"`
	Lookups    int `json:"lookups"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	Enriched   int `json:"enriched"`
}

func (s Summary) String() string {
	return fmt.Sprintf("processed %d of %d addresses", s.Succeeded, s.UniqueIPs-s.InvalidIPs)
}

type lookupRequest struct {
	index  int
	ip     string
	parsed net.IP
}

type lookupResult struct {
	index  int
	ip     string
	record GeoRecord
	err    error
}

// StringValue returns a pointer to a copy of given string. This is
// convenient if you need to build GeoRecord by hand.
func StringValue(value string) *string {
	return &value
}

// FloatValue returns a pointer to a copy of given float.
func FloatValue(value float64) *float64 {
	return &value
}

// BoolValue returns a pointer to a copy of given bool.
func BoolValue(value bool) *bool {
	return &value
}
