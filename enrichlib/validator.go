package enrichlib

import "net/netip"

// IsValidIP checks if a given string is IPv4 or IPv6 address. Hostnames
// and CIDR ranges are not addresses. IPv6 addresses may carry a zone
// like fe80::1%eth0.
func IsValidIP(value string) bool {
	_, err := netip.ParseAddr(value)

	return err == nil
}

// HasRequiredColumns checks that each required column is present in
// columns. Matching is exact and case-sensitive, order does not matter.
func HasRequiredColumns(columns, required []string) bool {
	return len(MissingColumns(columns, required)) == 0
}

// MissingColumns returns a list of required columns which are absent in
// columns. Order follows required.
func MissingColumns(columns, required []string) []string {
	present := make(map[string]struct{}, len(columns))

	for _, v := range columns {
		present[v] = struct{}{}
	}

	var rv []string

	for _, v := range required {
		if _, ok := present[v]; !ok {
			rv = append(rv, v)
		}
	}

	return rv
}

const (
	ColumnIP          = "ip"
	ColumnPageVisited = "page_visited"
)

// RequiredColumns are columns without which enrichment cannot run.
var RequiredColumns = []string{ColumnIP, ColumnPageVisited}
