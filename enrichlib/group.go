package enrichlib

import (
	"net"
	"net/netip"
)

// groupByIP returns distinct IP values in order of the first
// appearance and row indexes for each of them.
func groupByIP(records []VisitRecord) ([]string, map[string][]int) {
	order := []string{}
	rows := map[string][]int{}

	for i, v := range records {
		if _, ok := rows[v.IP]; !ok {
			order = append(order, v.IP)
		}

		rows[v.IP] = append(rows[v.IP], i)
	}

	return order, rows
}

// parseIP returns an address which is sent to a provider. Zone is
// meaningful only for a local host so it is dropped.
func parseIP(value string) net.IP {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return nil
	}

	return net.IP(addr.WithZone("").Unmap().AsSlice())
}
