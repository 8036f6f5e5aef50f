// This package provides a set of structs and functions which are used
// to enrich page visits with geolocation data.
//
// enrichlib is core of the geovisits project. You can treat the rest of
// the application as an _example_ on how to use this library: how to
// read visits from CSV, how to expose results via HTTP, how to
// implement lookup clients.
//
// Enricher is a main entity of the enrichlib. It accepts a list of
// VisitRecord and returns a list of EnrichedRecord. Each valid distinct
// IP address is resolved exactly once, invalid addresses are skipped
// silently and failed lookups are reported to Observer. A failure of
// a single IP never fails the whole run.
//
// ComputeMetrics, FilterByPage and Paginate build aggregated and
// per-record views on top of enriched records.
package enrichlib
