// Geovisits enriches page visits with geolocation of visitor IP
// addresses.
//
// Input is a table of visits: which IP address has visited which page.
// Each distinct IP is resolved once with an external geolocation
// provider and a result is expanded back to all visits of this IP.
//
// Tool itself is organized into 4 logical parts:
//
// Enrichlib
//
// enrichlib is a main package of the application which contains
// Enricher struct and main logic: deduplication, validation, worker
// pool, progress reporting and aggregated metrics. It also has an HTTP
// client with rate limiter and optional circuit breaker which providers use.
//
// Providers
//
// This package has an implementation of ipstack lookup client.
//
// Visitcsv
//
// CSV reader and writer for visits and enriched visits.
//
// API
//
// HTTP API on top of Enricher.
//
// A main package itself wires everything together: it has enrich
// command which processes a CSV file and serve command which runs HTTP
// API.
package main
