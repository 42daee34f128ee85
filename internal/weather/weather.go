// Package weather defines the optional enrichment hook for activity weather
// conditions. Ingestion treats a failed or absent lookup as "no weather
// field", never as an error.
package weather

import "context"

// Provider looks up a short weather summary for a location and time
type Provider interface {
	// Conditions returns a human-readable summary, e.g. "Clear, 18°C".
	Conditions(ctx context.Context, lat, lng float64, unixTime int64) (string, error)
}

// NoopProvider is the default provider; it reports no conditions
type NoopProvider struct{}

// Conditions always returns an empty summary
func (NoopProvider) Conditions(ctx context.Context, lat, lng float64, unixTime int64) (string, error) {
	return "", nil
}
