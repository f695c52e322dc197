package pipeline

import (
	"gatebank/internal/taxonomy"
)

// Precompute regenerates the taxonomy lookup file from the curated
// hierarchy. Run whenever the hierarchy tables change; the lookup's
// schema version invalidates downstream caches automatically.
func Precompute(path string) error {
	lookup := taxonomy.BuildLookup()
	return lookup.Write(path)
}
