// Package pricing provides the on-demand price catalog used for savings
// estimates. The catalog is injected data: a built-in default table, an
// optional JSON file override, and an optional database source are merged at
// startup so the engine's arithmetic stays independent of price drift.
package pricing

// HoursPerMonth converts an hourly rate into the monthly on-demand
// equivalent used throughout savings math (30-day month).
const HoursPerMonth = 24 * 30

// Catalog resolves hourly on-demand cost per (size, region). Lookups that
// miss return ok=false; callers must treat a missing price as insufficient
// data, never as a free resource.
type Catalog struct {
	// rates keyed by size. The reference data is flat across regions;
	// the region parameter exists so a source that does vary by region
	// can be dropped in without changing callers.
	rates map[string]float64
}

// NewCatalog creates a catalog from a size -> hourly USD table. The map is
// copied; the catalog is immutable and safe for concurrent readers.
func NewCatalog(rates map[string]float64) *Catalog {
	c := &Catalog{rates: make(map[string]float64, len(rates))}
	for size, rate := range rates {
		c.rates[size] = rate
	}
	return c
}

// Merge returns a new catalog with overrides applied on top of c.
func (c *Catalog) Merge(overrides map[string]float64) *Catalog {
	merged := make(map[string]float64, len(c.rates)+len(overrides))
	for size, rate := range c.rates {
		merged[size] = rate
	}
	for size, rate := range overrides {
		merged[size] = rate
	}
	return NewCatalog(merged)
}

// HourlyCost returns the on-demand hourly cost for a size in a region.
func (c *Catalog) HourlyCost(size, region string) (float64, bool) {
	rate, ok := c.rates[size]
	return rate, ok
}

// MonthlyCost returns the monthly on-demand equivalent for a size.
func (c *Catalog) MonthlyCost(size, region string) (float64, bool) {
	rate, ok := c.HourlyCost(size, region)
	return rate * HoursPerMonth, ok
}

// Len reports the number of priced sizes.
func (c *Catalog) Len() int {
	return len(c.rates)
}
