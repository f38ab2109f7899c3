package pricing

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON price table of the form {"size": hourlyUSD, ...}.
func LoadFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing: read %s: %w", path, err)
	}

	var rates map[string]float64
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("pricing: parse %s: %w", path, err)
	}

	for size, rate := range rates {
		if rate < 0 {
			return nil, fmt.Errorf("pricing: negative rate %g for size %q in %s", rate, size, path)
		}
	}
	return rates, nil
}
