// Package sizing proposes smaller instance sizes for underutilized
// resources based on per-family size ladders.
package sizing

// A ladder is an ordered list of sizes within one family, smallest first.
// Families group SKUs of the same purpose (general purpose, memory
// optimized, burstable) by naming convention; a downsize never crosses
// families.

// Advisor maps a current size and observed utilization to a downsize
// proposal. Ladders are injected data so deployments can cover whatever
// SKUs they actually run; sizes absent from every ladder silently produce
// no proposal.
type Advisor struct {
	threshold float64 // percent CPU below which a downsize is eligible

	// position of each size within its ladder
	ladders map[string][]string
	index   map[string]ladderPos
}

type ladderPos struct {
	family string
	rung   int
}

// NewAdvisor creates an advisor from family ladders. Duplicate sizes across
// ladders keep their first position.
func NewAdvisor(threshold float64, ladders map[string][]string) *Advisor {
	a := &Advisor{
		threshold: threshold,
		ladders:   ladders,
		index:     make(map[string]ladderPos),
	}
	for family, sizes := range ladders {
		for rung, size := range sizes {
			if _, ok := a.index[size]; !ok {
				a.index[size] = ladderPos{family: family, rung: rung}
			}
		}
	}
	return a
}

// RecommendSize proposes the next-smaller size in the current size's family
// when average CPU utilization is below the advisor's threshold. It returns
// ok=false when the size is unknown, already the smallest rung, or
// utilization does not justify a downsize. The proposal is always a real,
// distinct size.
func (a *Advisor) RecommendSize(currentSize string, avgCPU float64) (string, bool) {
	if avgCPU >= a.threshold {
		return "", false
	}
	pos, ok := a.index[currentSize]
	if !ok || pos.rung == 0 {
		return "", false
	}
	return a.ladders[pos.family][pos.rung-1], true
}

// Knows reports whether a size appears in any ladder.
func (a *Advisor) Knows(size string) bool {
	_, ok := a.index[size]
	return ok
}
