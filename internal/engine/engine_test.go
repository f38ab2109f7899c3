package engine

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/pricing"
	"github.com/costpilot/backend/internal/sizing"
)

func testConfig() Config {
	return Config{
		IdleThreshold:          1.0,
		UnderutilizedThreshold: 5.0,
		HighConfidenceRatio:    0.5,
		MinGroupSize:           2,
		LongTermMinCount:       6,
		OneYearDiscount:        0.35,
		ThreeYearDiscount:      0.60,
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testConfig(), pricing.DefaultCatalog(), sizing.DefaultAdvisor(5.0), logger)
}

func vm(id, size, region string, avgCPU float64) (model.ComputeResource, model.UtilizationSample) {
	res := model.ComputeResource{
		ID:         id,
		Name:       id,
		Provider:   model.CloudProviderAzure,
		OwnerScope: "sub-1",
		Region:     region,
		Size:       size,
		PowerState: model.PowerStateRunning,
	}
	return res, model.UtilizationSample{ResourceID: id, AvgCPU: avgCPU, WindowDays: 30}
}

func snapshot(resources []model.ComputeResource, samples ...model.UtilizationSample) *model.Snapshot {
	snap := &model.Snapshot{
		TakenAt:     time.Now(),
		Resources:   resources,
		Utilization: make(map[string]model.UtilizationSample),
	}
	for _, s := range samples {
		snap.Utilization[s.ResourceID] = s
	}
	return snap
}

func recsOfType(recs []model.Recommendation, typ model.RecommendationType) []model.Recommendation {
	var out []model.Recommendation
	for _, r := range recs {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// A lone D4s_v3 at 2.0% CPU gets exactly one recommendation: rightsize to
// D2s_v3 at high confidence, saving the price delta times 720 hours.
func TestUnderutilizedSingleResource(t *testing.T) {
	res, sample := vm("vm-1", "Standard_D4s_v3", "eastus", 2.0)
	recs := testEngine(t).Generate(snapshot([]model.ComputeResource{res}, sample))

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Type != model.RecommendationTypeRightsize {
		t.Errorf("expected rightsize, got %s", rec.Type)
	}
	if got := rec.RecommendedState["size"]; got != "Standard_D2s_v3" {
		t.Errorf("expected recommended size Standard_D2s_v3, got %v", got)
	}
	// (0.3072 - 0.1536) * 720
	if !approxEqual(rec.EstimatedMonthlySavings, 110.592) {
		t.Errorf("expected savings 110.592, got %f", rec.EstimatedMonthlySavings)
	}
	// 2.0 < 5.0 * 0.5
	if rec.Confidence != model.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", rec.Confidence)
	}
}

// An idle resource gets both a rightsize and a stop-idle recommendation,
// with stop-idle claiming the full monthly cost and sorting first.
func TestIdleResourceGetsBothRecommendations(t *testing.T) {
	res, sample := vm("vm-1", "Standard_D4s_v3", "eastus", 0.5)
	recs := testEngine(t).Generate(snapshot([]model.ComputeResource{res}, sample))

	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}

	stop := recsOfType(recs, model.RecommendationTypeStopIdle)
	if len(stop) != 1 {
		t.Fatalf("expected 1 stop_idle recommendation, got %d", len(stop))
	}
	// 0.3072 * 720
	if !approxEqual(stop[0].EstimatedMonthlySavings, 221.184) {
		t.Errorf("expected stop_idle savings 221.184, got %f", stop[0].EstimatedMonthlySavings)
	}
	// 0.5 is not strictly below 1.0 * 0.5
	if stop[0].Confidence != model.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", stop[0].Confidence)
	}

	rightsize := recsOfType(recs, model.RecommendationTypeRightsize)
	if len(rightsize) != 1 {
		t.Fatalf("expected 1 rightsize recommendation, got %d", len(rightsize))
	}
	if rightsize[0].Confidence != model.ConfidenceHigh {
		t.Errorf("expected high confidence rightsize, got %s", rightsize[0].Confidence)
	}

	// Stop-idle saves more, so it sorts first.
	if recs[0].Type != model.RecommendationTypeStopIdle {
		t.Errorf("expected stop_idle first, got %s", recs[0].Type)
	}
}

// Five well-utilized E2s_v3 instances in one region trigger a single 1-year
// reserved-capacity recommendation at medium confidence.
func TestReservedCapacityOneYear(t *testing.T) {
	var resources []model.ComputeResource
	var samples []model.UtilizationSample
	for _, id := range []string{"vm-1", "vm-2", "vm-3", "vm-4", "vm-5"} {
		res, sample := vm(id, "Standard_E2s_v3", "westus", 50.0)
		resources = append(resources, res)
		samples = append(samples, sample)
	}
	recs := testEngine(t).Generate(snapshot(resources, samples...))

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Type != model.RecommendationTypeReservedCapacity {
		t.Fatalf("expected purchase_reserved_capacity, got %s", rec.Type)
	}
	if got := rec.RecommendedState["term"]; got != "1-year" {
		t.Errorf("expected 1-year term, got %v", got)
	}
	if rec.Confidence != model.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", rec.Confidence)
	}
	// 0.1536 * 720 * 5 * 0.35
	if !approxEqual(rec.EstimatedMonthlySavings, 193.536) {
		t.Errorf("expected savings 193.536, got %f", rec.EstimatedMonthlySavings)
	}
}

// A sixth instance tips the fleet into a 3-year term at the deeper discount
// and high confidence.
func TestReservedCapacityThreeYear(t *testing.T) {
	var resources []model.ComputeResource
	var samples []model.UtilizationSample
	for _, id := range []string{"vm-1", "vm-2", "vm-3", "vm-4", "vm-5", "vm-6"} {
		res, sample := vm(id, "Standard_E2s_v3", "westus", 50.0)
		resources = append(resources, res)
		samples = append(samples, sample)
	}
	recs := testEngine(t).Generate(snapshot(resources, samples...))

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	rec := recs[0]
	if got := rec.RecommendedState["term"]; got != "3-year" {
		t.Errorf("expected 3-year term, got %v", got)
	}
	if rec.Confidence != model.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", rec.Confidence)
	}
	// 0.1536 * 720 * 6 * 0.60
	if !approxEqual(rec.EstimatedMonthlySavings, 398.1312) {
		t.Errorf("expected savings 398.1312, got %f", rec.EstimatedMonthlySavings)
	}
}

// A size missing from the pricing catalog suppresses every recommendation
// that would depend on its price, rather than emitting zero-savings entries.
func TestUnknownSizeSuppressesRecommendations(t *testing.T) {
	resources := make([]model.ComputeResource, 0, 2)
	samples := make([]model.UtilizationSample, 0, 2)
	for _, id := range []string{"vm-1", "vm-2"} {
		res, sample := vm(id, "Standard_X99_v9", "eastus", 0.2)
		resources = append(resources, res)
		samples = append(samples, sample)
	}
	recs := testEngine(t).Generate(snapshot(resources, samples...))

	if len(recs) != 0 {
		t.Fatalf("expected no recommendations for unpriced size, got %d: %+v", len(recs), recs)
	}
}

func TestStoppedResourcesIgnored(t *testing.T) {
	res, sample := vm("vm-1", "Standard_D4s_v3", "eastus", 0.2)
	res.PowerState = model.PowerStateDeallocated
	other, otherSample := vm("vm-2", "Standard_D4s_v3", "eastus", 0.2)
	other.PowerState = model.PowerStateStopped

	recs := testEngine(t).Generate(snapshot(
		[]model.ComputeResource{res, other}, sample, otherSample))
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations for stopped resources, got %d", len(recs))
	}
}

// A resource without a utilization sample is skipped by the rightsizing and
// idle analyzers but still counts toward reserved-capacity fleets.
func TestUnsampledResourceOnlyEligibleForReservation(t *testing.T) {
	a, _ := vm("vm-1", "Standard_E2s_v3", "westus", 0)
	b, bSample := vm("vm-2", "Standard_E2s_v3", "westus", 60.0)

	recs := testEngine(t).Generate(snapshot([]model.ComputeResource{a, b}, bSample))

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Type != model.RecommendationTypeReservedCapacity {
		t.Errorf("expected purchase_reserved_capacity, got %s", recs[0].Type)
	}
	if got := recs[0].CurrentState["instance_count"]; got != 2 {
		t.Errorf("expected fleet of 2, got %v", got)
	}
}

func TestReservedGroupsSplitByRegion(t *testing.T) {
	a, aSample := vm("vm-1", "Standard_E2s_v3", "westus", 40.0)
	b, bSample := vm("vm-2", "Standard_E2s_v3", "eastus", 40.0)

	recs := testEngine(t).Generate(snapshot([]model.ComputeResource{a, b}, aSample, bSample))
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations for single-instance regions, got %d", len(recs))
	}
}

func TestSortedBySavingsDescending(t *testing.T) {
	big, bigSample := vm("vm-big", "Standard_D8s_v3", "eastus", 0.2)
	mid, midSample := vm("vm-mid", "Standard_D4s_v3", "eastus", 3.0)
	small, smallSample := vm("vm-small", "Standard_B2s", "eastus", 3.0)

	recs := testEngine(t).Generate(snapshot(
		[]model.ComputeResource{small, mid, big},
		smallSample, midSample, bigSample))

	if len(recs) < 3 {
		t.Fatalf("expected at least 3 recommendations, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].EstimatedMonthlySavings > recs[i-1].EstimatedMonthlySavings {
			t.Errorf("recommendations out of order at %d: %f > %f",
				i, recs[i].EstimatedMonthlySavings, recs[i-1].EstimatedMonthlySavings)
		}
	}
	for _, rec := range recs {
		if rec.EstimatedMonthlySavings <= 0 {
			t.Errorf("non-positive savings emitted: %+v", rec)
		}
	}
}

// Identical snapshots must yield identical output, including tie order.
func TestGenerateDeterministic(t *testing.T) {
	var resources []model.ComputeResource
	var samples []model.UtilizationSample
	for _, id := range []string{"vm-a", "vm-b", "vm-c", "vm-d"} {
		res, sample := vm(id, "Standard_D2s_v3", "eastus", 0.4)
		resources = append(resources, res)
		samples = append(samples, sample)
	}
	eng := testEngine(t)

	first := eng.Generate(snapshot(resources, samples...))
	for i := 0; i < 10; i++ {
		again := eng.Generate(snapshot(resources, samples...))
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d != %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].ResourceID != first[j].ResourceID || again[j].Type != first[j].Type {
				t.Fatalf("run %d: position %d differs: %s/%s != %s/%s",
					i, j, again[j].ResourceID, again[j].Type,
					first[j].ResourceID, first[j].Type)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		avgCPU float64
		idle   float64
		under  float64
		want   UtilizationBand
	}{
		{"well below idle", 0.2, 1.0, 5.0, BandIdle},
		{"at idle threshold", 1.0, 1.0, 5.0, BandUnderutilized},
		{"between thresholds", 3.0, 1.0, 5.0, BandUnderutilized},
		{"at underutilized threshold", 5.0, 1.0, 5.0, BandRightSized},
		{"above thresholds", 60.0, 1.0, 5.0, BandRightSized},
		{"idle clamped to underutilized", 4.0, 10.0, 5.0, BandIdle},
		{"clamped boundary", 5.0, 10.0, 5.0, BandRightSized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.avgCPU, tt.idle, tt.under); got != tt.want {
				t.Errorf("Classify(%v, %v, %v) = %v, want %v",
					tt.avgCPU, tt.idle, tt.under, got, tt.want)
			}
		})
	}
}

// Every idle reading must also qualify as a rightsizing candidate, even with
// an inverted threshold configuration.
func TestIdleImpliesUnderutilized(t *testing.T) {
	for _, cpu := range []float64{0, 0.3, 0.9, 2.0, 4.9, 5.0, 80.0} {
		band := Classify(cpu, 10.0, 5.0)
		if band == BandIdle && cpu >= 5.0 {
			t.Errorf("cpu %v classified idle above the underutilized bound", cpu)
		}
	}
}

func TestRightsizeMediumConfidenceNearThreshold(t *testing.T) {
	res, sample := vm("vm-1", "Standard_D4s_v3", "eastus", 4.0)
	recs := testEngine(t).Generate(snapshot([]model.ComputeResource{res}, sample))

	rightsize := recsOfType(recs, model.RecommendationTypeRightsize)
	if len(rightsize) != 1 {
		t.Fatalf("expected 1 rightsize recommendation, got %d", len(rightsize))
	}
	// 4.0 >= 5.0 * 0.5
	if rightsize[0].Confidence != model.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", rightsize[0].Confidence)
	}
}

func TestSmallestRungNotDownsized(t *testing.T) {
	res, sample := vm("vm-1", "Standard_D2s_v3", "eastus", 2.0)
	recs := testEngine(t).Generate(snapshot([]model.ComputeResource{res}, sample))

	if len(recsOfType(recs, model.RecommendationTypeRightsize)) != 0 {
		t.Error("smallest ladder rung should not be downsized")
	}
}

func TestEmptySnapshot(t *testing.T) {
	recs := testEngine(t).Generate(snapshot(nil))
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations for empty snapshot, got %d", len(recs))
	}
}
