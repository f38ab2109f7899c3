package sizing

import "testing"

func TestRecommendSize(t *testing.T) {
	a := DefaultAdvisor(5.0)

	tests := []struct {
		name    string
		size    string
		avgCPU  float64
		want    string
		wantOK  bool
	}{
		{"downsize within family", "Standard_D4s_v3", 2.0, "Standard_D2s_v3", true},
		{"downsize memory optimized", "Standard_E4s_v3", 4.9, "Standard_E2s_v3", true},
		{"downsize aws", "m5.2xlarge", 1.0, "m5.xlarge", true},
		{"irregular c5 ladder", "c5.12xlarge", 1.0, "c5.9xlarge", true},
		{"smallest rung", "Standard_D2s_v3", 0.5, "", false},
		{"smallest aws rung", "t3.nano", 0.5, "", false},
		{"unknown size", "Standard_Z99s_v9", 0.5, "", false},
		{"utilization at threshold", "Standard_D4s_v3", 5.0, "", false},
		{"utilization above threshold", "Standard_D4s_v3", 42.0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := a.RecommendSize(tt.size, tt.avgCPU)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("RecommendSize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecommendSizeNeverSameSize(t *testing.T) {
	a := DefaultAdvisor(5.0)
	for _, ladder := range DefaultLadders() {
		for _, size := range ladder {
			if got, ok := a.RecommendSize(size, 0.1); ok && got == size {
				t.Errorf("advisor proposed same size %q", size)
			}
		}
	}
}

func TestKnows(t *testing.T) {
	a := DefaultAdvisor(5.0)
	if !a.Knows("Standard_B2ms") {
		t.Error("expected advisor to know Standard_B2ms")
	}
	if a.Knows("x1e.32xlarge") {
		t.Error("did not expect advisor to know x1e.32xlarge")
	}
}

func TestCustomLadders(t *testing.T) {
	a := NewAdvisor(10.0, map[string][]string{
		"custom": {"small", "medium", "large"},
	})

	if got, ok := a.RecommendSize("large", 3.0); !ok || got != "medium" {
		t.Errorf("RecommendSize(large) = %q,%v, want medium,true", got, ok)
	}
	if _, ok := a.RecommendSize("small", 3.0); ok {
		t.Error("smallest rung must not downsize")
	}
}
