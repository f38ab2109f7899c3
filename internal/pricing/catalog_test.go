package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHourlyCost(t *testing.T) {
	c := DefaultCatalog()

	hourly, ok := c.HourlyCost("Standard_D4s_v3", "eastus")
	if !ok {
		t.Fatal("expected price for Standard_D4s_v3")
	}
	if hourly != 0.3072 {
		t.Errorf("HourlyCost = %g, want 0.3072", hourly)
	}
}

func TestHourlyCostUnknownSize(t *testing.T) {
	c := DefaultCatalog()

	hourly, ok := c.HourlyCost("Standard_Z99s_v9", "eastus")
	if ok {
		t.Fatal("expected no price for unknown size")
	}
	if hourly != 0 {
		t.Errorf("missing size reported cost %g, want 0", hourly)
	}
}

func TestMonthlyCost(t *testing.T) {
	c := DefaultCatalog()

	monthly, ok := c.MonthlyCost("Standard_E2s_v3", "eastus")
	if !ok {
		t.Fatal("expected price for Standard_E2s_v3")
	}
	hourly, _ := c.HourlyCost("Standard_E2s_v3", "eastus")
	want := hourly * HoursPerMonth
	if monthly != want {
		t.Errorf("MonthlyCost = %g, want %g", monthly, want)
	}
	if diff := monthly - 110.592; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("MonthlyCost = %g, want about 110.592", monthly)
	}
}

func TestMerge(t *testing.T) {
	c := DefaultCatalog().Merge(map[string]float64{
		"Standard_D2s_v3": 0.2,    // override
		"custom.size":     0.0123, // addition
	})

	if got, _ := c.HourlyCost("Standard_D2s_v3", ""); got != 0.2 {
		t.Errorf("override not applied, got %g", got)
	}
	if got, ok := c.HourlyCost("custom.size", ""); !ok || got != 0.0123 {
		t.Errorf("addition not applied, got %g ok=%v", got, ok)
	}
	// untouched entries survive
	if _, ok := c.HourlyCost("m5.large", ""); !ok {
		t.Error("merge dropped existing entry")
	}
}

func TestCatalogCopiesInput(t *testing.T) {
	rates := map[string]float64{"a.size": 1.0}
	c := NewCatalog(rates)
	rates["a.size"] = 99

	if got, _ := c.HourlyCost("a.size", ""); got != 1.0 {
		t.Errorf("catalog shares caller's map, got %g", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	if err := os.WriteFile(path, []byte(`{"m5.large": 0.09, "m5.xlarge": 0.18}`), 0o644); err != nil {
		t.Fatal(err)
	}

	rates, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if rates["m5.large"] != 0.09 {
		t.Errorf("m5.large = %g, want 0.09", rates["m5.large"])
	}
}

func TestLoadFileRejectsNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	if err := os.WriteFile(path, []byte(`{"m5.large": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for negative rate")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
