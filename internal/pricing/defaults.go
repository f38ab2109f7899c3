package pricing

// defaultRates are pay-as-you-go Linux rates in USD per hour, US East.
// Stand-in data: deployments that need accurate numbers load a price file
// or database table over these.
var defaultRates = map[string]float64{
	// Azure general purpose (Dsv3)
	"Standard_D2s_v3":  0.1536,
	"Standard_D4s_v3":  0.3072,
	"Standard_D8s_v3":  0.6144,
	"Standard_D16s_v3": 1.2288,
	"Standard_D32s_v3": 2.4576,
	"Standard_D64s_v3": 4.9152,

	// Azure memory optimized (Esv3)
	"Standard_E2s_v3":  0.1536,
	"Standard_E4s_v3":  0.3072,
	"Standard_E8s_v3":  0.6144,
	"Standard_E16s_v3": 1.2288,
	"Standard_E32s_v3": 2.4576,
	"Standard_E64s_v3": 4.9152,

	// Azure compute optimized (Fsv2)
	"Standard_F2s_v2":  0.1,
	"Standard_F4s_v2":  0.2,
	"Standard_F8s_v2":  0.4,
	"Standard_F16s_v2": 0.8,
	"Standard_F32s_v2": 1.6,
	"Standard_F64s_v2": 3.2,

	// Azure burstable (B-series)
	"Standard_B1s":   0.012,
	"Standard_B1ms":  0.0218,
	"Standard_B2s":   0.0436,
	"Standard_B2ms":  0.0832,
	"Standard_B4ms":  0.166,
	"Standard_B8ms":  0.333,
	"Standard_B12ms": 0.499,
	"Standard_B16ms": 0.666,
	"Standard_B20ms": 0.832,

	// AWS burstable (t3)
	"t3.nano":    0.0052,
	"t3.micro":   0.0104,
	"t3.small":   0.0208,
	"t3.medium":  0.0416,
	"t3.large":   0.0832,
	"t3.xlarge":  0.1664,
	"t3.2xlarge": 0.3328,

	// AWS general purpose (m5)
	"m5.large":    0.096,
	"m5.xlarge":   0.192,
	"m5.2xlarge":  0.384,
	"m5.4xlarge":  0.768,
	"m5.8xlarge":  1.536,
	"m5.12xlarge": 2.304,
	"m5.16xlarge": 3.072,
	"m5.24xlarge": 4.608,

	// AWS compute optimized (c5)
	"c5.large":    0.085,
	"c5.xlarge":   0.17,
	"c5.2xlarge":  0.34,
	"c5.4xlarge":  0.68,
	"c5.9xlarge":  1.53,
	"c5.12xlarge": 2.04,
	"c5.18xlarge": 3.06,
	"c5.24xlarge": 4.08,

	// AWS memory optimized (r5)
	"r5.large":    0.126,
	"r5.xlarge":   0.252,
	"r5.2xlarge":  0.504,
	"r5.4xlarge":  1.008,
	"r5.8xlarge":  2.016,
	"r5.12xlarge": 3.024,
	"r5.16xlarge": 4.032,
	"r5.24xlarge": 6.048,
}

// DefaultCatalog returns a catalog seeded with the built-in rate table.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultRates)
}
