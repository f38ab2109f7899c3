package sizing

// DefaultLadders covers the size families the reference estate runs:
// Azure Dsv3/Esv3/Fsv2/B-series and AWS t3/m5/c5/r5. Each ladder is
// ordered smallest to largest.
func DefaultLadders() map[string][]string {
	return map[string][]string{
		"azure-dsv3": {
			"Standard_D2s_v3", "Standard_D4s_v3",
			"Standard_D8s_v3", "Standard_D16s_v3", "Standard_D32s_v3",
			"Standard_D64s_v3",
		},
		"azure-esv3": {
			"Standard_E2s_v3", "Standard_E4s_v3",
			"Standard_E8s_v3", "Standard_E16s_v3", "Standard_E32s_v3",
			"Standard_E64s_v3",
		},
		"azure-fsv2": {
			"Standard_F2s_v2", "Standard_F4s_v2",
			"Standard_F8s_v2", "Standard_F16s_v2", "Standard_F32s_v2",
			"Standard_F64s_v2",
		},
		"azure-bs": {
			"Standard_B1s", "Standard_B2s",
		},
		"azure-bms": {
			"Standard_B1ms", "Standard_B2ms", "Standard_B4ms",
			"Standard_B8ms", "Standard_B12ms", "Standard_B16ms",
			"Standard_B20ms",
		},
		"aws-t3": {
			"t3.nano", "t3.micro", "t3.small", "t3.medium",
			"t3.large", "t3.xlarge", "t3.2xlarge",
		},
		"aws-m5": {
			"m5.large", "m5.xlarge", "m5.2xlarge", "m5.4xlarge",
			"m5.8xlarge", "m5.12xlarge", "m5.16xlarge", "m5.24xlarge",
		},
		"aws-c5": {
			"c5.large", "c5.xlarge", "c5.2xlarge", "c5.4xlarge",
			"c5.9xlarge", "c5.12xlarge", "c5.18xlarge", "c5.24xlarge",
		},
		"aws-r5": {
			"r5.large", "r5.xlarge", "r5.2xlarge", "r5.4xlarge",
			"r5.8xlarge", "r5.12xlarge", "r5.16xlarge", "r5.24xlarge",
		},
	}
}

// DefaultAdvisor returns an advisor over DefaultLadders.
func DefaultAdvisor(threshold float64) *Advisor {
	return NewAdvisor(threshold, DefaultLadders())
}
