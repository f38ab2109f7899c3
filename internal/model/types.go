// Package model contains the core domain entities for CostPilot.
package model

// CloudProvider represents supported cloud providers.
type CloudProvider string

const (
	CloudProviderAWS   CloudProvider = "aws"
	CloudProviderAzure CloudProvider = "azure"
)

// Currency represents monetary currency codes.
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// Confidence indicates how safe a recommendation is considered to act on.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Tags represents key-value resource metadata.
type Tags map[string]string
