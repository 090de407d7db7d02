// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ItemToEnrich marks a résumé item the analyzer considers weak
type ItemToEnrich struct {
	ItemID         string   `json:"item_id"`
	ItemType       ItemType `json:"item_type"`
	WeaknessReason string   `json:"weakness_reason"`
}

// EnrichmentQuestion is a clarifying question about exactly one item
type EnrichmentQuestion struct {
	ID          string   `json:"question_id"`
	ItemID      string   `json:"item_id"`
	ItemType    ItemType `json:"item_type"`
	Question    string   `json:"question"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// EnrichmentResult is the output of weakness analysis
type EnrichmentResult struct {
	ItemsToEnrich []ItemToEnrich       `json:"items_to_enrich"`
	Questions     []EnrichmentQuestion `json:"questions"`
	Summary       string               `json:"analysis_summary,omitempty"`
}
