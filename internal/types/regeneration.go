// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ItemType classifies the résumé item a regeneration request targets
type ItemType string

// ItemType constants
const (
	ItemExperience ItemType = "experience"
	ItemProject    ItemType = "project"
	ItemSummary    ItemType = "summary"
	ItemSkillBlock ItemType = "skillBlock"
)

// RegenerationRequest asks for one résumé item to be rewritten
type RegenerationRequest struct {
	ItemID         string   `json:"item_id" validate:"required"`
	ItemType       ItemType `json:"item_type" validate:"required,oneof=experience project summary skillBlock"`
	Title          string   `json:"title,omitempty"`
	Subtitle       string   `json:"subtitle,omitempty"`
	CurrentContent []string `json:"current_content"`
}

// Key returns the disambiguation key of the request
func (r RegenerationRequest) Key() ItemKey {
	return ItemKey{ItemID: r.ItemID, ItemType: r.ItemType}
}

// ItemKey is the (itemId, itemType) pair used to deduplicate requests
type ItemKey struct {
	ItemID   string   `json:"item_id"`
	ItemType ItemType `json:"item_type"`
}

// RegenerationResult is the success variant of a regenerated item
type RegenerationResult struct {
	ItemID          string   `json:"item_id"`
	ItemType        ItemType `json:"item_type"`
	OriginalContent []string `json:"original_content"`
	NewContent      []string `json:"new_content"`
	DiffSummary     string   `json:"diff_summary"`
}

// Key returns the disambiguation key of the result
func (r RegenerationResult) Key() ItemKey {
	return ItemKey{ItemID: r.ItemID, ItemType: r.ItemType}
}

// RegenerationError is the failure variant of a regenerated item
type RegenerationError struct {
	ItemID   string   `json:"item_id"`
	ItemType ItemType `json:"item_type"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// Key returns the disambiguation key of the failure
func (e RegenerationError) Key() ItemKey {
	return ItemKey{ItemID: e.ItemID, ItemType: e.ItemType}
}

// RegenerationEnvelope is the partial-success response of a regeneration batch.
// Keys of Results and Errors together equal the deduplicated request keys.
type RegenerationEnvelope struct {
	Results []RegenerationResult `json:"results"`
	Errors  []RegenerationError  `json:"errors"`
}

// Enhancement adds bullets to an existing item without rewriting it
type Enhancement struct {
	ItemID            string   `json:"item_id" validate:"required"`
	ItemType          ItemType `json:"item_type" validate:"required,oneof=experience project"`
	AdditionalBullets []string `json:"additional_bullets"`
}
