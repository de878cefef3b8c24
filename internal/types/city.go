package types

import "encoding/json"

// SkipReason explains why a page contributed no city name.
type SkipReason string

const (
	SkipMissingProperty     SkipReason = "missing_property"
	SkipUnsupportedProperty SkipReason = "unsupported_property"
	SkipMalformedProperty   SkipReason = "malformed_property"
	SkipEmptyName           SkipReason = "empty_name"
)

// SkippedCity describes a page dropped from the city list.
type SkippedCity struct {
	PageID   string          `json:"page_id"`
	Reason   SkipReason      `json:"reason"`
	Property json.RawMessage `json:"property,omitempty"`
}
