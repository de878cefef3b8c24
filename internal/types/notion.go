package types

import (
	"encoding/json"
	"fmt"
)

// PropertyKind is the "type" discriminator Notion sends with every property.
type PropertyKind string

const (
	PropertyKindTitle    PropertyKind = "title"
	PropertyKindRichText PropertyKind = "rich_text"
)

// RichText is one text segment of a title or rich_text property.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// PropertyValue is implemented by TitleValue, RichTextValue and
// UnsupportedValue only.
type PropertyValue interface {
	Kind() PropertyKind
	isPropertyValue()
}

type TitleValue struct {
	Segments []RichText
}

type RichTextValue struct {
	Segments []RichText
}

// UnsupportedValue holds any property kind the proxy does not interpret.
type UnsupportedValue struct {
	Type PropertyKind
}

func (TitleValue) Kind() PropertyKind { return PropertyKindTitle }

func (RichTextValue) Kind() PropertyKind { return PropertyKindRichText }

func (v UnsupportedValue) Kind() PropertyKind { return v.Type }

func (TitleValue) isPropertyValue() {}

func (RichTextValue) isPropertyValue() {}

func (UnsupportedValue) isPropertyValue() {}

// Property is a single named property of a page. Raw keeps the payload as
// received for diagnostics.
type Property struct {
	ID    string
	Value PropertyValue
	Raw   json.RawMessage
}

func (p *Property) UnmarshalJSON(data []byte) error {
	var head struct {
		ID   string       `json:"id"`
		Type PropertyKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode property: %w", err)
	}

	p.ID = head.ID
	p.Raw = append(p.Raw[:0], data...)
	switch head.Type {
	case PropertyKindTitle:
		var body struct {
			Title []RichText `json:"title"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("decode title property: %w", err)
		}
		p.Value = TitleValue{Segments: body.Title}
	case PropertyKindRichText:
		var body struct {
			RichText []RichText `json:"rich_text"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("decode rich_text property: %w", err)
		}
		p.Value = RichTextValue{Segments: body.RichText}
	default:
		p.Value = UnsupportedValue{Type: head.Type}
	}
	return nil
}

// Page is a database row as returned by the query endpoint. Properties stay
// undecoded so a malformed column only affects the page that reads it.
type Page struct {
	Object     string                     `json:"object"`
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Property decodes the named property. ok is false when the page has none.
func (pg Page) Property(name string) (Property, bool, error) {
	raw, ok := pg.Properties[name]
	if !ok {
		return Property{}, false, nil
	}
	var prop Property
	if err := json.Unmarshal(raw, &prop); err != nil {
		return Property{Raw: raw}, true, err
	}
	return prop, true, nil
}

// QueryDatabaseResponse is the body of POST /v1/databases/{id}/query.
type QueryDatabaseResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryDatabaseRequest is the query body. The zero value encodes as {}.
type QueryDatabaseRequest struct {
	Filter      json.RawMessage `json:"filter,omitempty"`
	Sorts       json.RawMessage `json:"sorts,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size,omitempty"`
}

// ErrorResponse is the JSON error object Notion returns with non-2xx statuses.
type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
