package cart

import (
	"bytes"
	"encoding/json"

	"knife-atelier/pkg/orderedjson"
)

type ItemType string

const (
	TypeKnife      ItemType = "knife"
	TypeConfigured ItemType = "configured"
	TypeService    ItemType = "service"
)

// normalized maps anything outside the known types to TypeKnife.
func (t ItemType) normalized() ItemType {
	switch t {
	case TypeKnife, TypeConfigured, TypeService:
		return t
	default:
		return TypeKnife
	}
}

// Item is one cart line. Price is already normalized; Quantity is at least 1.
type Item struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Description    string         `json:"description"`
	Image          string         `json:"image"`
	Quantity       int            `json:"quantity"`
	Type           ItemType       `json:"type"`
	Customizations Customizations `json:"customizations,omitempty"`
}

// Subtotal is Price times Quantity.
func (i Item) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Candidate is an item on its way into the cart. Price is whatever the catalog
// gave us: a number, a formatted string such as "12,50 €", or nothing.
type Candidate struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Price          any            `json:"price"`
	Description    string         `json:"description"`
	Image          string         `json:"image"`
	Type           ItemType       `json:"type"`
	Customizations Customizations `json:"customizations,omitempty"`
}

type Customization struct {
	Label string
	Value string
}

// Customizations is an ordered label -> value list, encoded as a JSON object
// whose member order is the list order.
type Customizations []Customization

func (c Customizations) MarshalJSON() ([]byte, error) {
	fields := make([]orderedjson.Field, 0, len(c))
	for _, entry := range c {
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, orderedjson.Field{Key: entry.Label, Value: value})
	}
	return orderedjson.Encode(fields)
}

func (c *Customizations) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	fields, err := orderedjson.Fields(data)
	if err != nil {
		return err
	}

	out := make(Customizations, 0, len(fields))
	for _, f := range fields {
		var value string
		if err := json.Unmarshal(f.Value, &value); err != nil {
			// numbers and booleans from older snapshots
			value = string(f.Value)
		}
		out = append(out, Customization{Label: f.Key, Value: value})
	}
	*c = out
	return nil
}

// Get returns the value recorded under label.
func (c Customizations) Get(label string) (string, bool) {
	for _, entry := range c {
		if entry.Label == label {
			return entry.Value, true
		}
	}
	return "", false
}

func (c Customizations) clone() Customizations {
	if c == nil {
		return nil
	}
	return append(Customizations(nil), c...)
}
