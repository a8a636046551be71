package configurator

import "strings"

type Step int

const (
	StepModel Step = iota + 1
	StepWood
	StepEngraving
	StepPersonalize
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepModel:
		return "model"
	case StepWood:
		return "wood"
	case StepEngraving:
		return "engraving"
	case StepPersonalize:
		return "personalize"
	case StepConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Field names a free-text input of the personalization step.
type Field string

const (
	FieldBladeEngraving  Field = "blade_engraving"
	FieldHandleEngraving Field = "handle_engraving"
	FieldOtherDetails    Field = "other_details"
	FieldEmail           Field = "email"
)

// PersonalizeFields is the order in which the personalization step asks for input.
var PersonalizeFields = []Field{
	FieldBladeEngraving,
	FieldHandleEngraving,
	FieldOtherDetails,
	FieldEmail,
}

// Selection is what the visitor picked so far.
type Selection struct {
	ModelID         string `json:"selectedModelId,omitempty"`
	WoodID          string `json:"selectedWoodId,omitempty"`
	EngravingID     string `json:"selectedEngravingId,omitempty"`
	BladeEngraving  string `json:"bladeEngraving,omitempty"`
	HandleEngraving string `json:"handleEngraving,omitempty"`
	OtherDetails    string `json:"otherDetails,omitempty"`
	Email           string `json:"email,omitempty"`
}

func (s *Selection) set(field Field, value string) bool {
	value = strings.TrimSpace(value)
	switch field {
	case FieldBladeEngraving:
		s.BladeEngraving = value
	case FieldHandleEngraving:
		s.HandleEngraving = value
	case FieldOtherDetails:
		s.OtherDetails = value
	case FieldEmail:
		s.Email = value
	default:
		return false
	}
	return true
}

// Value returns the text recorded for field.
func (s Selection) Value(field Field) string {
	switch field {
	case FieldBladeEngraving:
		return s.BladeEngraving
	case FieldHandleEngraving:
		return s.HandleEngraving
	case FieldOtherDetails:
		return s.OtherDetails
	case FieldEmail:
		return s.Email
	default:
		return ""
	}
}
