package content

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"knife-atelier/internal/configurator"
	"knife-atelier/pkg/orderedjson"
)

// Each adapter below maps one step's bag into option values. The bag key is
// the option id; members that are not objects are metadata and skipped.
// Nothing here fails: missing data becomes "" or the placeholder image.

func ModelsFromBag(bag json.RawMessage, placeholder string) []configurator.Model {
	var out []configurator.Model
	for _, e := range entries(bag) {
		out = append(out, configurator.Model{
			ID:          e.id,
			Name:        e.text("titlecouteau"),
			Description: e.text("descriptioncouteau"),
			Image:       e.image("imagecouteau", placeholder),
		})
	}
	return out
}

func WoodsFromBag(bag json.RawMessage, placeholder string) []configurator.Wood {
	var out []configurator.Wood
	for _, e := range entries(bag) {
		out = append(out, configurator.Wood{
			ID:    e.id,
			Name:  e.text("titlewood"),
			Image: e.image("imagewood", placeholder),
		})
	}
	return out
}

func EngravingsFromBag(bag json.RawMessage, placeholder string) []configurator.Engraving {
	var out []configurator.Engraving
	for _, e := range entries(bag) {
		out = append(out, configurator.Engraving{
			ID:          e.id,
			Name:        e.text("NomGuillochage"),
			PatternText: e.text("textGuillochage"),
			Image:       e.image("imageGuillochage", placeholder),
		})
	}
	return out
}

func FormFieldsFromBag(bag json.RawMessage) []configurator.FormField {
	var out []configurator.FormField
	for _, e := range entries(bag) {
		fieldType := e.text("type")
		if fieldType == "" {
			fieldType = "text"
		}
		out = append(out, configurator.FormField{
			ID:          e.id,
			Label:       e.text("label"),
			Placeholder: e.text("placeholder"),
			Type:        fieldType,
			Required:    e.flag("required"),
		})
	}
	return out
}

// ActionsFromBag also returns the confirmation text kept under "resume" or "summary".
func ActionsFromBag(bag json.RawMessage) ([]configurator.Action, string) {
	var (
		out     []configurator.Action
		summary string
	)

	fields, err := orderedjson.Fields(bag)
	if err != nil {
		return nil, ""
	}
	for _, f := range fields {
		if (f.Key == "resume" || f.Key == "summary") && summary == "" {
			summary = scalarText(f.Value)
		}
	}

	for _, e := range entries(bag) {
		target := e.text("lien")
		if target == "" {
			target = e.text("url")
		}
		out = append(out, configurator.Action{
			ID:        e.id,
			Label:     e.text("label"),
			TargetURL: target,
			Kind:      e.text("type"),
		})
	}
	return out, summary
}

type entry struct {
	id     string
	fields map[string]json.RawMessage
}

func entries(bag json.RawMessage) []entry {
	fields, err := orderedjson.Fields(bag)
	if err != nil {
		return nil
	}

	out := make([]entry, 0, len(fields))
	for _, f := range fields {
		if !isObject(f.Value) {
			continue
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(f.Value, &m); err != nil {
			continue
		}
		out = append(out, entry{id: f.Key, fields: m})
	}
	return out
}

func (e entry) text(key string) string {
	return scalarText(e.fields[key])
}

func (e entry) image(key, placeholder string) string {
	raw := e.fields[key]
	if s := scalarText(raw); s != "" && isString(raw) {
		return s
	}
	if isObject(raw) {
		var img struct {
			URL json.RawMessage `json:"url"`
		}
		if err := json.Unmarshal(raw, &img); err == nil && isString(img.URL) {
			if url := scalarText(img.URL); url != "" {
				return url
			}
		}
	}
	return placeholder
}

func (e entry) flag(key string) bool {
	raw := e.fields[key]
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch strings.ToLower(scalarText(raw)) {
	case "1", "true", "oui", "yes":
		return true
	}
	return false
}

// scalarText reads strings as-is and numbers as written. Anything else is "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return n.String()
		}
	}
	return ""
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}
