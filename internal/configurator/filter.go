package configurator

import "strings"

// ListState tells an empty option source apart from a search with no hits.
type ListState string

const (
	ListOK          ListState = "ok"
	ListEmptySource ListState = "empty_source"
	ListNoMatch     ListState = "no_match"
)

type Filtered[T any] struct {
	Items []T       `json:"items"`
	State ListState `json:"state"`
}

// filterOptions keeps the items where any of the texts contains query,
// ignoring case. The source slice is never modified.
func filterOptions[T any](items []T, query string, texts func(T) []string) Filtered[T] {
	if len(items) == 0 {
		return Filtered[T]{Items: []T{}, State: ListEmptySource}
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return Filtered[T]{Items: append([]T(nil), items...), State: ListOK}
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, text := range texts(item) {
			if strings.Contains(strings.ToLower(text), query) {
				out = append(out, item)
				break
			}
		}
	}

	if len(out) == 0 {
		return Filtered[T]{Items: out, State: ListNoMatch}
	}
	return Filtered[T]{Items: out, State: ListOK}
}

func FilterModels(models []Model, query string) Filtered[Model] {
	return filterOptions(models, query, func(m Model) []string {
		return []string{m.Name, m.Description}
	})
}

func FilterWoods(woods []Wood, query string) Filtered[Wood] {
	return filterOptions(woods, query, func(w Wood) []string {
		return []string{w.Name}
	})
}

func FilterEngravings(engravings []Engraving, query string) Filtered[Engraving] {
	return filterOptions(engravings, query, func(e Engraving) []string {
		return []string{e.Name}
	})
}
