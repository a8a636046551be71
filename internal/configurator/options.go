package configurator

import "context"

type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Wood struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Engraving struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PatternText string `json:"patternText"`
	Image       string `json:"image"`
}

type FormField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
}

type Action struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TargetURL string `json:"targetUrl"`
	Kind      string `json:"kind"`
}

// Options holds the option set of every step.
type Options struct {
	Models     []Model     `json:"models"`
	Woods      []Wood      `json:"woods"`
	Engravings []Engraving `json:"engravings"`
	FormFields []FormField `json:"formFields"`
	Actions    []Action    `json:"actions"`
	Summary    string      `json:"summary,omitempty"`
}

// OptionSource supplies step option sets. Each call is independent so one
// failing step does not hide the others.
type OptionSource interface {
	Models(ctx context.Context) ([]Model, error)
	Woods(ctx context.Context) ([]Wood, error)
	Engravings(ctx context.Context) ([]Engraving, error)
	FormFields(ctx context.Context) ([]FormField, error)
	Actions(ctx context.Context) (actions []Action, summary string, err error)
}

type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadLoading LoadStatus = "loading"
	LoadReady   LoadStatus = "ready"
	LoadFailed  LoadStatus = "failed"
)

type LoadState struct {
	Status LoadStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}
