// Package configurator walks a visitor through the five steps of a custom
// knife order and turns the result into one cart line.
package configurator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"knife-atelier/internal/cart"
)

// Customization labels and their fallbacks on a committed item.
const (
	LabelModel           = "Modèle"
	LabelWood            = "Bois"
	LabelEngraving       = "Guillochage"
	LabelBladeEngraving  = "Gravure lame"
	LabelHandleEngraving = "Gravure manche"
	LabelOtherDetails    = "Autres détails"

	fallbackModel     = "Personnalisé"
	fallbackWood      = "Non spécifié"
	fallbackEngraving = "Aucune"
	fallbackText      = "Aucune"
	fallbackDetails   = "Aucun"
)

// CartAdder receives the committed item.
type CartAdder interface {
	AddItem(ctx context.Context, c cart.Candidate)
}

// Transition is the outcome of Next or Previous.
type Transition int

const (
	Stayed Transition = iota
	Advanced
	Retreated
	Exited
)

func (t Transition) String() string {
	switch t {
	case Advanced:
		return "advanced"
	case Retreated:
		return "retreated"
	case Exited:
		return "exited"
	default:
		return "stayed"
	}
}

type Option func(*Wizard)

// WithClock replaces the clock used for committed item ids.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// WithIDSuffix replaces the random suffix of committed item ids.
func WithIDSuffix(fn func() string) Option {
	return func(w *Wizard) { w.idSuffix = fn }
}

// State is a read-only view of the wizard for rendering.
type State struct {
	Step       Step               `json:"step"`
	Selection  Selection          `json:"selection"`
	Filters    map[Step]string    `json:"filters"`
	CanAdvance bool               `json:"canAdvance"`
	Loads      map[Step]LoadState `json:"loads"`
	Summary    string             `json:"summary,omitempty"`
	Closed     bool               `json:"closed"`
}

type Wizard struct {
	mu         sync.Mutex
	step       Step
	sel        Selection
	filters    map[Step]string
	options    Options
	loads      map[Step]LoadState
	generation uint64
	closed     bool
	committed  *cart.Candidate

	cart     CartAdder
	pricing  PricingConfig
	logger   *zap.Logger
	now      func() time.Time
	idSuffix func() string
}

func New(cartAdder CartAdder, pricing PricingConfig, logger *zap.Logger, opts ...Option) *Wizard {
	w := &Wizard{
		step:    StepModel,
		filters: make(map[Step]string),
		loads:   make(map[Step]LoadState),
		cart:    cartAdder,
		pricing: pricing,
		logger:  logger,
		now:     time.Now,
		idSuffix: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		},
	}
	for _, step := range []Step{StepModel, StepWood, StepEngraving, StepPersonalize, StepConfirm} {
		w.loads[step] = LoadState{Status: LoadIdle}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	filters := make(map[Step]string, len(w.filters))
	for k, v := range w.filters {
		filters[k] = v
	}
	loads := make(map[Step]LoadState, len(w.loads))
	for k, v := range w.loads {
		loads[k] = v
	}
	return State{
		Step:       w.step,
		Selection:  w.sel,
		Filters:    filters,
		CanAdvance: w.canAdvanceLocked(),
		Loads:      loads,
		Summary:    w.options.Summary,
		Closed:     w.closed,
	}
}

// SelectModel records the model choice. Unknown ids are rejected.
func (w *Wizard) SelectModel(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.findModel(id); !ok {
		return false
	}
	w.sel.ModelID = id
	return true
}

func (w *Wizard) SelectWood(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.findWood(id); !ok {
		return false
	}
	w.sel.WoodID = id
	return true
}

func (w *Wizard) SelectEngraving(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.findEngraving(id); !ok {
		return false
	}
	w.sel.EngravingID = id
	return true
}

// SetField stores a personalization text, trimmed.
func (w *Wizard) SetField(field Field, value string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.set(field, value)
}

// SetFilter sets the search text of one of the three list steps.
func (w *Wizard) SetFilter(step Step, query string) bool {
	if step < StepModel || step > StepEngraving {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filters[step] = query
	return true
}

func (w *Wizard) Models() Filtered[Model] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return FilterModels(w.options.Models, w.filters[StepModel])
}

func (w *Wizard) Woods() Filtered[Wood] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return FilterWoods(w.options.Woods, w.filters[StepWood])
}

func (w *Wizard) Engravings() Filtered[Engraving] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return FilterEngravings(w.options.Engravings, w.filters[StepEngraving])
}

func (w *Wizard) FormFields() []FormField {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]FormField(nil), w.options.FormFields...)
}

func (w *Wizard) Actions() []Action {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Action(nil), w.options.Actions...)
}

// CanAdvance reports whether Next would leave the current step.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canAdvanceLocked()
}

// A selection pointing at an option missing from the current set counts as absent.
func (w *Wizard) canAdvanceLocked() bool {
	if w.closed {
		return false
	}
	switch w.step {
	case StepModel:
		_, ok := w.findModel(w.sel.ModelID)
		return ok
	case StepWood:
		_, ok := w.findWood(w.sel.WoodID)
		return ok
	case StepEngraving:
		_, ok := w.findEngraving(w.sel.EngravingID)
		return ok
	case StepPersonalize:
		return w.sel.Email != ""
	default:
		return false
	}
}

// Next moves one step forward when the current step is complete.
// Leaving the personalization step commits the configured knife to the cart.
func (w *Wizard) Next(ctx context.Context) Transition {
	w.mu.Lock()
	if !w.canAdvanceLocked() {
		step := w.step
		w.mu.Unlock()
		w.logger.Debug("Wizard guard not satisfied", zap.Stringer("step", step))
		return Stayed
	}

	var commit *cart.Candidate
	if w.step == StepPersonalize {
		c := w.buildCandidateLocked()
		commit = &c
		w.committed = &c
	}
	w.step++
	w.filters = make(map[Step]string)
	step := w.step
	w.mu.Unlock()

	if commit != nil {
		w.cart.AddItem(ctx, *commit)
		w.logger.Info("Configured knife added to cart",
			zap.String("item_id", commit.ID),
			zap.Any("price", commit.Price))
	}
	w.logger.Debug("Wizard advanced", zap.Stringer("step", step))
	return Advanced
}

// Previous moves one step back. From the first step and from the
// confirmation step it exits the wizard instead.
func (w *Wizard) Previous() Transition {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.filters = make(map[Step]string)
	if w.step == StepModel || w.step == StepConfirm {
		w.closed = true
		return Exited
	}
	w.step--
	return Retreated
}

// Close abandons the wizard. Option loads still in flight are dropped.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Committed returns the item added to the cart by the last commit.
func (w *Wizard) Committed() (cart.Candidate, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed == nil {
		return cart.Candidate{}, false
	}
	return *w.committed, true
}

// SetOptions replaces every option set at once and marks them ready.
func (w *Wizard) SetOptions(opts Options) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.generation++
	w.options = opts
	for step := range w.loads {
		w.loads[step] = LoadState{Status: LoadReady}
	}
}

// Refresh loads the five option sets concurrently. Each step is applied as
// soon as it arrives, so a failing step leaves the others usable. The
// returned error is the first step failure, if any.
func (w *Wizard) Refresh(ctx context.Context, src OptionSource) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.generation++
	gen := w.generation
	for step := range w.loads {
		w.loads[step] = LoadState{Status: LoadLoading}
	}
	w.mu.Unlock()

	var g errgroup.Group

	g.Go(func() error {
		models, err := src.Models(ctx)
		return w.apply(gen, StepModel, err, func() { w.options.Models = models })
	})
	g.Go(func() error {
		woods, err := src.Woods(ctx)
		return w.apply(gen, StepWood, err, func() { w.options.Woods = woods })
	})
	g.Go(func() error {
		engravings, err := src.Engravings(ctx)
		return w.apply(gen, StepEngraving, err, func() { w.options.Engravings = engravings })
	})
	g.Go(func() error {
		fields, err := src.FormFields(ctx)
		return w.apply(gen, StepPersonalize, err, func() { w.options.FormFields = fields })
	})
	g.Go(func() error {
		actions, summary, err := src.Actions(ctx)
		return w.apply(gen, StepConfirm, err, func() {
			w.options.Actions = actions
			w.options.Summary = summary
		})
	})

	return g.Wait()
}

func (w *Wizard) apply(gen uint64, step Step, err error, set func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || gen != w.generation {
		w.logger.Debug("Discarding stale option load", zap.Stringer("step", step))
		return nil
	}
	if err != nil {
		w.loads[step] = LoadState{Status: LoadFailed, Error: err.Error()}
		w.logger.Warn("Failed to load step options",
			zap.Stringer("step", step),
			zap.Error(err))
		return fmt.Errorf("load %s options: %w", step, err)
	}
	set()
	w.loads[step] = LoadState{Status: LoadReady}
	return nil
}

func (w *Wizard) buildCandidateLocked() cart.Candidate {
	modelName, modelImage := fallbackModel, ""
	if m, ok := w.findModel(w.sel.ModelID); ok {
		modelName = orDefault(m.Name, fallbackModel)
		modelImage = m.Image
	}
	woodName := fallbackWood
	if wd, ok := w.findWood(w.sel.WoodID); ok {
		woodName = orDefault(wd.Name, fallbackWood)
	}
	engravingName := fallbackEngraving
	if e, ok := w.findEngraving(w.sel.EngravingID); ok {
		engravingName = orDefault(e.Name, fallbackEngraving)
	}

	prices := CalculatePrice(w.sel, w.pricing)

	return cart.Candidate{
		ID:          fmt.Sprintf("configured-%d-%s", w.now().UnixMilli(), w.idSuffix()),
		Name:        "Couteau sur mesure - " + modelName,
		Price:       prices["final_price"],
		Description: fmt.Sprintf("Modèle %s, bois %s", modelName, woodName),
		Image:       modelImage,
		Type:        cart.TypeConfigured,
		Customizations: cart.Customizations{
			{Label: LabelModel, Value: modelName},
			{Label: LabelWood, Value: woodName},
			{Label: LabelEngraving, Value: engravingName},
			{Label: LabelBladeEngraving, Value: orDefault(w.sel.BladeEngraving, fallbackText)},
			{Label: LabelHandleEngraving, Value: orDefault(w.sel.HandleEngraving, fallbackText)},
			{Label: LabelOtherDetails, Value: orDefault(w.sel.OtherDetails, fallbackDetails)},
		},
	}
}

func (w *Wizard) findModel(id string) (Model, bool) {
	for _, m := range w.options.Models {
		if id != "" && m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

func (w *Wizard) findWood(id string) (Wood, bool) {
	for _, wd := range w.options.Woods {
		if id != "" && wd.ID == id {
			return wd, true
		}
	}
	return Wood{}, false
}

func (w *Wizard) findEngraving(id string) (Engraving, bool) {
	for _, e := range w.options.Engravings {
		if id != "" && e.ID == id {
			return e, true
		}
	}
	return Engraving{}, false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
