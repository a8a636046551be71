package configurator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/storage"
)

type recordingCart struct {
	added []cart.Candidate
}

func (r *recordingCart) AddItem(_ context.Context, c cart.Candidate) {
	r.added = append(r.added, c)
}

func testOptions() Options {
	return Options{
		Models: []Model{
			{ID: "chef", Name: "Chef", Description: "Lame de 21 cm", Image: "chef.jpg"},
			{ID: "office", Name: "Office", Description: "Petit couteau polyvalent", Image: "office.jpg"},
		},
		Woods: []Wood{
			{ID: "noyer", Name: "Noyer"},
			{ID: "chene", Name: "Chêne"},
		},
		Engravings: []Engraving{
			{ID: "vague", Name: "Vague", PatternText: "Motif en vagues"},
		},
		FormFields: []FormField{{ID: "email", Label: "Email", Type: "email", Required: true}},
	}
}

func newTestWizard(t *testing.T, adder CartAdder) *Wizard {
	t.Helper()
	w := New(adder, DefaultPricing(), zap.NewNop(),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		WithIDSuffix(func() string { return "abcd1234" }),
	)
	w.SetOptions(testOptions())
	return w
}

func walkToPersonalize(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()
	require.True(t, w.SelectModel("chef"))
	require.Equal(t, Advanced, w.Next(ctx))
	require.True(t, w.SelectWood("noyer"))
	require.Equal(t, Advanced, w.Next(ctx))
	require.True(t, w.SelectEngraving("vague"))
	require.Equal(t, Advanced, w.Next(ctx))
	require.Equal(t, StepPersonalize, w.Step())
}

func TestNextWithoutModelStays(t *testing.T) {
	w := newTestWizard(t, &recordingCart{})

	assert.False(t, w.CanAdvance())
	assert.Equal(t, Stayed, w.Next(context.Background()))
	assert.Equal(t, StepModel, w.Step())
}

func TestNextRequiresEmailOnPersonalize(t *testing.T) {
	rc := &recordingCart{}
	w := newTestWizard(t, rc)
	walkToPersonalize(t, w)

	w.SetField(FieldBladeEngraving, "ABC")
	assert.Equal(t, Stayed, w.Next(context.Background()))

	w.SetField(FieldEmail, "   ")
	assert.Equal(t, Stayed, w.Next(context.Background()))
	assert.Empty(t, rc.added)

	w.SetField(FieldEmail, "client@example.com")
	assert.Equal(t, Advanced, w.Next(context.Background()))
	assert.Equal(t, StepConfirm, w.Step())
	assert.Len(t, rc.added, 1)
}

func TestCommitBladeEngravingOnly(t *testing.T) {
	rc := &recordingCart{}
	w := newTestWizard(t, rc)
	walkToPersonalize(t, w)

	w.SetField(FieldBladeEngraving, "ABC")
	w.SetField(FieldEmail, "client@example.com")
	require.Equal(t, Advanced, w.Next(context.Background()))

	require.Len(t, rc.added, 1)
	item := rc.added[0]
	assert.Equal(t, 400.0, item.Price)
	assert.Equal(t, cart.TypeConfigured, item.Type)
	assert.Equal(t, "configured-1700000000000-abcd1234", item.ID)
	assert.Equal(t, "chef.jpg", item.Image)
	assert.Equal(t, cart.Customizations{
		{Label: "Modèle", Value: "Chef"},
		{Label: "Bois", Value: "Noyer"},
		{Label: "Guillochage", Value: "Vague"},
		{Label: "Gravure lame", Value: "ABC"},
		{Label: "Gravure manche", Value: "Aucune"},
		{Label: "Autres détails", Value: "Aucun"},
	}, item.Customizations)

	committed, ok := w.Committed()
	require.True(t, ok)
	assert.Equal(t, item, committed)
}

func TestCommitAllTextsFilled(t *testing.T) {
	rc := &recordingCart{}
	w := newTestWizard(t, rc)
	walkToPersonalize(t, w)

	w.SetField(FieldBladeEngraving, "ABC")
	w.SetField(FieldHandleEngraving, "J.D.")
	w.SetField(FieldOtherDetails, "Étui en cuir")
	w.SetField(FieldEmail, "client@example.com")
	w.Next(context.Background())

	require.Len(t, rc.added, 1)
	assert.Equal(t, 450.0, rc.added[0].Price)
}

func TestConfirmIsTerminal(t *testing.T) {
	rc := &recordingCart{}
	w := newTestWizard(t, rc)
	walkToPersonalize(t, w)
	w.SetField(FieldEmail, "client@example.com")
	require.Equal(t, Advanced, w.Next(context.Background()))

	assert.Equal(t, Stayed, w.Next(context.Background()))
	assert.Equal(t, StepConfirm, w.Step())
	assert.Len(t, rc.added, 1)

	assert.Equal(t, Exited, w.Previous())
	assert.True(t, w.Closed())
	assert.Len(t, rc.added, 1)
}

func TestPreviousFromFirstStepExits(t *testing.T) {
	w := newTestWizard(t, &recordingCart{})
	assert.Equal(t, Exited, w.Previous())
	assert.Equal(t, StepModel, w.Step())
	assert.True(t, w.Closed())
}

func TestPreviousMovesBack(t *testing.T) {
	w := newTestWizard(t, &recordingCart{})
	require.True(t, w.SelectModel("chef"))
	require.Equal(t, Advanced, w.Next(context.Background()))

	assert.Equal(t, Retreated, w.Previous())
	assert.Equal(t, StepModel, w.Step())
	assert.Equal(t, "chef", w.State().Selection.ModelID)
}

func TestTransitionsClearFilters(t *testing.T) {
	w := newTestWizard(t, &recordingCart{})

	w.SetFilter(StepModel, "off")
	assert.Len(t, w.Models().Items, 1)

	require.True(t, w.SelectModel("chef"))
	require.Equal(t, Advanced, w.Next(context.Background()))
	assert.Empty(t, w.State().Filters)

	w.SetFilter(StepWood, "zzz")
	assert.Equal(t, ListNoMatch, w.Woods().State)

	w.Previous()
	assert.Empty(t, w.State().Filters)
	assert.Len(t, w.Models().Items, 2)
}

func TestUnknownSelectionRejected(t *testing.T) {
	w := newTestWizard(t, &recordingCart{})
	assert.False(t, w.SelectModel("missing"))
	assert.False(t, w.SelectModel(""))
	assert.False(t, w.SetFilter(StepPersonalize, "x"))
	assert.False(t, w.SetField(Field("unknown"), "x"))
}

func TestStaleSelectionBlocksNext(t *testing.T) {
	w := newTestWizard(t, &recordingCart{})
	require.True(t, w.SelectModel("chef"))

	opts := testOptions()
	opts.Models = []Model{{ID: "santoku", Name: "Santoku"}}
	w.SetOptions(opts)

	assert.False(t, w.CanAdvance())
	assert.Equal(t, Stayed, w.Next(context.Background()))
}

func TestEmptySourceCannotAdvance(t *testing.T) {
	w := New(&recordingCart{}, DefaultPricing(), zap.NewNop())

	assert.Equal(t, ListEmptySource, w.Models().State)
	assert.Empty(t, w.Models().Items)
	assert.False(t, w.SelectModel("chef"))
	assert.Equal(t, Stayed, w.Next(context.Background()))
}

func TestCommitIntoRealCart(t *testing.T) {
	ctx := context.Background()
	store := cart.NewStore(ctx, cart.Key("s1"), cart.NewKVPersister(storage.NewMemory()), zap.NewNop())

	configure := func(suffix string) {
		w := New(store, DefaultPricing(), zap.NewNop(), WithIDSuffix(func() string { return suffix }))
		w.SetOptions(testOptions())
		walkToPersonalize(t, w)
		w.SetField(FieldEmail, "client@example.com")
		require.Equal(t, Advanced, w.Next(ctx))
	}
	configure("aaaa1111")
	configure("bbbb2222")

	items := store.Items()
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 700.0, store.TotalPrice())
}

type stubSource struct {
	models     []Model
	woods      []Wood
	engravings []Engraving
	fields     []FormField
	actions    []Action
	summary    string
	woodErr    error
	release    chan struct{}
}

func (s *stubSource) wait(ctx context.Context) {
	if s.release == nil {
		return
	}
	select {
	case <-s.release:
	case <-ctx.Done():
	}
}

func (s *stubSource) Models(ctx context.Context) ([]Model, error) {
	s.wait(ctx)
	return s.models, nil
}

func (s *stubSource) Woods(ctx context.Context) ([]Wood, error) {
	s.wait(ctx)
	return s.woods, s.woodErr
}

func (s *stubSource) Engravings(ctx context.Context) ([]Engraving, error) {
	s.wait(ctx)
	return s.engravings, nil
}

func (s *stubSource) FormFields(ctx context.Context) ([]FormField, error) {
	s.wait(ctx)
	return s.fields, nil
}

func (s *stubSource) Actions(ctx context.Context) ([]Action, string, error) {
	s.wait(ctx)
	return s.actions, s.summary, nil
}

func TestRefreshKeepsPartialData(t *testing.T) {
	opts := testOptions()
	src := &stubSource{
		models:     opts.Models,
		engravings: opts.Engravings,
		fields:     opts.FormFields,
		summary:    "Votre couteau",
		woodErr:    errors.New("unexpected status: 502"),
	}
	w := New(&recordingCart{}, DefaultPricing(), zap.NewNop())

	err := w.Refresh(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load wood options")

	state := w.State()
	assert.Equal(t, LoadReady, state.Loads[StepModel].Status)
	assert.Equal(t, LoadFailed, state.Loads[StepWood].Status)
	assert.Equal(t, "unexpected status: 502", state.Loads[StepWood].Error)
	assert.Equal(t, "Votre couteau", state.Summary)

	assert.Len(t, w.Models().Items, 2)
	assert.Equal(t, ListEmptySource, w.Woods().State)
	assert.True(t, w.SelectModel("chef"))
	assert.Equal(t, Advanced, w.Next(context.Background()))
}

func TestRefreshAfterCloseIsDiscarded(t *testing.T) {
	src := &stubSource{models: testOptions().Models, release: make(chan struct{})}
	w := New(&recordingCart{}, DefaultPricing(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Refresh(context.Background(), src) }()

	require.Eventually(t, func() bool {
		return w.State().Loads[StepModel].Status == LoadLoading
	}, time.Second, time.Millisecond)

	w.Close()
	close(src.release)
	require.NoError(t, <-done)

	assert.Empty(t, w.Models().Items)
	assert.Equal(t, LoadLoading, w.State().Loads[StepModel].Status)
}

func TestNewerRefreshWins(t *testing.T) {
	slow := &stubSource{models: []Model{{ID: "old", Name: "Ancien"}}, release: make(chan struct{})}
	fast := &stubSource{models: []Model{{ID: "new", Name: "Nouveau"}}}
	w := New(&recordingCart{}, DefaultPricing(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Refresh(context.Background(), slow) }()
	require.Eventually(t, func() bool {
		return w.State().Loads[StepModel].Status == LoadLoading
	}, time.Second, time.Millisecond)

	require.NoError(t, w.Refresh(context.Background(), fast))
	close(slow.release)
	require.NoError(t, <-done)

	models := w.Models().Items
	require.Len(t, models, 1)
	assert.Equal(t, "new", models[0].ID)
}
