package quote

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/mailrelay"
	"knife-atelier/internal/storage"
)

type fakeRelay struct {
	requests []mailrelay.Request
	result   mailrelay.Result
}

func (f *fakeRelay) Submit(_ context.Context, req mailrelay.Request) mailrelay.Result {
	f.requests = append(f.requests, req)
	return f.result
}

type brokenLimiter struct{}

func (brokenLimiter) CheckRateLimit(context.Context, string, int64, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func validForm() Form {
	return Form{Nom: "Durand", Email: "durand@example.com", Message: "Bonjour"}
}

func newService(relay Relay, limiter RateLimiter) *Service {
	return NewService(relay, limiter, 2, time.Hour, zap.NewNop())
}

func TestValidate(t *testing.T) {
	err := Validate(Form{Nom: "  ", Message: "x"})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"nom", "email"}, verr.Missing)

	err = Validate(Form{Nom: "a", Email: "pas-un-email", Message: "x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email"}, verr.Invalid)

	assert.NoError(t, Validate(validForm()))
}

func TestSubmitValidationKeepsForm(t *testing.T) {
	relay := &fakeRelay{}
	s := newService(relay, storage.NewMemory())

	form := Form{Nom: "Durand", Telephone: "0600000000"}
	banner, err := s.Submit(context.Background(), Origin{Session: "s1"}, form, nil)

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, BannerError, banner.Kind)
	assert.Contains(t, banner.Message, "email, message")
	require.NotNil(t, banner.Form)
	assert.Equal(t, "0600000000", banner.Form.Telephone)
	assert.Empty(t, relay.requests)
}

func TestSubmitContactWithoutCart(t *testing.T) {
	relay := &fakeRelay{result: mailrelay.Result{Success: true, MailtoLink: "mailto:x"}}
	s := newService(relay, storage.NewMemory())

	banner, err := s.Submit(context.Background(), Origin{Session: "s1"}, validForm(), nil)
	require.NoError(t, err)
	assert.Equal(t, BannerSuccess, banner.Kind)
	assert.Equal(t, "mailto:x", banner.MailtoLink)
	assert.Nil(t, banner.Form)

	require.Len(t, relay.requests, 1)
	assert.Equal(t, mailrelay.TypeContact, relay.requests[0].Type)
	assert.Equal(t, DefaultObjet, relay.requests[0].Objet)
	assert.Empty(t, relay.requests[0].Panier)
}

func TestSubmitQuoteEmbedsCartSummary(t *testing.T) {
	ctx := context.Background()
	store := cart.NewStore(ctx, cart.Key("s1"), cart.NewKVPersister(storage.NewMemory()), zap.NewNop())
	store.AddItem(ctx, cart.Candidate{ID: "k1", Name: "Chef", Price: 250})

	relay := &fakeRelay{result: mailrelay.Result{Success: true}}
	s := newService(relay, storage.NewMemory())

	form := validForm()
	form.Objet = "Couteau de chef"
	_, err := s.Submit(ctx, Origin{Session: "s1"}, form, store)
	require.NoError(t, err)

	require.Len(t, relay.requests, 1)
	req := relay.requests[0]
	assert.Equal(t, mailrelay.TypeQuote, req.Type)
	assert.Equal(t, "Couteau de chef", req.Objet)
	assert.Equal(t, store.Summary(), req.Panier)
}

func TestSubmitRelayErrorShownVerbatim(t *testing.T) {
	relay := &fakeRelay{result: mailrelay.Result{Success: false, Error: "Service indisponible"}}
	s := newService(relay, storage.NewMemory())

	banner, err := s.Submit(context.Background(), Origin{Session: "s1"}, validForm(), nil)
	require.ErrorIs(t, err, ErrRelay)
	assert.Equal(t, BannerError, banner.Kind)
	assert.Equal(t, "Service indisponible", banner.Message)
	require.NotNil(t, banner.Form)
	assert.Equal(t, "Durand", banner.Form.Nom)
}

func TestSubmitRateLimited(t *testing.T) {
	relay := &fakeRelay{result: mailrelay.Result{Success: true}}
	s := newService(relay, storage.NewMemory())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Submit(ctx, Origin{Session: "s1"}, validForm(), nil)
		require.NoError(t, err)
	}

	banner, err := s.Submit(ctx, Origin{Session: "s1"}, validForm(), nil)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, BannerError, banner.Kind)
	assert.Len(t, relay.requests, 2)

	_, err = s.Submit(ctx, Origin{Session: "s2"}, validForm(), nil)
	assert.NoError(t, err)
}

func TestSubmitLimiterFailureLetsRequestThrough(t *testing.T) {
	relay := &fakeRelay{result: mailrelay.Result{Success: true}}
	s := newService(relay, brokenLimiter{})

	_, err := s.Submit(context.Background(), Origin{Session: "s1"}, validForm(), nil)
	assert.NoError(t, err)
	assert.Len(t, relay.requests, 1)
}

func TestSubmitRateLimitedByClientAddress(t *testing.T) {
	relay := &fakeRelay{result: mailrelay.Result{Success: true}}
	s := NewService(relay, storage.NewMemory(), 2, time.Hour, zap.NewNop(), WithIPLimit(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		origin := Origin{Session: fmt.Sprintf("rotated-%d", i), ClientIP: "203.0.113.7"}
		_, err := s.Submit(ctx, origin, validForm(), nil)
		require.NoError(t, err)
	}

	_, err := s.Submit(ctx, Origin{Session: "rotated-3", ClientIP: "203.0.113.7"}, validForm(), nil)
	require.ErrorIs(t, err, ErrRateLimited)

	_, err = s.Submit(ctx, Origin{Session: "rotated-4", ClientIP: "198.51.100.2"}, validForm(), nil)
	assert.NoError(t, err)
	assert.Len(t, relay.requests, 4)
}
