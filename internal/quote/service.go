// Package quote sends contact and quote requests through the mail relay.
package quote

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"knife-atelier/internal/mailrelay"
)

const (
	DefaultObjet   = "Demande de devis"
	rateLimitKey   = "knife-atelier-quote:"
	ipLimitKey     = "knife-atelier-quote-ip:"
	ipLimitFactor  = 4
	messageSuccess = "Votre demande est prête, votre messagerie va s'ouvrir."
	messageLimited = "Trop de demandes envoyées, veuillez réessayer plus tard."
)

var (
	ErrValidation  = errors.New("quote: invalid form")
	ErrRateLimited = errors.New("quote: rate limit exceeded")
	ErrRelay       = errors.New("quote: relay rejected the request")
)

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

type Relay interface {
	Submit(ctx context.Context, req mailrelay.Request) mailrelay.Result
}

// Cart is the part of a cart the request embeds.
type Cart interface {
	TotalItems() int
	Summary() string
}

type Form struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse"`
	Objet     string `json:"objet"`
	Message   string `json:"message"`
}

func (f Form) trimmed() Form {
	return Form{
		Nom:       strings.TrimSpace(f.Nom),
		Prenom:    strings.TrimSpace(f.Prenom),
		Email:     strings.TrimSpace(f.Email),
		Telephone: strings.TrimSpace(f.Telephone),
		Adresse:   strings.TrimSpace(f.Adresse),
		Objet:     strings.TrimSpace(f.Objet),
		Message:   strings.TrimSpace(f.Message),
	}
}

// ValidationError lists the form fields blocking submission.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "quote: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) message() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Veuillez renseigner : "+strings.Join(e.Missing, ", ")+".")
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "Champ invalide : "+strings.Join(e.Invalid, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// Validate checks the required fields of a form.
func Validate(f Form) error {
	f = f.trimmed()
	verr := &ValidationError{}
	if f.Nom == "" {
		verr.Missing = append(verr.Missing, "nom")
	}
	if f.Email == "" {
		verr.Missing = append(verr.Missing, "email")
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		verr.Invalid = append(verr.Invalid, "email")
	}
	if f.Message == "" {
		verr.Missing = append(verr.Missing, "message")
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}

type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the status shown after a submission. On error the form comes
// back so it can be corrected and sent again.
type Banner struct {
	Kind       BannerKind `json:"kind"`
	Message    string     `json:"message"`
	MailtoLink string     `json:"mailtoLink,omitempty"`
	Form       *Form      `json:"form,omitempty"`
}

// Origin identifies the sender of a request. ClientIP may be empty for
// channels without one.
type Origin struct {
	Session  string
	ClientIP string
}

type Service struct {
	relay   Relay
	limiter RateLimiter
	limit   int64
	ipLimit int64
	window  time.Duration
	logger  *zap.Logger
}

type ServiceOption func(*Service)

// WithIPLimit sets how many requests one client address may send per window.
// It defaults to four times the session limit.
func WithIPLimit(limit int64) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.ipLimit = limit
		}
	}
}

func NewService(relay Relay, limiter RateLimiter, limit int64, window time.Duration, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		relay:   relay,
		limiter: limiter,
		limit:   limit,
		ipLimit: limit * ipLimitFactor,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the form, applies the session and client address rate
// limits and forwards the request. A non-empty cart turns it into a quote
// request carrying the cart summary.
func (s *Service) Submit(ctx context.Context, origin Origin, form Form, c Cart) (Banner, error) {
	form = form.trimmed()
	failed := func(message string, err error) (Banner, error) {
		echo := form
		return Banner{Kind: BannerError, Message: message, Form: &echo}, err
	}

	if err := Validate(form); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return failed(verr.message(), err)
		}
		return failed("Formulaire invalide.", err)
	}

	if s.limited(ctx, origin) {
		return failed(messageLimited, ErrRateLimited)
	}

	req := mailrelay.Request{
		Nom:       form.Nom,
		Objet:     form.Objet,
		Message:   form.Message,
		Type:      mailrelay.TypeContact,
		Prenom:    form.Prenom,
		Email:     form.Email,
		Telephone: form.Telephone,
		Adresse:   form.Adresse,
	}
	if req.Objet == "" {
		req.Objet = DefaultObjet
	}
	if c != nil && c.TotalItems() > 0 {
		req.Type = mailrelay.TypeQuote
		req.Panier = c.Summary()
	}

	res := s.relay.Submit(ctx, req)
	if !res.Success {
		return failed(res.Error, fmt.Errorf("%w: %s", ErrRelay, res.Error))
	}

	s.logger.Info("Quote request relayed",
		zap.String("session", origin.Session),
		zap.String("type", string(req.Type)))
	return Banner{Kind: BannerSuccess, Message: messageSuccess, MailtoLink: res.MailtoLink}, nil
}

type limitCheck struct {
	key   string
	limit int64
}

// limited counts the request against the session and, when known, the client
// address. Limiter errors let the request through.
func (s *Service) limited(ctx context.Context, origin Origin) bool {
	checks := []limitCheck{{key: rateLimitKey + origin.Session, limit: s.limit}}
	if origin.ClientIP != "" {
		checks = append(checks, limitCheck{key: ipLimitKey + origin.ClientIP, limit: s.ipLimit})
	}

	exceeded := false
	for _, check := range checks {
		over, err := s.limiter.CheckRateLimit(ctx, check.key, check.limit, s.window)
		if err != nil {
			s.logger.Warn("Rate limit check failed, letting the request through",
				zap.String("key", check.key),
				zap.Error(err))
			continue
		}
		if over {
			s.logger.Info("Quote rate limit exceeded",
				zap.String("session", origin.Session),
				zap.String("client_ip", origin.ClientIP),
				zap.String("key", check.key))
			exceeded = true
		}
	}
	return exceeded
}
