// Package consent records the visitor's cookie consent choice.
package consent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"knife-atelier/internal/storage"
)

const KeyPrefix = "knife-atelier-consent:"

type Choice string

const (
	ChoiceAll       Choice = "all"
	ChoiceEssential Choice = "essential"
	ChoiceNone      Choice = "none"
)

var ErrInvalidChoice = errors.New("consent: invalid choice")

func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case ChoiceAll, ChoiceEssential, ChoiceNone:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
}

type Record struct {
	Choice    Choice    `json:"choice"`
	Timestamp time.Time `json:"timestamp"`
}

type Store struct {
	kv     storage.KV
	now    func() time.Time
	logger *zap.Logger
}

func NewStore(kv storage.KV, logger *zap.Logger) *Store {
	return &Store{kv: kv, now: time.Now, logger: logger}
}

// Save records choice for session, stamped with the current time.
func (s *Store) Save(ctx context.Context, session, choice string) (Record, error) {
	const operation = "consent.Save"

	c, err := ParseChoice(choice)
	if err != nil {
		return Record{}, err
	}

	rec := Record{Choice: c, Timestamp: s.now().UTC().Truncate(time.Second)}
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("%s: encode: %w", operation, err)
	}
	if err := s.kv.Set(ctx, KeyPrefix+session, data); err != nil {
		return Record{}, fmt.Errorf("%s: %w", operation, err)
	}

	s.logger.Debug("Consent saved",
		zap.String("session", session),
		zap.String("choice", string(c)))
	return rec, nil
}

// Get returns the stored record; storage.ErrNotFound when the visitor never chose.
func (s *Store) Get(ctx context.Context, session string) (Record, error) {
	const operation = "consent.Get"

	data, err := s.kv.Get(ctx, KeyPrefix+session)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%s: %w", operation, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%s: decode: %w", operation, err)
	}
	if _, err := ParseChoice(string(rec.Choice)); err != nil {
		return Record{}, fmt.Errorf("%s: %w", operation, err)
	}
	return rec, nil
}
