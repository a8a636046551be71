package cart

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Persister stores the JSON snapshot of a cart under a key.
// Load returns an empty list when nothing was saved yet.
type Persister interface {
	Load(ctx context.Context, key string) ([]Item, error)
	Save(ctx context.Context, key string, items []Item) error
}

// Snapshot is a consistent read of a cart at one point in time.
type Snapshot struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
	Open       bool    `json:"open"`
}

// Store is the cart of one visitor session.
//
// None of its operations fail: malformed input degrades to defaults and
// persistence errors are logged while the in-memory list stays authoritative.
// Each mutation is applied and persisted under the store lock, so operations
// take effect in call order and never interleave.
type Store struct {
	mu        sync.Mutex
	key       string
	items     []Item
	open      bool
	persister Persister
	logger    *zap.Logger
	observers []func(Snapshot)
}

// NewStore creates a store and reads its persisted snapshot once.
func NewStore(ctx context.Context, key string, persister Persister, logger *zap.Logger) *Store {
	s := &Store{
		key:       key,
		persister: persister,
		logger:    logger,
	}

	items, err := persister.Load(ctx, key)
	if err != nil {
		logger.Warn("Failed to load cart snapshot, starting empty",
			zap.String("key", key),
			zap.Error(err))
		return s
	}
	s.items = sanitize(items)
	return s
}

// sanitize restores the invariants on data read back from storage.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		item.Price = clampPrice(item.Price)
		item.Type = item.Type.normalized()
		if item.Type != TypeConfigured {
			item.Customizations = nil
		}
		out = append(out, item)
	}
	return out
}

// Observe registers fn to be called with a fresh snapshot after every change.
func (s *Store) Observe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// AddItem appends the candidate with quantity 1, or bumps the quantity of the
// line that already has its id. An existing line keeps its own name, price and image.
func (s *Store) AddItem(ctx context.Context, c Candidate) {
	s.mutate(ctx, true, func() {
		for i := range s.items {
			if s.items[i].ID == c.ID {
				s.items[i].Quantity++
				return
			}
		}

		item := Item{
			ID:          c.ID,
			Name:        c.Name,
			Price:       NormalizePrice(c.Price),
			Description: c.Description,
			Image:       c.Image,
			Quantity:    1,
			Type:        c.Type.normalized(),
		}
		// Only configured knives carry customizations.
		if item.Type == TypeConfigured {
			item.Customizations = c.Customizations.clone()
		}
		s.items = append(s.items, item)
	})
}

// RemoveItem deletes the line with id; unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mutate(ctx, true, func() {
		s.removeLocked(id)
	})
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.mutate(ctx, true, func() {
		if quantity <= 0 {
			s.removeLocked(id)
			return
		}
		for i := range s.items {
			if s.items[i].ID == id {
				s.items[i].Quantity = quantity
				return
			}
		}
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, true, func() {
		s.items = nil
	})
}

func (s *Store) Open(ctx context.Context) {
	s.mutate(ctx, false, func() { s.open = true })
}

func (s *Store) Close(ctx context.Context) {
	s.mutate(ctx, false, func() { s.open = false })
}

func (s *Store) Toggle(ctx context.Context) {
	s.mutate(ctx, false, func() { s.open = !s.open })
}

func (s *Store) removeLocked(id string) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) mutate(ctx context.Context, persist bool, fn func()) {
	s.mu.Lock()
	fn()
	if persist {
		if err := s.persister.Save(ctx, s.key, s.copyItemsLocked()); err != nil {
			s.logger.Error("Failed to persist cart",
				zap.String("key", s.key),
				zap.Error(err))
		}
	}
	snap := s.snapshotLocked()
	observers := append([]func(Snapshot){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItemsLocked()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice is the sum of price times quantity over all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Summary renders the cart as the text embedded in quote requests.
func (s *Store) Summary() string {
	return s.Snapshot().Summary()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:      s.copyItemsLocked(),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
		Open:       s.open,
	}
}

func (s *Store) copyItemsLocked() []Item {
	out := make([]Item, len(s.items))
	for i, item := range s.items {
		item.Customizations = item.Customizations.clone()
		out[i] = item
	}
	return out
}

func totalItems(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalPrice(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Key is the storage key of a session's cart snapshot.
func Key(session string) string {
	return KeyPrefix + strings.TrimSpace(session)
}

const KeyPrefix = "knife-atelier-cart:"
