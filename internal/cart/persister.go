package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"knife-atelier/internal/storage"
)

// KVPersister keeps cart snapshots as JSON arrays in a storage.KV.
type KVPersister struct {
	kv storage.KV
}

func NewKVPersister(kv storage.KV) *KVPersister {
	return &KVPersister{kv: kv}
}

func (p *KVPersister) Load(ctx context.Context, key string) ([]Item, error) {
	data, err := p.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (p *KVPersister) Save(ctx context.Context, key string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := p.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
