package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is a JSON key/value store. Values are written and read whole; there
// are no partial updates and the last writer wins.
type Store interface {
	// Get decodes the value under key into dst. found is false when the key
	// has never been set.
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetOrDefault returns the stored value for key, or def when the key is absent.
func GetOrDefault[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	var v T
	found, err := s.Get(ctx, key, &v)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

func encode(value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return b, nil
}

func decode(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("storage: decode: %w", err)
	}
	return nil
}
