package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
)

// loadJSON reads and decodes one value. A missing key, an undecodable value
// or a stored JSON null all yield the fallback rather than an error; only
// store I/O failures propagate.
func loadJSON[T any](ctx context.Context, kv ports.KeyValueStore, key string, fallback T) (T, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("load %q: %w", key, err)
	}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fallback, nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return fallback, nil
	}

	return value, nil
}

func saveJSON(ctx context.Context, kv ports.KeyValueStore, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}

	return nil
}
