// Package storage is the key-value boundary behind user records, settings
// and history. Values are serialized text.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Stores pairs the durable store (settings, history) with the session
// store (the live health record).
type Stores struct {
	Durable Store
	Session Store
}

// GetJSON decodes the value at key into v. ok is false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key as JSON.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

type prefixed struct {
	store  Store
	prefix string
}

// Prefixed namespaces every key of s with prefix.
func Prefixed(s Store, prefix string) Store {
	return prefixed{store: s, prefix: prefix}
}

// UserPrefix is the namespace of a Telegram user.
func UserPrefix(telegramID int64) string {
	return fmt.Sprintf("user:%d:", telegramID)
}

func (p prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p prefixed) Set(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.prefix+key, value)
}

func (p prefixed) Remove(ctx context.Context, key string) error {
	return p.store.Remove(ctx, p.prefix+key)
}
