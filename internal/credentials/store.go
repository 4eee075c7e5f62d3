package credentials

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// KV is the persistent key-value contract the store writes tokens to.
// Get reports ok=false for a missing key.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Source tells where a token resolves from.
type Source string

const (
	SourceEnv    Source = "env"
	SourceStored Source = "stored"
	SourceNone   Source = "none"
)

// ErrEmptyToken is returned by Set for an empty token.
var ErrEmptyToken = errors.New("token must not be empty")

// slotKeys maps provider ids to their persisted slot.
var slotKeys = map[string]string{
	"deepseek": "deepseek_api_key",
	"qwen":     "hf_token",
}

// SlotKey returns the persisted key for a provider id.
func SlotKey(providerID string) string {
	if key, ok := slotKeys[providerID]; ok {
		return key
	}
	return providerID + "_token"
}

// Store resolves tokens per provider.
type Store struct {
	kv       KV
	defaults map[string]string
	log      *zap.Logger
}

// New creates a store over kv. defaults are copied and never modified.
func New(kv KV, defaults map[string]string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	d := make(map[string]string, len(defaults))
	for id, token := range defaults {
		if token != "" {
			d[id] = token
		}
	}
	return &Store{kv: kv, defaults: d, log: log}
}

// Get returns the token for a provider. The environment default wins over
// the persisted value.
func (s *Store) Get(providerID string) (string, bool) {
	token, _ := s.resolve(providerID)
	return token, token != ""
}

// Source reports which layer the provider's token resolves from.
func (s *Store) Source(providerID string) Source {
	_, src := s.resolve(providerID)
	return src
}

// Stored returns only the persisted token, ignoring the environment.
func (s *Store) Stored(providerID string) (string, bool) {
	if s.kv == nil {
		return "", false
	}
	token, ok, err := s.kv.Get(SlotKey(providerID))
	if err != nil {
		s.log.Warn("reading stored credential failed",
			zap.String("provider", providerID), zap.Error(err))
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Set persists a token for a provider.
func (s *Store) Set(providerID, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if s.kv == nil {
		return fmt.Errorf("no persistent store configured")
	}
	if err := s.kv.Set(SlotKey(providerID), token); err != nil {
		return fmt.Errorf("failed to store %s token: %w", providerID, err)
	}
	return nil
}

// Clear removes the persisted token for a provider. The environment default,
// if any, keeps resolving.
func (s *Store) Clear(providerID string) error {
	if s.kv == nil {
		return nil
	}
	if err := s.kv.Remove(SlotKey(providerID)); err != nil {
		return fmt.Errorf("failed to clear %s token: %w", providerID, err)
	}
	return nil
}

func (s *Store) resolve(providerID string) (string, Source) {
	if token, ok := s.defaults[providerID]; ok {
		return token, SourceEnv
	}
	if token, ok := s.Stored(providerID); ok {
		return token, SourceStored
	}
	return "", SourceNone
}

// Mask hides all but the last four characters of a token.
func Mask(token string) string {
	r := []rune(token)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
