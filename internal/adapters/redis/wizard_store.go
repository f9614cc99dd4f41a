package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

const defaultWizardPrefix = "wizard:"

// WizardStore keeps onboarding progress keyed by session id.
// Each save refreshes the TTL so progress lives as long as an active session can.
type WizardStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.WizardStore = (*WizardStore)(nil)

// WizardStoreOptions configures a WizardStore.
type WizardStoreOptions struct {
	Client redis.UniversalClient
	Prefix string        // defaults to "wizard:"
	TTL    time.Duration // defaults to 8h
}

// NewWizardStore creates a Redis wizard-state store.
func NewWizardStore(opts WizardStoreOptions) *WizardStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultWizardPrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &WizardStore{client: opts.Client, prefix: prefix, ttl: ttl}
}

// Load returns the stored state, normalized. found is false when nothing is stored.
func (w *WizardStore) Load(ctx context.Context, sessionID string) (onboarding.State, bool, error) {
	if sessionID == "" {
		return onboarding.State{}, false, errors.New("session ID cannot be empty")
	}
	data, err := w.client.Get(ctx, w.prefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return onboarding.State{}, false, nil
	}
	if err != nil {
		return onboarding.State{}, false, fmt.Errorf("redis get wizard state: %w", err)
	}

	var st onboarding.State
	if err := json.Unmarshal(data, &st); err != nil {
		return onboarding.State{}, false, fmt.Errorf("unmarshal wizard state: %w", err)
	}
	st.Normalize()
	return st, true, nil
}

// Save writes the state and refreshes its TTL.
func (w *WizardStore) Save(ctx context.Context, sessionID string, state onboarding.State) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal wizard state: %w", err)
	}
	if err := w.client.Set(ctx, w.prefix+sessionID, data, w.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wizard state: %w", err)
	}
	return nil
}

// Delete discards the stored state.
func (w *WizardStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := w.client.Del(ctx, w.prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del wizard state: %w", err)
	}
	return nil
}
