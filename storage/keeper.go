/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Fixed keys, namespaced per client by Keeper.
const (
	SessionKey = "flames-data"
	HistoryKey = "flames-history"
	ThemeKey   = "flames-theme"
	SoundKey   = "flames-sound"
)

// DefaultHistoryLimit is how many history entries are kept per client.
const DefaultHistoryLimit = 50

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	SoundOn    = "on"
	SoundOff   = "off"
)

// Prefs are the per-client display toggles.
type Prefs struct {
	Theme string `json:"theme"`
	Sound string `json:"sound"`
}

// DefaultPrefs is dark theme with sound on.
func DefaultPrefs() Prefs {
	return Prefs{Theme: ThemeDark, Sound: SoundOn}
}

func (p Prefs) Validate() error {
	if p.Theme != ThemeDark && p.Theme != ThemeLight {
		return fmt.Errorf("%w: theme must be %q or %q", ErrInvalidRecord, ThemeDark, ThemeLight)
	}
	if p.Sound != SoundOn && p.Sound != SoundOff {
		return fmt.Errorf("%w: sound must be %q or %q", ErrInvalidRecord, SoundOn, SoundOff)
	}

	return nil
}

// Keeper reads and writes structured per-client state on a Store.
type Keeper struct {
	store Store
	limit int

	// serialises read-modify-write of history
	mu sync.Mutex
}

// NewKeeper wraps store. A limit below one falls back to DefaultHistoryLimit.
func NewKeeper(store Store, limit int) *Keeper {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}

	return &Keeper{store: store, limit: limit}
}

func scoped(client, key string) string {
	return client + "/" + key
}

func (k *Keeper) getJSON(ctx context.Context, key string, out any) (bool, error) {
	b, err := k.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
	}

	return true, nil
}

func (k *Keeper) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return k.store.Set(ctx, key, b)
}

// History returns the client's entries newest first. Stored entries that no
// longer validate are skipped.
func (k *Keeper) History(ctx context.Context, client string) ([]Record, error) {
	var stored []Record

	if _, err := k.getJSON(ctx, scoped(client, HistoryKey), &stored); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(stored))
	for _, r := range stored {
		if r.Validate() != nil {
			continue
		}
		out = append(out, r)
	}

	return out, nil
}

// AddHistory prepends r and trims the list to the limit.
func (k *Keeper) AddHistory(ctx context.Context, client string, r Record) ([]Record, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	h, err := k.History(ctx, client)
	if err != nil {
		return nil, err
	}

	h = append([]Record{r}, h...)
	if len(h) > k.limit {
		h = h[:k.limit]
	}

	if err := k.setJSON(ctx, scoped(client, HistoryKey), h); err != nil {
		return nil, err
	}

	return h, nil
}

// ImportHistory merges rs into the client's history, newest first. Entries
// already present (same names and time) are not added again. Nothing is
// written unless every record in rs validates.
func (k *Keeper) ImportHistory(ctx context.Context, client string, rs []Record) ([]Record, error) {
	for i, r := range rs {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	h, err := k.History(ctx, client)
	if err != nil {
		return nil, err
	}

	seen := make(map[historyKey]bool, len(h)+len(rs))
	for _, r := range h {
		seen[keyOf(r)] = true
	}
	for _, r := range rs {
		if seen[keyOf(r)] {
			continue
		}
		seen[keyOf(r)] = true
		h = append(h, r)
	}

	sort.SliceStable(h, func(i, j int) bool {
		return h[i].When.After(h[j].When)
	})
	if len(h) > k.limit {
		h = h[:k.limit]
	}

	if err := k.setJSON(ctx, scoped(client, HistoryKey), h); err != nil {
		return nil, err
	}

	return h, nil
}

type historyKey struct {
	name1, name2 string
	when         int64
}

func keyOf(r Record) historyKey {
	return historyKey{r.Name1, r.Name2, r.When.UnixNano()}
}

func (k *Keeper) ClearHistory(ctx context.Context, client string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.store.Delete(ctx, scoped(client, HistoryKey))
}

// SaveSession replaces the client's last session.
func (k *Keeper) SaveSession(ctx context.Context, client string, s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	return k.setJSON(ctx, scoped(client, SessionKey), s)
}

// ClearSession forgets the client's last play so nothing is restored on the
// next visit.
func (k *Keeper) ClearSession(ctx context.Context, client string) error {
	return k.store.Delete(ctx, scoped(client, SessionKey))
}

// LoadSession returns nil, nil when the client has no saved session.
func (k *Keeper) LoadSession(ctx context.Context, client string) (*Session, error) {
	var s Session

	ok, err := k.getJSON(ctx, scoped(client, SessionKey), &s)
	if err != nil || !ok {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Prefs returns the client's toggles, filling unset or unrecognised values
// with the defaults.
func (k *Keeper) Prefs(ctx context.Context, client string) (Prefs, error) {
	p := DefaultPrefs()

	theme, err := k.getString(ctx, scoped(client, ThemeKey))
	if err != nil {
		return p, err
	}
	if theme == ThemeLight {
		p.Theme = ThemeLight
	}

	sound, err := k.getString(ctx, scoped(client, SoundKey))
	if err != nil {
		return p, err
	}
	if sound == SoundOff {
		p.Sound = SoundOff
	}

	return p, nil
}

func (k *Keeper) SetPrefs(ctx context.Context, client string, p Prefs) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if err := k.store.Set(ctx, scoped(client, ThemeKey), []byte(p.Theme)); err != nil {
		return err
	}

	return k.store.Set(ctx, scoped(client, SoundKey), []byte(p.Sound))
}

func (k *Keeper) getString(ctx context.Context, key string) (string, error) {
	b, err := k.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}

	return string(b), err
}
