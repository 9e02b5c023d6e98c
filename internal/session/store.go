// Package session holds the persisted shopper session fields and broadcasts
// every change to subscribed views.
package session

import (
	"context"
	"sort"
	"strconv"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"colognehub/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Persisted keys.
const (
	KeyToken           = "token"
	KeyRole            = "role"
	KeyUsername        = "username"
	KeyEmail           = "email"
	KeyIsEmailVerified = "isEmailVerified"
	KeyPendingAction   = "pendingAction"
)

var authKeys = []string{KeyToken, KeyRole, KeyUsername, KeyEmail, KeyIsEmailVerified}

// Backend persists flat string fields.
type Backend interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// Change lists the keys touched by one write.
type Change struct {
	Keys []string
}

// Has reports whether key was part of the change.
func (c Change) Has(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Snapshot is a read of all auth fields at one point in time.
type Snapshot struct {
	Token           string `json:"-"`
	Role            string `json:"role"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// Authenticated reports whether a token is present.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the session belongs to an admin.
func (s Snapshot) IsAdmin() bool {
	return s.Authenticated() && s.Role == domain.RoleAdmin
}

// Store wraps a Backend and notifies subscribers after every successful write.
type Store struct {
	backend Backend

	mu   sync.Mutex
	next uint64
	subs map[uint64]func(Change)
}

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{backend: backend, subs: make(map[uint64]func(Change))}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Load(ctx, key)
}

// Set stores one field.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.backend.Save(ctx, key, value); err != nil {
		return err
	}
	s.publish(Change{Keys: []string{key}})
	return nil
}

// SetMany stores several fields and broadcasts a single change. Fields are
// written one by one; a failure leaves the earlier ones in place.
func (s *Store) SetMany(ctx context.Context, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var written []string
	for _, k := range keys {
		if err := s.backend.Save(ctx, k, fields[k]); err != nil {
			if len(written) > 0 {
				s.publish(Change{Keys: written})
			}
			return err
		}
		written = append(written, k)
	}
	if len(written) > 0 {
		s.publish(Change{Keys: written})
	}
	return nil
}

// Delete removes fields.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.Remove(ctx, keys...); err != nil {
		return err
	}
	s.publish(Change{Keys: keys})
	return nil
}

// GetJSON decodes the JSON value under key into v.
func (s *Store) GetJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	raw, ok, err := s.backend.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.UnmarshalFromString(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON encodes v as JSON under key.
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.MarshalToString(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// Snapshot reads every auth field.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	for _, key := range authKeys {
		v, _, err := s.backend.Load(ctx, key)
		if err != nil {
			return Snapshot{}, err
		}
		switch key {
		case KeyToken:
			snap.Token = v
		case KeyRole:
			snap.Role = v
		case KeyUsername:
			snap.Username = v
		case KeyEmail:
			snap.Email = v
		case KeyIsEmailVerified:
			snap.IsEmailVerified, _ = strconv.ParseBool(v)
		}
	}
	return snap, nil
}

// Authenticated reports whether a token is currently stored.
func (s *Store) Authenticated(ctx context.Context) (bool, error) {
	token, ok, err := s.backend.Load(ctx, KeyToken)
	if err != nil {
		return false, err
	}
	return ok && token != "", nil
}

// Token implements apiclient.TokenSource.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.backend.Load(ctx, KeyToken)
	return token, err
}

// SaveAuth persists a login result.
func (s *Store) SaveAuth(ctx context.Context, res domain.AuthResult) error {
	return s.SetMany(ctx, map[string]string{
		KeyToken:           res.Token,
		KeyRole:            res.Role,
		KeyUsername:        res.Username,
		KeyEmail:           res.Email,
		KeyIsEmailVerified: strconv.FormatBool(res.IsEmailVerified),
	})
}

// ClearAuth removes every auth field.
func (s *Store) ClearAuth(ctx context.Context) error {
	return s.Delete(ctx, authKeys...)
}

// Subscribe registers fn for every subsequent change. The returned function
// removes the subscription; calling it twice is harmless.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) publish(c Change) {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
