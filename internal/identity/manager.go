// internal/identity/manager.go
//
// Identity resolution and replacement.
// Responsibilities:
//   - Resolve exactly one identity token per client run: reuse the
//     persisted token when the server still knows it, repair (clear +
//     recreate) when the server reports it gone, create when no token
//     was ever persisted.
//   - Distinguish "identity does not exist" (repairable) from transport
//     failure, which is surfaced and never downgraded to creation.
//     Recreating on a transient outage would orphan the real identity's
//     history.
//   - Expose the explicit, validated replacement path (ChangeIdentity)
//     and the pure existence check backing it (ValidateUserID).
//
// Resolution is idempotent: concurrent triggers share one in-flight
// attempt via singleflight, and a completed success is cached for the
// lifetime of the process. The only duplicated-work hazard worth
// guarding is a second identity-creation request.

package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/lexeme-dev/worldle/internal/api"
	"github.com/lexeme-dev/worldle/internal/cache"
)

// ErrBadFormat rejects candidate tokens that are not RFC 4122 v4
// strings. Returned before any network call is made.
var ErrBadFormat = errors.New("identity: token is not a v4 uuid")

// Manager owns the resolved identity for one client run.
type Manager struct {
	store  Store
	client *api.Client
	cache  *cache.Cache

	sf    singleflight.Group
	mu    sync.RWMutex // guards token
	token string
}

// NewManager wires a Manager. The cache is shared with the session
// controller so identity replacement can drop old-identity snapshots.
func NewManager(store Store, client *api.Client, c *cache.Cache) *Manager {
	return &Manager{store: store, client: client, cache: c}
}

// Token returns the resolved token, or "" before resolution completes.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Resolve produces the identity token for this run, executing the
// resolution algorithm at most once concurrently. Repeated calls after
// success return the cached token without touching the network.
func (m *Manager) Resolve(ctx context.Context) (string, error) {
	if tok := m.Token(); tok != "" {
		return tok, nil
	}
	v, err, _ := m.sf.Do("resolve", func() (any, error) {
		if tok := m.Token(); tok != "" {
			return tok, nil
		}
		tok, err := m.resolve(ctx)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.token = tok
		m.mu.Unlock()
		m.warmStats(tok)
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// resolve runs the reuse → repair → create ladder.
func (m *Manager) resolve(ctx context.Context) (string, error) {
	stored, ok := m.store.Read(ctx)
	if !ok {
		return m.create(ctx)
	}

	if _, err := m.client.ReadUserClient(ctx, stored); err != nil {
		if !api.IsNotFound(err) {
			// Transport or server failure: the identity may well still
			// exist, so fail resolution instead of minting a new one.
			return "", err
		}
		log.Info().Str("token", stored).Msg("stored identity unknown to server, repairing")
		if cerr := m.store.Clear(ctx); cerr != nil {
			log.Warn().Err(cerr).Msg("clear stale identity slot")
		}
		return m.create(ctx)
	}
	return stored, nil
}

// create requests a fresh identity and persists it. A failed persist
// costs durability across restarts, not the running session.
func (m *Manager) create(ctx context.Context) (string, error) {
	uc, err := m.client.CreateUserClient(ctx)
	if err != nil {
		return "", err
	}
	if err := m.store.Write(ctx, uc.UUID); err != nil {
		log.Warn().Err(err).Msg("persist identity token")
	}
	log.Info().Str("token", uc.UUID).Msg("created identity")
	return uc.UUID, nil
}

// ValidateUserID checks that token is well-formed and known to the
// server, without mutating any stored state. A malformed token returns
// ErrBadFormat before any network call; an unknown token returns the
// remote not-found error (api.IsNotFound reports true).
func (m *Manager) ValidateUserID(ctx context.Context, token string) error {
	if !validTokenFormat(token) {
		return ErrBadFormat
	}
	_, err := m.client.ReadUserClient(ctx, token)
	return err
}

// ChangeIdentity migrates this client to candidate. The candidate must
// be well-formed and exist remotely; on any failure the current
// identity and slot are untouched. On success the candidate is
// persisted, every snapshot cached under the old token is dropped, and
// subsequent reads resolve against the new token.
func (m *Manager) ChangeIdentity(ctx context.Context, candidate string) error {
	if err := m.ValidateUserID(ctx, candidate); err != nil {
		return err
	}
	if err := m.store.Write(ctx, candidate); err != nil {
		return err
	}

	m.mu.Lock()
	old := m.token
	m.token = candidate
	m.mu.Unlock()

	if old != "" && old != candidate {
		m.cache.InvalidateKey(old)
	}
	log.Info().Str("from", old).Str("to", candidate).Msg("identity replaced")
	m.warmStats(candidate)
	return nil
}

// warmStats prefetches the identity's stats into the shared cache as a
// non-blocking side effect of resolution/replacement.
func (m *Manager) warmStats(token string) {
	go func() {
		stats, err := m.client.ReadUserStats(context.Background(), token)
		if err != nil {
			log.Debug().Err(err).Msg("stats warmup failed")
			return
		}
		m.cache.Put(cache.KindStats, token, stats)
	}()
}

// validTokenFormat accepts only the canonical 36-char RFC 4122 v4
// rendering, not the alternate forms uuid.Parse tolerates.
func validTokenFormat(token string) bool {
	if len(token) != 36 {
		return false
	}
	u, err := uuid.Parse(token)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}
