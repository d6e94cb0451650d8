package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/observability"
	"github.com/gymops/gymops/internal/roles"
	"github.com/gymops/gymops/internal/shared"
)

// RoleLookup loads the stored role of a user.
type RoleLookup interface {
	LookupRole(ctx context.Context, userID int64) (roles.Role, error)
}

// ProviderConfig tunes the session provider.
type ProviderConfig struct {
	// ResolveTimeout bounds how long a request waits for a role before it is
	// answered with a loading session.
	ResolveTimeout time.Duration
	// LookupTimeout bounds the background lookup itself.
	LookupTimeout time.Duration
	CacheTTL      time.Duration
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

// SessionProvider answers the console's session questions from the request's
// cookie session and a cached role lookup.
type SessionProvider struct {
	lookup         RoleLookup
	cache          *gocache.Cache
	group          singleflight.Group
	resolveTimeout time.Duration
	lookupTimeout  time.Duration
	logger         *slog.Logger
	metrics        *observability.Metrics
}

// NewSessionProvider constructs a SessionProvider.
func NewSessionProvider(lookup RoleLookup, cfg ProviderConfig) *SessionProvider {
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 300 * time.Millisecond
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionProvider{
		lookup:         lookup,
		cache:          gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		resolveTimeout: cfg.ResolveTimeout,
		lookupTimeout:  cfg.LookupTimeout,
		logger:         logger,
		metrics:        cfg.Metrics,
	}
}

// Resolve reports the role of the signed in user. Anonymous sessions and
// unknown or disabled accounts resolve to an empty role. A lookup slower than
// the resolve timeout yields a loading session while it keeps running.
func (p *SessionProvider) Resolve(ctx context.Context) (navigation.Session, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return navigation.Session{}, shared.ErrSessionMissing
	}
	userID, ok := sess.UserID()
	if !ok {
		return navigation.Session{}, nil
	}
	key := strconv.FormatInt(userID, 10)
	if v, found := p.cache.Get(key); found {
		p.metrics.ObserveRoleLookup("hit")
		role, _ := v.(roles.Role)
		return navigation.Session{Role: role}, nil
	}

	ch := p.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.lookupTimeout)
		defer cancel()
		role, err := p.lookup.LookupRole(lookupCtx, userID)
		if err != nil {
			return nil, err
		}
		p.cache.SetDefault(key, role)
		return role, nil
	})

	timer := time.NewTimer(p.resolveTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, shared.ErrNotFound) {
				p.metrics.ObserveRoleLookup("unknown_user")
				return navigation.Session{}, nil
			}
			p.metrics.ObserveRoleLookup("error")
			return navigation.Session{}, res.Err
		}
		p.metrics.ObserveRoleLookup("miss")
		role, _ := res.Val.(roles.Role)
		if !role.Valid() {
			p.logger.Warn("user has unknown role", slog.Int64("user_id", userID), slog.String("role", string(role)))
		}
		return navigation.Session{Role: role}, nil
	case <-timer.C:
		p.metrics.ObserveRoleLookup("timeout")
		return navigation.Session{Loading: true}, nil
	case <-ctx.Done():
		return navigation.Session{}, ctx.Err()
	}
}

// Remember primes the cache, typically right after login.
func (p *SessionProvider) Remember(userID int64, role roles.Role) {
	p.cache.SetDefault(strconv.FormatInt(userID, 10), role)
}

// Forget drops the cached role so the next request reads it again.
func (p *SessionProvider) Forget(userID int64) {
	p.cache.Delete(strconv.FormatInt(userID, 10))
}
