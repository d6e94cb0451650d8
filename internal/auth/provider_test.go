package auth_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymops/gymops/internal/auth"
	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/roles"
	"github.com/gymops/gymops/internal/shared"
)

type lookupFunc func(ctx context.Context, userID int64) (roles.Role, error)

func (f lookupFunc) LookupRole(ctx context.Context, userID int64) (roles.Role, error) {
	return f(ctx, userID)
}

func signedIn(id int64) context.Context {
	sess := &shared.Session{ID: "s"}
	if id > 0 {
		sess.SetUser(id)
	}
	return shared.ContextWithSession(context.Background(), sess)
}

func TestProviderRequiresSession(t *testing.T) {
	p := auth.NewSessionProvider(lookupFunc(func(context.Context, int64) (roles.Role, error) {
		return roles.Staff, nil
	}), auth.ProviderConfig{})

	_, err := p.Resolve(context.Background())
	assert.ErrorIs(t, err, shared.ErrSessionMissing)
}

func TestProviderAnonymousSession(t *testing.T) {
	var calls atomic.Int32
	p := auth.NewSessionProvider(lookupFunc(func(context.Context, int64) (roles.Role, error) {
		calls.Add(1)
		return roles.Staff, nil
	}), auth.ProviderConfig{})

	got, err := p.Resolve(signedIn(0))
	require.NoError(t, err)
	assert.Equal(t, navigation.Session{}, got)
	assert.Zero(t, calls.Load())
}

func TestProviderCachesRoles(t *testing.T) {
	var calls atomic.Int32
	p := auth.NewSessionProvider(lookupFunc(func(context.Context, int64) (roles.Role, error) {
		calls.Add(1)
		return roles.Manager, nil
	}), auth.ProviderConfig{})

	for i := 0; i < 3; i++ {
		got, err := p.Resolve(signedIn(5))
		require.NoError(t, err)
		assert.Equal(t, roles.Manager, got.Role)
	}
	assert.Equal(t, int32(1), calls.Load())

	p.Forget(5)
	_, err := p.Resolve(signedIn(5))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProviderSlowLookupReportsLoading(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	p := auth.NewSessionProvider(lookupFunc(func(ctx context.Context, _ int64) (roles.Role, error) {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return roles.Trainer, nil
	}), auth.ProviderConfig{ResolveTimeout: 20 * time.Millisecond, LookupTimeout: 5 * time.Second})

	got, err := p.Resolve(signedIn(9))
	require.NoError(t, err)
	assert.True(t, got.Loading)
	assert.Empty(t, got.Role, "a loading session never carries a role")

	close(release)
	assert.Eventually(t, func() bool {
		s, err := p.Resolve(signedIn(9))
		return err == nil && s.Role == roles.Trainer && !s.Loading
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "the background lookup fills the cache")
}

func TestProviderLookupErrors(t *testing.T) {
	boom := errors.New("db down")
	p := auth.NewSessionProvider(lookupFunc(func(context.Context, int64) (roles.Role, error) {
		return "", boom
	}), auth.ProviderConfig{})

	_, err := p.Resolve(signedIn(3))
	assert.ErrorIs(t, err, boom)
}

func TestProviderUnknownUserIsAnonymous(t *testing.T) {
	p := auth.NewSessionProvider(lookupFunc(func(context.Context, int64) (roles.Role, error) {
		return "", shared.ErrNotFound
	}), auth.ProviderConfig{})

	got, err := p.Resolve(signedIn(3))
	require.NoError(t, err)
	assert.False(t, got.Authenticated())
	assert.False(t, got.Loading)
}

func TestProviderKeepsUnknownRoleRaw(t *testing.T) {
	p := auth.NewSessionProvider(lookupFunc(func(context.Context, int64) (roles.Role, error) {
		return roles.Role("janitor"), nil
	}), auth.ProviderConfig{})

	got, err := p.Resolve(signedIn(4))
	require.NoError(t, err)
	assert.Equal(t, roles.Role("janitor"), got.Role)
	assert.False(t, got.Role.Valid())
}

func TestServiceLookupRole(t *testing.T) {
	user := &auth.User{ID: 7, Role: roles.Staff, IsActive: true}
	svc := auth.NewService(&stubRepo{user: user})

	role, err := svc.LookupRole(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, roles.Staff, role)

	user.IsActive = false
	_, err = svc.LookupRole(context.Background(), 7)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.LookupRole(context.Background(), 8)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
