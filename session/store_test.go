package session

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"session-hub/domain"
)

// fakeGateway implements domain.AuthGateway with pluggable behavior.
type fakeGateway struct {
	loginFn    func(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	registerFn func(ctx context.Context, reg domain.Registration) error
	currentFn  func(ctx context.Context) (*domain.User, error)
	isAuthFn   func(ctx context.Context) (bool, error)
	refreshFn  func(ctx context.Context) (*domain.User, error)
	logoutFn   func(ctx context.Context) error
}

func (f *fakeGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	return f.loginFn(ctx, creds)
}

func (f *fakeGateway) Register(ctx context.Context, reg domain.Registration) error {
	return f.registerFn(ctx, reg)
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (*domain.User, error) {
	return f.currentFn(ctx)
}

func (f *fakeGateway) IsAuthenticated(ctx context.Context) (bool, error) {
	return f.isAuthFn(ctx)
}

func (f *fakeGateway) Refresh(ctx context.Context) (*domain.User, error) {
	return f.refreshFn(ctx)
}

func (f *fakeGateway) Logout(ctx context.Context) error {
	return f.logoutFn(ctx)
}

// memSnapshot is an in-memory domain.SnapshotStore.
type memSnapshot struct {
	mu   sync.Mutex
	user *domain.User
}

func (m *memSnapshot) Load() (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	u := *m.user
	return &u, nil
}

func (m *memSnapshot) Save(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.user = &u
	return nil
}

func (m *memSnapshot) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

func testUser() *domain.User {
	return &domain.User{
		ID:        uuid.MustParse("3e1f1de6-9ce5-4f87-9d4a-9b6fa6a63b0a"),
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		FirstName: "John",
		LastName:  "Doe",
	}
}

func TestStore_Login(t *testing.T) {
	t.Run("success transitions to authenticated and persists snapshot", func(t *testing.T) {
		snap := &memSnapshot{}
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				assert.Equal(t, "jdoe", creds.Username)
				return testUser(), nil
			},
		}
		store := NewStore(gw, snap)

		err := store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"})

		require.NoError(t, err)
		assert.Equal(t, domain.StateAuthenticated, store.State())
		require.NotNil(t, store.User())
		assert.Equal(t, "jdoe", store.User().Username)
		assert.Nil(t, store.LastError())

		persisted, err := snap.Load()
		require.NoError(t, err)
		assert.Equal(t, "jdoe", persisted.Username)
	})

	t.Run("failure stays anonymous with the envelope attached", func(t *testing.T) {
		env := domain.NewEnvelope("Invalid credentials", "BAD_CREDENTIALS", "/auth/login", 401, nil)
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return nil, env
			},
		}
		store := NewStore(gw, &memSnapshot{})

		err := store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "wrong"})

		require.Error(t, err)
		assert.Equal(t, domain.StateAnonymous, store.State())
		assert.Nil(t, store.User())
		require.NotNil(t, store.LastError())
		assert.Equal(t, "BAD_CREDENTIALS", store.LastError().Code)
		assert.Equal(t, "Invalid credentials", store.LastError().Message)
	})

	t.Run("login on an authenticated session is a no-op", func(t *testing.T) {
		calls := 0
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				calls++
				return testUser(), nil
			},
		}
		store := NewStore(gw, &memSnapshot{})

		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		assert.Equal(t, 1, calls)
	})
}

func TestStore_Register(t *testing.T) {
	t.Run("success does not authenticate", func(t *testing.T) {
		gw := &fakeGateway{
			registerFn: func(ctx context.Context, reg domain.Registration) error {
				return nil
			},
		}
		store := NewStore(gw, &memSnapshot{})

		err := store.Register(context.Background(), domain.Registration{Username: "jdoe"})

		require.NoError(t, err)
		assert.Equal(t, domain.StateAnonymous, store.State())
		assert.Nil(t, store.User())
	})

	t.Run("failure attaches the envelope without touching the session", func(t *testing.T) {
		env := domain.NewValidationError("/user/register", map[string]string{"email": "email must be a valid email address"})
		gw := &fakeGateway{
			registerFn: func(ctx context.Context, reg domain.Registration) error {
				return env
			},
		}
		store := NewStore(gw, &memSnapshot{})

		err := store.Register(context.Background(), domain.Registration{Username: "jdoe"})

		require.Error(t, err)
		assert.Equal(t, domain.StateAnonymous, store.State())
		require.NotNil(t, store.LastError())
		assert.Equal(t, domain.CodeValidation, store.LastError().Code)
	})
}

func TestStore_Logout(t *testing.T) {
	t.Run("clears local state and snapshot", func(t *testing.T) {
		snap := &memSnapshot{}
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			logoutFn: func(ctx context.Context) error { return nil },
		}
		store := NewStore(gw, snap)
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		store.Logout(context.Background())

		assert.Equal(t, domain.StateAnonymous, store.State())
		assert.Nil(t, store.User())
		_, err := snap.Load()
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("clears local state even when the remote call fails", func(t *testing.T) {
		snap := &memSnapshot{}
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			logoutFn: func(ctx context.Context) error {
				return domain.NewNetworkError("/auth/logout")
			},
		}
		store := NewStore(gw, snap)
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		store.Logout(context.Background())

		assert.Equal(t, domain.StateAnonymous, store.State())
		assert.Nil(t, store.User())
		_, err := snap.Load()
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}

func TestStore_Refresh(t *testing.T) {
	t.Run("failure expires the session and deletes the snapshot", func(t *testing.T) {
		snap := &memSnapshot{}
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			refreshFn: func(ctx context.Context) (*domain.User, error) {
				return nil, domain.NewEnvelope("Refresh token expired", "TOKEN_EXPIRED", "/auth/refresh", 401, nil)
			},
		}
		store := NewStore(gw, snap)
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		err := store.Refresh(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.StateExpired, store.State())
		assert.Nil(t, store.User())
		_, loadErr := snap.Load()
		assert.ErrorIs(t, loadErr, domain.ErrSnapshotNotFound)
	})

	t.Run("success keeps the session authenticated", func(t *testing.T) {
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			refreshFn: func(ctx context.Context) (*domain.User, error) {
				return nil, nil
			},
		}
		store := NewStore(gw, &memSnapshot{})
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		require.NoError(t, store.Refresh(context.Background()))

		assert.Equal(t, domain.StateAuthenticated, store.State())
		assert.Equal(t, "jdoe", store.User().Username)
	})

	t.Run("success adopts the updated identity and persists it", func(t *testing.T) {
		snap := &memSnapshot{}
		rotated := testUser()
		rotated.Email = "jdoe@corp.example.com"
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			refreshFn: func(ctx context.Context) (*domain.User, error) {
				return rotated, nil
			},
		}
		store := NewStore(gw, snap)
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		require.NoError(t, store.Refresh(context.Background()))

		assert.Equal(t, "jdoe@corp.example.com", store.User().Email)
		persisted, err := snap.Load()
		require.NoError(t, err)
		assert.Equal(t, "jdoe@corp.example.com", persisted.Email)
	})

	t.Run("refresh while anonymous is rejected without a network call", func(t *testing.T) {
		gw := &fakeGateway{
			refreshFn: func(ctx context.Context) (*domain.User, error) {
				t.Fatal("refresh must not be called while anonymous")
				return nil, nil
			},
		}
		store := NewStore(gw, &memSnapshot{})

		err := store.Refresh(context.Background())

		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestStore_ConfirmIdentity(t *testing.T) {
	t.Run("idempotent for an unchanged backend identity", func(t *testing.T) {
		gw := &fakeGateway{
			currentFn: func(ctx context.Context) (*domain.User, error) {
				return testUser(), nil
			},
		}
		store := NewStore(gw, &memSnapshot{})

		require.NoError(t, store.ConfirmIdentity(context.Background()))
		first := store.User()
		require.NoError(t, store.ConfirmIdentity(context.Background()))
		second := store.User()

		assert.Equal(t, first, second)
		assert.Equal(t, domain.StateAuthenticated, store.State())
	})

	t.Run("401 invalidates an established session", func(t *testing.T) {
		snap := &memSnapshot{}
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			currentFn: func(ctx context.Context) (*domain.User, error) {
				return nil, domain.NewEnvelope("authentication required", "UNAUTHORIZED", "/user/me", 401, nil)
			},
		}
		store := NewStore(gw, snap)
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		err := store.ConfirmIdentity(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.StateExpired, store.State())
		assert.Nil(t, store.User())
		_, loadErr := snap.Load()
		assert.ErrorIs(t, loadErr, domain.ErrSnapshotNotFound)
	})

	t.Run("network failure leaves an established session intact", func(t *testing.T) {
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			currentFn: func(ctx context.Context) (*domain.User, error) {
				return nil, domain.NewNetworkError("/user/me")
			},
		}
		store := NewStore(gw, &memSnapshot{})
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))

		err := store.ConfirmIdentity(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.StateAuthenticated, store.State())
		assert.NotNil(t, store.User())
	})

	t.Run("network failure resolves a hydrated hint to anonymous but keeps the snapshot", func(t *testing.T) {
		snap := &memSnapshot{}
		require.NoError(t, snap.Save(testUser()))
		gw := &fakeGateway{
			currentFn: func(ctx context.Context) (*domain.User, error) {
				return nil, domain.NewNetworkError("/user/me")
			},
		}
		store := NewStore(gw, snap)
		store.Hydrate()
		require.Equal(t, domain.StateAuthenticating, store.State())

		err := store.ConfirmIdentity(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.StateAnonymous, store.State())
		assert.Nil(t, store.User())
		_, loadErr := snap.Load()
		assert.NoError(t, loadErr)
	})

	t.Run("401 on a hydrated hint deletes the snapshot", func(t *testing.T) {
		snap := &memSnapshot{}
		require.NoError(t, snap.Save(testUser()))
		gw := &fakeGateway{
			currentFn: func(ctx context.Context) (*domain.User, error) {
				return nil, domain.NewEnvelope("authentication required", "UNAUTHORIZED", "/user/me", 401, nil)
			},
		}
		store := NewStore(gw, snap)
		store.Hydrate()

		err := store.ConfirmIdentity(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.StateAnonymous, store.State())
		_, loadErr := snap.Load()
		assert.ErrorIs(t, loadErr, domain.ErrSnapshotNotFound)
	})
}

func TestStore_Hydrate(t *testing.T) {
	t.Run("snapshot is a hint only", func(t *testing.T) {
		snap := &memSnapshot{}
		require.NoError(t, snap.Save(testUser()))
		store := NewStore(&fakeGateway{}, snap)

		store.Hydrate()

		assert.Equal(t, domain.StateAuthenticating, store.State())
		assert.False(t, store.State().Authenticated())
		require.NotNil(t, store.User())
		assert.Equal(t, "jdoe", store.User().Username)
	})

	t.Run("no snapshot stays anonymous", func(t *testing.T) {
		store := NewStore(&fakeGateway{}, &memSnapshot{})

		store.Hydrate()

		assert.Equal(t, domain.StateAnonymous, store.State())
	})
}

func TestStore_ClearError(t *testing.T) {
	t.Run("collapses an expired session to anonymous", func(t *testing.T) {
		gw := &fakeGateway{
			loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
				return testUser(), nil
			},
			refreshFn: func(ctx context.Context) (*domain.User, error) {
				return nil, domain.NewEnvelope("Refresh token expired", "TOKEN_EXPIRED", "/auth/refresh", 401, nil)
			},
		}
		store := NewStore(gw, &memSnapshot{})
		require.NoError(t, store.Login(context.Background(), domain.Credentials{Username: "jdoe", Password: "secret"}))
		require.Error(t, store.Refresh(context.Background()))
		require.Equal(t, domain.StateExpired, store.State())

		store.ClearError()

		assert.Equal(t, domain.StateAnonymous, store.State())
		assert.Nil(t, store.LastError())
	})
}
