package domain

import "context"

// AuthGateway is the outbound surface of the IdentityX API that the session
// store depends on. Implementations attach credentials themselves; callers
// never see cookies or tokens.
type AuthGateway interface {
	Login(ctx context.Context, creds Credentials) (*User, error)
	Register(ctx context.Context, reg Registration) error
	CurrentUser(ctx context.Context) (*User, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
}

// AddressGateway lists and creates address records for the current user.
type AddressGateway interface {
	ListAddresses(ctx context.Context) ([]Address, error)
	CreateAddress(ctx context.Context, addr Address) (*Address, error)
}

// SnapshotStore persists a single identity snapshot across restarts.
// Load returns ErrSnapshotNotFound when nothing is persisted.
type SnapshotStore interface {
	Load() (*User, error)
	Save(user *User) error
	Clear() error
}
