package ledger

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// UserStore is the minimal user directory the ledger partitions by.
type UserStore struct {
	*base
}

func (s *UserStore) users(ctx context.Context) []core.User {
	return storage.Load[[]core.User](ctx, s.gateway, s.logger, storage.DocUsers)
}

// Register adds u, failing with core.ErrUsernameTaken on a duplicate username.
func (s *UserStore) Register(ctx context.Context, u core.User) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return core.ErrEmptyUsername
	}

	unlock := s.lockDocument(storage.DocUsers)
	defer unlock()

	users, err := storage.Read[[]core.User](ctx, s.gateway, storage.DocUsers)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for _, existing := range users {
		if existing.Username == u.Username {
			return fmt.Errorf("register %s: %w", u.Username, core.ErrUsernameTaken)
		}
	}
	if err := storage.Save(ctx, s.gateway, s.logger, storage.DocUsers, append(users, u)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered",
		log.NewFields().WithOperation(log.OpCreate).WithUser(u.Username).ToSlice()...)
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, username string) (core.User, error) {
	for _, u := range s.users(ctx) {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("%s: %w", username, core.ErrUserNotFound)
}

// ValidateUser reports whether password matches the stored user's password.
func (s *UserStore) ValidateUser(ctx context.Context, username, password string) bool {
	u, err := s.GetUser(ctx, username)
	if err != nil {
		return false
	}
	return u.ValidatePassword(password)
}

func (s *UserStore) UpdateCurrency(ctx context.Context, username, currency string) error {
	unlock := s.lockDocument(storage.DocUsers)
	defer unlock()

	users, err := storage.Read[[]core.User](ctx, s.gateway, storage.DocUsers)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for i := range users {
		if users[i].Username == username {
			users[i].Currency = strings.ToUpper(strings.TrimSpace(currency))
			return storage.Save(ctx, s.gateway, s.logger, storage.DocUsers, users)
		}
	}
	return fmt.Errorf("%s: %w", username, core.ErrUserNotFound)
}
