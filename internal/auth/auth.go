// Package auth is the credential store: account creation and login over the
// users table, with bcrypt-hashed passwords and linear-scan lookup. The
// pipeline has no dependency on anything in here.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tally/internal/store"
)

var (
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserColumns is the header of the users table.
var UserColumns = []string{"Username", "Email", "Password"}

// User is a credential row with the password hash withheld.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Service struct {
	store store.TableStore
}

func New(st store.TableStore) *Service {
	return &Service{store: st}
}

// CreateAccount stores a new user with a bcrypt-hashed password. Usernames
// and emails are unique, compared case-insensitively.
func (s *Service) CreateAccount(ctx context.Context, username, email, password string) error {
	exists, err := s.userExists(ctx, username, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	if err := s.store.Append(ctx, store.TableUsers, [][]string{{username, email, string(hash)}}); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Login verifies the username/password pair against the stored hash.
func (s *Service) Login(ctx context.Context, username, password string) error {
	rows, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) < 3 || row[0] != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(row[2]), []byte(password)) == nil {
			return nil
		}
		return ErrInvalidCredentials
	}
	return ErrInvalidCredentials
}

// ListUsers returns every user without password material.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		users = append(users, User{Username: row[0], Email: row[1]})
	}
	return users, nil
}

func (s *Service) userExists(ctx context.Context, username, email string) (bool, error) {
	rows, err := s.loadUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if strings.EqualFold(row[0], username) || strings.EqualFold(row[1], email) {
			return true, nil
		}
	}
	return false, nil
}

// loadUsers returns the users table without its header. An absent table is
// just an empty user list.
func (s *Service) loadUsers(ctx context.Context) ([][]string, error) {
	rows, err := s.store.Load(ctx, store.TableUsers)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load users: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func (s *Service) ensureTable(ctx context.Context) error {
	exists, err := s.store.Exists(ctx, store.TableUsers)
	if err != nil {
		return fmt.Errorf("check users table: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.store.Save(ctx, store.TableUsers, [][]string{UserColumns}); err != nil {
		return fmt.Errorf("initialize users table: %w", err)
	}
	return nil
}
