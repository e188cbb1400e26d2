package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wingscc/rollcall/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func cleanUsername(uname string) string {
	return strings.ToLower(strings.TrimSpace(uname))
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: cleanUsername(uname)})
}

// Authenticate checks the credentials of an active account and records the login.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(strings.TrimSpace(pwd)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	usr.LastLogin = nowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// ConfirmPassword guards destructive actions: the acting account must re-enter its password.
func (svc *Service) ConfirmPassword(ctx context.Context, id, pwd string) error {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pwd == "" || usr.CheckPassword(pwd) != nil {
		return core.NewValidationError(ErrInvalidCredentials,
			core.FieldError{Field: "password", Error: "incorrect password"})
	}
	return nil
}

// Save creates the account, or updates its password when it already exists.
func (svc *Service) Save(ctx context.Context, uname, pwd string) (User, error) {
	uname = cleanUsername(uname)
	if err := CheckPasswordPolicy(pwd, uname); err != nil {
		return User{}, err
	}

	now := nowFunc().UTC()
	usr, err := svc.GetByUsername(ctx, uname)
	switch {
	case err == ErrNotFound:
		usr = User{Name: uname, Username: uname, IsActive: true, CreatedAt: now, UpdatedAt: now}
		if err = usr.SetPassword(pwd); err != nil {
			return User{}, err
		}
		return svc.repo.CreateUser(ctx, usr)
	case err != nil:
		return User{}, err
	}

	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// ResetPassword sets the password of an existing account.
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = CheckPasswordPolicy(pwd, usr.Username); err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = nowFunc().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
