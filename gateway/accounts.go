package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/awnumar/memguard"

	"github.com/jmcleod/adminshell/internal/util"
	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/session"
	"github.com/jmcleod/adminshell/storage"
)

const (
	accountsBucket = "accounts"
	saltLen        = 16
	minPasswordLen = 8
)

var (
	// ErrInvalidCredentials covers unknown accounts and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned when adding an email that is already registered.
	ErrAccountExists = errors.New("account already exists")
)

// Account is the stored form of a login.
type Account struct {
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	Salt        []byte              `json:"salt"`
	Key         []byte              `json:"key"`
	Params      util.Argon2idParams `json:"params"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Accounts verifies credentials against argon2id hashes kept in a
// storage.Repository.
type Accounts struct {
	repo   storage.Repository
	params util.Argon2idParams
	// dummy is compared against when the account does not exist so both
	// failure paths cost the same.
	dummy Account
}

var _ login.Gateway = (*Accounts)(nil)

// AccountsOption configures an Accounts gateway.
type AccountsOption func(*Accounts)

// WithArgon2idParams overrides the hashing cost for new accounts.
func WithArgon2idParams(p util.Argon2idParams) AccountsOption {
	return func(a *Accounts) {
		a.params = p
	}
}

// NewAccounts returns a gateway over repo.
func NewAccounts(repo storage.Repository, opts ...AccountsOption) (*Accounts, error) {
	a := &Accounts{repo: repo, params: util.DefaultArgon2idParams()}
	for _, opt := range opts {
		opt(a)
	}
	if err := util.ValidateArgon2idParams(a.params); err != nil {
		return nil, err
	}
	salt, err := util.RandomBytes(saltLen)
	if err != nil {
		return nil, err
	}
	a.dummy = Account{Salt: salt, Key: make([]byte, a.params.KeyLen), Params: a.params}
	return a, nil
}

// Add registers a new account.
func (a *Accounts) Add(ctx context.Context, email, displayName, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := util.NormalizeEmail(email)
	if key == "" || !strings.Contains(key, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	salt, err := util.RandomBytes(saltLen)
	if err != nil {
		return err
	}
	hash, err := a.derive(password, salt, a.params)
	if err != nil {
		return err
	}
	acct := Account{
		Email:       key,
		DisplayName: strings.TrimSpace(displayName),
		Salt:        salt,
		Key:         hash,
		Params:      a.params,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.put(key, acct); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return fmt.Errorf("%s: %w", key, ErrAccountExists)
		}
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

// Authenticate checks email and password.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (session.Identity, error) {
	if err := ctx.Err(); err != nil {
		return session.Identity{}, err
	}
	key := util.NormalizeEmail(email)
	acct, err := storage.GetJSON[Account](a.repo, accountsBucket, key)
	found := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return session.Identity{}, fmt.Errorf("loading account: %w", err)
	}
	if !found {
		acct = a.dummy
	}

	ok, err := a.compare(password, acct)
	if err != nil {
		return session.Identity{}, err
	}
	if !ok || !found {
		return session.Identity{}, ErrInvalidCredentials
	}
	return session.Identity{Email: acct.Email, DisplayName: acct.DisplayName}, nil
}

// List returns the registered account emails.
func (a *Accounts) List() ([]string, error) {
	return a.repo.List(accountsBucket)
}

func (a *Accounts) put(key string, acct Account) error {
	return storage.PutNewJSON(a.repo, accountsBucket, key, acct)
}

// derive hashes password from a locked buffer that is destroyed afterwards.
func (a *Accounts) derive(password string, salt []byte, p util.Argon2idParams) ([]byte, error) {
	buf := memguard.NewBufferFromBytes([]byte(password))
	defer buf.Destroy()
	return util.DeriveArgon2idKey(buf.Bytes(), salt, p)
}

func (a *Accounts) compare(password string, acct Account) (bool, error) {
	buf := memguard.NewBufferFromBytes([]byte(password))
	defer buf.Destroy()
	return util.CompareArgon2idKey(buf.Bytes(), acct.Salt, acct.Params, acct.Key)
}
