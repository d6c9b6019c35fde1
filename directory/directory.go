// Package directory serves the data shown on the dashboard and the user
// list.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/jmcleod/adminshell/storage"
)

const (
	usersBucket = "users"
	statsBucket = "stats"
	statsID     = "dashboard"
)

// Status of a user row.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is one row of the user list.
type User struct {
	ID     int    `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Email  string `json:"email" toml:"email"`
	Role   string `json:"role" toml:"role"`
	Status Status `json:"status" toml:"status"`
}

// Active reports whether the user's status is active.
func (u User) Active() bool {
	return u.Status == StatusActive
}

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers     int   `json:"total_users" toml:"total_users"`
	TotalProjects  int   `json:"total_projects" toml:"total_projects"`
	ActiveProjects int   `json:"active_projects" toml:"active_projects"`
	Revenue        int64 `json:"revenue" toml:"revenue"`
}

// Directory reads and writes directory data in a repository.
type Directory struct {
	repo storage.Repository
}

// New returns a Directory over repo.
func New(repo storage.Repository) *Directory {
	return &Directory{repo: repo}
}

// Users returns all users ordered by ID.
func (d *Directory) Users(ctx context.Context) ([]User, error) {
	ids, err := d.repo.List(usersBucket)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]User, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u, err := storage.GetJSON[User](d.repo, usersBucket, id)
		if err != nil {
			return nil, fmt.Errorf("loading user %s: %w", id, err)
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// PutUser creates or replaces a user.
func (d *Directory) PutUser(ctx context.Context, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateUser(u); err != nil {
		return err
	}
	return storage.PutJSON(d.repo, usersBucket, userKey(u.ID), u)
}

// Stats returns the dashboard counters; zero values when none are stored.
func (d *Directory) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	s, err := storage.GetJSON[Stats](d.repo, statsBucket, statsID)
	if errors.Is(err, storage.ErrNotFound) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("loading stats: %w", err)
	}
	return s, nil
}

// PutStats replaces the dashboard counters.
func (d *Directory) PutStats(ctx context.Context, s Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return storage.PutJSON(d.repo, statsBucket, statsID, s)
}

// Empty reports whether no directory data has been stored.
func (d *Directory) Empty() (bool, error) {
	ids, err := d.repo.List(usersBucket)
	if err != nil {
		return false, err
	}
	if len(ids) > 0 {
		return false, nil
	}
	_, err = d.repo.Get(statsBucket, statsID)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	return false, err
}

func validateUser(u User) error {
	if u.ID <= 0 {
		return fmt.Errorf("user id must be positive, got %d", u.ID)
	}
	switch u.Status {
	case StatusActive, StatusInactive:
	default:
		return fmt.Errorf("user %d: unknown status %q", u.ID, u.Status)
	}
	return nil
}

// userKey zero-pads ids so the repository's byte order matches numeric order.
func userKey(id int) string {
	s := strconv.Itoa(id)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}
