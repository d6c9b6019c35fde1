package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/jmcleod/adminshell/storage"
)

// Seed is the on-disk form of a directory snapshot:
//
//	[stats]
//	total_users = 1234
//
//	[[users]]
//	id = 1
//	name = "Kim Cheolsu"
//	status = "active"
type Seed struct {
	Stats Stats  `toml:"stats"`
	Users []User `toml:"users"`
}

// DemoSeed is the sample data shipped with the shell.
func DemoSeed() Seed {
	return Seed{
		Stats: Stats{TotalUsers: 1234, TotalProjects: 56, ActiveProjects: 23, Revenue: 12500000},
		Users: []User{
			{ID: 1, Name: "Kim Cheolsu", Email: "kim@example.com", Role: "Administrator", Status: StatusActive},
			{ID: 2, Name: "Lee Younghee", Email: "lee@example.com", Role: "User", Status: StatusActive},
			{ID: 3, Name: "Park Minsu", Email: "park@example.com", Role: "User", Status: StatusInactive},
			{ID: 4, Name: "Choi Jieun", Email: "choi@example.com", Role: "Manager", Status: StatusActive},
		},
	}
}

// ParseSeed decodes TOML seed data.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("parsing seed: %w", err)
	}
	for _, u := range s.Users {
		if err := validateUser(u); err != nil {
			return Seed{}, fmt.Errorf("parsing seed: %w", err)
		}
	}
	return s, nil
}

// LoadSeed reads a TOML seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// MarshalSeed encodes s as TOML.
func MarshalSeed(s Seed) ([]byte, error) {
	return toml.Marshal(s)
}

// Apply writes s into the directory. Users are written in one batch; the
// stats record is replaced.
func (d *Directory) Apply(ctx context.Context, s Seed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.repo.Batch(usersBucket, func(tx storage.BatchTx) error {
		for _, u := range s.Users {
			if err := validateUser(u); err != nil {
				return err
			}
			data, err := json.Marshal(u)
			if err != nil {
				return err
			}
			if err := tx.Put(userKey(u.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	return d.PutStats(ctx, s.Stats)
}
