// Package gateway provides the credential checks behind the login form.
package gateway

import (
	"context"
	"time"

	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/session"
)

// DefaultDelay stands in for a network round trip.
const DefaultDelay = time.Second

// Simulated accepts any non-empty credentials after a fixed delay. It is a
// development stand-in for a real identity provider.
type Simulated struct {
	Delay time.Duration
}

var _ login.Gateway = (*Simulated)(nil)

// NewSimulated returns a Simulated gateway with the given delay.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay}
}

func (g *Simulated) Authenticate(ctx context.Context, email, password string) (session.Identity, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return session.Identity{}, ctx.Err()
		}
	}
	if email == "" || password == "" {
		return session.Identity{}, ErrInvalidCredentials
	}
	return session.Identity{Email: email}, nil
}
