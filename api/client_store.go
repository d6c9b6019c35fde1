package api

import (
	"time"

	"github.com/jmcleod/adminshell/shell"
)

// ClientStore abstracts the registry of live shell instances, one per
// browser client.
type ClientStore interface {
	// Get retrieves a client by id and marks it accessed. Returns false if
	// the client does not exist or has exceeded the idle timeout.
	Get(id string) (*Client, bool)
	// Put registers or replaces a client.
	Put(c *Client)
	// Delete removes a client and closes its shell.
	Delete(id string)
}

// Client is the server-side state bound to one client cookie.
type Client struct {
	ID             string
	Shell          *shell.Shell
	CSRFToken      string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
