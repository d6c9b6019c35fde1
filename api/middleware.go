package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmcleod/adminshell/internal/uuid"
	"github.com/jmcleod/adminshell/shell"
)

type contextKey int

const clientKey contextKey = iota

const clientCookieName = "adminshell_client"

// ClientMiddleware binds the request to the shell instance named by the
// client cookie. A missing, tampered or expired cookie starts a fresh
// Anonymous client and sets new cookies.
func (a *API) ClientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := a.clientFromCookie(r)
		if !ok {
			if allowed, retryAfter := a.creations.allow(remoteIP(r)); !allowed {
				a.audit.log(AuditClientRateLimited, r)
				writeRateLimited(w, retryAfter)
				return
			}
			c = a.newClient()
			token, err := a.tokens.sign(c.ID, c.CreatedAt)
			if err != nil {
				a.clients.Delete(c.ID)
				writeInternalError(w, a.logger, "failed to start client", err)
				return
			}
			writeClientCookie(w, r, token)
			writeCSRFCookie(w, r, c.CSRFToken)
			a.audit.logClient(AuditClientCreated, r, c.ID)
		}
		ctx := context.WithValue(r.Context(), clientKey, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) clientFromCookie(r *http.Request) (*Client, bool) {
	cookie, err := r.Cookie(clientCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	id, err := a.tokens.parse(cookie.Value)
	if err != nil {
		a.logger.Debug("rejected client cookie", slog.Any("error", err))
		return nil, false
	}
	return a.clients.Get(id)
}

func (a *API) newClient() *Client {
	now := time.Now()
	c := &Client{
		ID:             uuid.New(),
		Shell:          shell.New(a.table, a.gateway, a.logger),
		CSRFToken:      uuid.New(),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	a.clients.Put(c)
	return c
}

func writeClientCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}

func clientFromContext(ctx context.Context) *Client {
	c, _ := ctx.Value(clientKey).(*Client)
	return c
}
