package api

import (
	"crypto/subtle"
	"net/http"
)

const (
	csrfCookieName = "adminshell_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
)

// CSRFMiddleware enforces double-submit cookie CSRF protection on mutating
// requests. The submitted token, from the X-CSRF-Token header or the
// csrf_token form field, must equal both the CSRF cookie and the token
// issued to the client. It must run after ClientMiddleware.
func (a *API) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusForbidden, "missing CSRF token")
			return
		}
		submitted := r.Header.Get(csrfHeaderName)
		if submitted == "" {
			submitted = r.PostFormValue(csrfFormField)
		}
		c := clientFromContext(r.Context())
		if c == nil ||
			subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) != 1 ||
			subtle.ConstantTimeCompare([]byte(c.CSRFToken), []byte(submitted)) != 1 {
			writeError(w, http.StatusForbidden, "invalid CSRF token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeCSRFCookie sets the CSRF double-submit cookie. It is not HttpOnly so
// that scripts calling the JSON API can echo it in the X-CSRF-Token header.
func writeCSRFCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}
