package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metaloot/registry/internal/web/templates/layout"
)

type contextKey string

const (
	flashCookieName = "flash"
	flashContextKey = contextKey("flash")
)

// GetFlash retrieves the flash message from the request context
// Returns nil if no flash message is set
func GetFlash(ctx context.Context) *layout.FlashMessage {
	flash, _ := ctx.Value(flashContextKey).(*layout.FlashMessage)
	return flash
}

// SetFlash sets a flash message to be displayed on the next request
func SetFlash(w http.ResponseWriter, flashType, message string) {
	// Encode as type:message, escaped for the cookie value
	value := url.QueryEscape(flashType + ":" + message)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   60, // 1 minute expiry
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flash returns middleware that reads and clears flash messages
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var flash *layout.FlashMessage

			cookie, err := r.Cookie(flashCookieName)
			if err == nil && cookie.Value != "" {
				if value, err := url.QueryUnescape(cookie.Value); err == nil {
					flash = parseFlash(value)
				}

				// Clear the cookie
				http.SetCookie(w, &http.Cookie{
					Name:     flashCookieName,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					Expires:  time.Unix(0, 0),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), flashContextKey, flash)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Flash types the explorer styles
const (
	FlashInfo  = "info"
	FlashError = "error"
)

// parseFlash decodes type:message. The type ends up in a class attribute,
// so anything unknown falls back to info.
func parseFlash(value string) *layout.FlashMessage {
	kind, message, ok := strings.Cut(value, ":")
	if !ok {
		return &layout.FlashMessage{Type: FlashInfo, Message: value}
	}
	if kind != FlashInfo && kind != FlashError {
		kind = FlashInfo
	}
	return &layout.FlashMessage{Type: kind, Message: message}
}
