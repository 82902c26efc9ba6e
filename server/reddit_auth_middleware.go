package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-reddit-gateway/clientcache"
	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
	"github.com/jrsteele09/go-reddit-gateway/reddit"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyRedditClient stores the resolved reddit client for the request
const ContextKeyRedditClient ContextKey = "reddit_client"

// Auxiliary credential headers. Their presence selects the app-credential
// construction branch.
const (
	headerClientID     = "X-Reddit-Client-Id"
	headerClientSecret = "X-Reddit-Client-Secret"
	headerUserAgent    = "X-Reddit-User-Agent"
)

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.Wrapf(errors.ErrAuthentication, "missing Authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errors.Wrapf(errors.ErrAuthentication, "invalid Authorization header format")
	}
	return parts[1], nil
}

// RequireRedditClient is the request authenticator: it resolves a live,
// authenticated reddit client for the request and injects it into the
// context.
//
// The bearer value is treated as an opaque Reddit access token, never as a
// session token; session tokens belong to the /auth family only. With the
// X-Reddit-* headers present the client is built with the supplied app
// credentials and the bearer injected as its access token; without them it
// is built token-only. Either way the handle is probed and cached under a
// key derived from the bearer (and app id) prefixes.
func (s *Server) RequireRedditClient(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeErrorStatus(w, http.StatusUnauthorized, err)
			return
		}

		clientID := r.Header.Get(headerClientID)
		clientSecret := r.Header.Get(headerClientSecret)
		userAgent := r.Header.Get(headerUserAgent)
		if userAgent == "" {
			userAgent = s.config.GetDefaultUserAgent()
		}

		// The cache key must identify the same session the factory would
		// build, so the app id only enters the key when the app-credential
		// branch would actually be taken.
		useApp := clientID != "" && clientSecret != ""
		appID := ""
		if useApp {
			appID = clientID
		}

		key := clientcache.Key(token, appID)
		client, err := s.cache.GetOrCreate(r.Context(), key, func(context.Context) (*reddit.Client, error) {
			if useApp {
				return s.factory.DialAppToken(reddit.App{
					ClientID:     clientID,
					ClientSecret: clientSecret,
					UserAgent:    userAgent,
				}, token), nil
			}
			return s.factory.DialToken(token, userAgent), nil
		})
		if err != nil {
			// The cache never stores a handle that failed its probe and
			// evicts stale entries itself; the whole request fails as
			// unauthorized with the upstream detail.
			writeErrorStatus(w, http.StatusUnauthorized, errors.Wrapf(errors.ErrAuthentication,
				"reddit authentication failed (%v)", err))
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyRedditClient, client)
		next(w, r.WithContext(ctx))
	}
}

func clientFromContext(ctx context.Context) (*reddit.Client, error) {
	client, ok := ctx.Value(ContextKeyRedditClient).(*reddit.Client)
	if !ok || client == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "no reddit client on request context")
	}
	return client, nil
}
