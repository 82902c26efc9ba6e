// Package reddit is a minimal client for Reddit's OAuth2 and REST API.
// It owns token acquisition (authorization-code exchange, password grant,
// refresh-token and raw-token sessions) and the small slice of the content
// API the gateway exposes.
package reddit

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-reddit-gateway/internal/config"
	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

// App holds a Reddit application's identity. Every authenticated session is
// opened on behalf of one of these.
type App struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// Factory builds authenticated clients against a configurable set of Reddit
// endpoints. Tests point it at an httptest server.
type Factory struct {
	authorizeURL string
	tokenURL     string
	apiBaseURL   string
	baseClient   *http.Client
}

// FactoryOption modifies a Factory instance.
type FactoryOption func(*Factory)

// WithBaseHTTPClient overrides the HTTP client used for token and API calls.
func WithBaseHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) {
		f.baseClient = client
	}
}

// NewFactory creates a Factory from the Reddit endpoint configuration.
func NewFactory(cfg config.RedditConfig, options ...FactoryOption) *Factory {
	f := &Factory{
		authorizeURL: cfg.GetRedditAuthorizeURL(),
		tokenURL:     cfg.GetRedditTokenURL(),
		apiBaseURL:   cfg.GetRedditAPIBaseURL(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// AuthorizeURL returns the endpoint users are redirected to for the
// authorization-code flow.
func (f *Factory) AuthorizeURL() string {
	return f.authorizeURL
}

func (f *Factory) oauthConfig(app App, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.authorizeURL,
			TokenURL:  f.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader, // Reddit requires HTTP basic auth on the token endpoint
		},
	}
}

// tokenContext returns a context that makes oauth2 token-endpoint calls go
// through a transport carrying the app's User-Agent. Reddit rejects requests
// with a default library User-Agent.
func (f *Factory) tokenContext(ctx context.Context, userAgent string, transport *http.Transport) context.Context {
	httpClient := &http.Client{
		Transport: &userAgentTransport{base: transport, userAgent: userAgent},
	}
	if f.baseClient != nil {
		httpClient = f.baseClient
	}
	return context.WithValue(ctx, oauth2.HTTPClient, httpClient)
}

func newTransport() *http.Transport {
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		return t.Clone()
	}
	return &http.Transport{}
}

// DialRefreshToken opens a session from an app identity and a previously
// issued refresh token. The access token is fetched lazily on first use.
func (f *Factory) DialRefreshToken(ctx context.Context, app App, refreshToken string) (*Client, error) {
	if refreshToken == "" {
		return nil, errors.Wrapf(errors.ErrAuthentication, "[DialRefreshToken] missing refresh token")
	}
	transport := newTransport()
	cfg := f.oauthConfig(app, "")
	source := cfg.TokenSource(f.tokenContext(ctx, app.UserAgent, transport), &oauth2.Token{RefreshToken: refreshToken})
	return f.newClient(app.UserAgent, source, transport), nil
}

// DialPassword opens a session using Reddit's legacy password grant.
func (f *Factory) DialPassword(ctx context.Context, app App, username, password string) (*Client, error) {
	transport := newTransport()
	cfg := f.oauthConfig(app, "")
	tokenCtx := f.tokenContext(ctx, app.UserAgent, transport)
	token, err := cfg.PasswordCredentialsToken(tokenCtx, username, password)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrAuthentication, "[DialPassword] password grant failed (%v)", err)
	}
	return f.newClient(app.UserAgent, cfg.TokenSource(tokenCtx, token), transport), nil
}

// ExchangeCode trades an authorization code for tokens and returns the
// resulting session along with the granted refresh token. A successful
// exchange does not prove the session is usable; callers must still probe it.
func (f *Factory) ExchangeCode(ctx context.Context, app App, redirectURI, code string) (*Client, string, error) {
	transport := newTransport()
	cfg := f.oauthConfig(app, redirectURI)
	tokenCtx := f.tokenContext(ctx, app.UserAgent, transport)
	token, err := cfg.Exchange(tokenCtx, code)
	if err != nil {
		return nil, "", errors.Wrapf(errors.ErrAuthentication, "[ExchangeCode] code exchange failed (%v)", err)
	}
	return f.newClient(app.UserAgent, cfg.TokenSource(tokenCtx, token), transport), token.RefreshToken, nil
}

// DialToken opens a session directly from a raw access token, with no app
// identity ("token-only" construction). Nothing is sent upstream until the
// client is used.
func (f *Factory) DialToken(accessToken, userAgent string) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "bearer"})
	return f.newClient(userAgent, source, newTransport())
}

// DialAppToken opens a session from an app identity with a caller-supplied
// access token injected in place of a token fetch.
func (f *Factory) DialAppToken(app App, accessToken string) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "bearer"})
	return f.newClient(app.UserAgent, source, newTransport())
}

func (f *Factory) newClient(userAgent string, source oauth2.TokenSource, transport *http.Transport) *Client {
	var base http.RoundTripper = &userAgentTransport{base: transport, userAgent: userAgent}
	if f.baseClient != nil && f.baseClient.Transport != nil {
		base = f.baseClient.Transport
		transport = nil
	}
	return &Client{
		http: &http.Client{
			Transport: &oauth2.Transport{Base: base, Source: source},
		},
		apiBaseURL: f.apiBaseURL,
		userAgent:  userAgent,
		transport:  transport,
	}
}

// userAgentTransport stamps Reddit's required User-Agent header onto every
// outbound request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
