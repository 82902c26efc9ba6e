// Package auth implements the gateway's authorization flows: generating
// Reddit authorization URLs, exchanging authorization codes, logging in with
// a refresh token or legacy credentials, and validating session tokens.
// Every flow that opens a transient Reddit client closes it on all exit
// paths.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
	"github.com/jrsteele09/go-reddit-gateway/reddit"
	"github.com/jrsteele09/go-reddit-gateway/token/sessiontoken"
)

const stateEntropyBytes = 32

// Service orchestrates the authentication flows against Reddit and mints
// session tokens for successful ones.
type Service struct {
	factory *reddit.Factory
	codec   *sessiontoken.Codec
}

// NewService initializes the flow orchestrator with its dependencies.
func NewService(factory *reddit.Factory, codec *sessiontoken.Codec) (*Service, error) {
	if factory == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewService] reddit factory is required")
	}
	if codec == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewService] session token codec is required")
	}
	return &Service{factory: factory, codec: codec}, nil
}

// SessionTTL reports the lifetime applied to minted session tokens.
func (s *Service) SessionTTL() time.Duration {
	return s.codec.TTL()
}

// AuthorizeURLParams describes an authorization-URL request.
type AuthorizeURLParams struct {
	App         reddit.App
	RedirectURI string
	Scopes      []string
	State       string
	Duration    string
}

// AuthorizeURLResult carries the URL to redirect the user to and the state
// the caller must correlate on callback.
type AuthorizeURLResult struct {
	URL   string
	State string
}

// AuthorizeURL builds Reddit's authorization URL for the code flow. When the
// caller supplies no state, a fresh random one is generated and returned.
// No state is persisted server-side: correlating it on callback is the
// caller's responsibility.
func (s *Service) AuthorizeURL(params AuthorizeURLParams) (*AuthorizeURLResult, error) {
	state := params.State
	if state == "" {
		generated, err := generateState()
		if err != nil {
			return nil, errors.Wrapf(err, "[AuthorizeURL] generating state")
		}
		state = generated
	}

	duration := params.Duration
	if duration == "" {
		duration = "permanent"
	}
	scopes := params.Scopes
	if len(scopes) == 0 {
		scopes = []string{"*"}
	}

	values := url.Values{
		"client_id":     {params.App.ClientID},
		"response_type": {"code"},
		"state":         {state},
		"redirect_uri":  {params.RedirectURI},
		"duration":      {duration},
		"scope":         {strings.Join(scopes, " ")},
	}

	return &AuthorizeURLResult{
		URL:   s.factory.AuthorizeURL() + "?" + values.Encode(),
		State: state,
	}, nil
}

// CallbackParams describes the authorization-code callback.
type CallbackParams struct {
	App         reddit.App
	RedirectURI string
	Code        string
	State       string
}

// TokenResult is the outcome of a successful login flow.
type TokenResult struct {
	SessionToken string
	ExpiresIn    int
	Username     string
}

// Callback exchanges an authorization code for tokens and mints a
// refresh-credential session token. The identity probe after the exchange is
// mandatory: a successful exchange alone does not prove the token is usable.
func (s *Service) Callback(ctx context.Context, params CallbackParams) (*TokenResult, error) {
	client, refreshToken, err := s.factory.ExchangeCode(ctx, params.App, params.RedirectURI, params.Code)
	if err != nil {
		return nil, errors.Wrapf(err, "[Callback] code exchange")
	}
	defer client.Close()

	account, err := client.Me(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[Callback] exchanged token failed identity probe")
	}
	if refreshToken == "" {
		return nil, errors.Wrapf(errors.ErrAuthentication,
			"[Callback] no refresh token granted; request duration=permanent when authorizing")
	}

	log.Info().Str("username", account.Name).Msg("authorization code exchanged")
	return s.mintRefresh(params.App, refreshToken, account.Name)
}

// LoginRefreshToken opens a transient session from an out-of-band refresh
// token, probes it, and mints a refresh-credential session token.
func (s *Service) LoginRefreshToken(ctx context.Context, app reddit.App, refreshToken string) (*TokenResult, error) {
	client, err := s.factory.DialRefreshToken(ctx, app, refreshToken)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoginRefreshToken] opening session")
	}
	defer client.Close()

	account, err := client.Me(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoginRefreshToken] refresh token failed identity probe")
	}

	log.Info().Str("username", account.Name).Msg("refresh token login")
	return s.mintRefresh(app, refreshToken, account.Name)
}

// LoginPassword is the deprecated direct-credential flow, retained for
// backward compatibility. It mints a legacy-credential session token.
func (s *Service) LoginPassword(ctx context.Context, app reddit.App, username, password string) (*TokenResult, error) {
	client, err := s.factory.DialPassword(ctx, app, username, password)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoginPassword] opening session")
	}
	defer client.Close()

	account, err := client.Me(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoginPassword] credentials failed identity probe")
	}

	sessionToken, err := s.codec.IssuePassword(sessiontoken.Credentials{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		UserAgent:    app.UserAgent,
		Username:     username,
		Password:     password,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[LoginPassword] minting session token")
	}

	log.Info().Str("username", account.Name).Msg("legacy credential login")
	return &TokenResult{
		SessionToken: sessionToken,
		ExpiresIn:    int(s.codec.TTL().Seconds()),
		Username:     account.Name,
	}, nil
}

func (s *Service) mintRefresh(app reddit.App, refreshToken, username string) (*TokenResult, error) {
	sessionToken, err := s.codec.IssueRefresh(sessiontoken.Credentials{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		UserAgent:    app.UserAgent,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[mintRefresh] minting session token")
	}
	return &TokenResult{
		SessionToken: sessionToken,
		ExpiresIn:    int(s.codec.TTL().Seconds()),
		Username:     username,
	}, nil
}

// ValidationResult reports a session token's usability as data. Valid false
// plus Error is an answer, not a failure.
type ValidationResult struct {
	Valid        bool
	Username     string
	UserID       string
	CreatedUTC   float64
	CommentKarma int
	LinkKarma    int
	Error        string
}

// Validate decodes a session token by its declared kind, reconstructs a
// transient session from the embedded credentials, and probes it. It never
// returns an error; failures become data.
func (s *Service) Validate(ctx context.Context, rawToken string) ValidationResult {
	creds, err := s.codec.ExtractRefreshCredentials(rawToken)
	if err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}

	app := reddit.App{ClientID: creds.ClientID, ClientSecret: creds.ClientSecret, UserAgent: creds.UserAgent}
	var client *reddit.Client
	if creds.RefreshToken != "" {
		client, err = s.factory.DialRefreshToken(ctx, app, creds.RefreshToken)
	} else {
		client, err = s.factory.DialPassword(ctx, app, creds.Username, creds.Password)
	}
	if err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}
	defer client.Close()

	account, err := client.Me(ctx)
	if err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}

	return ValidationResult{
		Valid:        true,
		Username:     account.Name,
		UserID:       account.ID,
		CreatedUTC:   account.CreatedUTC,
		CommentKarma: account.CommentKarma,
		LinkKarma:    account.LinkKarma,
	}
}

func generateState() (string, error) {
	buf := make([]byte, stateEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
