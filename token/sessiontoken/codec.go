// Package sessiontoken encodes delegated Reddit credentials into signed,
// expiring bearer tokens. A session token never carries a live Reddit access
// token; it carries the means to re-derive one (a refresh token, or legacy
// username/password), so it survives upstream access-token rotation within
// its own validity window.
package sessiontoken

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jrsteele09/go-reddit-gateway/internal/config"
	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token kind discriminants. A token is only ever decoded by the extractor
// matching its declared kind.
const (
	KindRefresh  = "refresh"
	KindPassword = "password"
)

const signingMethod = "HS256"

// Credentials is a delegated credential set: the app identity plus either a
// refresh token or legacy username/password.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	RefreshToken string
	Username     string
	Password     string
}

// Codec issues and verifies session tokens with a process-wide secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a codec from the token configuration.
func NewCodec(cfg config.TokenConfig) *Codec {
	return &Codec{
		secret: []byte(cfg.GetSigningSecret()),
		ttl:    cfg.GetSessionTokenExpiry(),
	}
}

// TTL returns the lifetime stamped onto issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// IssueRefresh mints a refresh-credential session token.
func (c *Codec) IssueRefresh(creds Credentials) (string, error) {
	if creds.RefreshToken == "" {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[IssueRefresh] missing refresh token")
	}
	return c.sign(jwtlib.MapClaims{
		"reddit_client_id":     creds.ClientID,
		"reddit_client_secret": creds.ClientSecret,
		"reddit_user_agent":    creds.UserAgent,
		"reddit_refresh_token": creds.RefreshToken,
		"token_kind":           KindRefresh,
	})
}

// IssuePassword mints a legacy-credential session token.
func (c *Codec) IssuePassword(creds Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[IssuePassword] missing username or password")
	}
	return c.sign(jwtlib.MapClaims{
		"reddit_client_id":     creds.ClientID,
		"reddit_client_secret": creds.ClientSecret,
		"reddit_user_agent":    creds.UserAgent,
		"reddit_username":      creds.Username,
		"reddit_password":      creds.Password,
		"token_kind":           KindPassword,
	})
}

func (c *Codec) sign(claims jwtlib.MapClaims) (string, error) {
	now := NowTimeFunc()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(c.ttl).Unix()
	claims["jti"] = uuid.New().String()

	signedToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrapf(err, "[sign] failed to sign session token")
	}
	return signedToken, nil
}

// Verify checks signature and expiry and returns the raw claims. It never
// decodes leniently: a bad signature, wrong algorithm, or passed expiry all
// fail closed.
func (c *Codec) Verify(rawToken string) (jwtlib.MapClaims, error) {
	token, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{},
		func(*jwtlib.Token) (any, error) { return c.secret, nil },
		jwtlib.WithValidMethods([]string{signingMethod}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.Wrapf(errors.ErrTokenExpired, "session token expired")
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "session token verification failed (%v)", err)
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "session token claims unreadable")
	}
	return claims, nil
}

// ExtractRefreshCredentials verifies the token and returns its delegated
// credential set. Tokens declaring the legacy password kind fall through to
// the password extractor; any other kind is rejected, never guessed at.
func (c *Codec) ExtractRefreshCredentials(rawToken string) (Credentials, error) {
	claims, err := c.Verify(rawToken)
	if err != nil {
		return Credentials{}, err
	}

	switch kind, _ := claims["token_kind"].(string); kind {
	case KindRefresh:
		return credentialsFromClaims(claims, "reddit_refresh_token")
	case KindPassword:
		return passwordCredentialsFromClaims(claims)
	default:
		return Credentials{}, errors.Wrapf(errors.ErrInvalidTokenType, "token kind %q is not usable here", kind)
	}
}

// ExtractPasswordCredentials verifies the token and returns its legacy
// credential set. Only tokens declaring the password kind are accepted.
func (c *Codec) ExtractPasswordCredentials(rawToken string) (Credentials, error) {
	claims, err := c.Verify(rawToken)
	if err != nil {
		return Credentials{}, err
	}
	if kind, _ := claims["token_kind"].(string); kind != KindPassword {
		return Credentials{}, errors.Wrapf(errors.ErrInvalidTokenType, "token kind %q is not a password token", kind)
	}
	return passwordCredentialsFromClaims(claims)
}

func credentialsFromClaims(claims jwtlib.MapClaims, secretField string) (Credentials, error) {
	required := []string{"reddit_client_id", "reddit_client_secret", "reddit_user_agent", secretField}
	values := make(map[string]string, len(required))
	for _, field := range required {
		value, ok := claims[field].(string)
		if !ok || value == "" {
			return Credentials{}, errors.Wrapf(errors.ErrMalformedToken, "token missing required field: %s", field)
		}
		values[field] = value
	}
	return Credentials{
		ClientID:     values["reddit_client_id"],
		ClientSecret: values["reddit_client_secret"],
		UserAgent:    values["reddit_user_agent"],
		RefreshToken: values["reddit_refresh_token"],
	}, nil
}

func passwordCredentialsFromClaims(claims jwtlib.MapClaims) (Credentials, error) {
	required := []string{"reddit_client_id", "reddit_client_secret", "reddit_user_agent", "reddit_username", "reddit_password"}
	values := make(map[string]string, len(required))
	for _, field := range required {
		value, ok := claims[field].(string)
		if !ok || value == "" {
			return Credentials{}, errors.Wrapf(errors.ErrMalformedToken, "token missing required field: %s", field)
		}
		values[field] = value
	}
	return Credentials{
		ClientID:     values["reddit_client_id"],
		ClientSecret: values["reddit_client_secret"],
		UserAgent:    values["reddit_user_agent"],
		Username:     values["reddit_username"],
		Password:     values["reddit_password"],
	}, nil
}
