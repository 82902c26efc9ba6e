package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

// Client is an authenticated Reddit session. Construct one through a
// Factory dial method and release it with Close when it isn't cached.
type Client struct {
	http       *http.Client
	apiBaseURL string
	userAgent  string
	transport  *http.Transport
}

// Account is the authenticated identity returned by /api/v1/me and
// /user/{name}/about.
type Account struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CreatedUTC   float64 `json:"created_utc"`
	CommentKarma int     `json:"comment_karma"`
	LinkKarma    int     `json:"link_karma"`
	TotalKarma   int     `json:"total_karma"`
	Verified     bool    `json:"verified"`
	IsMod        bool    `json:"is_mod"`
}

// Me fetches the authenticated account. This doubles as the liveness probe:
// it is the cheapest call that proves the session's token is usable.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.get(ctx, "/api/v1/me", nil, &account); err != nil {
		return nil, errors.Wrapf(err, "[Me] identity probe failed")
	}
	if account.Name == "" {
		return nil, errors.Wrapf(errors.ErrAuthentication, "[Me] upstream returned no identity")
	}
	return &account, nil
}

// Close releases the session's idle upstream connections. Safe to call on
// every exit path.
func (c *Client) Close() error {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.apiBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "[get] building request for %s", path)
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrapf(err, "[postForm] building request for %s", path)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// Sessions with a lazy token source fetch their access token on
		// first use, so a rejected grant arrives here as a transport error.
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode >= 400 && retrieveErr.Response.StatusCode < 500 {
			return errors.Wrapf(errors.ErrAuthentication, "%s %s token fetch rejected (%v)", req.Method, req.URL.Path, err)
		}
		return errors.Wrapf(errors.ErrUpstream, "%s %s (%v)", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrUpstream, "decoding %s response (%v)", req.URL.Path, err)
	}
	return nil
}

// statusError maps upstream HTTP failures onto the gateway's error taxonomy.
// Rate limits and not-found responses keep their own identities rather than
// collapsing into a generic upstream error.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = errors.ErrAuthentication
	case http.StatusForbidden:
		sentinel = errors.ErrForbidden
	case http.StatusNotFound:
		sentinel = errors.ErrNotFound
	case http.StatusTooManyRequests:
		sentinel = errors.ErrRateLimited
	default:
		sentinel = errors.ErrUpstream
	}
	return fmt.Errorf("reddit responded %d: %s: %w", resp.StatusCode, detail, sentinel)
}
