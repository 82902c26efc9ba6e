package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

// decodeJSON parses a request body into dst, mapping failures onto the
// invalid-request error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "invalid JSON body (%v)", err)
	}
	return nil
}

// requireFields reports a missing field as an invalid-request error.
func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return errors.Wrapf(errors.ErrInvalidRequest, "missing required field: %s", name)
		}
	}
	return nil
}

type authorizeURLRequest struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURI  string   `json:"redirect_uri"`
	UserAgent    string   `json:"user_agent"`
	Scopes       []string `json:"scopes"`
	State        string   `json:"state"`
	Duration     string   `json:"duration"`
}

func (r authorizeURLRequest) validate() error {
	return requireFields(map[string]string{
		"client_id":     r.ClientID,
		"client_secret": r.ClientSecret,
		"redirect_uri":  r.RedirectURI,
		"user_agent":    r.UserAgent,
	})
}

type authorizeURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
	ExpiresIn        int    `json:"expires_in"`
}

type callbackRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	UserAgent    string `json:"user_agent"`
	Code         string `json:"code"`
	State        string `json:"state"`
}

func (r callbackRequest) validate() error {
	return requireFields(map[string]string{
		"client_id":     r.ClientID,
		"client_secret": r.ClientSecret,
		"redirect_uri":  r.RedirectURI,
		"user_agent":    r.UserAgent,
		"code":          r.Code,
	})
}

type loginRefreshRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	UserAgent    string `json:"user_agent"`
	RefreshToken string `json:"refresh_token"`
}

func (r loginRefreshRequest) validate() error {
	return requireFields(map[string]string{
		"client_id":     r.ClientID,
		"client_secret": r.ClientSecret,
		"user_agent":    r.UserAgent,
		"refresh_token": r.RefreshToken,
	})
}

type loginRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	UserAgent    string `json:"user_agent"`
}

func (r loginRequest) validate() error {
	return requireFields(map[string]string{
		"client_id":     r.ClientID,
		"client_secret": r.ClientSecret,
		"username":      r.Username,
		"password":      r.Password,
		"user_agent":    r.UserAgent,
	})
}

type tokenResponse struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	ExpiresIn      int    `json:"expires_in"`
	RedditUsername string `json:"reddit_username"`
}

type validateResponse struct {
	Valid        bool    `json:"valid"`
	Username     string  `json:"username,omitempty"`
	UserID       string  `json:"user_id,omitempty"`
	CreatedUTC   float64 `json:"created_utc,omitempty"`
	CommentKarma int     `json:"comment_karma,omitempty"`
	LinkKarma    int     `json:"link_karma,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type submitRequest struct {
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	NSFW        bool   `json:"nsfw"`
	Spoiler     bool   `json:"spoiler"`
	SendReplies bool   `json:"send_replies"`
}

func (r submitRequest) validate() error {
	return requireFields(map[string]string{
		"subreddit": r.Subreddit,
		"title":     r.Title,
	})
}

type commentRequest struct {
	ParentFullname string `json:"parent_fullname"`
	Text           string `json:"text"`
}

func (r commentRequest) validate() error {
	return requireFields(map[string]string{
		"parent_fullname": r.ParentFullname,
		"text":            r.Text,
	})
}

type voteRequest struct {
	Fullname  string `json:"fullname"`
	Direction int    `json:"direction"`
}

func (r voteRequest) validate() error {
	if err := requireFields(map[string]string{"fullname": r.Fullname}); err != nil {
		return err
	}
	if r.Direction < -1 || r.Direction > 1 {
		return errors.Wrapf(errors.ErrInvalidRequest, "direction must be -1, 0, or 1")
	}
	return nil
}

type saveRequest struct {
	Fullname string `json:"fullname"`
	Unsave   bool   `json:"unsave"`
}

func (r saveRequest) validate() error {
	return requireFields(map[string]string{"fullname": r.Fullname})
}

type subscribeRequest struct {
	Subreddit   string `json:"subreddit"`
	Unsubscribe bool   `json:"unsubscribe"`
}

func (r subscribeRequest) validate() error {
	return requireFields(map[string]string{"subreddit": r.Subreddit})
}

type editRequest struct {
	Fullname string `json:"fullname"`
	Text     string `json:"text"`
}

func (r editRequest) validate() error {
	return requireFields(map[string]string{
		"fullname": r.Fullname,
		"text":     r.Text,
	})
}

type inboxReadRequest struct {
	IDs []string `json:"ids"`
}

func (r inboxReadRequest) validate() error {
	if len(r.IDs) == 0 {
		return errors.Wrapf(errors.ErrInvalidRequest, "missing required field: ids")
	}
	return nil
}
