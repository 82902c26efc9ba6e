package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

type endpointsCfg struct {
	base string
}

func (c endpointsCfg) GetRedditAuthorizeURL() string { return c.base + "/api/v1/authorize" }
func (c endpointsCfg) GetRedditTokenURL() string     { return c.base + "/api/v1/access_token" }
func (c endpointsCfg) GetRedditAPIBaseURL() string   { return c.base }

func newTestFactory(t *testing.T, handler http.Handler) *Factory {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)
	return NewFactory(endpointsCfg{base: upstream.URL})
}

func TestMeReturnsAccount(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/me", r.URL.Path)
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		require.Equal(t, "TestAgent/1.0", r.Header.Get("User-Agent"))
		_ = json.NewEncoder(w).Encode(Account{ID: "abc", Name: "testuser", LinkKarma: 42})
	}))

	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	account, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "testuser", account.Name)
	require.Equal(t, 42, account.LinkKarma)
}

func TestMeRejectsAnonymousIdentity(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))

	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	_, err := client.Me(context.Background())
	require.ErrorIs(t, err, errors.ErrAuthentication)
}

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, errors.ErrAuthentication},
		{http.StatusForbidden, errors.ErrForbidden},
		{http.StatusNotFound, errors.ErrNotFound},
		{http.StatusTooManyRequests, errors.ErrRateLimited},
		{http.StatusBadGateway, errors.ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tc.status)
			}))
			client := factory.DialToken("access-token", "TestAgent/1.0")
			defer client.Close()

			_, err := client.Me(context.Background())
			require.ErrorIs(t, err, tc.sentinel)
			require.Contains(t, err.Error(), "upstream says no")
		})
	}
}

func TestSubredditPostsParsesListing(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/golang/hot", r.URL.Path)
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{
			"kind": "Listing",
			"data": {"children": [
				{"kind": "t3", "data": {"id": "aaa", "name": "t3_aaa", "title": "first", "score": 10}},
				{"kind": "t1", "data": {"id": "bbb", "name": "t1_bbb", "body": "a comment"}},
				{"kind": "t3", "data": {"id": "ccc", "name": "t3_ccc", "title": "second", "score": 5}}
			]}
		}`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	posts, err := client.SubredditPosts(context.Background(), "golang", "hot", 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "first", posts[0].Title)
	require.Equal(t, "t3_ccc", posts[1].Fullname)
}

func TestSubmissionNotFound(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "t3_missing", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"kind": "Listing", "data": {"children": []}}`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	_, err := client.Submission(context.Background(), "missing")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSubmissionCommentsReturnsCommentListing(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/comments/aaa", r.URL.Path)
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[
			{"kind": "Listing", "data": {"children": [
				{"kind": "t3", "data": {"id": "aaa", "name": "t3_aaa", "title": "the post"}}
			]}},
			{"kind": "Listing", "data": {"children": [
				{"kind": "t1", "data": {"id": "c1", "name": "t1_c1", "body": "top comment"}},
				{"kind": "more", "data": {"children": ["c2", "c3"]}}
			]}}
		]`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	things, err := client.SubmissionComments(context.Background(), "aaa", 25)
	require.NoError(t, err)
	require.Len(t, things, 2)
	require.Equal(t, KindComment, things[0].Kind)
	require.Equal(t, "top comment", things[0].Comment.Body)
	require.Equal(t, ContentKind("more"), things[1].Kind)
}

func TestSubmissionCommentsRejectsShortResponse(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"kind": "Listing", "data": {"children": []}}]`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	_, err := client.SubmissionComments(context.Background(), "aaa", 0)
	require.ErrorIs(t, err, errors.ErrUpstream)
}

func TestSubmitParsesEnvelope(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/submit", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "json", r.PostForm.Get("api_type"))
		require.Equal(t, "golang", r.PostForm.Get("sr"))
		require.Equal(t, "self", r.PostForm.Get("kind"))
		require.Equal(t, "hello world", r.PostForm.Get("text"))
		_, _ = w.Write([]byte(`{"json": {"errors": [], "data": {"id": "xyz", "name": "t3_xyz", "url": "https://reddit.test/r/golang/xyz"}}}`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	result, err := client.Submit(context.Background(), SubmitOptions{
		Subreddit: "golang",
		Title:     "a title",
		Text:      "hello world",
	})
	require.NoError(t, err)
	require.Equal(t, "t3_xyz", result.Fullname)
}

func TestSubmitSurfacesAPIErrors(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"json": {"errors": [["RATELIMIT", "you are doing that too much", "ratelimit"]]}}`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	_, err := client.Submit(context.Background(), SubmitOptions{Subreddit: "golang", Title: "t"})
	require.ErrorIs(t, err, errors.ErrUpstream)
	require.Contains(t, err.Error(), "RATELIMIT")
}

func TestCommentReturnsCreatedComment(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "t3_abc", r.PostForm.Get("thing_id"))
		_, _ = w.Write([]byte(`{"json": {"errors": [], "data": {"things": [
			{"kind": "t1", "data": {"id": "cmt", "name": "t1_cmt", "body": "nice post"}}
		]}}}`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	comment, err := client.Comment(context.Background(), "t3_abc", "nice post")
	require.NoError(t, err)
	require.Equal(t, "t1_cmt", comment.Fullname)
	require.Equal(t, "nice post", comment.Body)
}

func TestExchangeCodeSendsBasicAuthAndReturnsRefreshToken(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/access_token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "the-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "acc", "token_type": "bearer", "refresh_token": "ref", "expires_in": 3600}`))
	}))

	app := App{ClientID: "client-id", ClientSecret: "client-secret", UserAgent: "TestAgent/1.0"}
	client, refreshToken, err := factory.ExchangeCode(context.Background(), app, "https://app.test/callback", "the-code")
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, "ref", refreshToken)
}

func TestDialPasswordGrant(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "password", r.PostForm.Get("grant_type"))
		require.Equal(t, "testuser", r.PostForm.Get("username"))
		require.Equal(t, "testpass", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "acc", "token_type": "bearer", "expires_in": 3600}`))
	}))

	app := App{ClientID: "client-id", ClientSecret: "client-secret", UserAgent: "TestAgent/1.0"}
	client, err := factory.DialPassword(context.Background(), app, "testuser", "testpass")
	require.NoError(t, err)
	defer client.Close()
}

func TestDialPasswordRejected(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusUnauthorized)
	}))

	app := App{ClientID: "client-id", ClientSecret: "client-secret", UserAgent: "TestAgent/1.0"}
	_, err := factory.DialPassword(context.Background(), app, "testuser", "wrong")
	require.ErrorIs(t, err, errors.ErrAuthentication)
}

func TestDialRefreshTokenRejectedGrantIsAuthenticationError(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/access_token", r.URL.Path)
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
	}))

	app := App{ClientID: "client-id", ClientSecret: "client-secret", UserAgent: "TestAgent/1.0"}
	client, err := factory.DialRefreshToken(context.Background(), app, "bad-refresh")
	require.NoError(t, err) // token fetch is lazy, nothing sent yet
	defer client.Close()

	_, err = client.Me(context.Background())
	require.ErrorIs(t, err, errors.ErrAuthentication)
}

func TestDialRefreshTokenEndpointOutageIsUpstreamError(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	app := App{ClientID: "client-id", ClientSecret: "client-secret", UserAgent: "TestAgent/1.0"}
	client, err := factory.DialRefreshToken(context.Background(), app, "some-refresh")
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Me(context.Background())
	require.ErrorIs(t, err, errors.ErrUpstream)
}

func TestDialRefreshTokenRequiresToken(t *testing.T) {
	factory := NewFactory(endpointsCfg{base: "http://reddit.test"})
	_, err := factory.DialRefreshToken(context.Background(), App{}, "")
	require.ErrorIs(t, err, errors.ErrAuthentication)
}

func TestThingUnmarshalDispatchesOnKind(t *testing.T) {
	var thing Thing
	require.NoError(t, json.Unmarshal([]byte(`{"kind": "t4", "data": {"id": "msg", "subject": "hi", "new": true}}`), &thing))
	require.Equal(t, KindMessage, thing.Kind)
	require.NotNil(t, thing.Message)
	require.Equal(t, "hi", thing.Message.Subject)
	require.Nil(t, thing.Comment)
	require.Nil(t, thing.Submission)
}

func TestThingUnmarshalKeepsUnknownKind(t *testing.T) {
	var thing Thing
	require.NoError(t, json.Unmarshal([]byte(`{"kind": "more", "data": {"children": []}}`), &thing))
	require.Equal(t, ContentKind("more"), thing.Kind)
	require.Nil(t, thing.Comment)
	require.Nil(t, thing.Submission)
	require.Nil(t, thing.Message)
}

func TestInboxKeepsMixedKinds(t *testing.T) {
	factory := newTestFactory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/message/unread", r.URL.Path)
		_, _ = w.Write([]byte(`{"kind": "Listing", "data": {"children": [
			{"kind": "t1", "data": {"id": "c1", "body": "reply"}},
			{"kind": "t4", "data": {"id": "m1", "subject": "pm"}}
		]}}`))
	}))
	client := factory.DialToken("access-token", "TestAgent/1.0")
	defer client.Close()

	things, err := client.Inbox(context.Background(), "unread", 0)
	require.NoError(t, err)
	require.Len(t, things, 2)
	require.Equal(t, KindComment, things[0].Kind)
	require.Equal(t, KindMessage, things[1].Kind)
}
