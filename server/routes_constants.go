package server

// Authentication routes
const (
	RouteAuthAuthorizeURL = "/auth/authorize-url"
	RouteAuthCallback     = "/auth/callback"
	RouteAuthLoginRefresh = "/auth/login-refresh-token"
	RouteAuthLogin        = "/auth/login"
	RouteAuthValidate     = "/auth/validate"
)

// Content routes
const (
	RouteMe                 = "/api/me"
	RouteUser               = "/api/user/{username}"
	RouteUserPosts          = "/api/user/{username}/posts"
	RouteSubreddit          = "/api/subreddit/{name}"
	RouteSubredditPosts     = "/api/subreddit/{name}/posts"
	RouteSubmission         = "/api/submission/{id}"
	RouteSubmissionComments = "/api/submission/{id}/comments"
	RouteSubmit             = "/api/submit"
	RouteComment            = "/api/comment"
	RouteVote               = "/api/vote"
	RouteSave               = "/api/save"
	RouteSubscribe          = "/api/subscribe"
	RouteEdit               = "/api/edit"
	RouteContent            = "/api/content/{fullname}"
	RouteInbox              = "/api/inbox"
	RouteInboxRead          = "/api/inbox/read"
)

// Operational routes
const (
	RouteHealth     = "/health"
	RouteCacheStats = "/cache/stats"
	RouteCache      = "/cache"
)
