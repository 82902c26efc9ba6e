package server

import "net/http"

func (s *Server) initRoutes() {
	strict := RateLimitMiddleware(StrictLimit)
	lenient := RateLimitMiddleware(LenientLimit)

	// Auth flows carry credentials in their bodies and hit Reddit's token
	// endpoints, so they get the strict budget and no bearer requirement
	// (except validate, which reads its token inside the handler).
	s.RegisterRouteFunc("POST "+RouteAuthAuthorizeURL, ChainMiddleware(s.authorizeURLHandler(), s.APIMiddleware(strict)...))
	s.RegisterRouteFunc("POST "+RouteAuthCallback, ChainMiddleware(s.callbackHandler(), s.APIMiddleware(strict)...))
	s.RegisterRouteFunc("POST "+RouteAuthLoginRefresh, ChainMiddleware(s.loginRefreshHandler(), s.APIMiddleware(strict)...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.loginHandler(), s.APIMiddleware(strict)...))
	s.RegisterRouteFunc("POST "+RouteAuthValidate, ChainMiddleware(s.validateHandler(), s.APIMiddleware(strict)...))

	// Content routes require a live reddit client resolved from the bearer.
	api := s.APIMiddleware(lenient, s.RequireRedditClient)
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.meHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteUser, ChainMiddleware(s.userHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteUserPosts, ChainMiddleware(s.userPostsHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteSubreddit, ChainMiddleware(s.subredditHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteSubredditPosts, ChainMiddleware(s.subredditPostsHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteSubmission, ChainMiddleware(s.submissionHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteSubmissionComments, ChainMiddleware(s.submissionCommentsHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteSubmit, ChainMiddleware(s.submitHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteComment, ChainMiddleware(s.commentHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteVote, ChainMiddleware(s.voteHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteSave, ChainMiddleware(s.saveHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteSubscribe, ChainMiddleware(s.subscribeHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteEdit, ChainMiddleware(s.editHandler(), api...))
	s.RegisterRouteFunc("DELETE "+RouteContent, ChainMiddleware(s.deleteContentHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteInbox, ChainMiddleware(s.inboxHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteInboxRead, ChainMiddleware(s.inboxReadHandler(), api...))

	// Operational routes.
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.healthHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCacheStats, ChainMiddleware(s.cacheStatsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("DELETE "+RouteCache, ChainMiddleware(s.cacheClearHandler(), s.APIMiddleware()...))

	// CORS preflight for everything registered above.
	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, s.APIMiddleware()...))
}
