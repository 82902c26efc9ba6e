package server

import (
	"net/http"

	"github.com/jrsteele09/go-reddit-gateway/auth"
	"github.com/jrsteele09/go-reddit-gateway/reddit"
)

func (s *Server) authorizeURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authorizeURLRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}

		result, err := s.auth.AuthorizeURL(auth.AuthorizeURLParams{
			App: reddit.App{
				ClientID:     req.ClientID,
				ClientSecret: req.ClientSecret,
				UserAgent:    req.UserAgent,
			},
			RedirectURI: req.RedirectURI,
			Scopes:      req.Scopes,
			State:       req.State,
			Duration:    req.Duration,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, authorizeURLResponse{
			AuthorizationURL: result.URL,
			State:            result.State,
			ExpiresIn:        int(s.auth.SessionTTL().Seconds()),
		})
	}
}

func (s *Server) callbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req callbackRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}

		result, err := s.auth.Callback(r.Context(), auth.CallbackParams{
			App: reddit.App{
				ClientID:     req.ClientID,
				ClientSecret: req.ClientSecret,
				UserAgent:    req.UserAgent,
			},
			RedirectURI: req.RedirectURI,
			Code:        req.Code,
			State:       req.State,
		})
		if err != nil {
			// A rejected or reused authorization code is a bad request,
			// not a credentials failure.
			status := statusForError(err)
			if status == http.StatusUnauthorized {
				status = http.StatusBadRequest
			}
			writeErrorStatus(w, status, err)
			return
		}

		writeJSON(w, http.StatusOK, tokenResultResponse(result))
	}
}

func (s *Server) loginRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRefreshRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}

		app := reddit.App{ClientID: req.ClientID, ClientSecret: req.ClientSecret, UserAgent: req.UserAgent}
		result, err := s.auth.LoginRefreshToken(r.Context(), app, req.RefreshToken)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tokenResultResponse(result))
	}
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}

		app := reddit.App{ClientID: req.ClientID, ClientSecret: req.ClientSecret, UserAgent: req.UserAgent}
		result, err := s.auth.LoginPassword(r.Context(), app, req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tokenResultResponse(result))
	}
}

// validateHandler answers with data, never an error status: an expired or
// garbage token is a 200 with valid=false.
func (s *Server) validateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, err := bearerToken(r)
		if err != nil {
			writeJSON(w, http.StatusOK, validateResponse{Valid: false, Error: err.Error()})
			return
		}

		result := s.auth.Validate(r.Context(), rawToken)
		writeJSON(w, http.StatusOK, validateResponse{
			Valid:        result.Valid,
			Username:     result.Username,
			UserID:       result.UserID,
			CreatedUTC:   result.CreatedUTC,
			CommentKarma: result.CommentKarma,
			LinkKarma:    result.LinkKarma,
			Error:        result.Error,
		})
	}
}

func tokenResultResponse(result *auth.TokenResult) tokenResponse {
	return tokenResponse{
		AccessToken:    result.SessionToken,
		TokenType:      "bearer",
		ExpiresIn:      result.ExpiresIn,
		RedditUsername: result.Username,
	}
}
