package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
	"github.com/jrsteele09/go-reddit-gateway/reddit"
)

const (
	defaultListingLimit = 25
	maxListingLimit     = 100
)

var allowedSorts = map[string]bool{
	"hot":           true,
	"new":           true,
	"top":           true,
	"rising":        true,
	"controversial": true,
}

var allowedInboxFilters = map[string]bool{
	"inbox":  true,
	"unread": true,
	"sent":   true,
}

func listingLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListingLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.Wrapf(errors.ErrInvalidRequest, "limit must be a positive integer")
	}
	if limit > maxListingLimit {
		limit = maxListingLimit
	}
	return limit, nil
}

// thingView is the wire shape of a kind-tagged item: the tag plus whichever
// payload matches it.
type thingView struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

func viewOf(t reddit.Thing) thingView {
	view := thingView{Kind: string(t.Kind)}
	switch t.Kind {
	case reddit.KindComment:
		view.Data = t.Comment
	case reddit.KindAccount:
		view.Data = t.Account
	case reddit.KindSubmission:
		view.Data = t.Submission
	case reddit.KindMessage:
		view.Data = t.Message
	case reddit.KindSubreddit:
		view.Data = t.Subreddit
	}
	return view
}

func viewsOf(things []reddit.Thing) []thingView {
	views := make([]thingView, 0, len(things))
	for _, thing := range things {
		views = append(views, viewOf(thing))
	}
	return views
}

type postsResponse struct {
	Posts []*reddit.Submission `json:"posts"`
	Count int                  `json:"count"`
}

func (s *Server) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		account, err := client.Me(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func (s *Server) userHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		account, err := client.User(r.Context(), r.PathValue("username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func (s *Server) userPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		limit, err := listingLimit(r)
		if err != nil {
			writeError(w, err)
			return
		}
		posts, err := client.UserPosts(r.Context(), r.PathValue("username"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, postsResponse{Posts: posts, Count: len(posts)})
	}
}

func (s *Server) subredditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		subreddit, err := client.Subreddit(r.Context(), r.PathValue("name"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subreddit)
	}
}

func (s *Server) subredditPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		sort := r.URL.Query().Get("sort")
		if sort == "" {
			sort = "hot"
		}
		if !allowedSorts[sort] {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest,
				"sort must be one of hot, new, top, rising, controversial"))
			return
		}
		limit, err := listingLimit(r)
		if err != nil {
			writeError(w, err)
			return
		}
		posts, err := client.SubredditPosts(r.Context(), r.PathValue("name"), sort, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, postsResponse{Posts: posts, Count: len(posts)})
	}
}

func (s *Server) submissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		submission, err := client.Submission(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, submission)
	}
}

func (s *Server) submissionCommentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		limit, err := listingLimit(r)
		if err != nil {
			writeError(w, err)
			return
		}
		things, err := client.SubmissionComments(r.Context(), r.PathValue("id"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": viewsOf(things),
			"count": len(things),
		})
	}
}

func (s *Server) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req submitRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		result, err := client.Submit(r.Context(), reddit.SubmitOptions{
			Subreddit:   req.Subreddit,
			Title:       req.Title,
			Text:        req.Text,
			URL:         req.URL,
			NSFW:        req.NSFW,
			Spoiler:     req.Spoiler,
			SendReplies: req.SendReplies,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func (s *Server) commentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req commentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		comment, err := client.Comment(r.Context(), req.ParentFullname, req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, comment)
	}
}

func (s *Server) voteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req voteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		if err := client.Vote(r.Context(), req.Fullname, reddit.VoteDirection(req.Direction)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) saveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req saveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		if req.Unsave {
			err = client.Unsave(r.Context(), req.Fullname)
		} else {
			err = client.Save(r.Context(), req.Fullname)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) subscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req subscribeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		if req.Unsubscribe {
			err = client.Unsubscribe(r.Context(), req.Subreddit)
		} else {
			err = client.Subscribe(r.Context(), req.Subreddit)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) editHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req editRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		thing, err := client.Edit(r.Context(), req.Fullname, req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(*thing))
	}
}

func (s *Server) deleteContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if err := client.Delete(r.Context(), r.PathValue("fullname")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) inboxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		filter := r.URL.Query().Get("filter")
		if filter == "" {
			filter = "inbox"
		}
		if !allowedInboxFilters[filter] {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest,
				"filter must be one of inbox, unread, sent"))
			return
		}
		limit, err := listingLimit(r)
		if err != nil {
			writeError(w, err)
			return
		}
		things, err := client.Inbox(r.Context(), filter, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": viewsOf(things),
			"count": len(things),
		})
	}
}

func (s *Server) inboxReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := clientFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var req inboxReadRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		if err := client.MarkRead(r.Context(), req.IDs...); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
