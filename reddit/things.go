package reddit

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

// ContentKind tags the variants Reddit can hand back from mixed listings
// (inbox, /api/info). The gateway dispatches on this tag instead of probing
// for attributes the way the upstream objects invite.
type ContentKind string

const (
	KindComment    ContentKind = "t1"
	KindAccount    ContentKind = "t2"
	KindSubmission ContentKind = "t3"
	KindMessage    ContentKind = "t4"
	KindSubreddit  ContentKind = "t5"
)

// Submission is a link or self post.
type Submission struct {
	ID          string  `json:"id"`
	Fullname    string  `json:"name"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Over18      bool    `json:"over_18"`
	Spoiler     bool    `json:"spoiler"`
	Stickied    bool    `json:"stickied"`
	IsSelf      bool    `json:"is_self"`
}

// Comment is a reply to a submission or another comment.
type Comment struct {
	ID         string  `json:"id"`
	Fullname   string  `json:"name"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	LinkID     string  `json:"link_id"`
	ParentID   string  `json:"parent_id"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
}

// Message is a private message.
type Message struct {
	ID         string  `json:"id"`
	Fullname   string  `json:"name"`
	Author     string  `json:"author"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
	New        bool    `json:"new"`
	WasComment bool    `json:"was_comment"`
}

// Subreddit describes a community.
type Subreddit struct {
	ID                string  `json:"id"`
	Fullname          string  `json:"name"`
	DisplayName       string  `json:"display_name"`
	Title             string  `json:"title"`
	PublicDescription string  `json:"public_description"`
	Subscribers       int     `json:"subscribers"`
	CreatedUTC        float64 `json:"created_utc"`
	Over18            bool    `json:"over18"`
	URL               string  `json:"url"`
}

// Thing is Reddit's kind/data envelope decoded into a tagged variant.
// Exactly one payload field matching Kind is non-nil.
type Thing struct {
	Kind       ContentKind
	Comment    *Comment
	Submission *Submission
	Message    *Message
	Account    *Account
	Subreddit  *Subreddit
}

func (t *Thing) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Kind ContentKind     `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("thing envelope: %w", err)
	}

	t.Kind = envelope.Kind
	switch envelope.Kind {
	case KindComment:
		t.Comment = &Comment{}
		return json.Unmarshal(envelope.Data, t.Comment)
	case KindAccount:
		t.Account = &Account{}
		return json.Unmarshal(envelope.Data, t.Account)
	case KindSubmission:
		t.Submission = &Submission{}
		return json.Unmarshal(envelope.Data, t.Submission)
	case KindMessage:
		t.Message = &Message{}
		return json.Unmarshal(envelope.Data, t.Message)
	case KindSubreddit:
		t.Subreddit = &Subreddit{}
		return json.Unmarshal(envelope.Data, t.Subreddit)
	}
	// Unknown kinds (e.g. "more") are kept as a bare tag.
	return nil
}

// listing is Reddit's paginated container of things.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []Thing `json:"children"`
		After    string  `json:"after"`
		Before   string  `json:"before"`
	} `json:"data"`
}

// jsonEnvelope is the response shape of api_type=json write endpoints.
type jsonEnvelope struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			ID     string  `json:"id"`
			Name   string  `json:"name"`
			URL    string  `json:"url"`
			Things []Thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func (e *jsonEnvelope) err() error {
	if len(e.JSON.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(e.JSON.Errors))
	for _, fields := range e.JSON.Errors {
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			if s, ok := field.(string); ok {
				parts = append(parts, s)
			}
		}
		messages = append(messages, fmt.Sprintf("%v", parts))
	}
	return errors.Wrapf(errors.ErrUpstream, "api errors %v", messages)
}
