package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

// VoteDirection is the direction of a vote: 1 up, -1 down, 0 clears.
type VoteDirection int

const (
	VoteUp    VoteDirection = 1
	VoteClear VoteDirection = 0
	VoteDown  VoteDirection = -1
)

// SubmitOptions describes a new submission. Exactly one of Text or URL
// should be set; URL wins when both are.
type SubmitOptions struct {
	Subreddit   string
	Title       string
	Text        string
	URL         string
	NSFW        bool
	Spoiler     bool
	SendReplies bool
}

// SubmitResult identifies a freshly created submission.
type SubmitResult struct {
	ID       string
	Fullname string
	URL      string
}

// Info fetches things by fullname via /api/info. The result is a mixed,
// kind-tagged list in request order (missing fullnames are dropped upstream).
func (c *Client) Info(ctx context.Context, fullnames ...string) ([]Thing, error) {
	params := url.Values{"id": {strings.Join(fullnames, ",")}}
	var page listing
	if err := c.get(ctx, "/api/info", params, &page); err != nil {
		return nil, errors.Wrapf(err, "[Info] %v", fullnames)
	}
	return page.Data.Children, nil
}

// Submission fetches a single submission by its base-36 id.
func (c *Client) Submission(ctx context.Context, id string) (*Submission, error) {
	things, err := c.Info(ctx, "t3_"+id)
	if err != nil {
		return nil, err
	}
	for _, thing := range things {
		if thing.Kind == KindSubmission && thing.Submission != nil {
			return thing.Submission, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "[Submission] %s", id)
}

// SubmissionComments fetches a submission's comment tree. The upstream
// response pairs the submission listing with its comment listing; only the
// comments are returned. The result stays kind-tagged because unresolved
// "more" placeholders appear alongside comments.
func (c *Client) SubmissionComments(ctx context.Context, id string, limit int) ([]Thing, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var pages []listing
	if err := c.get(ctx, "/comments/"+id, params, &pages); err != nil {
		return nil, errors.Wrapf(err, "[SubmissionComments] %s", id)
	}
	if len(pages) < 2 {
		return nil, errors.Wrapf(errors.ErrUpstream, "[SubmissionComments] unexpected response shape for %s", id)
	}
	return pages[1].Data.Children, nil
}

// Submit creates a self or link post.
func (c *Client) Submit(ctx context.Context, opts SubmitOptions) (*SubmitResult, error) {
	form := url.Values{
		"api_type":    {"json"},
		"sr":          {opts.Subreddit},
		"title":       {opts.Title},
		"nsfw":        {strconv.FormatBool(opts.NSFW)},
		"spoiler":     {strconv.FormatBool(opts.Spoiler)},
		"sendreplies": {strconv.FormatBool(opts.SendReplies)},
	}
	if opts.URL != "" {
		form.Set("kind", "link")
		form.Set("url", opts.URL)
	} else {
		form.Set("kind", "self")
		form.Set("text", opts.Text)
	}

	var envelope jsonEnvelope
	if err := c.postForm(ctx, "/api/submit", form, &envelope); err != nil {
		return nil, errors.Wrapf(err, "[Submit] r/%s", opts.Subreddit)
	}
	if err := envelope.err(); err != nil {
		return nil, errors.Wrapf(err, "[Submit] r/%s", opts.Subreddit)
	}
	return &SubmitResult{
		ID:       envelope.JSON.Data.ID,
		Fullname: envelope.JSON.Data.Name,
		URL:      envelope.JSON.Data.URL,
	}, nil
}

// Comment replies to a submission, comment, or message identified by its
// fullname.
func (c *Client) Comment(ctx context.Context, parentFullname, text string) (*Comment, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {parentFullname},
		"text":     {text},
	}
	var envelope jsonEnvelope
	if err := c.postForm(ctx, "/api/comment", form, &envelope); err != nil {
		return nil, errors.Wrapf(err, "[Comment] parent %s", parentFullname)
	}
	if err := envelope.err(); err != nil {
		return nil, errors.Wrapf(err, "[Comment] parent %s", parentFullname)
	}
	for _, thing := range envelope.JSON.Data.Things {
		if thing.Kind == KindComment && thing.Comment != nil {
			return thing.Comment, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrUpstream, "[Comment] no comment in response")
}

// Edit replaces the body of a self post or comment the session owns.
func (c *Client) Edit(ctx context.Context, fullname, text string) (*Thing, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {fullname},
		"text":     {text},
	}
	var envelope jsonEnvelope
	if err := c.postForm(ctx, "/api/editusertext", form, &envelope); err != nil {
		return nil, errors.Wrapf(err, "[Edit] %s", fullname)
	}
	if err := envelope.err(); err != nil {
		return nil, errors.Wrapf(err, "[Edit] %s", fullname)
	}
	if len(envelope.JSON.Data.Things) > 0 {
		return &envelope.JSON.Data.Things[0], nil
	}
	return nil, errors.Wrapf(errors.ErrUpstream, "[Edit] no content in response")
}

// Delete removes a submission or comment the session owns.
func (c *Client) Delete(ctx context.Context, fullname string) error {
	form := url.Values{"id": {fullname}}
	if err := c.postForm(ctx, "/api/del", form, nil); err != nil {
		return errors.Wrapf(err, "[Delete] %s", fullname)
	}
	return nil
}

// Vote casts, changes, or clears a vote on a submission or comment.
func (c *Client) Vote(ctx context.Context, fullname string, dir VoteDirection) error {
	form := url.Values{
		"id":  {fullname},
		"dir": {strconv.Itoa(int(dir))},
	}
	if err := c.postForm(ctx, "/api/vote", form, nil); err != nil {
		return errors.Wrapf(err, "[Vote] %s dir %d", fullname, dir)
	}
	return nil
}

// Save bookmarks a submission or comment; Unsave removes the bookmark.
func (c *Client) Save(ctx context.Context, fullname string) error {
	if err := c.postForm(ctx, "/api/save", url.Values{"id": {fullname}}, nil); err != nil {
		return errors.Wrapf(err, "[Save] %s", fullname)
	}
	return nil
}

func (c *Client) Unsave(ctx context.Context, fullname string) error {
	if err := c.postForm(ctx, "/api/unsave", url.Values{"id": {fullname}}, nil); err != nil {
		return errors.Wrapf(err, "[Unsave] %s", fullname)
	}
	return nil
}

// Subreddit fetches a community's about data.
func (c *Client) Subreddit(ctx context.Context, name string) (*Subreddit, error) {
	var thing Thing
	if err := c.get(ctx, fmt.Sprintf("/r/%s/about", name), nil, &thing); err != nil {
		return nil, errors.Wrapf(err, "[Subreddit] r/%s", name)
	}
	if thing.Kind != KindSubreddit || thing.Subreddit == nil {
		return nil, errors.Wrapf(errors.ErrUpstream, "[Subreddit] unexpected kind %q", thing.Kind)
	}
	return thing.Subreddit, nil
}

// SubredditPosts fetches a community listing. sort is one of hot, new, top,
// rising, controversial.
func (c *Client) SubredditPosts(ctx context.Context, name, sort string, limit int) ([]*Submission, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var page listing
	if err := c.get(ctx, fmt.Sprintf("/r/%s/%s", name, sort), params, &page); err != nil {
		return nil, errors.Wrapf(err, "[SubredditPosts] r/%s/%s", name, sort)
	}
	return submissionsOf(page), nil
}

// Subscribe joins a community; Unsubscribe leaves it.
func (c *Client) Subscribe(ctx context.Context, name string) error {
	form := url.Values{"action": {"sub"}, "sr_name": {name}}
	if err := c.postForm(ctx, "/api/subscribe", form, nil); err != nil {
		return errors.Wrapf(err, "[Subscribe] r/%s", name)
	}
	return nil
}

func (c *Client) Unsubscribe(ctx context.Context, name string) error {
	form := url.Values{"action": {"unsub"}, "sr_name": {name}}
	if err := c.postForm(ctx, "/api/subscribe", form, nil); err != nil {
		return errors.Wrapf(err, "[Unsubscribe] r/%s", name)
	}
	return nil
}

// User fetches another account's public profile.
func (c *Client) User(ctx context.Context, name string) (*Account, error) {
	var thing Thing
	if err := c.get(ctx, fmt.Sprintf("/user/%s/about", name), nil, &thing); err != nil {
		return nil, errors.Wrapf(err, "[User] u/%s", name)
	}
	if thing.Kind != KindAccount || thing.Account == nil {
		return nil, errors.Wrapf(errors.ErrUpstream, "[User] unexpected kind %q", thing.Kind)
	}
	return thing.Account, nil
}

// UserPosts fetches an account's submissions.
func (c *Client) UserPosts(ctx context.Context, name string, limit int) ([]*Submission, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var page listing
	if err := c.get(ctx, fmt.Sprintf("/user/%s/submitted", name), params, &page); err != nil {
		return nil, errors.Wrapf(err, "[UserPosts] u/%s", name)
	}
	return submissionsOf(page), nil
}

// Inbox fetches the session's messages. filter is one of inbox, unread,
// sent. The result mixes comment replies and private messages, so it stays
// kind-tagged.
func (c *Client) Inbox(ctx context.Context, filter string, limit int) ([]Thing, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var page listing
	if err := c.get(ctx, "/message/"+filter, params, &page); err != nil {
		return nil, errors.Wrapf(err, "[Inbox] %s", filter)
	}
	return page.Data.Children, nil
}

// MarkRead marks inbox items read by fullname.
func (c *Client) MarkRead(ctx context.Context, fullnames ...string) error {
	form := url.Values{"id": {strings.Join(fullnames, ",")}}
	if err := c.postForm(ctx, "/api/read_message", form, nil); err != nil {
		return errors.Wrapf(err, "[MarkRead] %v", fullnames)
	}
	return nil
}

func submissionsOf(page listing) []*Submission {
	posts := make([]*Submission, 0, len(page.Data.Children))
	for _, thing := range page.Data.Children {
		if thing.Kind == KindSubmission && thing.Submission != nil {
			posts = append(posts, thing.Submission)
		}
	}
	return posts
}
