package config

type RedditConfig interface {
	GetRedditAuthorizeURL() string
	GetRedditTokenURL() string
	GetRedditAPIBaseURL() string
}

type Reddit struct{}

var _ RedditConfig = Reddit{}

func (Reddit) GetRedditAuthorizeURL() string {
	return GetEnv("REDDIT_AUTHORIZE_URL", "https://www.reddit.com/api/v1/authorize")
}

func (Reddit) GetRedditTokenURL() string {
	return GetEnv("REDDIT_TOKEN_URL", "https://www.reddit.com/api/v1/access_token")
}

func (Reddit) GetRedditAPIBaseURL() string {
	return GetEnv("REDDIT_API_URL", "https://oauth.reddit.com")
}
