package clientcache

// Key derives a cache key from the bearer secret and, when present, the
// caller's app id. Only short prefixes go into the key so the full secret is
// never used as a map key; prefix collisions are an accepted trade-off, not
// a property callers may rely on.
func Key(bearer, appID string) string {
	key := "reddit_" + prefix(bearer, 16)
	if appID != "" {
		key += "_" + prefix(appID, 8)
	}
	return key
}

func prefix(value string, length int) string {
	if len(value) <= length {
		return value
	}
	return value[:length]
}
