package clientcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-reddit-gateway/reddit"
)

type redditCfg struct{}

func (redditCfg) GetRedditAuthorizeURL() string { return "http://reddit.test/authorize" }
func (redditCfg) GetRedditTokenURL() string     { return "http://reddit.test/access_token" }
func (redditCfg) GetRedditAPIBaseURL() string   { return "http://reddit.test" }

// countingFactory builds distinct handles without touching the network;
// tests inject their own probe so the handles are never used upstream.
func countingFactory(counter *int) FactoryFunc {
	factory := reddit.NewFactory(redditCfg{})
	return func(context.Context) (*reddit.Client, error) {
		*counter++
		return factory.DialToken("token", "TestAgent/1.0"), nil
	}
}

func alwaysLive(context.Context, *reddit.Client) error { return nil }

func TestGetOrCreateCachesHandle(t *testing.T) {
	cache := New(WithProbe(alwaysLive))
	built := 0
	factory := countingFactory(&built)

	first, err := cache.GetOrCreate(context.Background(), "key", factory)
	require.NoError(t, err)

	second, err := cache.GetOrCreate(context.Background(), "key", factory)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, 1, built)
	require.Equal(t, 1, cache.Size())
}

func TestDistinctKeysGetDistinctHandles(t *testing.T) {
	cache := New(WithProbe(alwaysLive))
	built := 0
	factory := countingFactory(&built)

	first, err := cache.GetOrCreate(context.Background(), "key-a", factory)
	require.NoError(t, err)
	second, err := cache.GetOrCreate(context.Background(), "key-b", factory)
	require.NoError(t, err)

	require.NotSame(t, first, second)
	require.Equal(t, 2, built)
	require.Equal(t, 2, cache.Size())
}

func TestStaleHandleEvictedAndRebuilt(t *testing.T) {
	var stale *reddit.Client
	cache := New(WithProbe(func(_ context.Context, client *reddit.Client) error {
		if client == stale {
			return context.DeadlineExceeded
		}
		return nil
	}))
	built := 0
	factory := countingFactory(&built)

	first, err := cache.GetOrCreate(context.Background(), "key", factory)
	require.NoError(t, err)

	stale = first
	second, err := cache.GetOrCreate(context.Background(), "key", factory)
	require.NoError(t, err)

	require.NotSame(t, first, second)
	require.Equal(t, 2, built)
	require.Equal(t, 1, cache.Size())
}

func TestFreshHandleFailingProbeNotCached(t *testing.T) {
	cache := New(WithProbe(func(context.Context, *reddit.Client) error {
		return context.DeadlineExceeded
	}))
	built := 0

	_, err := cache.GetOrCreate(context.Background(), "key", countingFactory(&built))
	require.Error(t, err)
	require.Equal(t, 1, built)
	require.Equal(t, 0, cache.Size())
}

func TestFactoryErrorPropagates(t *testing.T) {
	cache := New(WithProbe(alwaysLive))

	_, err := cache.GetOrCreate(context.Background(), "key", func(context.Context) (*reddit.Client, error) {
		return nil, context.DeadlineExceeded
	})
	require.Error(t, err)
	require.Equal(t, 0, cache.Size())
}

func TestConcurrentConstructionConverges(t *testing.T) {
	cache := New(WithProbe(alwaysLive))
	factory := reddit.NewFactory(redditCfg{})

	var mu sync.Mutex
	built := 0
	slowFactory := func(context.Context) (*reddit.Client, error) {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		built++
		mu.Unlock()
		return factory.DialToken("token", "TestAgent/1.0"), nil
	}

	const callers = 8
	results := make([]*reddit.Client, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := cache.GetOrCreate(context.Background(), "key", slowFactory)
			require.NoError(t, err)
			results[i] = client
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, built)
	for i := 1; i < callers; i++ {
		require.Same(t, results[0], results[i])
	}
	require.Equal(t, 1, cache.Size())
}

func TestInvalidate(t *testing.T) {
	cache := New(WithProbe(alwaysLive))
	built := 0
	factory := countingFactory(&built)

	_, err := cache.GetOrCreate(context.Background(), "key", factory)
	require.NoError(t, err)

	cache.Invalidate("key")
	require.Equal(t, 0, cache.Size())

	cache.Invalidate("missing") // no-op

	_, err = cache.GetOrCreate(context.Background(), "key", factory)
	require.NoError(t, err)
	require.Equal(t, 2, built)
}

func TestInvalidateAll(t *testing.T) {
	cache := New(WithProbe(alwaysLive))
	built := 0
	factory := countingFactory(&built)

	_, err := cache.GetOrCreate(context.Background(), "key-a", factory)
	require.NoError(t, err)
	_, err = cache.GetOrCreate(context.Background(), "key-b", factory)
	require.NoError(t, err)
	require.Equal(t, 2, cache.Size())

	cache.InvalidateAll()
	require.Equal(t, 0, cache.Size())
}

func TestKey(t *testing.T) {
	require.Equal(t, "reddit_short", Key("short", ""))
	require.Equal(t, "reddit_0123456789abcdef", Key("0123456789abcdef-rest-is-ignored", ""))
	require.Equal(t, "reddit_tok_appclien", Key("tok", "appclient-id"))

	withApp := Key("same-token-value-here", "app-one")
	withOtherApp := Key("same-token-value-here", "app-two")
	require.NotEqual(t, withApp, withOtherApp)
}
