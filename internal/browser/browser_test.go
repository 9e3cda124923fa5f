package browser_test

import (
	"context"
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/browser/browsertest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDescriptorMatchText(t *testing.T) {
	require.True(t, browser.Sel("a").MatchText("anything"))
	require.True(t, browser.HasText("a", "Next").MatchText("  next  page "))
	require.False(t, browser.HasText("a", "Next").MatchText("Previous"))
	require.True(t, browser.TextIs("a", "3").MatchText(" 3 "))
	require.False(t, browser.TextIs("a", "3").MatchText("13"))
}

func TestChainFirstPriority(t *testing.T) {
	page := browsertest.NewPage(map[string]*browsertest.Screen{
		"https://portal.test/": {
			Elements: []*browsertest.Element{
				{Selector: "a", Label: "RSVP"},
				{Selector: "button", Label: "Register now"},
			},
		},
	})
	ctx := context.Background()
	require.NoError(t, page.Navigate(ctx, "https://portal.test/"))

	chain := browser.Chain{
		browser.HasText("button", "Register"),
		browser.HasText("a", "RSVP"),
	}
	el, d, ok, err := chain.First(ctx, page)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "button", d.Selector)

	text, err := el.Text(ctx)
	require.NoError(t, err)
	require.Equal(t, "Register now", text)

	_, _, ok, err = browser.Chain{browser.Sel("input.missing")}.First(ctx, page)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := browser.Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, browser.Sleep(context.Background(), 0))
}
