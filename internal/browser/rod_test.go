package browser

import (
	"context"
	"hubsync-backend/internal/components/telemetry"
	"io"
	"log"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const fixturePage = `<html><body>
<form>
	<input type="email" name="email">
	<select><option>Attorney</option><option>Insurance</option></select>
	<button type="button" onclick="document.getElementById('out').innerText = 'registration complete'">Register</button>
</form>
<div id="out">waiting</div>
</body></html>`

func startHeadlessShell(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping browser container in short mode")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "chromedp/headless-shell:latest",
				ExposedPorts: []string{"9222/tcp"},
				WaitingFor:   wait.ForListeningPort("9222/tcp"),
			},
		},
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRodPage(t *testing.T) {
	endpoint := startHeadlessShell(t)

	opts := DefaultOptions()
	opts.ControlURL = endpoint
	opts.ProfileDir = ""
	opts.Flags = nil

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	page, err := Launch(ctx, opts, telemetry.SlogAPI{})
	require.NoError(t, err)
	defer page.Close()

	target := "data:text/html," + url.PathEscape(fixturePage)
	require.NoError(t, page.Navigate(ctx, target))
	require.NoError(t, page.WaitIdle(ctx, 10*time.Second))

	email, ok, err := page.Find(ctx, Sel("input[type='email']"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, email.Fill(ctx, "member@example.com"))

	sel, ok, err := page.Find(ctx, Sel("select"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, sel.SelectOption(ctx, "Insurance"))

	_, ok, err = page.Find(ctx, HasText("button", "RSVP"))
	require.NoError(t, err)
	require.False(t, ok)

	button, ok, err := page.Find(ctx, HasText("button", "register"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, button.Click(ctx))

	text, err := page.InnerText(ctx)
	require.NoError(t, err)
	require.Contains(t, text, "registration complete")

	html, err := page.HTML(ctx)
	require.NoError(t, err)
	require.Contains(t, html, `id="out"`)

	shot := filepath.Join(t.TempDir(), "fixture.png")
	require.NoError(t, page.Screenshot(ctx, shot))
}
