package hub

import (
	"hubsync-backend/internal/browser/browsertest"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testBase = "https://hub.test"

type fixture struct {
	scraper  *Scraper
	page     *browsertest.Page
	recorder *telemetry.RecorderAPI
	clock    *chrono.FixedImpl
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = testBase
	cfg.Credentials = Credentials{Email: "member@example.com", Password: "hunter2"}
	cfg.Settle = Settle{}
	cfg.ScreenshotDir = "shots"
	return cfg
}

func newFixture(t testing.TB, screens map[string]*browsertest.Screen) fixture {
	t.Helper()
	page := browsertest.NewPage(screens)
	recorder := telemetry.NewRecorderAPI()
	clock := &chrono.FixedImpl{Time: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)}
	return fixture{
		scraper:  NewScraper(page, testConfig(), recorder, clock),
		page:     page,
		recorder: recorder,
		clock:    clock,
	}
}

// loginForm is a login page whose submit button leads to dest, an empty
// dest keeps the browser on the login page.
func loginForm(dest string) *browsertest.Screen {
	return &browsertest.Screen{
		HTML: `<form><input type="email"><input type="password"><input type="submit" value="Log In"></form>`,
		Elements: []*browsertest.Element{
			{Selector: "input[type='email']"},
			{Selector: "input[type='password']"},
			{Selector: "input[type='submit'][value*='Log']", Goto: dest},
		},
	}
}

// authed returns screens with a login page that already redirects home.
func authed(screens map[string]*browsertest.Screen) map[string]*browsertest.Screen {
	screens[testBase+PathLogin] = &browsertest.Screen{RedirectTo: testBase + "/home"}
	screens[testBase+"/home"] = &browsertest.Screen{HTML: "<p>Welcome back</p>"}
	return screens
}

var (
	spansOnce sync.Once
	spans     *tracetest.SpanRecorder
)

// recordSpans installs a recording tracer provider for the whole test binary.
// The package tracer only binds to the first provider installed.
func recordSpans() *tracetest.SpanRecorder {
	spansOnce.Do(func() {
		spans = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)))
	})
	return spans
}

// endedSpan returns the last ended span called name.
func endedSpan(rec *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	ended := rec.Ended()
	for i := len(ended) - 1; i >= 0; i-- {
		if ended[i].Name() == name {
			return ended[i]
		}
	}
	return nil
}
