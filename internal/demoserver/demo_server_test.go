package demoserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/phishguard/internal/demoserver"
	"github.com/raysh454/phishguard/internal/features"
	"github.com/raysh454/phishguard/internal/fetcher"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/typosquat"
	"github.com/raysh454/phishguard/internal/webclient"
)

func newDemo(t *testing.T) (*demoserver.DemoServer, *httptest.Server) {
	t.Helper()
	ds := demoserver.NewDemoServer(demoserver.DefaultConfig())
	ts := httptest.NewServer(ds.Handler())
	t.Cleanup(ts.Close)
	return ds, ts
}

func setVersion(t *testing.T, ts *httptest.Server, path string, version string) *http.Response {
	t.Helper()
	resp, err := http.PostForm(ts.URL+"/demo/set-version", url.Values{"path": {path}, "version": {version}})
	if err != nil {
		t.Fatalf("set-version: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// extract runs a page through the real fetch and feature pipeline.
func extract(t *testing.T, pageURL string) *features.Extraction {
	t.Helper()
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.Nop{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = wc.Close() })
	f, err := fetcher.New(fetcher.Config{Enabled: true, Timeout: 5 * time.Second}, wc, nil)
	if err != nil {
		t.Fatalf("fetcher.New: %v", err)
	}
	out := f.Fetch(context.Background(), pageURL)
	return features.Extract(pageURL, out, typosquat.NewWatchlist(typosquat.DefaultBrands), logging.Nop{})
}

// ─── Routing ───────────────────────────────────────────────────────────

func TestDemoServer_ServesPages(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html", "PhishGuard fixture site"},
		{"/login", "text/html", "<form action=\"/session\""},
		{"/article", "text/html", "Release notes"},
		{"/download.bin", "application/octet-stream", "binary"},
		{"/static/app.js", "text/plain", "/static/app.js"},
		{"/demo/control", "text/html", "Fixture Site Control Panel"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType) {
				t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestDemoServer_UnknownPage404(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDemoServer_RedirectChain(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	resp, err := http.Get(ts.URL + "/redirect")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.Request.URL.Path != "/login" {
		t.Errorf("expected chain to end at /login, got %s", resp.Request.URL.Path)
	}
}

// ─── Version control ───────────────────────────────────────────────────

func TestDemoServer_SetVersion(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	resp := setVersion(t, ts, "/login", "2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set-version status = %d", resp.StatusCode)
	}

	page, err := http.Get(ts.URL + "/login")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer page.Body.Close()
	body, _ := io.ReadAll(page.Body)
	if !strings.Contains(string(body), "Confirm your PayPal account") {
		t.Error("expected the phishing variant after switching to v2")
	}
}

func TestDemoServer_SetVersionErrors(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	if resp := setVersion(t, ts, "/login", "x"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad version: status %d", resp.StatusCode)
	}
	if resp := setVersion(t, ts, "/missing", "2"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown page: status %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/demo/set-version")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET set-version: status %d", resp.StatusCode)
	}
}

func TestDemoServer_BumpAndReset(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	versions := func() map[string]demoserver.PageInfo {
		resp, err := http.Get(ts.URL + "/demo/get-versions")
		if err != nil {
			t.Fatalf("get-versions: %v", err)
		}
		defer resp.Body.Close()
		var pages []demoserver.PageInfo
		if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
			t.Fatalf("decode: %v", err)
		}
		out := map[string]demoserver.PageInfo{}
		for _, p := range pages {
			out[p.Path] = p
		}
		return out
	}

	for i := 0; i < 3; i++ {
		resp, err := http.Post(ts.URL+"/demo/bump-all", "", nil)
		if err != nil {
			t.Fatalf("bump-all: %v", err)
		}
		resp.Body.Close()
	}
	v := versions()
	if v["/login"].CurrentVersion != 2 {
		t.Errorf("login should cap at v2, got %d", v["/login"].CurrentVersion)
	}
	if v["/popup"].CurrentVersion != 1 {
		t.Errorf("single-version page should stay at v1, got %d", v["/popup"].CurrentVersion)
	}

	resp, err := http.Post(ts.URL+"/demo/reset", "", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	resp.Body.Close()
	if got := versions()["/login"].CurrentVersion; got != 1 {
		t.Errorf("expected reset to v1, got %d", got)
	}
}

// ─── Fixtures through the feature pipeline ─────────────────────────────

func TestFixtures_CleanLoginIsNeutral(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	fs := extract(t, ts.URL+"/login").Features
	for _, name := range []string{
		features.ExtFavicon, features.ExtFormAction, features.AbnormalFormAction,
		features.EmbeddedBrandName, features.IframeOrFrame, features.MissingTitle,
	} {
		if fs.Value(name) != 0 {
			t.Errorf("%s = %v, want 0", name, fs.Value(name))
		}
	}
	if fs.Value(features.RelativeFormAction) != 1 {
		t.Errorf("RelativeFormAction = %v, want 1", fs.Value(features.RelativeFormAction))
	}
}

func TestFixtures_PhishingKitLogin(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)
	setVersion(t, ts, "/login", "2")

	fs := extract(t, ts.URL+"/login").Features
	for _, name := range []string{
		features.ExtFavicon, features.AbnormalFormAction, features.EmbeddedBrandName,
		features.IframeOrFrame, features.SubmitInfoToEmail, features.RightClickDisabled,
		features.FakeLinkInStatusBar, features.ImagesOnlyInForm, features.FrequentDomainNameMismatch,
	} {
		if fs.Value(name) != 1 {
			t.Errorf("%s = %v, want 1", name, fs.Value(name))
		}
	}
	if fs.Value(features.ExtFormAction) != 0.5 {
		t.Errorf("ExtFormAction = %v, want 0.5", fs.Value(features.ExtFormAction))
	}
	if fs.Value(features.PctExtResourceUrls) != 1 {
		t.Errorf("PctExtResourceUrls = %v, want 1", fs.Value(features.PctExtResourceUrls))
	}
}

func TestFixtures_PopupPage(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	fs := extract(t, ts.URL+"/popup").Features
	if fs.Value(features.PopUpWindow) != 1 || fs.Value(features.RightClickDisabled) != 1 {
		t.Errorf("popup=%v rightclick=%v", fs.Value(features.PopUpWindow), fs.Value(features.RightClickDisabled))
	}
}

func TestFixtures_RedirectAndBinary(t *testing.T) {
	t.Parallel()
	_, ts := newDemo(t)

	ex := extract(t, ts.URL+"/redirect")
	if !ex.Fetched || !ex.Redirected || ex.FinalURL != ts.URL+"/login" {
		t.Errorf("redirect: fetched=%v redirected=%v final=%q", ex.Fetched, ex.Redirected, ex.FinalURL)
	}

	bin := extract(t, ts.URL+"/download.bin")
	if bin.Fetched {
		t.Error("binary response should degrade to unfetched")
	}
}
