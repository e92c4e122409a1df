package features_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/phishguard/internal/features"
	"github.com/raysh454/phishguard/internal/fetcher"
)

func TestExtract_DegradedUsesRequestedURL(t *testing.T) {
	t.Parallel()
	requested := "http://paypa1-login.secure-account.tk/verify"
	out := fetcher.Degraded(requested, "fetch failed", errors.New("dial tcp: refused"))

	ex := features.Extract(requested, out, brands, nil)

	if ex.Fetched || ex.Redirected {
		t.Error("degraded outcome should not report fetched or redirected")
	}
	if ex.Hostname() != "paypa1-login.secure-account.tk" {
		t.Errorf("Hostname() = %q", ex.Hostname())
	}
	if ex.FinalURL != requested {
		t.Errorf("FinalURL = %q", ex.FinalURL)
	}
	for _, n := range features.ContentFeatureNames {
		if v := ex.Features.Value(n); v != 0 {
			t.Errorf("%s = %v, want 0", n, v)
		}
	}
	if got := ex.Features.Value(features.NumSensitiveWords); got != 3 {
		t.Errorf("NumSensitiveWords = %v, want 3", got)
	}
	if missing := ex.Features.Missing(features.AllNames()); len(missing) != 0 {
		t.Errorf("missing columns %v", missing)
	}
}

func TestExtract_FetchedUsesFinalURLAndAliases(t *testing.T) {
	t.Parallel()
	markup := `<html><head><title>t</title></head><body><form></form><a href="https://elsewhere.org/">x</a></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	out := fetcher.Outcome{
		Status:       fetcher.StatusFetched,
		RequestedURL: "http://short.example/x",
		FinalURL:     "https://landing.example.com/welcome",
		Redirects:    1,
		StatusCode:   200,
		Doc:          doc,
		Markup:       markup,
	}

	ex := features.Extract(out.RequestedURL, out, brands, nil)

	if !ex.Fetched || !ex.Redirected {
		t.Fatalf("fetched=%v redirected=%v", ex.Fetched, ex.Redirected)
	}
	if ex.Hostname() != "landing.example.com" {
		t.Errorf("Hostname() = %q", ex.Hostname())
	}
	if ex.Features.Value(features.NoHttps) != 0 {
		t.Error("final URL is https")
	}
	if ex.StringFeatures.Has(features.PctExtHyperlinks) {
		t.Error("string subset should not carry content features")
	}
	if ex.Features.Value(features.PctExtHyperlinks) != 1 {
		t.Error("expected the single link to be external")
	}
	if ex.Features.Value(features.AbnormalFormAction) != 1 {
		t.Fatal("expected abnormal form action")
	}
	for _, a := range features.Aliases {
		if ex.Features.Value(a.Name) != ex.Features.Value(a.Source) {
			t.Errorf("%s = %v, want %s = %v", a.Name, ex.Features.Value(a.Name), a.Source, ex.Features.Value(a.Source))
		}
	}
	names := ex.Features.Names()
	if got, want := names[len(names)-1], features.Aliases[len(features.Aliases)-1].Name; got != want {
		t.Errorf("last column = %s, want %s", got, want)
	}
}

func TestAddAliasesDefaultsMissingSourceToZero(t *testing.T) {
	t.Parallel()
	fs := features.NewFeatureSet()
	fs.Set(features.UrlLength, 42)
	features.AddAliases(fs)

	if fs.Value(features.UrlLengthRT) != 42 {
		t.Errorf("UrlLengthRT = %v", fs.Value(features.UrlLengthRT))
	}
	if v, ok := fs.Get(features.PctExtResourceUrlsRT); !ok || v != 0 {
		t.Errorf("PctExtResourceUrlsRT = %v, %v", v, ok)
	}
}
