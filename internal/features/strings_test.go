package features_test

import (
	"testing"

	"github.com/raysh454/phishguard/internal/features"
	"github.com/raysh454/phishguard/internal/utils"
)

func TestExtractStringFeatures_PhishingExample(t *testing.T) {
	t.Parallel()
	raw := "http://paypa1-login.secure-account.tk"
	fs := features.ExtractStringFeatures(utils.SplitURL(raw))

	want := map[string]float64{
		features.NumDots:            2,
		features.SubdomainLevel:     2,
		features.PathLevel:          0,
		features.UrlLength:          float64(len(raw)),
		features.NumDash:            2,
		features.NumDashInHostname:  2,
		features.NumNumericChars:    1,
		features.NoHttps:            1,
		features.RandomString:       0,
		features.IpAddress:          0,
		features.HostnameLength:     30,
		features.NumQueryComponents: 0,
		features.NumSensitiveWords:  3,
		features.DomainInSubdomains: 0,
		features.DomainInPaths:      0,
	}
	for name, v := range want {
		if got := fs.Value(name); got != v {
			t.Errorf("%s = %v, want %v", name, got, v)
		}
	}
}

func TestExtractStringFeatures_Counts(t *testing.T) {
	t.Parallel()
	raw := "https://User@10.0.0.1/a//b/~c_d%20e?x=1&y=2&z#frag"
	fs := features.ExtractStringFeatures(utils.SplitURL(raw))

	tests := []struct {
		name string
		want float64
	}{
		{features.NoHttps, 0},
		{features.IpAddress, 1},
		{features.SubdomainLevel, 3},
		{features.PathLevel, 4},
		{features.DoubleSlashInPath, 1},
		{features.AtSymbol, 1},
		{features.TildeSymbol, 1},
		{features.NumUnderscore, 1},
		{features.NumPercent, 1},
		{features.NumAmpersand, 2},
		{features.NumHash, 1},
		{features.NumQueryComponents, 3},
		{features.QueryLength, float64(len("x=1&y=2&z"))},
		{features.PathLength, float64(len("/a//b/~c_d%20e"))},
		{features.HostnameLength, float64(len("10.0.0.1"))},
	}
	for _, tt := range tests {
		if got := fs.Value(tt.name); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExtractStringFeatures_RandomString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want float64
	}{
		{"http://example.com/0123456789abcdef0123", 1},
		{"http://example.com/0123456789ABCDEF0123", 1},
		{"http://example.com/0123456789abcdef012", 0},
		{"http://example.com/0123456789abcdefg0123", 0},
	}
	for _, tt := range tests {
		fs := features.ExtractStringFeatures(utils.SplitURL(tt.raw))
		if got := fs.Value(features.RandomString); got != tt.want {
			t.Errorf("RandomString(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestExtractStringFeatures_SchemeCaseInsensitive(t *testing.T) {
	t.Parallel()
	fs := features.ExtractStringFeatures(utils.SplitURL("HTTPS://example.com"))
	if fs.Value(features.NoHttps) != 0 {
		t.Error("uppercase https should count as https")
	}
}

func TestExtractStringFeatures_SensitiveWordsCountedOnce(t *testing.T) {
	t.Parallel()
	fs := features.ExtractStringFeatures(utils.SplitURL("https://LOGIN.example.com/login/login?confirm=1"))
	if got := fs.Value(features.NumSensitiveWords); got != 2 {
		t.Errorf("NumSensitiveWords = %v, want 2", got)
	}
}

func TestExtractStringFeatures_NameOrder(t *testing.T) {
	t.Parallel()
	fs := features.ExtractStringFeatures(utils.SplitURL("http://example.com"))
	names := fs.Names()
	if len(names) != len(features.StringFeatureNames) {
		t.Fatalf("got %d names, want %d", len(names), len(features.StringFeatureNames))
	}
	for i, n := range features.StringFeatureNames {
		if names[i] != n {
			t.Errorf("name[%d] = %s, want %s", i, names[i], n)
		}
	}
}

func TestExtractStringFeatures_CountsCharacters(t *testing.T) {
	t.Parallel()
	raw := "http://bücher.example/ü"
	fs := features.ExtractStringFeatures(utils.SplitURL(raw))
	if got := fs.Value(features.UrlLength); got != 23 {
		t.Errorf("UrlLength = %v, want 23", got)
	}
	if got := fs.Value(features.HostnameLength); got != 14 {
		t.Errorf("HostnameLength = %v, want 14", got)
	}
}
