package features

// String features, derived from URL text alone.
const (
	NumDots            = "NumDots"
	SubdomainLevel     = "SubdomainLevel"
	PathLevel          = "PathLevel"
	UrlLength          = "UrlLength"
	NumDash            = "NumDash"
	NumDashInHostname  = "NumDashInHostname"
	AtSymbol           = "AtSymbol"
	TildeSymbol        = "TildeSymbol"
	NumUnderscore      = "NumUnderscore"
	NumPercent         = "NumPercent"
	NumQueryComponents = "NumQueryComponents"
	NumAmpersand       = "NumAmpersand"
	NumHash            = "NumHash"
	NumNumericChars    = "NumNumericChars"
	NoHttps            = "NoHttps"
	RandomString       = "RandomString"
	IpAddress          = "IpAddress"
	DomainInSubdomains = "DomainInSubdomains"
	DomainInPaths      = "DomainInPaths"
	HostnameLength     = "HostnameLength"
	PathLength         = "PathLength"
	QueryLength        = "QueryLength"
	DoubleSlashInPath  = "DoubleSlashInPath"
	NumSensitiveWords  = "NumSensitiveWords"
)

// Content features, derived from the fetched page. All default to 0.
const (
	PctExtHyperlinks              = "PctExtHyperlinks"
	PctExtResourceUrls            = "PctExtResourceUrls"
	ExtFavicon                    = "ExtFavicon"
	InsecureForms                 = "InsecureForms"
	RelativeFormAction            = "RelativeFormAction"
	ExtFormAction                 = "ExtFormAction"
	AbnormalFormAction            = "AbnormalFormAction"
	PctNullSelfRedirectHyperlinks = "PctNullSelfRedirectHyperlinks"
	FrequentDomainNameMismatch    = "FrequentDomainNameMismatch"
	FakeLinkInStatusBar           = "FakeLinkInStatusBar"
	RightClickDisabled            = "RightClickDisabled"
	PopUpWindow                   = "PopUpWindow"
	SubmitInfoToEmail             = "SubmitInfoToEmail"
	IframeOrFrame                 = "IframeOrFrame"
	MissingTitle                  = "MissingTitle"
	ImagesOnlyInForm              = "ImagesOnlyInForm"
	EmbeddedBrandName             = "EmbeddedBrandName"
)

// Real-time aliases the trained model expects alongside the base columns.
const (
	SubdomainLevelRT                   = "SubdomainLevelRT"
	UrlLengthRT                        = "UrlLengthRT"
	PctExtResourceUrlsRT               = "PctExtResourceUrlsRT"
	AbnormalExtFormActionR             = "AbnormalExtFormActionR"
	ExtMetaScriptLinkRT                = "ExtMetaScriptLinkRT"
	PctExtNullSelfRedirectHyperlinksRT = "PctExtNullSelfRedirectHyperlinksRT"
)

var StringFeatureNames = []string{
	NumDots, SubdomainLevel, PathLevel, UrlLength, NumDash, NumDashInHostname,
	AtSymbol, TildeSymbol, NumUnderscore, NumPercent, NumQueryComponents,
	NumAmpersand, NumHash, NumNumericChars, NoHttps, RandomString, IpAddress,
	DomainInSubdomains, DomainInPaths, HostnameLength, PathLength, QueryLength,
	DoubleSlashInPath, NumSensitiveWords,
}

var ContentFeatureNames = []string{
	PctExtHyperlinks, PctExtResourceUrls, ExtFavicon, InsecureForms,
	RelativeFormAction, ExtFormAction, AbnormalFormAction,
	PctNullSelfRedirectHyperlinks, FrequentDomainNameMismatch, FakeLinkInStatusBar,
	RightClickDisabled, PopUpWindow, SubmitInfoToEmail, IframeOrFrame,
	MissingTitle, ImagesOnlyInForm, EmbeddedBrandName,
}

// Alias names a derived column and the base column it copies.
type Alias struct {
	Name   string
	Source string
}

var Aliases = []Alias{
	{SubdomainLevelRT, SubdomainLevel},
	{UrlLengthRT, UrlLength},
	{PctExtResourceUrlsRT, PctExtResourceUrls},
	{AbnormalExtFormActionR, AbnormalFormAction},
	{ExtMetaScriptLinkRT, AbnormalFormAction},
	{PctExtNullSelfRedirectHyperlinksRT, PctNullSelfRedirectHyperlinks},
}

// AllNames lists string, content and alias columns in merge order.
func AllNames() []string {
	out := make([]string, 0, len(StringFeatureNames)+len(ContentFeatureNames)+len(Aliases))
	out = append(out, StringFeatureNames...)
	out = append(out, ContentFeatureNames...)
	for _, a := range Aliases {
		out = append(out, a.Name)
	}
	return out
}
