package features

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/phishguard/internal/domainutil"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/typosquat"
	"github.com/raysh454/phishguard/internal/utils"
)

const (
	// Only this much lowercased markup is scanned for script idioms.
	markupScanLimit = 300_000
	// Only this much visible text is scanned for brand names.
	textScanLimit = 200_000
)

var (
	rightClickButtonRe = regexp.MustCompile(`button\s*={2,3}\s*2`)
	frameTagRe         = regexp.MustCompile(`<i?frame[\s/>]`)
)

// Page is the parsed document the content features are computed from.
type Page struct {
	Doc    *goquery.Document
	Markup string
	// URL is where the document was served from, after redirects.
	URL utils.URLParts
}

// DefaultContentFeatures returns every content feature at its neutral value.
func DefaultContentFeatures() *FeatureSet {
	fs := NewFeatureSet()
	for _, name := range ContentFeatureNames {
		fs.Set(name, 0)
	}
	return fs
}

type contentPass struct {
	page   Page
	brands typosquat.Watchlist
	fs     *FeatureSet
	logger logging.Logger
	lower  string
	failed []string
}

// ExtractContentFeatures computes the structural page signals. Each group of
// features runs in isolation: a panic in one leaves its unset features at 0,
// keeps whatever it already set, and is reported in failed.
func ExtractContentFeatures(page Page, brands typosquat.Watchlist, logger logging.Logger) (fs *FeatureSet, failed []string) {
	if logger == nil {
		logger = logging.Nop{}
	}
	c := &contentPass{
		page:   page,
		brands: brands,
		fs:     DefaultContentFeatures(),
		logger: logger,
	}
	if page.Doc == nil {
		return c.fs, nil
	}

	c.guard("markup", c.prepareMarkup)
	c.guard("hyperlinks", c.hyperlinks)
	c.guard("resources", c.resources)
	c.guard("favicon", c.favicon)
	c.guard("title", c.title)
	c.guard("frames", c.frames)
	c.guard("scripts", c.scripts)
	c.guard("forms", c.forms)
	c.guard("brand", c.brand)
	return c.fs, c.failed
}

func (c *contentPass) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.failed = append(c.failed, name)
			c.logger.Warn("content feature computation failed",
				logging.Field{Key: "feature", Value: name},
				logging.Field{Key: "url", Value: c.page.URL.Raw},
				logging.Field{Key: "panic", Value: fmt.Sprint(r)})
		}
	}()
	fn()
}

func (c *contentPass) host() string { return c.page.URL.Hostname }

func (c *contentPass) prepareMarkup() {
	m := c.page.Markup
	if len(m) > markupScanLimit {
		m = m[:markupScanLimit]
	}
	c.lower = strings.ToLower(m)
}

// hyperlinks covers the external and null/self-redirect ratios over <a href>,
// plus whether the most linked-to host differs from the page's own.
func (c *contentPass) hyperlinks() {
	links := c.page.Doc.Find("a[href]")
	total := links.Length()
	if total == 0 {
		return
	}

	var external, null int
	hostCounts := map[string]int{}
	var hostOrder []string
	links.Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if isNullLink(href) {
			null++
			return
		}
		if domainutil.IsExternal(href, c.host()) {
			external++
		}
		// relative links point at the page's own host
		h := utils.SplitURL(strings.TrimSpace(href)).Hostname
		if h == "" {
			h = c.host()
		}
		if h != "" {
			if hostCounts[h] == 0 {
				hostOrder = append(hostOrder, h)
			}
			hostCounts[h]++
		}
	})

	c.fs.Set(PctExtHyperlinks, float64(external)/float64(total))
	c.fs.Set(PctNullSelfRedirectHyperlinks, float64(null)/float64(total))

	top, topCount := "", 0
	for _, h := range hostOrder {
		if hostCounts[h] > topCount {
			top, topCount = h, hostCounts[h]
		}
	}
	c.fs.SetBool(FrequentDomainNameMismatch, top != "" && !strings.EqualFold(top, c.host()))
}

func isNullLink(href string) bool {
	return href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.Contains(strings.ToLower(href), "javascript:void(0)")
}

// resources is the external share of img/script/iframe src and stylesheet href.
func (c *contentPass) resources() {
	var refs []string
	c.page.Doc.Find("img[src], script[src], iframe[src]").Each(func(_ int, s *goquery.Selection) {
		refs = append(refs, getAttr(s, "src"))
	})
	c.page.Doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		if hasRelToken(s, "stylesheet") {
			refs = append(refs, getAttr(s, "href"))
		}
	})
	if len(refs) == 0 {
		return
	}
	external := 0
	for _, r := range refs {
		if domainutil.IsExternal(r, c.host()) {
			external++
		}
	}
	c.fs.Set(PctExtResourceUrls, float64(external)/float64(len(refs)))
}

func (c *contentPass) favicon() {
	c.page.Doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !relContains(s, "icon") {
			return true
		}
		c.fs.SetBool(ExtFavicon, domainutil.IsExternal(getAttr(s, "href"), c.host()))
		return false
	})
}

func (c *contentPass) title() {
	hasTitle := false
	c.page.Doc.Find("title").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		hasTitle = strings.TrimSpace(s.Text()) != ""
		return !hasTitle
	})
	c.fs.SetBool(MissingTitle, !hasTitle)
}

// frames checks the DOM and the raw markup; the HTML5 parser drops a <frame>
// that is not inside a <frameset>.
func (c *contentPass) frames() {
	found := c.page.Doc.Find("iframe, frame").Length() > 0 || frameTagRe.MatchString(c.lower)
	c.fs.SetBool(IframeOrFrame, found)
}

func (c *contentPass) scripts() {
	c.fs.SetBool(PopUpWindow, strings.Contains(c.lower, "window.open("))
	c.fs.SetBool(RightClickDisabled,
		strings.Contains(c.lower, "oncontextmenu") || rightClickButtonRe.MatchString(c.lower))
	c.fs.SetBool(SubmitInfoToEmail, strings.Contains(c.lower, "mailto:"))
	c.fs.SetBool(FakeLinkInStatusBar,
		strings.Contains(c.lower, "onmouseover") && strings.Contains(c.lower, "window.status"))
}

func (c *contentPass) forms() {
	forms := c.page.Doc.Find("form")
	total := forms.Length()
	if total == 0 {
		return
	}

	pageHTTPS := strings.EqualFold(c.page.URL.Scheme, "https")
	var insecure, relative, external int
	abnormal, imagesOnly := false, false

	forms.Each(func(_ int, s *goquery.Selection) {
		action, present := s.Attr("action")
		action = strings.TrimSpace(action)
		lowerAction := strings.ToLower(action)

		if !present || action == "" || lowerAction == "about:blank" {
			abnormal = true
		} else {
			parts := utils.SplitURL(action)
			if parts.Scheme == "" && parts.Hostname == "" {
				relative++
			}
			if domainutil.IsExternal(action, c.host()) {
				external++
			}
			if pageHTTPS && strings.HasPrefix(lowerAction, "http://") {
				insecure++
			}
		}

		if s.Find("img").Length() > 0 && strings.TrimSpace(s.Text()) == "" {
			imagesOnly = true
		}
	})

	c.fs.Set(InsecureForms, float64(insecure)/float64(total))
	c.fs.Set(RelativeFormAction, float64(relative)/float64(total))
	c.fs.Set(ExtFormAction, float64(external)/float64(total))
	c.fs.SetBool(AbnormalFormAction, abnormal)
	c.fs.SetBool(ImagesOnlyInForm, imagesOnly)
}

// brand flags pages whose visible text mentions a watched brand they are not
// hosted under.
func (c *contentPass) brand() {
	scope := c.page.Doc.Find("body")
	if scope.Length() == 0 {
		scope = c.page.Doc.Selection
	}
	// Text() includes script and style bodies, which are not visible.
	visible := scope.Clone()
	visible.Find("script, style, noscript, template").Remove()
	text := visible.Text()
	if len(text) > textScanLimit {
		text = text[:textScanLimit]
	}
	text = strings.ToLower(text)
	host := strings.ToLower(c.host())

	for _, b := range c.brands.Brands() {
		if strings.Contains(text, b) && !strings.Contains(host, b) {
			c.fs.Set(EmbeddedBrandName, 1)
			return
		}
	}
}

// getAttr safely retrieves an attribute value from a goquery selection.
func getAttr(sel *goquery.Selection, attrName string) string {
	val, exists := sel.Attr(attrName)
	if exists {
		return strings.TrimSpace(val)
	}
	return ""
}

func hasRelToken(sel *goquery.Selection, token string) bool {
	for _, t := range strings.Fields(strings.ToLower(getAttr(sel, "rel"))) {
		if t == token {
			return true
		}
	}
	return false
}

// relContains matches rel tokens such as "shortcut icon" and "apple-touch-icon".
func relContains(sel *goquery.Selection, sub string) bool {
	for _, t := range strings.Fields(strings.ToLower(getAttr(sel, "rel"))) {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}
