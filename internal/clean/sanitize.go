package clean

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cloudflare/ahocorasick"

	"github.com/askeland/mailfold/internal/config"
)

// Sanitizer strips non-content markup from bulk-email HTML while preserving
// structural and visual content. Pure; never errors on malformed input.
type Sanitizer struct {
	trackers       *ahocorasick.Matcher
	hasTrackers    bool
	banners        []string
	spamPatterns   []string
	preheaderChars int
}

// NewSanitizer builds a sanitizer from configuration.
func NewSanitizer(cfg *config.Config) *Sanitizer {
	s := &Sanitizer{
		banners:        cfg.BannerSelectors,
		spamPatterns:   lowerAll(cfg.SpamReportPatterns),
		preheaderChars: cfg.PreheaderMaxChars,
	}
	if len(cfg.TrackerHosts) > 0 {
		s.trackers = ahocorasick.NewStringMatcher(lowerAll(cfg.TrackerHosts))
		s.hasTrackers = true
	}
	return s
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// documentEndPattern matches the logical end of the HTML document. Mailing
// list relays append plain-text footers after it.
var documentEndPattern = regexp.MustCompile(`(?i)</html\s*>`)

// conditionalPattern matches conditional comment blocks for legacy mail
// client rendering engines, e.g. <!--[if mso]> ... <![endif]-->.
var conditionalPattern = regexp.MustCompile(`(?is)<!--\[if\s[^\]]*\]>.*?<!\[endif\]\s*-->`)

// blankRunPattern matches runs of three or more blank lines.
var blankRunPattern = regexp.MustCompile(`(?:\r?\n[ \t]*){4,}`)

// Sanitize applies the newsletter cleaning ruleset to an HTML string.
// Sections that cannot be parsed are returned unchanged; the function never
// fails outright.
func (s *Sanitizer) Sanitize(html string) string {
	// String-level passes first: trailing relay footers live outside the
	// document tree, and the HTML parser would fold them into <body>.
	out := cutAfterDocumentEnd(html)
	out = stripConditionalBlocks(out)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		return collapseBlankRuns(out)
	}

	doc.Find("script").Remove()

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if s.isTrackingPixel(sel) {
			sel.Remove()
		}
	})

	doc.Find("div, span, p, td").Each(func(_ int, sel *goquery.Selection) {
		if s.isHiddenPreheader(sel) {
			sel.Remove()
		}
	})

	// Remove() detaches the full subtree, so nested banner tables come out
	// at every depth.
	for _, selector := range s.banners {
		doc.Find(selector).Remove()
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.ToLower(sel.AttrOr("href", ""))
		for _, pattern := range s.spamPatterns {
			if strings.Contains(href, pattern) {
				sel.Remove()
				return
			}
		}
	})

	rendered, err := doc.Html()
	if err != nil {
		return collapseBlankRuns(out)
	}
	return collapseBlankRuns(rendered)
}

// isTrackingPixel reports whether an <img> is an analytics pixel: an explicit
// 0 or 1 pixel dimension, or a src matching a known tracker substring.
// Unsized and large images are kept.
func (s *Sanitizer) isTrackingPixel(sel *goquery.Selection) bool {
	width := strings.TrimSpace(sel.AttrOr("width", ""))
	height := strings.TrimSpace(sel.AttrOr("height", ""))
	if width == "0" || width == "1" || height == "0" || height == "1" {
		return true
	}
	if !s.hasTrackers {
		return false
	}
	src := strings.ToLower(sel.AttrOr("src", ""))
	if src == "" {
		return false
	}
	return len(s.trackers.Match([]byte(src))) > 0
}

// isHiddenPreheader reports whether an element is an inbox-preview preheader:
// hidden styling on a short text container with no visual children.
func (s *Sanitizer) isHiddenPreheader(sel *goquery.Selection) bool {
	style := strings.ToLower(sel.AttrOr("style", ""))
	if style == "" {
		return false
	}
	if !hasHiddenStyle(style) {
		return false
	}
	if sel.Find("img, table").Length() > 0 {
		return false
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return false
	}
	return utf8.RuneCountInString(text) <= s.preheaderChars
}

// hasHiddenStyle reports whether an inline style hides the element:
// display:none, or a zero opacity, height, max-height, or font-size.
// Values are parsed per declaration; opacity:0.85 or max-height:0.5em is
// partially visible content, not a hidden preheader.
func hasHiddenStyle(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		value = strings.TrimSpace(value)
		switch prop {
		case "display":
			if value == "none" {
				return true
			}
		case "opacity", "height", "max-height", "font-size", "line-height":
			if isZeroValue(value) {
				return true
			}
		}
	}
	return false
}

// isZeroValue reports whether a CSS number or length is exactly zero,
// ignoring any unit suffix: "0", "0px", "0.0em", but not "0.5em".
func isZeroValue(value string) bool {
	num := strings.TrimFunc(value, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-'
	})
	if num == "" {
		return false
	}
	f, err := strconv.ParseFloat(num, 64)
	return err == nil && f == 0
}

// cutAfterDocumentEnd drops everything after the first closing html tag, or
// after the closing body tag when no html tag is present.
func cutAfterDocumentEnd(html string) string {
	if loc := documentEndPattern.FindStringIndex(html); loc != nil {
		return html[:loc[1]]
	}
	if loc := bodyEndPattern.FindStringIndex(html); loc != nil {
		return html[:loc[1]]
	}
	return html
}

var bodyEndPattern = regexp.MustCompile(`(?i)</body\s*>`)

// stripConditionalBlocks removes hidden conditional comment blocks. Negated
// conditions (e.g. [if !mso]) are downlevel-revealed: their content is
// visible in modern clients and must be kept.
func stripConditionalBlocks(html string) string {
	return conditionalPattern.ReplaceAllStringFunc(html, func(match string) string {
		rest := strings.TrimPrefix(match, "<!--[if")
		if strings.HasPrefix(strings.TrimSpace(rest), "!") {
			return match
		}
		return ""
	})
}

// collapseBlankRuns reduces runs of three or more blank lines to one.
func collapseBlankRuns(s string) string {
	return blankRunPattern.ReplaceAllString(s, "\n\n")
}
