package clean

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// PlaceholderNoContent is emitted when a message has neither an HTML nor a
// plain-text body.
const PlaceholderNoContent = "(no content)"

// Converter renders sanitized newsletter HTML to markdown-flavored text.
// Newsletter tables are layout devices, so table cells become sequential
// paragraphs instead of markdown table syntax, and links styled as buttons
// collapse to plain links.
type Converter struct {
	conv *md.Converter
}

// NewConverter builds a converter with the newsletter rule set.
func NewConverter() *Converter {
	conv := md.NewConverter("", true, nil)

	conv.AddRules(
		md.Rule{
			Filter: []string{"td", "th"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				trimmed := strings.TrimSpace(content)
				if trimmed == "" {
					return md.String("")
				}
				return md.String(trimmed + "\n\n")
			},
		},
		md.Rule{
			Filter: []string{"table", "thead", "tbody", "tfoot", "tr"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				return md.String(content)
			},
		},
		md.Rule{
			Filter: []string{"a"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				if !isButtonLink(selec) {
					return nil // fall through to the default link rule
				}
				text := strings.TrimSpace(selec.Text())
				href := strings.TrimSpace(selec.AttrOr("href", ""))
				if text == "" || href == "" {
					return md.String(text)
				}
				return md.String("[" + text + "](" + href + ")")
			},
		},
	)

	return &Converter{conv: conv}
}

// isButtonLink reports whether a link is visually a button: background-color
// styling on the element itself or a bgcolor attribute.
func isButtonLink(selec *goquery.Selection) bool {
	if strings.Contains(strings.ToLower(selec.AttrOr("style", "")), "background-color") {
		return true
	}
	return selec.AttrOr("bgcolor", "") != ""
}

// Convert renders sanitized HTML to text. Errors surface to the caller so the
// fallback chain in Render can take over.
func (c *Converter) Convert(sanitizedHTML string) (string, error) {
	return c.conv.ConvertString(sanitizedHTML)
}

// Render applies the fallback chain: converted HTML body, then the plain-text
// body, then a literal placeholder. Never fails.
func (c *Converter) Render(sanitizedHTML, textBody string) string {
	if strings.TrimSpace(sanitizedHTML) != "" {
		converted, err := c.Convert(sanitizedHTML)
		if err == nil && strings.TrimSpace(converted) != "" {
			return converted
		}
	}
	if strings.TrimSpace(textBody) != "" {
		return textBody
	}
	return PlaceholderNoContent
}

// viewInBrowserPattern matches the usual hosted-copy link texts.
var viewInBrowserPattern = regexp.MustCompile(`(?i)^(view (it |this )?(in|on) (your )?browser|read online|view online)$`)

// BrowserLink returns the hosted-copy URL from a sanitized HTML body, or ""
// when the message carries none. Used for digest entry "read more" links.
func BrowserLink(sanitizedHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizedHTML))
	if err != nil {
		return ""
	}
	link := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if viewInBrowserPattern.MatchString(text) {
			link = strings.TrimSpace(sel.AttrOr("href", ""))
			return false
		}
		return true
	})
	return link
}
