package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TopicSpec defines one topic in the closed topic enumeration.
// The order of topics in Config.Topics is the digest section priority order
// and also the evaluation order for subject keyword rules.
type TopicSpec struct {
	// Name is the canonical topic label (e.g. "Tech")
	Name string `json:"name"`

	// Label is the display marker emitted before the name in digest headings
	Label string `json:"label"`

	// Keywords are subject keywords that classify into this topic
	// (word-boundary, case-insensitive)
	Keywords []string `json:"keywords,omitempty"`
}

// Config holds application configuration.
type Config struct {
	// TrackerHosts are substrings matched against <img> src attributes.
	// An image whose src contains any of these is removed as a tracking pixel.
	TrackerHosts []string `json:"tracker_hosts,omitempty"`

	// BannerSelectors are CSS selectors identifying vendor compliance banners.
	// Matched elements are removed with their entire subtree.
	BannerSelectors []string `json:"banner_selectors,omitempty"`

	// SpamReportPatterns are substrings matched against <a> href attributes
	// to remove stray "report spam" links outside banner structures.
	SpamReportPatterns []string `json:"spam_report_patterns,omitempty"`

	// PreheaderMaxChars is the maximum visible text length for an element to
	// qualify as a hidden inbox-preview preheader.
	PreheaderMaxChars int `json:"preheader_max_chars,omitempty"`

	// ExcerptMaxChars is the maximum excerpt length for digest entries.
	ExcerptMaxChars int `json:"excerpt_max_chars,omitempty"`

	// NewsletterAddresses are recipient addresses that force the newsletter
	// route even when no list headers are present.
	NewsletterAddresses []string `json:"newsletter_addresses,omitempty"`

	// SenderTopics maps sender/newsletter names to topic names.
	// Lookup is case-insensitive exact and overrides keyword inference.
	SenderTopics map[string]string `json:"sender_topics,omitempty"`

	// Topics is the closed topic enumeration in priority order.
	// When empty, DefaultConfig topics apply.
	Topics []TopicSpec `json:"topics,omitempty"`

	// DefaultTopic is assigned when neither overrides nor keywords match.
	DefaultTopic string `json:"default_topic,omitempty"`

	// DBMaxOpenConns limits open database connections.
	// If set to 1, all database access is serialized.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TrackerHosts: []string{
			"pixel.",
			"/o.gif",
			"/spacer",
			"/track/open",
			"/wf/open",
			"list-manage.com/track",
			"click.",
			"/open?",
		},
		BannerSelectors: []string{
			"[data-tracker-report]",
			".compliance-banner",
			".email-protection-notice",
		},
		SpamReportPatterns: []string{
			"/report-spam",
			"spamreport",
		},
		PreheaderMaxChars: 300,
		ExcerptMaxChars:   2000,
		SenderTopics:      map[string]string{},
		Topics: []TopicSpec{
			{Name: "Tech", Label: "💻", Keywords: []string{
				"tech", "ai", "software", "programming", "code", "engineering", "javascript", "golang",
			}},
			{Name: "Design", Label: "🎨", Keywords: []string{
				"design", "css", "ux", "ui", "typography", "figma",
			}},
			{Name: "Business", Label: "💼", Keywords: []string{
				"business", "startup", "funding", "market", "economy", "finance",
			}},
			{Name: "News", Label: "📰", Keywords: []string{
				"news", "politics", "world", "briefing",
			}},
			{Name: "Culture", Label: "🎭", Keywords: []string{
				"culture", "art", "film", "music", "books",
			}},
			{Name: "General", Label: "📬"},
		},
		DefaultTopic: "General",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mailfold.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Scalars: overlay wins if non-zero. Tracker/pattern lists are merged and
// deduplicated (deployments add trackers, they rarely remove them). The topic
// table and newsletter addresses replace wholesale when provided, since
// merging rule lists would change rule precedence in surprising ways.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.PreheaderMaxChars = overlay.PreheaderMaxChars
	if result.PreheaderMaxChars == 0 {
		result.PreheaderMaxChars = base.PreheaderMaxChars
	}

	result.ExcerptMaxChars = overlay.ExcerptMaxChars
	if result.ExcerptMaxChars == 0 {
		result.ExcerptMaxChars = base.ExcerptMaxChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DefaultTopic = overlay.DefaultTopic
	if result.DefaultTopic == "" {
		result.DefaultTopic = base.DefaultTopic
	}

	result.TrackerHosts = mergeStringSlice(base.TrackerHosts, overlay.TrackerHosts)
	result.BannerSelectors = mergeStringSlice(base.BannerSelectors, overlay.BannerSelectors)
	result.SpamReportPatterns = mergeStringSlice(base.SpamReportPatterns, overlay.SpamReportPatterns)

	result.Topics = base.Topics
	if len(overlay.Topics) > 0 {
		result.Topics = overlay.Topics
	}

	result.NewsletterAddresses = base.NewsletterAddresses
	if len(overlay.NewsletterAddresses) > 0 {
		result.NewsletterAddresses = overlay.NewsletterAddresses
	}

	// Sender overrides: overlay entries win on key collision
	result.SenderTopics = map[string]string{}
	for k, v := range base.SenderTopics {
		result.SenderTopics[k] = v
	}
	for k, v := range overlay.SenderTopics {
		result.SenderTopics[k] = v
	}

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
