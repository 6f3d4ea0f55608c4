package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ExcerptMaxChars != 2000 {
		t.Errorf("ExcerptMaxChars = %d, want 2000", cfg.ExcerptMaxChars)
	}
	if cfg.PreheaderMaxChars != 300 {
		t.Errorf("PreheaderMaxChars = %d, want 300", cfg.PreheaderMaxChars)
	}
	if cfg.DefaultTopic != "General" {
		t.Errorf("DefaultTopic = %q", cfg.DefaultTopic)
	}
	if len(cfg.Topics) == 0 {
		t.Fatal("no default topics")
	}
	if cfg.Topics[len(cfg.Topics)-1].Name != "General" {
		t.Errorf("General should be the lowest-priority topic: %v", cfg.Topics)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ExcerptMaxChars != DefaultConfig().ExcerptMaxChars {
		t.Errorf("missing config did not fall back to defaults")
	}
}

func TestLoad_FileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"excerpt_max_chars": 500,
		"tracker_hosts": ["opens.example.net"],
		"sender_topics": {"Design Weekly": "Design"}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ExcerptMaxChars != 500 {
		t.Errorf("ExcerptMaxChars = %d, want 500", cfg.ExcerptMaxChars)
	}
	// Tracker lists merge; the defaults stay alongside the addition
	if !contains(cfg.TrackerHosts, "opens.example.net") {
		t.Errorf("added tracker missing: %v", cfg.TrackerHosts)
	}
	if !contains(cfg.TrackerHosts, "/o.gif") {
		t.Errorf("default tracker dropped: %v", cfg.TrackerHosts)
	}
	if cfg.SenderTopics["Design Weekly"] != "Design" {
		t.Errorf("SenderTopics = %v", cfg.SenderTopics)
	}
	if len(cfg.Topics) == 0 {
		t.Error("default topics dropped by merge")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMerge_TopicsReplaceWholesale(t *testing.T) {
	overlay := &Config{
		Topics: []TopicSpec{
			{Name: "Only", Label: "🔹"},
		},
		DefaultTopic: "Only",
	}

	merged := Merge(DefaultConfig(), overlay)
	if len(merged.Topics) != 1 || merged.Topics[0].Name != "Only" {
		t.Errorf("topic table not replaced: %v", merged.Topics)
	}
	if merged.DefaultTopic != "Only" {
		t.Errorf("DefaultTopic = %q", merged.DefaultTopic)
	}
}

func TestMerge_ListsDeduplicate(t *testing.T) {
	base := &Config{TrackerHosts: []string{"pixel.", "click."}}
	overlay := &Config{TrackerHosts: []string{"click.", " new.example "}}

	merged := Merge(base, overlay)
	want := []string{"pixel.", "click.", "new.example"}
	if len(merged.TrackerHosts) != len(want) {
		t.Fatalf("TrackerHosts = %v, want %v", merged.TrackerHosts, want)
	}
	for i := range want {
		if merged.TrackerHosts[i] != want[i] {
			t.Errorf("TrackerHosts[%d] = %q, want %q", i, merged.TrackerHosts[i], want[i])
		}
	}
}

func TestMerge_ZeroScalarsKeepBase(t *testing.T) {
	merged := Merge(DefaultConfig(), &Config{})
	if merged.ExcerptMaxChars != 2000 || merged.PreheaderMaxChars != 300 {
		t.Errorf("zero overlay scalars clobbered base: %+v", merged)
	}
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
