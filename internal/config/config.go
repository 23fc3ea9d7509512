// Package config loads application settings from environment variables with
// sane defaults. Environment variables use the RVA_ prefix, e.g.
// RVA_SOURCES_EVENTS_URL overrides sources.events_url.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default source locators point at the SkillCorner open-data repository.
// The tracking/meta locators are pinned to a known-good commit; the event
// log has two deliberately independent locators: the primary serves large
// files via the media host, the fallback is the plain raw host. Keep them
// separate: they are not derivable from one another.
const (
	defaultTrackingURL = "https://media.githubusercontent.com/media/SkillCorner/opendata/741bdb798b0c1835057e3fa77244c1571a00e4aa/data/matches/{match_id}/{match_id}_tracking_extrapolated.jsonl"
	defaultMetaURL     = "https://raw.githubusercontent.com/SkillCorner/opendata/741bdb798b0c1835057e3fa77244c1571a00e4aa/data/matches/{match_id}/{match_id}_match.json"
	defaultEventsURL   = "https://media.githubusercontent.com/media/SkillCorner/opendata/master/data/matches/{match_id}/{match_id}_dynamic_events.csv"
	defaultEventsFallbackURL = "https://raw.githubusercontent.com/SkillCorner/opendata/master/data/matches/{match_id}/{match_id}_dynamic_events.csv"
)

// Config holds all application configuration.
type Config struct {
	// Source locators; "{match_id}" is substituted with the match identifier.
	TrackingURL       string
	MetaURL           string
	EventsURL         string
	EventsFallbackURL string

	// Assumed playing time in seconds for players with a null end time.
	DefaultMatchSeconds float64

	// HTTP client timeout for provider fetches.
	HTTPTimeout time.Duration

	Debug bool
}

// Load reads configuration from the environment, applying defaults for any
// unset key.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("RVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sources.tracking_url", defaultTrackingURL)
	v.SetDefault("sources.meta_url", defaultMetaURL)
	v.SetDefault("sources.events_url", defaultEventsURL)
	v.SetDefault("sources.events_fallback_url", defaultEventsFallbackURL)
	v.SetDefault("match.default_seconds", 90*60)
	v.SetDefault("http.timeout", "60s")
	v.SetDefault("debug", false)

	return &Config{
		TrackingURL:         v.GetString("sources.tracking_url"),
		MetaURL:             v.GetString("sources.meta_url"),
		EventsURL:           v.GetString("sources.events_url"),
		EventsFallbackURL:   v.GetString("sources.events_fallback_url"),
		DefaultMatchSeconds: v.GetFloat64("match.default_seconds"),
		HTTPTimeout:         v.GetDuration("http.timeout"),
		Debug:               v.GetBool("debug"),
	}
}
