// Package skillcorner provides a minimal client for the SkillCorner
// open-data repository: per-frame tracking (JSONL), match metadata (JSON)
// and the dynamic-events log (CSV).
package skillcorner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/config"
)

// Client fetches raw match data from the configured source locators.
type Client struct {
	cfg  *config.Config
	http *http.Client
	log  *zap.Logger
}

// NewClient returns a client using the given source configuration.
func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		log:  log,
	}
}

// RawPossession is the nested possession object of a frame. Both fields are
// null between possessions.
type RawPossession struct {
	PlayerID *int64  `json:"player_id"`
	Group    *string `json:"group"`
}

// RawBall is the nested ball object of a frame. Fields are decoded by name;
// a coordinate the provider omits stays nil.
type RawBall struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Z          *float64 `json:"z"`
	IsDetected *bool    `json:"is_detected"`
}

// RawPlayerSample is one player's position inside a frame.
type RawPlayerSample struct {
	PlayerID int64   `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// RawFrame is one line of the tracking JSONL file.
type RawFrame struct {
	Frame      int               `json:"frame"`
	Timestamp  *string           `json:"timestamp"`
	Period     *int              `json:"period"`
	Possession *RawPossession    `json:"possession"`
	Ball       *RawBall          `json:"ball_data"`
	PlayerData []RawPlayerSample `json:"player_data"`
}

// RawPlayerRole is the nested role object of a roster player.
type RawPlayerRole struct {
	Name          string `json:"name"`
	Acronym       string `json:"acronym"`
	PositionGroup string `json:"position_group"`
}

// RawPlayer is one roster entry of the match metadata.
type RawPlayer struct {
	ID        int64         `json:"id"`
	TeamID    int64         `json:"team_id"`
	ShortName string        `json:"short_name"`
	Number    int           `json:"number"`
	StartTime *string       `json:"start_time"`
	EndTime   *string       `json:"end_time"`
	Role      RawPlayerRole `json:"player_role"`
}

// RawTeam identifies one side of the match.
type RawTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RawMatchMeta holds the fields we need from the match metadata payload.
type RawMatchMeta struct {
	ID            int64       `json:"id"`
	DateTime      string      `json:"date_time"`
	HomeTeamScore int         `json:"home_team_score"`
	AwayTeamScore int         `json:"away_team_score"`
	HomeTeam      RawTeam     `json:"home_team"`
	AwayTeam      RawTeam     `json:"away_team"`
	HomeTeamSide  []string    `json:"home_team_side"`
	Players       []RawPlayer `json:"players"`
}

// urlFor substitutes the match identifier into a source locator template.
func urlFor(tmpl string, matchID int64) string {
	return strings.ReplaceAll(tmpl, "{match_id}", strconv.FormatInt(matchID, 10))
}

// get performs a GET and returns the response body, treating any non-200
// status as an error.
func (c *Client) get(url string) ([]byte, error) {
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FetchTracking downloads and decodes the tracking JSONL for a match, one
// frame per line. Any undecodable line is a fatal error: downstream assumes
// a rectangular schema.
func (c *Client) FetchTracking(matchID int64) ([]RawFrame, error) {
	url := urlFor(c.cfg.TrackingURL, matchID)
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch tracking: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tracking %s: HTTP %d", url, resp.StatusCode)
	}
	return DecodeTracking(resp.Body)
}

// DecodeTracking decodes a stream of newline-delimited frame records.
func DecodeTracking(r io.Reader) ([]RawFrame, error) {
	var frames []RawFrame
	sc := bufio.NewScanner(r)
	// Frames with 22 player samples exceed the default token size.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var f RawFrame
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return nil, fmt.Errorf("decode tracking line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tracking: %w", err)
	}
	return frames, nil
}

// FetchMeta downloads and decodes the match metadata payload.
func (c *Client) FetchMeta(matchID int64) (*RawMatchMeta, error) {
	body, err := c.get(urlFor(c.cfg.MetaURL, matchID))
	if err != nil {
		return nil, fmt.Errorf("fetch match meta: %w", err)
	}
	var meta RawMatchMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode match meta: %w", err)
	}
	return &meta, nil
}

// FetchEvents downloads the raw event-log CSV. The primary locator is tried
// first; on any failure exactly one fallback locator is tried before giving
// up. The two locators are configured independently.
func (c *Client) FetchEvents(matchID int64) ([]byte, error) {
	primary := urlFor(c.cfg.EventsURL, matchID)
	body, err := c.get(primary)
	if err == nil {
		return body, nil
	}

	fallback := urlFor(c.cfg.EventsFallbackURL, matchID)
	c.log.Warn("primary event source failed, trying fallback",
		zap.String("primary", primary),
		zap.String("fallback", fallback),
		zap.Error(err))

	body, ferr := c.get(fallback)
	if ferr != nil {
		return nil, fmt.Errorf("fetch events: primary: %v; fallback: %w", err, ferr)
	}
	return body, nil
}
