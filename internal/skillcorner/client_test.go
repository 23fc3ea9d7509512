package skillcorner

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/config"
)

func TestURLFor(t *testing.T) {
	got := urlFor("https://example.com/{match_id}/{match_id}_tracking.jsonl", 2068)
	want := "https://example.com/2068/2068_tracking.jsonl"
	if got != want {
		t.Errorf("urlFor: want %q, got %q", want, got)
	}
}

func TestDecodeTracking(t *testing.T) {
	jsonl := strings.Join([]string{
		`{"frame":1,"timestamp":"00:00:00.10","period":1,"possession":{"player_id":10,"group":"home team"},"ball_data":{"x":1.5,"y":2.0,"z":0.2,"is_detected":true},"player_data":[{"player_id":10,"x":5,"y":6}]}`,
		``,
		`{"frame":2,"timestamp":null,"period":null,"possession":{"player_id":null,"group":null},"ball_data":{"x":null,"y":null,"z":null,"is_detected":null},"player_data":[]}`,
	}, "\n")

	frames, err := DecodeTracking(strings.NewReader(jsonl))
	if err != nil {
		t.Fatalf("DecodeTracking: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames (blank lines skipped), got %d", len(frames))
	}

	f := frames[0]
	if f.Frame != 1 || f.Timestamp == nil || *f.Timestamp != "00:00:00.10" {
		t.Errorf("frame 1 decoded wrong: %+v", f)
	}
	if f.Possession == nil || f.Possession.PlayerID == nil || *f.Possession.PlayerID != 10 {
		t.Errorf("possession decoded wrong: %+v", f.Possession)
	}
	if f.Ball == nil || f.Ball.X == nil || *f.Ball.X != 1.5 || f.Ball.IsDetected == nil || !*f.Ball.IsDetected {
		t.Errorf("ball decoded wrong: %+v", f.Ball)
	}

	// JSON nulls stay nil pointers rather than zero values.
	g := frames[1]
	if g.Timestamp != nil || g.Period != nil {
		t.Errorf("null frame fields should be nil: %+v", g)
	}
	if g.Possession.PlayerID != nil || g.Ball.X != nil || g.Ball.IsDetected != nil {
		t.Error("null nested fields should be nil")
	}
}

func TestDecodeTrackingBadLine(t *testing.T) {
	if _, err := DecodeTracking(strings.NewReader("{not json}\n")); err == nil {
		t.Fatal("expected error for undecodable line")
	}
}

func TestFetchEventsFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("event_id,event_type,frame_end\n"))
	}))
	defer fallback.Close()

	cfg := config.Load()
	cfg.EventsURL = primary.URL + "/{match_id}.csv"
	cfg.EventsFallbackURL = fallback.URL + "/{match_id}.csv"

	c := NewClient(cfg, zap.NewNop())
	body, err := c.FetchEvents(2068)
	if err != nil {
		t.Fatalf("FetchEvents should fall back: %v", err)
	}
	if !strings.HasPrefix(string(body), "event_id") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestFetchEventsBothFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	cfg := config.Load()
	cfg.EventsURL = srv.URL + "/p/{match_id}.csv"
	cfg.EventsFallbackURL = srv.URL + "/f/{match_id}.csv"

	c := NewClient(cfg, zap.NewNop())
	if _, err := c.FetchEvents(2068); err == nil {
		t.Fatal("expected error when both sources fail")
	}
}
