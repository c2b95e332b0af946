package hiscores

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// liteBody builds a minimal valid lite response: overall plus 23 skills,
// all at the given level, followed by a couple of activity lines.
func liteBody(level int) string {
	var b strings.Builder
	for range skillOrder {
		b.WriteString("12345,")
		b.WriteString(strconv.Itoa(level))
		b.WriteString(",1000000\n")
	}
	b.WriteString("-1,-1\n-1,-1\n")
	return b.String()
}

func TestParseLite(t *testing.T) {
	t.Run("parses all skills", func(t *testing.T) {
		stats, err := ParseLite(liteBody(75))
		if err != nil {
			t.Fatalf("ParseLite: %v", err)
		}
		if len(stats.Skills) != len(skillOrder) {
			t.Errorf("parsed %d skills, want %d", len(stats.Skills), len(skillOrder))
		}
		if got := stats.Level("Attack"); got != 75 {
			t.Errorf("Level(Attack) = %d, want 75", got)
		}
		if got := stats.Level("construction"); got != 75 {
			t.Errorf("Level(construction) = %d, want 75", got)
		}
	})

	t.Run("unranked skill", func(t *testing.T) {
		body := liteBody(60)
		lines := strings.Split(strings.TrimSpace(body), "\n")
		lines[1] = "-1,1,-1" // attack unranked
		stats, err := ParseLite(strings.Join(lines, "\n"))
		if err != nil {
			t.Fatalf("ParseLite: %v", err)
		}
		attack := stats.Skills["attack"]
		if attack.Rank != -1 || attack.Level != 1 {
			t.Errorf("attack = %+v, want rank -1 level 1", attack)
		}
	})

	t.Run("unknown skill falls back to level 1", func(t *testing.T) {
		stats, err := ParseLite(liteBody(90))
		if err != nil {
			t.Fatalf("ParseLite: %v", err)
		}
		if got := stats.Level("sailing"); got != 1 {
			t.Errorf("Level(sailing) = %d, want 1", got)
		}
	})

	t.Run("truncated body", func(t *testing.T) {
		if _, err := ParseLite("123,45,678\n90,12,345"); err == nil {
			t.Error("expected error for truncated body, got nil")
		}
	})

	t.Run("malformed line", func(t *testing.T) {
		body := liteBody(50)
		lines := strings.Split(strings.TrimSpace(body), "\n")
		lines[3] = "not,a"
		if _, err := ParseLite(strings.Join(lines, "\n")); err == nil {
			t.Error("expected error for malformed line, got nil")
		}
	})
}

func TestLookup(t *testing.T) {
	t.Run("known player", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("player"); got != "Zezima" {
				t.Errorf("player param = %q, want Zezima", got)
			}
			w.Write([]byte(liteBody(99)))
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-agent")
		stats, err := client.Lookup(context.Background(), "Zezima")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if stats.Player != "Zezima" {
			t.Errorf("Player = %q, want Zezima", stats.Player)
		}
		if got := stats.Level("magic"); got != 99 {
			t.Errorf("Level(magic) = %d, want 99", got)
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-agent")
		_, err := client.Lookup(context.Background(), "no such player")
		if !errors.Is(err, ErrPlayerNotFound) {
			t.Errorf("err = %v, want ErrPlayerNotFound", err)
		}
	})
}

func TestLookupOptional(t *testing.T) {
	t.Run("known player resolves normally", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(liteBody(80)))
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-agent")
		stats, err := client.LookupOptional(context.Background(), "Zezima")
		if err != nil {
			t.Fatalf("LookupOptional: %v", err)
		}
		if stats == nil || stats.Level("strength") != 80 {
			t.Errorf("stats = %+v, want strength 80", stats)
		}
	})

	t.Run("unknown player degrades to nil stats", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-agent")
		stats, err := client.LookupOptional(context.Background(), "no such player")
		if err != nil {
			t.Fatalf("LookupOptional should swallow not-found, got %v", err)
		}
		if stats != nil {
			t.Errorf("stats = %+v, want nil", stats)
		}
	})

	t.Run("server failure still errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-agent")
		if _, err := client.LookupOptional(context.Background(), "Zezima"); err == nil {
			t.Error("expected error for server failure, got nil")
		}
	})
}
