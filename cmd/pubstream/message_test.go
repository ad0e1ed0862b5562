package main

// Notes:
// - runMessage: default config without a token, per-window config from a
//   redis session (miniredis), --url-root and --compact output shape.
// - Resolution fallbacks are covered by the session package; here only the
//   CLI surface is checked.

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/alnah/go-pubstream/internal/cssmsg"
	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/session"
	"github.com/alnah/go-pubstream/internal/store"
	redisstore "github.com/alnah/go-pubstream/internal/store/redis"
)

func decodeMessage(t *testing.T, raw string) cssmsg.Message {
	t.Helper()
	var msg cssmsg.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("invalid JSON %q: %v", raw, err)
	}
	return msg
}

// ---------------------------------------------------------------------------
// TestRunMessage - Styling message output
// ---------------------------------------------------------------------------

func TestRunMessage_Default(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	if err := runMessage(context.Background(), nil, env); err != nil {
		t.Fatalf("runMessage() error = %v", err)
	}

	msg := decodeMessage(t, stdout.String())
	if msg.SetCSS == nil {
		t.Fatal("default message should carry setCSS")
	}
	if !msg.SetCSS.Paged {
		t.Error("default message should be paged")
	}
	if msg.SetCSS.Font != readerconfig.DefaultFont {
		t.Errorf("Font = %q, want %q", msg.SetCSS.Font, readerconfig.DefaultFont)
	}
	if !strings.Contains(stdout.String(), "\n  ") {
		t.Error("default output should be indented")
	}
}

func TestRunMessage_Session(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rs := redisstore.New(mr.Addr(), "", 0)
	defer func() { _ = rs.Close() }()

	night := readerconfig.Default()
	night.Night = true
	night.ColCount = readerconfig.ColCountTwo
	err := rs.PutSession(context.Background(), &store.SessionState{
		ID:     "win-7",
		Reader: &store.ReaderState{PublicationID: "moby", Config: &night},
	})
	if err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}

	env, stdout, stderr := testEnv()
	args := []string{
		session.EncodeToken("win-7"),
		"--store", "redis",
		"--redis-addr", mr.Addr(),
		"--url-root", "http://reader.test/readium-css",
		"--compact",
		"-v",
	}
	if err := runMessage(context.Background(), args, env); err != nil {
		t.Fatalf("runMessage() error = %v", err)
	}

	out := stdout.String()
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Errorf("compact output should be one line, got %q", out)
	}
	msg := decodeMessage(t, out)
	if msg.SetCSS == nil || !msg.SetCSS.Night || msg.SetCSS.ColCount != readerconfig.ColCountTwo {
		t.Errorf("SetCSS = %+v, want session config", msg.SetCSS)
	}
	if msg.URLRoot != "http://reader.test/readium-css" {
		t.Errorf("URLRoot = %q, want the --url-root value", msg.URLRoot)
	}
	if !strings.Contains(stderr.String(), `window "win-7"`) {
		t.Errorf("verbose stderr = %q, want resolved window", stderr.String())
	}
}

func TestRunMessage_ReadiumCSSDisabled(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rs := redisstore.New(mr.Addr(), "", 0)
	defer func() { _ = rs.Close() }()

	off := readerconfig.Default()
	off.ReadiumCSS = false
	if err := rs.PutDefaultConfig(context.Background(), off); err != nil {
		t.Fatalf("PutDefaultConfig() error = %v", err)
	}

	env, stdout, _ := testEnv()
	args := []string{"--store", "redis", "--redis-addr", mr.Addr()}
	if err := runMessage(context.Background(), args, env); err != nil {
		t.Fatalf("runMessage() error = %v", err)
	}

	if msg := decodeMessage(t, stdout.String()); msg.SetCSS != nil {
		t.Errorf("SetCSS = %+v, want nil when Readium CSS is disabled", msg.SetCSS)
	}
}

func TestRunMessage_TooManyTokens(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv()
	err := runMessage(context.Background(), []string{"a", "b"}, env)
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("error = %v, want ErrUsage", err)
	}
}
