package main

// Notes:
// - runMain: exit codes are checked for dispatch, usage and help paths.
//   serve is covered in serve_test.go since it binds a socket.
// - isCommand: command name matching.
// - setMaxProcs: only that the undo function is always callable; the
//   effective GOMAXPROCS depends on the host cgroup.

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestIsCommand - Command name matching
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"serve", true},
		{"transform", true},
		{"message", true},
		{"doctor", true},
		{"completion", true},
		{"version", true},
		{"help", true},
		{"--help", true},
		{"-h", true},
		{"convert", false},
		{"Serve", false},
		{"", false},
		{"chapter.xhtml", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := isCommand(tt.input); got != tt.want {
				t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "no command prints usage",
			args:       []string{"pubstream"},
			wantCode:   ExitUsage,
			wantStderr: "Usage: pubstream",
		},
		{
			name:       "unknown command",
			args:       []string{"pubstream", "convert"},
			wantCode:   ExitUsage,
			wantStderr: "unknown command: convert",
		},
		{
			name:       "version",
			args:       []string{"pubstream", "version"},
			wantCode:   ExitSuccess,
			wantStdout: "pubstream " + Version,
		},
		{
			name:       "help",
			args:       []string{"pubstream", "help"},
			wantCode:   ExitSuccess,
			wantStdout: "Commands:",
		},
		{
			name:       "help for command",
			args:       []string{"pubstream", "help", "serve"},
			wantCode:   ExitSuccess,
			wantStdout: "Usage: pubstream serve",
		},
		{
			name:       "command --help exits zero",
			args:       []string{"pubstream", "transform", "--help"},
			wantCode:   ExitSuccess,
			wantStderr: "Usage: pubstream transform",
		},
		{
			name:       "unknown flag is usage error",
			args:       []string{"pubstream", "message", "--bogus"},
			wantCode:   ExitUsage,
			wantStderr: "usage error",
		},
		{
			name:       "transform without file",
			args:       []string{"pubstream", "transform"},
			wantCode:   ExitUsage,
			wantStderr: "exactly one file",
		},
		{
			name:       "transform missing file",
			args:       []string{"pubstream", "transform", "/nonexistent/chapter.xhtml"},
			wantCode:   ExitIO,
			wantStderr: "failed to read input",
		},
		{
			name:       "completion bash",
			args:       []string{"pubstream", "completion", "bash"},
			wantCode:   ExitSuccess,
			wantStdout: "complete -F _pubstream pubstream",
		},
		{
			name:       "completion unknown shell",
			args:       []string{"pubstream", "completion", "tcsh"},
			wantCode:   ExitUsage,
			wantStderr: "unsupported shell",
		},
		{
			name:       "serve rejects positional args",
			args:       []string{"pubstream", "serve", "extra"},
			wantCode:   ExitUsage,
			wantStderr: "serve takes no arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want substring %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSetMaxProcs - Container CPU quota
// ---------------------------------------------------------------------------

func TestSetMaxProcs(t *testing.T) {
	var buf bytes.Buffer
	undo := setMaxProcs(true, &buf)
	if undo == nil {
		t.Fatal("setMaxProcs returned nil undo")
	}
	undo()

	quiet := setMaxProcs(false, &buf)
	quiet()
}
