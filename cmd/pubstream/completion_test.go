package main

// Notes:
// - Generated scripts are checked for structure and content, not executed;
//   running shells would make the suite host dependent.
// - getCommands reads the real FlagSets, so these tests also catch flags
//   added to a parser without completion metadata.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Script generation per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell  Shell
		marker string
	}{
		{ShellBash, "complete -F _pubstream pubstream"},
		{ShellZsh, "#compdef pubstream"},
		{ShellFish, "complete -c pubstream"},
		{ShellPowerShell, "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			out := buf.String()
			if !strings.Contains(out, tt.marker) {
				t.Errorf("%s script missing %q", tt.shell, tt.marker)
			}
			for _, cmd := range []string{"serve", "transform", "message", "doctor", "completion"} {
				if !strings.Contains(out, cmd) {
					t.Errorf("%s script missing command %q", tt.shell, cmd)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := GenerateCompletion(&buf, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Fatalf("error = %v, want ErrUnsupportedShell", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestGenerateCompletion_EnumValues(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{ShellBash, ShellZsh, ShellFish} {
		var buf bytes.Buffer
		if err := GenerateCompletion(&buf, shell); err != nil {
			t.Fatalf("GenerateCompletion(%s) error = %v", shell, err)
		}
		for _, value := range []string{"memory redis", "packaged development"} {
			if !strings.Contains(buf.String(), value) {
				t.Errorf("%s script missing enum values %q", shell, value)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Command registry
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	byName := map[string]commandDef{}
	for _, c := range getCommands() {
		byName[c.Name] = c
	}

	for _, name := range []string{"serve", "transform", "message", "doctor", "completion", "version", "help"} {
		c, ok := byName[name]
		if !ok {
			t.Errorf("command %q missing", name)
			continue
		}
		if !isCommand(name) {
			t.Errorf("completion lists %q but isCommand rejects it", name)
		}
		if c.Desc == "" {
			t.Errorf("command %q has no description", name)
		}
	}

	if !byName["transform"].TakesFiles {
		t.Error("transform should complete file arguments")
	}

	flagsOf := func(cmd string) map[string]flagDef {
		out := map[string]flagDef{}
		for _, f := range byName[cmd].Flags {
			out[f.Long] = f
		}
		return out
	}

	serve := flagsOf("serve")
	if f := serve["store"]; f.Type != flagEnum || len(f.Values) != 2 {
		t.Errorf("serve --store = %+v, want enum of 2", f)
	}
	if f := serve["publications"]; f.Type != flagDir || f.Short != "p" {
		t.Errorf("serve --publications = %+v, want dir flag with -p", f)
	}
	if f := serve["config"]; f.Type != flagFile || f.FileGlob == "" {
		t.Errorf("serve --config = %+v, want file flag with glob", f)
	}
	if f := serve["no-watch"]; f.Type != flagBool {
		t.Errorf("serve --no-watch = %+v, want bool", f)
	}

	if _, ok := flagsOf("transform")["color-style"]; !ok {
		t.Error("transform should expose --color-style")
	}
	if _, ok := flagsOf("message")["url-root"]; !ok {
		t.Error("message should expose --url-root")
	}
	if _, ok := flagsOf("doctor")["json"]; !ok {
		t.Error("doctor should expose --json")
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - Command entry point
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	t.Run("no args prints usage", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()
		if err := runCompletion(nil, env); err != nil {
			t.Fatalf("runCompletion() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "Usage: pubstream completion <shell>") {
			t.Errorf("stdout = %q, want usage", stdout.String())
		}
	})

	t.Run("zsh", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()
		if err := runCompletion([]string{"zsh"}, env); err != nil {
			t.Fatalf("runCompletion() error = %v", err)
		}
		if !strings.HasPrefix(stdout.String(), "#compdef pubstream") {
			t.Errorf("stdout should start with #compdef, got %q", stdout.String())
		}
	})
}
