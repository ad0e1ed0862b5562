package main

// Notes:
// - runTransform: drag guards always, MathJax only when the default reader
//   config enables it, --url sets the loader source, -o writes atomically,
//   non-HTML input passes through unchanged.
// - --color output depends on the chroma style tables, so only the
//   presence of ANSI escapes is checked.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-pubstream/internal/inject"
)

const chapterHTML = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter 1</title></head>
<body><p>x</p></body>
</html>
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRunTransform - Offline transformer chain
// ---------------------------------------------------------------------------

func TestRunTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		file        string
		body        string
		args        []string
		wantContain []string
		wantAbsent  []string
		wantSame    bool
	}{
		{
			name:        "drag guards without mathjax",
			file:        "chapter.xhtml",
			body:        chapterHTML,
			wantContain: []string{inject.MarkerNoDrag, inject.MarkerDragGuard},
			wantAbsent:  []string{inject.MarkerMathJax},
		},
		{
			name: "mathjax with explicit url",
			file: "chapter.xhtml",
			body: chapterHTML,
			args: []string{"--mathjax", "--url", "http://reader.test:9000"},
			wantContain: []string{
				inject.MarkerMathJax,
				`src="http://reader.test:9000/math-jax/es5/tex-mml-chtml.js"`,
			},
		},
		{
			name:        "mathjax with default url",
			file:        "chapter.html",
			body:        chapterHTML,
			args:        []string{"--mathjax"},
			wantContain: []string{"http://127.0.0.1:8080/math-jax/"},
		},
		{
			name:     "stylesheet passes through",
			file:     "style.css",
			body:     "body { color: red; }\n</head>",
			args:     []string{"--mathjax"},
			wantSame: true,
		},
		{
			name:     "html without head close unchanged",
			file:     "frag.html",
			body:     "<p>no head</p>",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := writeInput(t, tt.file, tt.body)
			env, stdout, _ := testEnv()

			args := append([]string{input}, tt.args...)
			if err := runTransform(context.Background(), args, env); err != nil {
				t.Fatalf("runTransform() error = %v", err)
			}

			out := stdout.String()
			if tt.wantSame && out != tt.body {
				t.Errorf("output changed:\n%s", out)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(out, absent) {
					t.Errorf("output should not contain %q", absent)
				}
			}
		})
	}
}

func TestRunTransform_OutputFile(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "chapter.xhtml", chapterHTML)
	output := filepath.Join(t.TempDir(), "out.xhtml")
	env, stdout, stderr := testEnv()

	if err := runTransform(context.Background(), []string{input, "-o", output}, env); err != nil {
		t.Fatalf("runTransform() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty with -o, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "wrote "+output) {
		t.Errorf("stderr = %q, want write confirmation", stderr.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), inject.MarkerDragGuard) {
		t.Error("output file missing drag guard")
	}
}

func TestRunTransform_OutputDirMissing(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "chapter.xhtml", chapterHTML)
	output := filepath.Join(t.TempDir(), "missing", "out.xhtml")
	env, _, _ := testEnv()

	err := runTransform(context.Background(), []string{input, "-o", output}, env)
	if !errors.Is(err, ErrWriteOutput) {
		t.Fatalf("error = %v, want ErrWriteOutput", err)
	}
	if exitCodeFor(err) != ExitIO {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitIO)
	}
}

func TestRunTransform_Color(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "chapter.xhtml", chapterHTML)
	env, stdout, _ := testEnv()

	if err := runTransform(context.Background(), []string{input, "--color"}, env); err != nil {
		t.Fatalf("runTransform() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "\x1b[") {
		t.Errorf("colored output should contain ANSI escapes, got %q", stdout.String())
	}
}

func TestRunTransform_VerboseReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		args []string
		want string
	}{
		{"guards only", chapterHTML, nil, "no-drag=1 drag-guard=1 mathjax=0"},
		{"with mathjax", chapterHTML, []string{"--mathjax"}, "mathjax=1 (3 scripts in document)"},
		{"no head close", "<p>x</p>", nil, "nothing injected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := writeInput(t, "chapter.xhtml", tt.body)
			env, _, stderr := testEnv()

			if err := runTransform(context.Background(), append([]string{input, "-v"}, tt.args...), env); err != nil {
				t.Fatalf("runTransform() error = %v", err)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want)
			}
		})
	}
}

func TestRunTransform_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no file", nil, ErrUsage},
		{"two files", []string{"a.html", "b.html"}, ErrUsage},
		{"missing file", []string{filepath.Join(os.TempDir(), "pubstream-absent.xhtml")}, ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := testEnv()
			err := runTransform(context.Background(), tt.args, env)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
