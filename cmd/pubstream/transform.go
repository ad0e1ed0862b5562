package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/alnah/go-pubstream"
	"github.com/alnah/go-pubstream/internal/config"
	"github.com/alnah/go-pubstream/internal/fileutil"
	"github.com/alnah/go-pubstream/internal/hints"
	"github.com/alnah/go-pubstream/internal/inject"
	"github.com/alnah/go-pubstream/internal/publication"
	"github.com/alnah/go-pubstream/internal/store"
	"github.com/alnah/go-pubstream/internal/transform"
)

// Sentinel errors for file I/O in CLI commands.
var (
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

// runTransform runs the transformer chain over one resource file offline.
// The default reader config comes from the config file, env and --mathjax.
func runTransform(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseTransformFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: transform takes exactly one file, got %d", ErrUsage, len(positional))
	}
	inputPath := positional[0]

	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	base, _, err := loadFileConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	cfg, err := effectiveConfig(base, envCfg, func(c *config.Config) {
		if flags.changed != nil && flags.changed("mathjax") {
			setMathJax(c, flags.mathJax)
		}
	})
	if err != nil {
		return err
	}

	body, err := os.ReadFile(inputPath) // #nosec G304 -- input path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadInput, inputPath, err)
	}

	baseURL := flags.url
	if baseURL == "" {
		baseURL = transformBaseURL(cfg)
	}

	streamer := pubstream.NewStreamer(store.NewMemory(cfg.ReaderDefault()))
	streamer.SetupMathJax(func() string { return pubstream.MathJaxURL(baseURL) })

	doc := transform.Document{
		Link: &publication.Link{
			Href:      filepath.ToSlash(filepath.Base(inputPath)),
			MediaType: publication.MediaType(inputPath),
		},
		URL:  inputPath,
		Body: string(body),
	}
	if !doc.Link.IsHTML() && flags.common.verbose {
		fmt.Fprintf(env.Stderr, "%s is %s, not HTML: passed through unchanged\n", inputPath, doc.Link.MediaType)
	}

	out, err := streamer.Transform(ctx, doc)
	if err != nil {
		return err
	}
	if flags.common.verbose && doc.Link.IsHTML() {
		reportInjection(env, out)
	}

	if flags.output != "" {
		if err := fileutil.WriteFileAtomic(flags.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("%w: %s: %w%s", ErrWriteOutput, flags.output, err, hints.ForOutputDirectory())
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stderr, "wrote %s\n", flags.output)
		}
		return nil
	}

	if flags.color {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, out, "html", "terminal256", flags.colorStyle); err == nil {
			_, err = env.Stdout.Write(buf.Bytes())
			return err
		}
	}
	_, err = fmt.Fprint(env.Stdout, out)
	return err
}

// reportInjection prints the fragments found in out to stderr.
func reportInjection(env *Environment, out string) {
	r, err := inject.Inspect(out)
	if err != nil {
		fmt.Fprintf(env.Stderr, "inspecting output: %v\n", err)
		return
	}
	if !r.HeadClosed {
		fmt.Fprintln(env.Stderr, "no </head> found: nothing injected")
		return
	}
	fmt.Fprintf(env.Stderr, "fragments: no-drag=%d drag-guard=%d mathjax=%d (%d scripts in document)\n",
		r.NoDragStyles, r.DragGuardScripts, r.MathJaxScripts, inject.CountElements(out, "script"))
}

// transformBaseURL derives the server URL the output will be served from.
func transformBaseURL(cfg *config.Config) string {
	if cfg.Server.PublicURL != "" {
		return cfg.Server.PublicURL
	}
	host, port, err := net.SplitHostPort(cfg.Server.Addr)
	if err != nil {
		return "http://" + cfg.Server.Addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
