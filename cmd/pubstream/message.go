package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alnah/go-pubstream"
	"github.com/alnah/go-pubstream/internal/config"
)

// runMessage prints the styling message for a session token.
// Without a token, or with the memory store, the default config applies.
func runMessage(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseMessageFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: message takes at most one token, got %d", ErrUsage, len(positional))
	}
	var token string
	if len(positional) == 1 {
		token = positional[0]
	}

	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	base, _, err := loadFileConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	cfg, err := effectiveConfig(base, envCfg, func(c *config.Config) {
		applyStoreFlags(&flags.store, c)
	})
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	opts := []pubstream.Option{}
	if flags.urlRoot != "" {
		opts = append(opts, pubstream.WithURLRoot(flags.urlRoot))
	}
	streamer := pubstream.NewStreamer(st, opts...)

	res := streamer.Resolve(ctx, token)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "source: %s", res.Source)
		if res.WindowID != "" {
			fmt.Fprintf(env.Stderr, " (window %q)", res.WindowID)
		}
		if res.Err != nil {
			fmt.Fprintf(env.Stderr, ": %v", res.Err)
		}
		fmt.Fprintln(env.Stderr)
	}

	enc := json.NewEncoder(env.Stdout)
	if !flags.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(streamer.StyleMessage(ctx, token))
}
