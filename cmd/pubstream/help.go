package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pubstream <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Serve publications with reader styling and MathJax")
	fmt.Fprintln(w, "  transform    Run the resource transformers over one file")
	fmt.Fprintln(w, "  message      Print the Readium CSS styling message for a session")
	fmt.Fprintln(w, "  doctor       Check assets, publications and store")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pubstream help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed output")
}

func printAssetUsage(w io.Writer) {
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --packaging <s>       Layout: packaged, development")
	fmt.Fprintln(w, "      --base-dir <path>     Application base directory")
	fmt.Fprintln(w, "      --node-modules <path> Node modules dir, relative to base dir")
}

func printStoreUsage(w io.Writer) {
	fmt.Fprintln(w, "Store:")
	fmt.Fprintln(w, "      --store <s>           Backend: memory, redis")
	fmt.Fprintln(w, "      --redis-addr <addr>   Redis address (host:port)")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pubstream serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve publication resources, transforming HTML on the fly.")
	fmt.Fprintln(w, "The config file is reloaded when it changes or on SIGHUP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w, "      --public-url <url>    Externally visible base URL")
	fmt.Fprintln(w, "  -p, --publications <dir>  Publication library root")
	fmt.Fprintln(w, "      --mathjax             Enable MathJax in the default reader config")
	fmt.Fprintln(w, "      --no-watch            Do not reload the config file on change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "      --log-level <s>       Level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Format: text, json")
	fmt.Fprintln(w)
	printAssetUsage(w)
	fmt.Fprintln(w)
	printStoreUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printTransformUsage prints usage for the transform command.
func printTransformUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pubstream transform <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the resource transformers over one file with the default")
	fmt.Fprintln(w, "reader config. Non-HTML files pass through unchanged.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "      --url <url>           Base URL the MathJax bundle is served from")
	fmt.Fprintln(w, "      --mathjax             Enable MathJax injection")
	fmt.Fprintln(w, "      --color               Syntax-highlight the output")
	fmt.Fprintln(w, "      --color-style <s>     Highlighting style (default monokai)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printMessageUsage prints usage for the message command.
func printMessageUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pubstream message [token] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the styling message a reader window receives as JSON.")
	fmt.Fprintln(w, "Without a token the default reader config applies.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Message:")
	fmt.Fprintln(w, "      --url-root <url>      Readium CSS URL root to include")
	fmt.Fprintln(w, "      --compact             Print JSON on a single line")
	fmt.Fprintln(w)
	printStoreUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pubstream doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check asset bundles, the publication library and the store.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output JSON")
	fmt.Fprintln(w, "  -p, --publications <dir>  Publication library root")
	fmt.Fprintln(w)
	printAssetUsage(w)
	fmt.Fprintln(w)
	printStoreUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 = ready or warnings, 1 = errors found")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "transform":
		printTransformUsage(env.Stdout)
	case "message":
		printMessageUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pubstream version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pubstream help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
