package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vitae <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Build the site and CV PDF")
	fmt.Fprintln(w, "  serve      Build, serve locally, and rebuild on change")
	fmt.Fprintln(w, "  clean      Remove the output directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'vitae help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build and serve commands.
func printBuildUsage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: vitae %s [flags]\n", name)
	fmt.Fprintln(w)
	if name == "serve" {
		fmt.Fprintln(w, "Build the site, serve it locally, and rebuild when inputs change.")
	} else {
		fmt.Fprintln(w, "Build the site and CV PDF from the content store.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>   Config file path (default: vitae.yaml if present)")
	fmt.Fprintln(w, "  -o, --out <dir>       Output directory (overrides config)")
	fmt.Fprintln(w, "      --pdf <engine>    CV PDF engine: auto, tex, chrome, off")
	if name == "serve" {
		fmt.Fprintln(w, "      --serve-addr <a>  Listen address (overrides config)")
	}
	fmt.Fprintln(w, "      --strict          Treat content issues as failures")
	fmt.Fprintln(w, "  -q, --quiet           Only show errors")
	fmt.Fprintln(w, "  -v, --verbose         Show debug output")
}

// printCleanUsage prints usage for the clean command.
func printCleanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vitae clean [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove the output directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>   Config file path")
	fmt.Fprintln(w, "  -o, --out <dir>       Output directory (overrides config)")
}

// runHelp prints help for a specific command.
func runHelp(args []string, deps *Dependencies) {
	if len(args) == 0 {
		printUsage(deps.Stdout)
		return
	}

	switch args[0] {
	case "build", "serve":
		printBuildUsage(deps.Stdout, args[0])
	case "clean":
		printCleanUsage(deps.Stdout)
	default:
		printUsage(deps.Stdout)
	}
}
