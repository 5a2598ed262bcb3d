package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], DefaultDeps()))
}

// run dispatches the command and maps its error to an exit code.
func run(ctx context.Context, args []string, deps *Dependencies) int {
	if len(args) == 0 {
		printUsage(deps.Stderr)
		return ExitUsage
	}

	var err error
	switch args[0] {
	case "build":
		err = runBuild(ctx, args[1:], deps)
	case "clean":
		err = runClean(args[1:], deps)
	case "serve":
		err = runServe(ctx, args[1:], deps)
	case "version":
		fmt.Fprintf(deps.Stdout, "vitae %s\n", Version)
	case "help":
		runHelp(args[1:], deps)
	default:
		fmt.Fprintf(deps.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(deps.Stderr)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
