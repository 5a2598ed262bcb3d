package main

import (
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-vitae/internal/config"
)

// defaultConfigName is the config file looked up when --config is unset
// and the VITAE_CONFIG environment variable is empty.
const defaultConfigName = "vitae.yaml"

// ErrBadFlags reports invalid command-line flags.
var ErrBadFlags = errors.New("invalid flags")

// buildFlags holds flags shared by the build and serve commands.
type buildFlags struct {
	config    string
	out       string
	pdf       string
	serveAddr string
	strict    bool
	quiet     bool
	verbose   bool
}

// cleanFlags holds flags for the clean command.
type cleanFlags struct {
	config string
	out    string
}

func addCommonFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVarP(&f.out, "out", "o", "", "output directory (overrides config)")
	fs.StringVar(&f.pdf, "pdf", "", "CV PDF engine: auto, tex, chrome, off")
	fs.BoolVar(&f.strict, "strict", false, "treat content issues as failures")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// parseBuildFlags parses build/serve command flags.
func parseBuildFlags(name string, args []string) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &buildFlags{}
	addCommonFlags(fs, f)
	if name == "serve" {
		fs.StringVar(&f.serveAddr, "serve-addr", "", "listen address (overrides config)")
	}
	fs.Usage = func() { printBuildUsage(os.Stderr, name) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseCleanFlags parses clean command flags.
func parseCleanFlags(args []string) (*cleanFlags, error) {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	f := &cleanFlags{}
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVarP(&f.out, "out", "o", "", "output directory (overrides config)")
	fs.Usage = func() { printCleanUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadConfig resolves the effective configuration: an explicit --config
// path must exist; otherwise the default file is used when present and
// built-in defaults apply when it is not.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	if env := os.Getenv("VITAE_CONFIG"); env != "" {
		return config.Load(env)
	}

	cfg, err := config.Load(defaultConfigName)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg := config.DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
		return cfg, nil
	}
	return config.Config{}, err
}

// applyOverrides layers command-line flags over the loaded config.
func applyOverrides(cfg *config.Config, f *buildFlags) error {
	if f.out != "" {
		cfg.Output.Dir = f.out
	}
	if f.pdf != "" {
		cfg.PDF.Engine = f.pdf
	}
	if f.serveAddr != "" {
		cfg.Serve.Addr = f.serveAddr
	}
	return cfg.Validate()
}
