package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"bizdash/internal/config"
)

// Options holds command-line overrides. Flags that were not given leave
// the loaded config untouched.
type Options struct {
	Command []string
	JSON    bool

	BaseURL *string
	Debug   *bool
	LogFile *string
	Timeout time.Duration
}

func ParseArgs(args []string, stderr io.Writer) (Options, error) {
	var (
		opts           Options
		baseURL        string
		logFile        string
		debug          bool
		timeoutSeconds int
	)

	fs := flag.NewFlagSet("bizdash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [command [args...]]\n", fs.Name())
		fmt.Fprintln(stderr, "Without a command an interactive session starts. Type 'help' for commands.")
		fs.PrintDefaults()
	}

	fs.StringVar(&baseURL, "base-url", "", "Business API base URL (BASE_URL); empty runs on demo data")
	fs.BoolVar(&opts.JSON, "json", false, "Output JSON format")
	fs.BoolVar(&debug, "debug", false, "Enable debug logging")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Request timeout in seconds")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			opts.BaseURL = &baseURL
		case "debug":
			opts.Debug = &debug
		case "log-file":
			opts.LogFile = &logFile
		}
	})
	if timeoutSeconds < 0 {
		return Options{}, fmt.Errorf("timeout must not be negative")
	}
	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}

	for _, arg := range fs.Args() {
		if arg = strings.TrimSpace(arg); arg != "" {
			opts.Command = append(opts.Command, arg)
		}
	}
	return opts, nil
}

// Apply overlays the flags that were set on cfg.
func (o Options) Apply(cfg config.Config) config.Config {
	if o.BaseURL != nil {
		cfg.BaseURL = strings.TrimSpace(*o.BaseURL)
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*o.LogFile)
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	return cfg
}
