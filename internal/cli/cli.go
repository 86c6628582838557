package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bizdash/internal/config"
	"bizdash/internal/connectivity"
	"bizdash/internal/demo"
	"bizdash/internal/dispatch"
	"bizdash/internal/insights"
	"bizdash/internal/store"

	"go.uber.org/zap"
)

var ErrUnknownCommand = errors.New("unknown command")

type Runner struct {
	options    Options
	cfg        config.Config
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	advisor    *insights.Advisor
	monitor    *connectivity.Monitor
	logger     *zap.Logger

	commands []command
	conv     *insights.Conversation

	in  io.Reader
	out io.Writer
}

func NewRunner(
	opts Options,
	cfg config.Config,
	st *store.Store,
	dispatcher *dispatch.Dispatcher,
	advisor *insights.Advisor,
	monitor *connectivity.Monitor,
	logger *zap.Logger,
) *Runner {
	logger = logger.Named("cli")
	r := &Runner{
		options:    opts,
		cfg:        cfg,
		store:      st,
		dispatcher: dispatcher,
		advisor:    advisor,
		monitor:    monitor,
		logger:     logger,
		in:         os.Stdin,
		out:        os.Stdout,
	}
	r.commands = r.commandTable()
	return r
}

func (r *Runner) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	r.start(ctx)

	if len(r.options.Command) == 0 {
		return r.runREPL(ctx)
	}
	return r.runOneShot(ctx, r.options.Command)
}

// start shows demo data right away, then tries to replace it with real
// data. Failures leave the demo data in place.
func (r *Runner) start(ctx context.Context) {
	if r.cfg.DemoData {
		if err := demo.Seed(r.store); err != nil {
			r.logger.Warn("demo data rejected", zap.Error(err))
		}
	}

	results, err := r.dispatcher.Refresh(ctx)
	if err != nil {
		r.logger.Warn("initial fetch interrupted", zap.Error(err))
	}
	for _, res := range results {
		r.logger.Info("initial fetch",
			zap.String("kind", string(res.Kind)),
			zap.Stringer("state", res.State),
			zap.Bool("discarded", res.Discarded),
			zap.NamedError("reason", res.Reason),
		)
	}

	if !r.store.AppMeta().Initialized {
		if _, err := r.dispatcher.MarkInitialized(); err != nil {
			r.logger.Warn("could not mark app initialized", zap.Error(err))
		}
	}
}

func (r *Runner) runOneShot(ctx context.Context, args []string) error {
	return r.handle(ctx, args)
}

func (r *Runner) runREPL(ctx context.Context) error {
	reader := bufio.NewScanner(r.in)
	r.conv = insights.NewConversation(0, 0, r.logger)
	fmt.Fprintln(r.out, "Business dashboard (type 'help' for commands, 'exit' to quit)")

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.out, "> ")
		if !reader.Scan() {
			return reader.Err()
		}

		line := strings.TrimSpace(reader.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "/clear":
			r.conv.Clear()
			fmt.Fprintln(r.out, "Conversation cleared.")
			continue
		case "exit", "quit":
			return nil
		}

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			continue
		}
		// errors are already printed; the session goes on
		_ = r.handle(ctx, args)
	}
}

func (r *Runner) handle(ctx context.Context, args []string) error {
	name := strings.ToLower(args[0])
	r.logger.Info("command received",
		zap.String("command", name),
		zap.Int("args", len(args)-1),
		zap.Bool("json", r.options.JSON),
	)

	cmd, ok := r.lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		r.writeError(name, err)
		return err
	}
	if len(args)-1 < cmd.minArgs {
		err := fmt.Errorf("usage: %s", cmd.usage)
		r.writeError(name, err)
		return err
	}

	result, err := cmd.run(ctx, args[1:])
	if err != nil {
		r.logger.Info("command failed", zap.String("command", name), zap.Error(err))
		r.writeError(name, err)
		return err
	}
	return r.writeResult(name, result)
}

func (r *Runner) lookup(name string) (command, bool) {
	for _, cmd := range r.commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

type jsonResponse struct {
	Command string `json:"command"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r *Runner) writeResult(name string, result any) error {
	if r.options.JSON {
		return json.NewEncoder(r.out).Encode(jsonResponse{Command: name, Result: result})
	}
	writeHuman(r.out, result)
	return nil
}

func (r *Runner) writeError(name string, err error) {
	if r.options.JSON {
		_ = json.NewEncoder(r.out).Encode(jsonResponse{
			Command: name,
			Error:   err.Error(),
			Message: dispatch.Describe(err),
		})
		return
	}
	fmt.Fprintf(r.out, "Error: %s\n", dispatch.Describe(err))
}

// splitArgs splits a line on whitespace, keeping double-quoted runs
// together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted
			started = true
		case !quoted && (ch == ' ' || ch == '\t'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(ch)
			started = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
