// Command chatcomponents extracts renderable components from chat-agent
// messages.
//
// Usage:
//
//	chatcomponents extract [-preprocess] [-render] [-jobs N] [file]
//	chatcomponents preprocess [file]
//	chatcomponents resolve [-render] [file]
//	chatcomponents schema
//	chatcomponents serve [-addr host:port]
//	chatcomponents watch [-preprocess] <file>
//
// Input is read from file, or from stdin when file is omitted or "-".
// extract accepts a single JSON message, a JSON array of messages, or one
// message per line. Configuration is read from CHATCOMPONENTS_* environment
// variables.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/config"
	"github.com/ggoodman/chatcomponents-go/directive"
	"github.com/ggoodman/chatcomponents-go/httpapi"
	"github.com/ggoodman/chatcomponents-go/internal/logctx"
	"github.com/ggoodman/chatcomponents-go/pipeline"
	"github.com/ggoodman/chatcomponents-go/render/termrender"
	"github.com/ggoodman/chatcomponents-go/toolcall"
	"github.com/ggoodman/chatcomponents-go/watch"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// errUsage marks errors caused by bad invocation.
var errUsage = errors.New("usage")

type app struct {
	cfg    config.Config
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "chatcomponents: %v\n", err)
		return 2
	}
	a := &app{cfg: cfg, log: cfg.Logger(stderr), stdin: stdin, stdout: stdout, stderr: stderr}

	cmds := map[string]func(context.Context, []string) error{
		"extract":    a.extract,
		"preprocess": a.preprocess,
		"resolve":    a.resolve,
		"schema":     a.schema,
		"serve":      a.serve,
		"watch":      a.watch,
	}
	cmd, ok := cmds[args[0]]
	if !ok {
		if args[0] != "help" && args[0] != "-h" && args[0] != "--help" {
			fmt.Fprintf(stderr, "chatcomponents: unknown command %q\n", args[0])
		}
		printUsage(stderr)
		return 2
	}
	if err := cmd(ctx, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "chatcomponents %s: %v\n", args[0], err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: chatcomponents <command> [flags] [file]

commands:
  extract     extract and resolve components from JSON messages
  preprocess  rewrite :::chart / :::table directives into fenced blocks
  resolve     resolve a component descriptor into a render obligation
  schema      print the descriptor schema and chart tool definitions
  serve       run the HTTP API
  watch       re-extract a message file whenever it changes
`)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) processor(preprocess bool) *pipeline.Processor {
	return pipeline.New(
		pipeline.WithLogger(a.log),
		pipeline.WithExtractor(component.NewExtractor(a.cfg.ExtractorOptions(a.log)...)),
		pipeline.WithPreprocess(preprocess),
	)
}

// input opens the named file, or stdin for "" and "-".
func (a *app) input(name string) (io.ReadCloser, string, error) {
	if name == "" || name == "-" {
		return io.NopCloser(a.stdin), "stdin", nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, "", err
	}
	return f, name, nil
}

func (a *app) readInput(fs *flag.FlagSet) ([]byte, string, error) {
	if fs.NArg() > 1 {
		return nil, "", fmt.Errorf("%w: at most one input file", errUsage)
	}
	rc, name, err := a.input(fs.Arg(0))
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	return data, name, nil
}

func (a *app) extract(ctx context.Context, args []string) error {
	fs := a.flags("extract")
	preprocess := fs.Bool("preprocess", a.cfg.Preprocess, "rewrite :::chart / :::table directives before extracting")
	draw := fs.Bool("render", false, "render obligations to the terminal instead of printing JSON")
	jobs := fs.Int("jobs", runtime.GOMAXPROCS(0), "messages processed concurrently")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobs < 1 {
		return fmt.Errorf("%w: -jobs must be at least 1", errUsage)
	}
	data, source, err := a.readInput(fs)
	if err != nil {
		return err
	}
	msgs, err := decodeMessages(data)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	proc := a.processor(*preprocess)
	outcomes, err := processAll(ctx, proc, msgs, source, *jobs)
	if err != nil {
		return err
	}

	if *draw {
		r := termrender.New(a.stdout)
		for i, out := range outcomes {
			fmt.Fprintf(a.stdout, "# message %d: %s\n", i+1, out.Strategy)
			proc.Draw(ctx, r, out)
		}
		return nil
	}
	enc := json.NewEncoder(a.stdout)
	for _, out := range outcomes {
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

// decodeMessages accepts a JSON array of messages or a stream of JSON
// message objects (one object, or one per line).
func decodeMessages(data []byte) ([]component.Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var msgs []component.Message
		if err := json.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
		return msgs, nil
	}
	var msgs []component.Message
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var msg component.Message
		err := dec.Decode(&msg)
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode message %d: %w", len(msgs)+1, err)
		}
		msgs = append(msgs, msg)
	}
}

// processAll runs msgs through proc with at most jobs in flight. Outcomes
// keep the input order.
func processAll(ctx context.Context, proc *pipeline.Processor, msgs []component.Message, source string, jobs int) ([]pipeline.Outcome, error) {
	out := make([]pipeline.Outcome, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, msg := range msgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mctx := logctx.WithMessageData(gctx, &logctx.MessageData{Index: i, Source: source})
			out[i] = proc.Process(mctx, msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *app) preprocess(_ context.Context, args []string) error {
	fs := a.flags("preprocess")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, _, err := a.readInput(fs)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.stdout, directive.Rewrite(string(data)))
	return err
}

func (a *app) resolve(ctx context.Context, args []string) error {
	fs := a.flags("resolve")
	draw := fs.Bool("render", false, "render the obligation to the terminal instead of printing JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, source, err := a.readInput(fs)
	if err != nil {
		return err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: decode descriptor: %w", source, err)
	}
	d, ok := component.DescriptorFrom(raw)
	if !ok {
		return fmt.Errorf("%s: descriptor requires a string type and non-null data", source)
	}

	proc := a.processor(false)
	env, ok := proc.Resolve(ctx, d)
	out := pipeline.Outcome{Descriptor: &d}
	if ok {
		out.Obligation = &env
	}
	if *draw {
		proc.Draw(ctx, termrender.New(a.stdout), out)
		return nil
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if !ok {
		return enc.Encode(nil)
	}
	return enc.Encode(env)
}

func (a *app) schema(_ context.Context, args []string) error {
	fs := a.flags("schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"descriptor": toolcall.DescriptorSchema(),
		"tools":      toolcall.Specs(a.cfg.ChartTools...),
	})
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := a.flags("serve")
	addr := fs.String("addr", a.cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	h := httpapi.New(
		httpapi.WithLogger(a.log),
		httpapi.WithExtractor(component.NewExtractor(a.cfg.ExtractorOptions(a.log)...)),
		httpapi.WithChartTools(a.cfg.ChartTools...),
		httpapi.WithPreprocess(a.cfg.Preprocess),
	)
	srv := &http.Server{Addr: *addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.log.InfoContext(ctx, "http.listen", slog.String("addr", *addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("http.shutdown")
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.flags("watch")
	preprocess := fs.Bool("preprocess", a.cfg.Preprocess, "rewrite :::chart / :::table directives before extracting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: watch needs exactly one file", errUsage)
	}

	proc := a.processor(*preprocess)
	w, err := watch.New(fs.Arg(0), proc, watch.WithLogger(a.log), watch.WithDebounce(a.cfg.WatchDebounce))
	if err != nil {
		return err
	}
	r := termrender.New(a.stdout)
	return w.Run(ctx, func(ctx context.Context, up watch.Update) {
		if up.Err != nil {
			fmt.Fprintf(a.stderr, "%v\n", up.Err)
			return
		}
		fmt.Fprintf(a.stdout, "# %s: %s\n", up.Path, up.Outcome.Strategy)
		proc.Draw(ctx, r, up.Outcome)
	})
}
