package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"code.byted.org/khicago/tursokv"
)

const (
	configOption   = "config"
	urlOption      = "url"
	tokenOption    = "auth-token"
	tableOption    = "table"
	baseOption     = "base"
	logLevelOption = "log-level"
)

const (
	logLevelDefault = "warn"
	emptyDefault    = ""
)

const usage = `usage: tursokv [flags] <command> [args]

commands:
  init              create the table if it does not exist
  drop              drop the table if it exists
  has <key>         report whether key is set
  get <key>         print the value of key
  set <key> <value> store value under key
  rm <key>          remove key
  keys [prefix]     list keys under prefix
  clear [prefix]    remove keys under prefix

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "tursokv: %v\n", err)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	os.Exit(1)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tursokv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.StringP(configOption, "c", emptyDefault, "YAML file with driver options")
	url := fs.StringP(urlOption, "u", emptyDefault, "database URL (default $TURSO_DATABASE_URL)")
	token := fs.StringP(tokenOption, "t", emptyDefault, "database auth token (default $TURSO_AUTH_TOKEN)")
	table := fs.StringP(tableOption, "T", tursokv.DefaultTable, "table name")
	base := fs.StringP(baseOption, "b", emptyDefault, "key namespace")
	logLevel := fs.StringP(logLevelOption, "l", logLevelDefault, "the log filtering level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	logger, err := newLogger(*logLevel, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := tursokv.Options{}
	if *configPath != "" {
		opts, err = tursokv.LoadOptionsFile(*configPath)
		if err != nil {
			return err
		}
	}
	if fs.Changed(urlOption) {
		opts.URL = *url
	}
	if fs.Changed(tokenOption) {
		opts.AuthToken = *token
	}
	if fs.Changed(tableOption) || opts.Table == "" {
		opts.Table = *table
	}
	if fs.Changed(baseOption) {
		opts.Base = *base
	}
	opts.Logger = tursokv.NewZapLogger(logger.Sugar())

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}

	d, err := tursokv.NewTurso(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Dispose(); err != nil {
			logger.Warn("dispose failed", zap.Error(err))
		}
	}()

	return dispatch(ctx, d, rest, stdout)
}

func dispatch(ctx context.Context, d *tursokv.Turso, args []string, stdout io.Writer) error {
	cmd, params := args[0], args[1:]
	arg := func(i int) string {
		if i < len(params) {
			return params[i]
		}
		return ""
	}
	need := func(n int) error {
		if len(params) < n {
			return fmt.Errorf("%w: %s needs %d argument(s)", errUsage, cmd, n)
		}
		return nil
	}

	switch cmd {
	case "init", "drop":
		exec, err := d.Instance(ctx)
		if err != nil {
			return err
		}
		if cmd == "init" {
			return tursokv.CreateTableIfNotExists(ctx, exec, d.Table())
		}
		return tursokv.DropTableIfExists(ctx, exec, d.Table())
	case "has":
		if err := need(1); err != nil {
			return err
		}
		ok, err := d.HasItem(ctx, arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, ok)
	case "get":
		if err := need(1); err != nil {
			return err
		}
		value, ok, err := d.GetItem(ctx, arg(0))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key %q not found", arg(0))
		}
		fmt.Fprintln(stdout, value)
	case "set":
		if err := need(2); err != nil {
			return err
		}
		return d.SetItem(ctx, arg(0), arg(1), 0)
	case "rm":
		if err := need(1); err != nil {
			return err
		}
		return d.RemoveItem(ctx, arg(0))
	case "keys":
		keys, err := d.GetKeys(ctx, arg(0))
		if err != nil {
			return err
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(stdout, k)
		}
	case "clear":
		return d.Clear(ctx, arg(0))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log-level %q, choose one of: debug, info, warn, error", level)
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
