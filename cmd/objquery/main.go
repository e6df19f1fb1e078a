// Command objquery renders a '?' template into a command with named
// parameters and optionally executes it.
//
//	objquery "SELECT * FROM t WHERE id=? OR name=?" 1 A
//	objquery --exec --config objquery.yaml "DELETE FROM t WHERE id=?" 7
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/Konsultn-Engineering/objquery/connector"
	"github.com/Konsultn-Engineering/objquery/dialect"
	"github.com/Konsultn-Engineering/objquery/query"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	fmt.Fprintln(os.Stderr, "objquery:", err)
	stop()
	os.Exit(1)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("objquery", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML configuration file (OBJQUERY_* variables override it)")
	dialectName := fs.String("dialect", "named", "bind variable style: named, postgres, mysql or tidb")
	execute := fs.Bool("exec", false, "execute the command on the configured database")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: objquery [flags] TEMPLATE [PARAM...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing template")
	}

	level, err := zerolog.ParseLevel(strings.ToLower(*logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()

	d, ok := dialect.ByName(*dialectName)
	if !ok {
		return fmt.Errorf("unknown dialect %q", *dialectName)
	}

	var conn *connector.Connection
	if *execute {
		cfg, err := connector.LoadConfig(*configFile)
		if err != nil {
			return err
		}
		var opts []connector.Option
		opts = append(opts, connector.WithLogger(logger))
		if fs.Changed("dialect") {
			opts = append(opts, connector.WithDialect(d))
		}
		conn, err = connector.Connect(ctx, *cfg, opts...)
		if err != nil {
			return err
		}
		defer conn.Close()
		d = conn.Dialect()
	}

	cmd, err := query.New(fs.Arg(0), parseParams(fs.Args()[1:])...).WithDialect(d).Build()
	if err != nil {
		return err
	}
	printCommand(stdout, cmd)

	if conn == nil {
		return nil
	}
	logger.Debug().Str("sql", cmd.String()).Msg("executing")
	res, err := cmd.ExecContext(ctx, conn.Database())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "rows affected: %d\n", n)
	return nil
}

// parseParams turns integer arguments into int64 and RFC 3339 timestamps
// into time.Time; everything else stays a string.
func parseParams(args []string) []any {
	params := make([]any, len(args))
	for i, arg := range args {
		if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
			params[i] = n
		} else if t, err := time.Parse(time.RFC3339, arg); err == nil {
			params[i] = t
		} else {
			params[i] = arg
		}
	}
	return params
}

func printCommand(w io.Writer, cmd *query.Command) {
	fmt.Fprintln(w, cmd.Text)
	d := cmd.Dialect()
	for i, p := range cmd.Params {
		fmt.Fprintf(w, "  %s = %s\n", d.BindVar(i), d.RenderValue(p.Value))
	}
}
