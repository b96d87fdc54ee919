// Command sstcli writes and queries sstables from the command line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/a-poor/bluesst/internal/config"
	"github.com/a-poor/bluesst/internal/logging"
	"github.com/a-poor/bluesst/storage"
)

const usage = `sstcli - write and query sstables

Usage:
  sstcli [flags] <command> [arguments]

Flags:
  --config string      Path to config file
  --log-level string   Log level (debug, info, warn, error)

Commands:
  write [--dir D] [file]   Store each line of file (or stdin) under its line number
  get --dir D <key>...     Print the values stored for the keys
  keys --dir D             List the keys of a table
`

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

// env is what a command runs against.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	opts   *storage.Options
	stdin  io.Reader
	stdout io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line args and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("sstcli", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }

	configPath := flags.String("config", "", "Path to config file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.LoadConfig(*configPath, flags)
	if err != nil {
		fmt.Fprintf(stderr, "sstcli: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "sstcli: %v\n", err)
		return 1
	}

	e := &env{
		cfg: cfg,
		log: log,
		opts: &storage.Options{
			Logger:         &log,
			BloomFilterFPR: cfg.Table.BloomFPR,
		},
		stdin:  stdin,
		stdout: stdout,
	}

	cmd, cmdArgs := flags.Arg(0), flags.Args()[1:]
	switch cmd {
	case "write":
		err = e.write(cmdArgs)
	case "get":
		err = e.get(cmdArgs)
	case "keys":
		err = e.keys(cmdArgs)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "sstcli: %v\n\n%s", err, usage)
		return 2
	default:
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		return 1
	}
}
