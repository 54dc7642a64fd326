// torrentmeta inspects and edits BitTorrent descriptor (.torrent) files without disturbing the
// bytes it does not change.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	"github.com/chrispritchard/torrentmeta/internal/config"
	"github.com/chrispritchard/torrentmeta/internal/storage"
	"github.com/chrispritchard/torrentmeta/internal/terminal"
	"github.com/chrispritchard/torrentmeta/internal/torrent"
)

const usage = `Usage: torrentmeta <command> [options] <file>...

Commands:
  show <file>                      summary of a descriptor
  files <file>                     listed files and their sizes
  announce list <file>             announce URLs
  announce add <file>... --url U   append announce URLs that are not already present
  announce set <file>... --url U   replace the announce URLs
  hash <file>                      info hash and content digest
  dump <file> [--format F]         whole tree as text, json, yaml, cbor or cbor-diag
  verify <file> [--dir D]          check the listed files exist with their sizes
  restore <file>...                put back the copy saved by --backup

Every command accepts --config PATH and -v/--verbose.
`

var errHelpShown = errors.New("help shown")

// usage_error marks a mistake in how the command was invoked; it exits with status 2.
type usage_error struct {
	err error
}

func (e usage_error) Error() string { return e.err.Error() }
func (e usage_error) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return usage_error{fmt.Errorf(format, a...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		color:  terminal.NewColorizer(is_terminal(stdout)),
	}

	err := c.dispatch(args)
	var usage_err usage_error
	switch {
	case err == nil, errors.Is(err, errHelpShown):
		return 0
	case errors.As(err, &usage_err):
		fmt.Fprintf(stderr, "error: %v\nrun 'torrentmeta help' for usage\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
	color  terminal.Colorizer

	// set by parse
	config_path string
	verbose     bool
	config      *config.Config
	logger      *slog.Logger
}

func (c *cli) dispatch(args []string) error {
	if len(args) == 0 {
		return usagef("no command given")
	}
	command, rest := args[0], args[1:]
	switch command {
	case "show":
		return c.show(rest)
	case "files":
		return c.files(rest)
	case "announce":
		return c.announce(rest)
	case "hash":
		return c.hash(rest)
	case "dump":
		return c.dump(rest)
	case "verify":
		return c.verify(rest)
	case "restore":
		return c.restore(rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return nil
	}
	return usagef("unknown command %q", command)
}

// parse adds the flags every command shares, parses args, and loads the configuration.
func (c *cli) parse(flags *pflag.FlagSet, args []string) error {
	flags.StringVar(&c.config_path, "config", "", "path to a YAML config file (default $"+config.EnvVar+")")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.SetOutput(io.Discard)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(c.stdout, "Usage of %s:\n%s", flags.Name(), flags.FlagUsages())
			return errHelpShown
		}
		return usage_error{err}
	}

	cfg, err := config.Load(c.config_path)
	if err != nil {
		return err
	}
	c.config = cfg
	c.logger = new_logger(c.stderr, cfg.Log, c.verbose)
	return nil
}

// new_logger writes text to a terminal and JSON otherwise, unless the config fixes the format.
func new_logger(w io.Writer, log config.LogConfig, verbose bool) *slog.Logger {
	level, err := log.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}
	text := log.Format == "text" || log.Format == "auto" && is_terminal(w)
	if text {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

func is_terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && terminal.IsTerminal(f)
}

func (c *cli) load(path string) (*torrent.Descriptor, error) {
	data, err := storage.ReadDescriptor(path)
	if err != nil {
		return nil, err
	}
	d, err := torrent.FromBytesWith(data, bencode.Decoder{MaxDepth: c.config.MaxDepth})
	if err != nil {
		return nil, fmt.Errorf("unable to parse torrent file %s: %w", path, err)
	}
	c.logger.Debug("parsed descriptor", "file", path, "bytes", len(data))
	return d, nil
}

// one_file parses flags and requires exactly one positional argument.
func (c *cli) one_file(flags *pflag.FlagSet, args []string) (string, error) {
	if err := c.parse(flags, args); err != nil {
		return "", err
	}
	if flags.NArg() != 1 {
		return "", usagef("%s needs exactly one file, got %d", flags.Name(), flags.NArg())
	}
	return flags.Arg(0), nil
}

func (c *cli) print_lines(lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(c.stdout, strings.Join(lines, "\n"))
}
