package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/qshuf/internal/app"
	"github.com/standardbeagle/qshuf/internal/config"
	"github.com/standardbeagle/qshuf/internal/core"
	"github.com/standardbeagle/qshuf/internal/debug"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
	"github.com/standardbeagle/qshuf/internal/region"
	"github.com/standardbeagle/qshuf/internal/version"
)

const helpTemplate = `Usage: {{.HelpName}} [OPTIONS] <input_file>
{{.Usage}}

Options:
{{range .VisibleFlags}}   {{.}}
{{end}}`

// userHomeDir locates the global config; tests point it elsewhere.
var userHomeDir = os.UserHomeDir

func init() {
	cli.HelpFlag = &cli.BoolFlag{
		Name:               "help",
		Aliases:            []string{"h"},
		Usage:              "display this help message",
		DisableDefaultText: true,
	}
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Aliases:            []string{"v"},
		Usage:              "output version information and exit",
		DisableDefaultText: true,
	}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprint(c.App.Writer, version.Text())
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   version.Name,
		HelpName:               version.Name,
		Usage:                  "Efficiently shuffles very large text files using\nmemory mapping, minimizing RAM usage.",
		Version:                version.Version,
		UseShortOptionHandling: true,
		HideHelpCommand:        true,
		CustomAppHelpTemplate:  helpTemplate,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Usage:   "number of threads to use",
				Value:   1,
			},
			&cli.Uint64Flag{
				Name:    "seed",
				Aliases: []string{"s"},
				Usage:   "set random seed for reproducibility",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write output to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "read settings from a .kdl or .toml file (default: ~/" + config.GlobalConfigName + " if present)",
			},
			&cli.BoolFlag{
				Name:               "drop-unterminated",
				Usage:              "discard a final line that has no trailing newline",
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "verify",
				Usage:              "re-read the output file and check it holds the same lines",
				DisableDefaultText: true,
			},
			&cli.StringFlag{
				Name:  "buffer-size",
				Usage: "output buffer size, e.g. 64KB or 4MB",
			},
			&cli.StringFlag{
				Name:  "advise",
				Usage: "access hint for the mapped input: normal, random or sequential",
			},
			&cli.BoolFlag{
				Name:   "debug",
				Usage:  "write diagnostic logging to stderr",
				Hidden: true,
			},
		},
		OnUsageError: func(c *cli.Context, err error, _ bool) error {
			return qerrors.NewUsageError("", err)
		},
		// Exit codes are decided in run, never inside the cli package
		ExitErrHandler: func(*cli.Context, error) {},
		Action:         shuffleCommand,
	}
}

func shuffleCommand(c *cli.Context) error {
	if c.Bool("debug") {
		debug.SetEnabled(true)
		debug.SetDebugOutput(c.App.ErrWriter)
		defer func() {
			debug.SetDebugOutput(nil)
			debug.SetEnabled(false)
		}()
	} else if debug.IsDebugEnabled() {
		if path, err := debug.InitDebugLogFile(); err == nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: debug log: %s\n", version.Name, path)
			defer debug.CloseDebugLog()
		}
	}
	debug.Log("CLI", "%s build %s\n", version.FullInfo(), version.BuildID())

	switch c.NArg() {
	case 0:
		return qerrors.NewUsageError("", qerrors.ErrMissingOperand)
	case 1:
	default:
		return qerrors.NewUsageError("", fmt.Errorf("%w '%s'", qerrors.ErrExtraOperand, c.Args().Get(1)))
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return qerrors.NewUsageError("", err)
	}

	res, err := app.Run(c.Context, cfg, c.App.Writer)
	if err != nil {
		return err
	}
	debug.Log("CLI", "seed %d, %d lines, %v\n", res.Seed, res.Lines, res.Elapsed)
	return nil
}

// loadConfigWithOverrides loads the config file and applies the flags that
// were explicitly given on the command line.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		home, herr := userHomeDir()
		if herr != nil {
			home = ""
		}
		cfg, err = config.LoadDefault(home)
	}
	if err != nil {
		return nil, err
	}

	cfg.Input = c.Args().First()

	if c.IsSet("threads") {
		n := c.Int("threads")
		if n < 1 {
			return nil, qerrors.NewUsageError(fmt.Sprintf("invalid number of threads '%d'", n), qerrors.ErrInvalidThreads)
		}
		cfg.Threads = n
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		cfg.Seed = &seed
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.Bool("drop-unterminated") {
		cfg.Unterminated = core.DropUnterminated
	}
	if c.IsSet("verify") {
		cfg.Verify = c.Bool("verify")
	}
	if c.IsSet("buffer-size") {
		raw := c.String("buffer-size")
		size, err := config.ParseSize(raw)
		if err != nil || size < 1 || int64(int(size)) != size {
			return nil, qerrors.NewUsageError(fmt.Sprintf("invalid buffer size '%s'", raw), qerrors.ErrInvalidArgument)
		}
		cfg.BufferSize = int(size)
	}
	if c.IsSet("advise") {
		raw := c.String("advise")
		advice, err := region.ParseAdvice(raw)
		if err != nil {
			return nil, qerrors.NewUsageError(fmt.Sprintf("invalid advise '%s'", raw), err)
		}
		cfg.Advise = advice
	}

	return cfg, nil
}

// interspersed moves options ahead of operands so "qshuf in.txt -t 4" parses
// like "qshuf -t 4 in.txt". Everything after "--" stays an operand. A help
// flag drops all other arguments.
func interspersed(args []string, flags []cli.Flag) []string {
	takesValue := make(map[string]bool)
	for _, f := range flags {
		if _, ok := f.(*cli.BoolFlag); ok {
			continue
		}
		for _, name := range f.Names() {
			takesValue[name] = true
		}
	}

	var opts, operands []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			operands = append(operands, args[i+1:]...)
			break
		}
		if arg == "-h" || arg == "--help" {
			return []string{arg}
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			operands = append(operands, arg)
			continue
		}
		opts = append(opts, arg)
		name := strings.TrimLeft(arg, "-")
		if !strings.Contains(name, "=") && takesValue[name] && i+1 < len(args) {
			i++
			opts = append(opts, args[i])
		}
	}

	if len(operands) == 0 {
		return opts
	}
	return append(append(opts, "--"), operands...)
}

// report prints err the way coreutils tools do.
func report(stderr io.Writer, err error) {
	fmt.Fprintf(stderr, "%s: %v\n", version.Name, err)
	if qerrors.ExitCode(err) == qerrors.ExitInvalidUsage {
		fmt.Fprintf(stderr, "Try '%s --help' for more information.\n", version.Name)
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(stdout, stderr)
	argv := append([]string{args[0]}, interspersed(args[1:], a.Flags)...)

	err := a.RunContext(ctx, argv)
	if err != nil {
		report(stderr, err)
	}
	return qerrors.ExitCode(err)
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
