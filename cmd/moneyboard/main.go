package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"moneyboard/internal/aggregate"
	"moneyboard/internal/cli"
	"moneyboard/internal/core"
	"moneyboard/internal/log"
)

const usage = `usage: moneyboard <command> [flags]

commands:
  summary     totals and category breakdown  [--from --to --type --category]
  insights    observations and recommendations  [--today YYYY-MM-DD]
  list        transactions with their positions  [--from --to --type --category --latest N]
  add         record a transaction  --date --type --category --amount [--description]
  delete      remove a transaction  --pos N | --id ID
  balance     running balance by date
  daily       inflow and outflow per day
  monthly     inflow and outflow per month
  categories  list categories, or: categories add NAME TYPE | categories remove NAME
  import      merge a .csv or .xlsx file into the ledger  FILE
  export      write the ledger to a .csv or .xlsx file  FILE
  publish     mirror the ledger to the configured spreadsheet
`

var errUsage = errors.New("invalid usage")

type command func(ctx context.Context, app *cli.App, args []string, out io.Writer) error

var commands = map[string]command{
	"summary":    runSummary,
	"insights":   runInsights,
	"list":       runList,
	"add":        runAdd,
	"delete":     runDelete,
	"balance":    runBalance,
	"daily":      runDaily,
	"monthly":    runMonthly,
	"categories": runCategories,
	"import":     runImport,
	"export":     runExport,
	"publish":    runPublish,
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		printError(stderr, err)
		return 1
	}
	logger := cli.SetupLogger(cfg.LogLevel, stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Startup failed",
			log.NewFields().WithOperation(log.OpStartup).WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
		printError(stderr, err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.WarnContext(ctx, "Close failed", log.FieldError, err)
		}
	}()

	if err := cmd(ctx, app, args[1:], stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			if !errors.Is(err, flag.ErrHelp) {
				printError(stderr, err)
			}
			return 2
		}
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}

var (
	inflowColor  = color.New(color.FgGreen)
	outflowColor = color.New(color.FgRed)
	headerColor  = color.New(color.Bold)
)

func amountColor(typ core.TxType) *color.Color {
	if typ == core.Inflow {
		return inflowColor
	}
	return outflowColor
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// criteriaFlags registers the shared filter flags.
type criteriaFlags struct {
	from, to, typ, category string
}

func (c *criteriaFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.from, "from", "", "first date (inclusive)")
	fs.StringVar(&c.to, "to", "", "last date (inclusive)")
	fs.StringVar(&c.typ, "type", "", "comma-separated types (Masuk, Keluar)")
	fs.StringVar(&c.category, "category", "", "comma-separated categories")
}

func (c *criteriaFlags) criteria() (aggregate.Criteria, error) {
	var out aggregate.Criteria
	var err error
	if c.from != "" {
		if out.From, err = core.ParseDate(c.from); err != nil {
			return out, fmt.Errorf("%w: --from %q", errUsage, c.from)
		}
	}
	if c.to != "" {
		if out.To, err = core.ParseDate(c.to); err != nil {
			return out, fmt.Errorf("%w: --to %q", errUsage, c.to)
		}
	}
	for _, raw := range splitList(c.typ) {
		typ, ok := core.ParseTxType(raw)
		if !ok {
			return out, fmt.Errorf("%w: --type %q", errUsage, raw)
		}
		out.Types = append(out.Types, typ)
	}
	out.Categories = splitList(c.category)
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
