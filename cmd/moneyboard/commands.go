package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"moneyboard/internal/aggregate"
	"moneyboard/internal/cli"
	"moneyboard/internal/core"
	"moneyboard/internal/exchange"
	"moneyboard/internal/services"
)

func runSummary(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("summary")
	var cf criteriaFlags
	cf.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := cf.criteria()
	if err != nil {
		return err
	}
	txs, err := app.Ledger.Transactions(ctx, c)
	if err != nil {
		return err
	}

	s := aggregate.Summarize(txs)
	fmt.Fprintf(out, "Total inflow:   %s\n", inflowColor.Sprint(core.FormatRupiah(s.TotalInflow)))
	fmt.Fprintf(out, "Total outflow:  %s\n", outflowColor.Sprint(core.FormatRupiah(s.TotalOutflow)))
	fmt.Fprintf(out, "Final balance:  %s\n", core.FormatRupiah(s.Balance))

	breakdown := aggregate.ByCategoryType(txs)
	if len(breakdown) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	headerColor.Fprintln(out, "By category")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Type, row.Category, amountColor(row.Type).Sprint(core.FormatRupiah(row.Amount)))
	}
	return tw.Flush()
}

func runInsights(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("insights")
	today := fs.String("today", "", "reference date, default the current date")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref := core.Today()
	if *today != "" {
		d, err := core.ParseDate(*today)
		if err != nil {
			return fmt.Errorf("%w: --today %q", errUsage, *today)
		}
		ref = d
	}

	r, err := app.Ledger.Insights(ctx, ref)
	if err != nil {
		return err
	}
	headerColor.Fprintf(out, "Insights as of %s\n", ref)
	for _, line := range r.Summary {
		fmt.Fprintf(out, "  - %s\n", line)
	}
	if len(r.Advice) == 0 {
		return nil
	}
	headerColor.Fprintln(out, "Recommendations & suggested actions")
	for _, line := range r.Advice {
		fmt.Fprintf(out, "  - %s\n", line)
	}
	return nil
}

func runList(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("list")
	var cf criteriaFlags
	cf.register(fs)
	latest := fs.Int("latest", 0, "show only the N most recent transactions")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := cf.criteria()
	if err != nil {
		return err
	}
	all, err := app.Ledger.Transactions(ctx, aggregate.Criteria{})
	if err != nil {
		return err
	}

	// positions always refer to the full ledger so they can be passed to delete --pos
	pos := make(map[string]int, len(all))
	for i, tx := range all {
		pos[tx.ID] = i
	}
	rows := aggregate.Filter(all, c)
	if *latest > 0 {
		rows = aggregate.Latest(rows, *latest)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "POS\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, tx := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			pos[tx.ID], tx.Date, tx.Type, tx.Category,
			amountColor(tx.Type).Sprint(core.FormatRupiah(tx.Amount)), tx.Description, tx.ID)
	}
	return tw.Flush()
}

func runAdd(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("add")
	var in services.AddInput
	fs.StringVar(&in.Date, "date", core.Today().String(), "transaction date")
	fs.StringVar(&in.Type, "type", "", "Masuk or Keluar")
	fs.StringVar(&in.Category, "category", "", "registered category for the type")
	fs.StringVar(&in.Description, "description", "", "free text")
	fs.Int64Var(&in.Amount, "amount", 0, "amount in rupiah")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	tx, err := app.Ledger.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s %s %s (%s) on %s\n",
		tx.Type, amountColor(tx.Type).Sprint(core.FormatRupiah(tx.Amount)), tx.Category, tx.Description, tx.Date)
	fmt.Fprintf(out, "id: %s\n", tx.ID)
	return nil
}

func runDelete(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("delete")
	pos := fs.Int("pos", -1, "zero-based position from list")
	id := fs.String("id", "", "transaction id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var (
		tx  core.Transaction
		err error
	)
	byPos := isSet(fs, "pos")
	switch {
	case *id != "" && byPos:
		return fmt.Errorf("%w: pass either --pos or --id", errUsage)
	case *id != "":
		tx, err = app.Ledger.DeleteByID(ctx, *id)
	case byPos:
		tx, err = app.Ledger.DeleteAt(ctx, *pos)
	default:
		return fmt.Errorf("%w: delete needs --pos or --id", errUsage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s %s %s (%s)\n", tx.Date, tx.Type, core.FormatRupiah(tx.Amount), tx.Description)
	return nil
}

func runBalance(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if err := parseFlags(newFlagSet("balance"), args); err != nil {
		return err
	}
	txs, err := app.Ledger.Transactions(ctx, aggregate.Criteria{})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "DATE\tBALANCE")
	for _, p := range aggregate.RunningBalance(txs) {
		fmt.Fprintf(tw, "%s\t%s\n", p.Date, core.FormatRupiah(p.Balance))
	}
	return tw.Flush()
}

func runDaily(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if err := parseFlags(newFlagSet("daily"), args); err != nil {
		return err
	}
	txs, err := app.Ledger.Transactions(ctx, aggregate.Criteria{})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "DATE\tINFLOW\tOUTFLOW")
	for _, d := range aggregate.Daily(txs) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Date, core.FormatRupiah(d.Inflow), core.FormatRupiah(d.Outflow))
	}
	return tw.Flush()
}

func runMonthly(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if err := parseFlags(newFlagSet("monthly"), args); err != nil {
		return err
	}
	txs, err := app.Ledger.Transactions(ctx, aggregate.Criteria{})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "MONTH\tINFLOW\tOUTFLOW\tNET")
	for _, m := range aggregate.ByMonth(txs) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Month,
			core.FormatRupiah(m.Inflow), core.FormatRupiah(m.Outflow), core.FormatRupiah(m.Inflow-m.Outflow))
	}
	return tw.Flush()
}

func runCategories(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		reg, err := app.Ledger.Categories(ctx)
		if err != nil {
			return err
		}
		for _, typ := range []core.TxType{core.Inflow, core.Outflow} {
			headerColor.Fprintln(out, typ)
			for _, name := range reg.ForType(typ) {
				fmt.Fprintf(out, "  %s\n", name)
			}
		}
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return fmt.Errorf("%w: categories add NAME TYPE", errUsage)
		}
		if err := app.Ledger.AddCategory(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Registered %q\n", args[1])
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("%w: categories remove NAME", errUsage)
		}
		removed, err := app.Ledger.RemoveCategory(ctx, args[1])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(out, "No category named %q\n", args[1])
			return nil
		}
		fmt.Fprintf(out, "Removed %q\n", args[1])
	default:
		return fmt.Errorf("%w: unknown categories action %q", errUsage, args[0])
	}
	return nil
}

func runImport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import FILE", errUsage)
	}
	format, err := exchange.FormatFromFilename(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := app.Ledger.Import(ctx, f, format)
	if err != nil {
		var se *exchange.SchemaError
		if errors.As(err, &se) {
			return fmt.Errorf("%s is missing required columns %v; nothing was imported", filepath.Base(args[0]), se.Missing)
		}
		return err
	}
	fmt.Fprintf(out, "Imported %d transactions from %s\n", n, filepath.Base(args[0]))
	return nil
}

func runExport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: export FILE", errUsage)
	}
	format, err := exchange.FormatFromFilename(args[0])
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := app.Ledger.Export(ctx, f, format); err != nil {
		f.Close()
		os.Remove(args[0])
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported ledger to %s\n", args[0])
	return nil
}

func runPublish(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: publish takes no arguments", errUsage)
	}
	p, err := app.Publisher(ctx)
	if err != nil {
		return err
	}
	ref, err := app.Ledger.Publish(ctx, p)
	if err != nil {
		return err
	}
	if !app.Config.PublishEnabled() {
		fmt.Fprintln(out, "No spreadsheet configured (GOOGLE_SPREADSHEET_ID); ledger published to memory only")
	}
	fmt.Fprintf(out, "Published %s\n", ref)
	return nil
}
