package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/atlekbai/report_engine/internal/config"
	"github.com/atlekbai/report_engine/internal/db"
	"github.com/atlekbai/report_engine/internal/report"
	"github.com/atlekbai/report_engine/internal/schema"
	"github.com/atlekbai/report_engine/internal/store"
	"github.com/atlekbai/report_engine/internal/viewer"
)

func main() {
	app := &cli.App{
		Name:  "reportctl",
		Usage: "Run CRM reports from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: ".", Usage: "directory holding config.yaml"},
			&cli.StringFlag{Name: "tenant", EnvVars: []string{"REPORT_TENANT"}, Usage: "tenant id"},
		},
		Before: func(c *cli.Context) error {
			logx.MustSetup(logx.LogConf{Mode: "console", Encoding: "plain", Level: "error"})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Execute a report definition",
				ArgsUsage: "<definition.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "xlsx", Usage: "write the result to this workbook instead of stdout"},
					&cli.StringFlag{Name: "sort", Usage: "re-sort the output by a visible column"},
					&cli.BoolFlag{Name: "desc", Usage: "with --sort, sort descending"},
					&cli.StringSliceFlag{Name: "filter", Usage: "extra filter as field=op.value"},
				},
				Action: runReport,
			},
			{
				Name:      "fields",
				Usage:     "List the fields of a record type",
				ArgsUsage: "<record-type>",
				Action:    listFields,
			},
			{
				Name:   "migrate",
				Usage:  "Apply schema migrations",
				Action: migrate,
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg      *config.Config
	conn     *db.Connection
	executor *report.Executor
}

func open(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	conn, err := db.Connect(c.Context, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	q := conn.Querier()
	return &env{
		cfg:  cfg,
		conn: conn,
		executor: report.NewExecutor(
			schema.CRM(),
			store.NewCatalog(q, conn.Dialect),
			store.NewSQLStore(q, conn.Dialect),
			cfg.MaxRows,
		),
	}, nil
}

func tenantFlag(c *cli.Context) (uuid.UUID, error) {
	raw := c.String("tenant")
	if raw == "" {
		return uuid.Nil, cli.Exit("--tenant is required", 2)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, cli.Exit(fmt.Sprintf("invalid tenant %q: %v", raw, err), 2)
	}
	return id, nil
}

func runReport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: reportctl run <definition.json>", 2)
	}
	tenant, err := tenantFlag(c)
	if err != nil {
		return err
	}

	def, err := readDefinition(c.Args().First())
	if err != nil {
		return err
	}
	for _, raw := range c.StringSlice("filter") {
		field, expr, ok := strings.Cut(raw, "=")
		if !ok {
			return cli.Exit(fmt.Sprintf("invalid filter %q, expected field=op.value", raw), 2)
		}
		op, val, err := report.ParseFilter(expr)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		def.Filters = append(def.Filters, report.Filter{Field: field, Operator: op, Value: val})
	}

	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.conn.Close()

	res := e.executor.Execute(c.Context, def, tenant)
	v := viewer.New(res, viewer.NewFormatter(e.cfg.DefaultCurrency))
	if key := c.String("sort"); key != "" {
		v.ToggleSort(key)
		if c.Bool("desc") {
			v.ToggleSort(key)
		}
	}

	if path := c.String("xlsx"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := v.ExportXLSX(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%d rows written to %s\n", res.Count, path)
		return nil
	}

	printTable(c.App.Writer, v)
	fmt.Fprintf(c.App.Writer, "\n%d rows\n", res.Count)
	return nil
}

func listFields(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: reportctl fields <record-type>", 2)
	}
	tenant, err := tenantFlag(c)
	if err != nil {
		return err
	}

	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.conn.Close()

	fields := e.executor.Fields(c.Context, c.Args().First(), tenant)
	if fields == nil {
		return cli.Exit(fmt.Sprintf("unknown record type %q", c.Args().First()), 1)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tKIND\tSOURCE\tOPERATORS")
	for _, f := range report.DescribeFields(fields) {
		ops := make([]string, len(f.Operators))
		for i, op := range f.Operators {
			ops[i] = string(op)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Key, f.Label, f.Kind, f.Source, strings.Join(ops, ","))
	}
	return tw.Flush()
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	conn, err := db.Connect(c.Context, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "migrations applied")
	return nil
}

func readDefinition(path string) (report.Definition, error) {
	var def report.Definition
	f, err := os.Open(path)
	if err != nil {
		return def, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&def); err != nil {
		return def, fmt.Errorf("parse %s: %w", path, err)
	}
	return def, nil
}

func printTable(w io.Writer, v *viewer.Viewer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	cols := v.Columns()
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = strings.ToUpper(col.Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, cells := range v.Table() {
		texts := make([]string, len(cells))
		for i, cell := range cells {
			texts[i] = cell.Text
		}
		fmt.Fprintln(tw, strings.Join(texts, "\t"))
	}
	tw.Flush()
}
