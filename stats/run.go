package stats

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssstat/config"
	"cssstat/css"
	"cssstat/source"
	"cssstat/state"
)

// Flags returns command line flags understood by Run.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write report to `FILE` instead of STDOUT"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "process at most `N` files at the same time (0 - no limit)"},
		&cli.StringFlag{Name: "order",
			Usage: "report rows `ORDER` (supported: " + strings.Join(config.ListingOrderNames(), ", ") + ")"},
		&cli.StringFlag{Name: "charset", Usage: "character set `ENCODING` of input files (see IANA.org for character set names)"},
	}
}

// Run is the stats command action: it collects statistics for every file in
// SOURCE and writes CSV report.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("stats")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		src = env.Cfg.Input.Directory
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	order := env.Cfg.Input.Order
	if cmd.IsSet("order") {
		if order, err = config.ParseListingOrder(strings.TrimSpace(cmd.String("order"))); err != nil {
			return err
		}
	}

	opts := Options{Workers: env.Cfg.Input.Workers}
	if cmd.IsSet("workers") {
		opts.Workers = cmd.Int("workers")
	}
	if opts.Workers < 0 {
		return fmt.Errorf("number of workers cannot be negative (%d)", opts.Workers)
	}

	cs := env.Cfg.Input.Charset
	if cmd.IsSet("charset") {
		cs = cmd.String("charset")
	}
	if err := env.UseCharset(cs); err != nil {
		return err
	}
	opts.Charset = env.Charset
	log.Debug("Decoding input files", zap.String("charset", config.CharsetName(opts.Charset)))

	files, err := source.List(src, order)
	if err != nil {
		return fmt.Errorf("unable to list input files: %w", err)
	}

	log.Info("Processing starting", zap.String("source", src), zap.Int("files", len(files)), zap.Stringer("order", order), zap.Int("workers", opts.Workers))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	results, err := Process(ctx, files, css.NewParser(log), opts, log)
	if err != nil {
		return err
	}

	records := make([]Record, 0, len(results))
	failed := 0
	for _, r := range results {
		records = append(records, r.Record)
		if r.ParseErr != nil {
			failed++
			storeFailed(env.Rpt, r.File)
			continue
		}
		if env.Rpt != nil {
			env.Rpt.StoreData(path.Join("parsed", config.CleanFileName(r.File.Name)+".txt"), []byte(r.Sheet.Dump()))
		}
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return fmt.Errorf("unable to prepare report: %w", err)
	}
	env.Rpt.StoreData("stats.csv", buf.Bytes())

	if failed > 0 {
		log.Info("Some stylesheets could not be parsed", zap.Int("failed", failed), zap.Int("total", len(results)))
	}
	return writeOutput(cmd.String("output"), buf.Bytes(), log)
}

// storeFailed keeps copy of unparsable stylesheet in debug report.
func storeFailed(rpt *config.Report, f source.File) {
	if rpt == nil {
		return
	}
	data, err := f.Read()
	if err != nil {
		return
	}
	rpt.StoreData(path.Join("failed", config.CleanFileName(f.Name)), data)
}

func writeOutput(fname string, data []byte, log *zap.Logger) error {
	if len(fname) == 0 {
		_, err := os.Stdout.Write(data)
		return err
	}

	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	if _, err := out.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("unable to write report: %w", err), out.Close())
	}
	log.Info("Report written", zap.String("file", fname))
	return out.Close()
}
