package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"reverse-geocoding/internal/config"
	"reverse-geocoding/internal/csvio"
	"reverse-geocoding/internal/filter"
	"reverse-geocoding/internal/logger"
	"reverse-geocoding/internal/page"
	"reverse-geocoding/internal/repository"
	"reverse-geocoding/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	columns    string
	reference  string
	input      string
	output     string
	pageSize   int
	header     bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Append prefecture, city and geohash columns to CSV records",
		Long: `filter reads CSV records, looks up the Japanese administrative region of
the latitude/longitude columns named in the filter configuration, and writes
the records with the configured derived columns appended.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(opts.logLevel, true)
			return run(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "configs/filter.yaml", "filter configuration (YAML)")
	f.StringVar(&opts.columns, "columns", "", `input columns, e.g. "id:long,lat:double,lon:double"`)
	f.StringVar(&opts.reference, "reference", "", "reference dataset CSV (default: bundled dataset)")
	f.StringVarP(&opts.input, "input", "i", "", "input CSV file (default: stdin)")
	f.StringVarP(&opts.output, "output", "o", "", "output CSV file (default: stdout)")
	f.IntVar(&opts.pageSize, "page-size", page.DefaultPageSize, "records per page")
	f.BoolVar(&opts.header, "header", true, "input has a header row and output gets one")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	_ = cmd.MarkFlagRequired("columns")

	return cmd
}

func run(opts options, stdin io.Reader, stdout io.Writer) error {
	cf, err := os.Open(opts.configPath)
	if err != nil {
		return fmt.Errorf("cannot open filter config: %w", err)
	}
	fc, err := config.LoadFilterConfig(cf)
	cf.Close()
	if err != nil {
		return err
	}

	input, err := csvio.ParseColumns(opts.columns)
	if err != nil {
		return err
	}

	table, err := loadTable(opts.reference)
	if err != nil {
		return err
	}
	log.Info().Str("source", table.Source()).Int("regions", table.Len()).Int("precision", table.Precision()).Msg("region table loaded")

	task, err := filter.NewTask(fc, table.Precision())
	if err != nil {
		return err
	}
	output, err := filter.Transaction(task, input)
	if err != nil {
		return err
	}

	in := stdin
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("cannot open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("cannot create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return augment(task, service.NewReverseGeoCodeService(table), input, output, in, out, opts)
}

func augment(task filter.Task, geocoder filter.Geocoder, input, output page.Schema, in io.Reader, out io.Writer, opts options) error {
	writer := csvio.NewWriter(out, output, opts.header)
	stream, err := filter.Open(task, geocoder, input, output, writer, filter.WithPageSize(opts.pageSize))
	if err != nil {
		return err
	}
	defer stream.Close()

	reader := csvio.NewReader(in, input, opts.header)
	for {
		p, err := reader.ReadPage(opts.pageSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := stream.Add(p); err != nil {
			return err
		}
	}

	if err := stream.Finish(); err != nil {
		return err
	}
	return stream.Close()
}

func loadTable(path string) (*repository.RegionTable, error) {
	if path == "" {
		return repository.LoadBundledRegionTable()
	}
	return repository.LoadRegionTableFile(path)
}
