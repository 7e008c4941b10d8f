// Command fcecompile compiles exported Faculty Course Evaluation spreadsheets
// into a JSON summary of the latest workload figure per course.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rhyrak/fce-compiler/internal/compiler"
	"github.com/rhyrak/fce-compiler/internal/config"
	"github.com/rhyrak/fce-compiler/internal/csvio"
	"github.com/rhyrak/fce-compiler/internal/logging"
	"github.com/rhyrak/fce-compiler/internal/publish"
	"github.com/rhyrak/fce-compiler/pkg/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Minute

func main() {
	err := run(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Compile failed")
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("fcecompile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		sources      stringList
		output       string
		callback     string
		configPath   string
		format       string
		cutoffYear   int
		minResponses int
		brotli       bool
		doPublish    bool
		logLevel     string
		logFormat    string
	)
	fs.Var(&sources, "s", "export file or directory; repeatable (default \""+config.DefaultSourceDir+"\")")
	fs.Var(&sources, "source", "same as -s")
	fs.Var(&sources, "source-dir", "same as -s")
	fs.StringVar(&output, "o", config.DefaultOutputFile, "output file")
	fs.StringVar(&output, "output", config.DefaultOutputFile, "same as -o")
	fs.StringVar(&callback, "callback", "", "JSONP callback to enable cross-domain requests (default none)")
	fs.StringVar(&configPath, "config", "", "optional YAML config file")
	fs.StringVar(&format, "format", config.DefaultFormat, "output format: json or csv")
	fs.IntVar(&cutoffYear, "cutoff-year", 0, "drop evaluations older than this year (0 = keep all)")
	fs.IntVar(&minResponses, "min-responses", config.DefaultMinResponses, "drop evaluations with this many responses or fewer")
	fs.BoolVar(&brotli, "brotli", false, "also write a brotli-compressed copy (<output>.br)")
	fs.BoolVar(&doPublish, "publish", false, "upload the output over SFTP (SFTP_HOST, SFTP_USER, SFTP_PASS)")
	fs.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&logFormat, "log-format", "pretty", "pretty or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := config.NewDefaultConfiguration()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	// flags given on the command line win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s", "source", "source-dir":
			cfg.Sources = sources
		case "o", "output":
			cfg.Output = output
		case "callback":
			cfg.Callback = callback
		case "format":
			cfg.Format = format
		case "cutoff-year":
			cfg.CutoffYear = cutoffYear
		case "min-responses":
			cfg.MinResponses = minResponses
		case "brotli":
			cfg.Brotli = brotli
		case "publish":
			cfg.Publish.Enabled = doPublish
		case "log-level":
			cfg.Log.Level = logLevel
		case "log-format":
			cfg.Log.Format = logFormat
		}
	})
	cfg.ApplyEnv()

	if err := logging.Setup(cfg.Log, stderr); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	layouts, err := cfg.Layouts()
	if err != nil {
		return err
	}
	if err := csvio.CheckWritable(cfg.Output); err != nil {
		return err
	}

	logger := logging.For("fcecompile")

	raws, err := csvio.LoadRecords(cfg.Sources, layouts)
	if err != nil {
		return err
	}

	summary, stats, err := compiler.Compile(raws, compilerOptions(cfg))
	if err != nil {
		return err
	}
	logger.Info().
		Int("rows", stats.Rows).
		Int("kept", stats.Kept).
		Dict("dropped", droppedDict(stats.Dropped)).
		Int("courses", stats.Courses).
		Strs("renumbered", stats.Renumbered).
		Msg("Compiled evaluations")

	written, err := csvio.ExportSummary(summary, cfg.Output, csvio.WriteOptions{
		Format:   csvio.Format(cfg.Format),
		Callback: cfg.Callback,
		Brotli:   cfg.Brotli,
	})
	if err != nil {
		return err
	}
	logger.Info().Strs("files", written).Msg("Exported output")

	if cfg.Publish.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publish.UploadFiles(ctx, cfg.Publish, written...); err != nil {
			return err
		}
	}
	return nil
}

func compilerOptions(cfg *config.Configuration) compiler.Options {
	opts := compiler.DefaultOptions()
	opts.Filter.MinResponses = cfg.MinResponses
	opts.Filter.CutoffYear = cfg.CutoffYear
	opts.Filter.ExcludedSections = cfg.ExcludedSections

	semesters := make([]model.Semester, 0, len(cfg.ExcludedSemesters))
	for _, s := range cfg.ExcludedSemesters {
		semesters = append(semesters, model.ParseSemester(s))
	}
	opts.Filter.ExcludedSemesters = semesters

	if len(cfg.Renumbering) > 0 {
		opts.Renumbering = compiler.Renumbering(cfg.Renumbering)
	}
	return opts
}

func droppedDict(dropped map[compiler.DropReason]int) *zerolog.Event {
	reasons := make([]string, 0, len(dropped))
	for r := range dropped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	d := zerolog.Dict()
	for _, r := range reasons {
		d.Int(r, dropped[compiler.DropReason(r)])
	}
	return d
}
