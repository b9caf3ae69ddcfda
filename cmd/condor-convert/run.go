package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/banshee-data/motionlogger-condor/internal/condor"
	"github.com/banshee-data/motionlogger-condor/internal/config"
	"github.com/banshee-data/motionlogger-condor/internal/convert"
	"github.com/banshee-data/motionlogger-condor/internal/epoch"
	"github.com/banshee-data/motionlogger-condor/internal/fsutil"
	"github.com/banshee-data/motionlogger-condor/internal/monitoring"
	"github.com/banshee-data/motionlogger-condor/internal/motionlogger"
	"github.com/banshee-data/motionlogger-condor/internal/timeutil"
	"github.com/banshee-data/motionlogger-condor/internal/version"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const epochPrompt = "Enter the epoch duration in seconds to condense the file to: "

var (
	errOutputExists = errors.New("output file already exists")
	errNoEpoch      = errors.New("no epoch duration given")
)

// env holds everything run touches outside the process.
type env struct {
	fs     fsutil.FileSystem
	clock  timeutil.Clock
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// options are the parsed command line flags.
type options struct {
	epochSeconds int
	configPath   string
	outDir       string
	force        bool
	verbose      bool
	showVersion  bool
	inputs       []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fset := flag.NewFlagSet("condor-convert", flag.ContinueOnError)
	fset.SetOutput(stderr)

	o := &options{}
	fset.IntVar(&o.epochSeconds, "epoch", 0, "epoch duration in seconds (prompted for when omitted)")
	fset.StringVar(&o.configPath, "config", "", "path to a .json or .toml config file")
	fset.StringVar(&o.outDir, "out-dir", "", "directory for reports (default: next to each input)")
	fset.BoolVar(&o.force, "force", false, "overwrite existing reports")
	fset.BoolVar(&o.verbose, "v", false, "verbose logging")
	fset.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "Usage: condor-convert [flags] export.txt...")
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	o.inputs = fset.Args()
	return o, nil
}

func run(args []string, e env) int {
	o, err := parseFlags(args, e.stderr)
	if err != nil {
		return exitUsage
	}
	if o.showVersion {
		fmt.Fprintf(e.stdout, "condor-convert %s\n", version.String())
		return exitOK
	}
	if len(o.inputs) == 0 {
		fmt.Fprintln(e.stderr, "condor-convert: at least one input file is required")
		return exitUsage
	}

	runID := uuid.NewString()[:8]
	logger := log.New(e.stderr, "condor-convert ["+runID+"] ", log.LstdFlags)
	monitoring.SetLogger(logger.Printf)
	monitoring.SetVerbose(o.verbose)

	cfg := config.DefaultConversionConfig()
	if o.configPath != "" {
		cfg, err = config.LoadConfig(e.fs, o.configPath)
		if err != nil {
			monitoring.Logf("error: %v", err)
			return exitError
		}
	}
	outDir := cfg.GetOutputDir()
	if o.outDir != "" {
		outDir = o.outDir
	}
	overwrite := cfg.GetOverwrite() || o.force

	convOpts, err := convert.OptionsFromConfig(cfg)
	if err != nil {
		monitoring.Logf("error: %v", err)
		return exitError
	}

	if o.epochSeconds == 0 {
		o.epochSeconds, err = promptEpoch(e.stdin, e.stdout)
		if err != nil {
			monitoring.Logf("aborted: %v", err)
			return exitUsage
		}
	}

	bar := progressbar.NewOptions(len(o.inputs),
		progressbar.OptionSetWriter(e.stderr),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetVisibility(len(o.inputs) > 1),
	)
	for _, in := range o.inputs {
		out, err := convertFile(e, in, outDir, o.epochSeconds, overwrite, convOpts)
		if err != nil {
			monitoring.Logf("%s: %s", in, describe(err))
			return exitError
		}
		monitoring.Logf("saved Condor file %s", out)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return exitOK
}

// convertFile converts one export and writes the report. It returns the
// report path.
func convertFile(e env, in, outDir string, epochSeconds int, overwrite bool, opts convert.Options) (string, error) {
	out := condor.OutputName(in, epochSeconds)
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(out))
	}
	if !overwrite && e.fs.Exists(out) {
		return "", fmt.Errorf("%w: %s (use -force to replace it)", errOutputExists, out)
	}

	data, err := e.fs.ReadFile(in)
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}

	opts.SubjectName = condor.SubjectName(in)
	opts.Created = e.clock.Now()
	res, err := convert.Convert(string(data), epochSeconds, opts)
	if err != nil {
		return "", err
	}

	if outDir != "" {
		if err := e.fs.MkdirAll(outDir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := fsutil.WriteFileAtomic(e.fs, out, []byte(res.Report), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return out, nil
}

// promptEpoch asks for the epoch length until a positive integer is entered.
func promptEpoch(r io.Reader, w io.Writer) (int, error) {
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, epochPrompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, errNoEpoch
		}
		line := strings.TrimSpace(sc.Text())
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 {
			fmt.Fprintf(w, "%q is not a whole number of seconds (minimum 1)\n", line)
			continue
		}
		return n, nil
	}
}

// describe turns a conversion failure into a message for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, motionlogger.ErrFormat):
		return fmt.Sprintf("not a usable MotionLogger export: %v", err)
	case errors.Is(err, epoch.ErrInvalidEpoch):
		return fmt.Sprintf("cannot use that epoch duration: %v", err)
	case errors.Is(err, epoch.ErrEmptyData):
		return fmt.Sprintf("export has no data: %v", err)
	default:
		return err.Error()
	}
}
