package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/marauder-dl/marauder/cmd/common"
	envs "github.com/marauder-dl/marauder/common"
	"github.com/marauder-dl/marauder/internal/cdpdriver"
	"github.com/marauder-dl/marauder/pkg/logger"
	"github.com/marauder-dl/marauder/pkg/marauder"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

var (
	errIncorrectID         = errors.New("incorrect file identifier")
	errIncorrectCount      = errors.New("incorrect count value, the parameter must be greater than 0")
	errIncorrectGroupCount = errors.New("incorrect group count value, the parameter must be greater than 0")
	errIncorrectFlowCount  = errors.New("incorrect flow count value, the parameter must be greater than 0")
)

var (
	baseID       int64
	skipExisting bool
	totalCount   int64
	groupCount   int64
	flowCount    int
	profilePath  string
	rootDir      string
	logFile      string
	showProgress bool
	headless     bool
	execPath     string
	noSandbox    bool

	runFlags = []cli.Flag{
		cli.Int64Flag{
			Name:        "id, i",
			Usage:       "first file identifier, e.g. 7766809",
			Destination: &baseID,
		},
		cli.BoolFlag{
			Name:        "skip, s",
			Usage:       "skip identifiers whose file already exists",
			Destination: &skipExisting,
		},
		cli.Int64Flag{
			Name:        "count, c",
			Usage:       "width of the identifier range from each flow's start (unbounded if not specified)",
			Destination: &totalCount,
		},
		cli.Int64Flag{
			Name:        "groupcount, gc",
			Usage:       "count of files per directory (a single directory if not specified)",
			Destination: &groupCount,
		},
		cli.IntFlag{
			Name:        "flowcount, fc",
			Usage:       "count of concurrent download flows",
			Destination: &flowCount,
		},
		cli.StringFlag{
			Name:        "profile",
			Usage:       "YAML file describing the target site",
			EnvVar:      envs.ProfileEnv,
			Destination: &profilePath,
		},
		cli.StringFlag{
			Name:        "root",
			Usage:       "output directory for downloaded files",
			Value:       envs.DEF_ROOT,
			EnvVar:      envs.RootEnv,
			Destination: &rootDir,
		},
		cli.StringFlag{
			Name:        "log-file",
			Usage:       "log file, truncated on every run (empty disables it)",
			Value:       envs.DEF_LOG_FILE,
			EnvVar:      envs.LogFileEnv,
			Destination: &logFile,
		},
		cli.BoolFlag{
			Name:        "progress",
			Usage:       "show progress bars instead of console logging",
			Destination: &showProgress,
		},
		cli.BoolTFlag{
			Name:        "headless",
			Usage:       "run the browser without a window, use --headless=false to show it",
			Destination: &headless,
		},
		cli.StringFlag{
			Name:        "exec-path",
			Usage:       "browser executable (autodetected if not specified)",
			EnvVar:      envs.ChromePathEnv,
			Destination: &execPath,
		},
		cli.BoolFlag{
			Name:        "no-sandbox",
			Usage:       "disable the browser sandbox, required when running as root",
			Destination: &noSandbox,
		},
	}
)

// newAutomation builds the browser driver of a run.
var newAutomation = func(opts cdpdriver.Options) marauder.Automation {
	return cdpdriver.New(opts)
}

// runParams validates the parsed flags. Zero counts mean "not given".
func runParams() (marauder.RunParams, error) {
	var p marauder.RunParams
	switch {
	case baseID < 1:
		return p, errIncorrectID
	case totalCount < 0:
		return p, errIncorrectCount
	case groupCount < 0:
		return p, errIncorrectGroupCount
	case flowCount < 0:
		return p, errIncorrectFlowCount
	}
	p = marauder.RunParams{
		BaseID:     baseID,
		Skip:       skipExisting,
		TotalCount: totalCount,
		GroupCount: groupCount,
		FlowCount:  flowCount,
	}
	if p.FlowCount == 0 {
		p.FlowCount = envs.DEF_FLOW_COUNT
	}
	return p, nil
}

// usageError shows help for a rejected invocation. The app level help exits
// with status 1; the command level help returns err so main exits with it.
func usageError(ctx *cli.Context, err error) error {
	if ctx.Command.Name == "" {
		return common.UsageErrorCallback(ctx, err, false)
	}
	if herr := cli.ShowCommandHelp(ctx, ctx.Command.Name); herr != nil {
		fmt.Println(herr.Error())
	}
	return err
}

func run(ctx *cli.Context) (err error) {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if !ctx.IsSet("id") {
		if ctx.Command.Name == "" {
			return common.Help(ctx)
		}
		return usageError(ctx, errIncorrectID)
	}
	params, err := runParams()
	if err != nil {
		return usageError(ctx, err)
	}

	fs := afero.NewOsFs()
	profile := marauder.DefaultProfile()
	if profilePath != "" {
		profile, err = marauder.LoadProfile(fs, profilePath)
		if err != nil {
			return err
		}
	}
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	l, err := newLogger(fs, logFile, !showProgress)
	if err != nil {
		return err
	}
	defer l.Close()
	defer func() {
		if r := recover(); r != nil {
			l.Error("Unknown error: %v", r)
			err = fmt.Errorf("unknown error: %v", r)
		}
	}()

	var handlers *marauder.Handlers
	var prog *flowProgress
	if showProgress {
		prog = newFlowProgress(os.Stdout, marauder.Plan(params))
		handlers = prog.handlers()
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	orch := marauder.NewOrchestrator(&marauder.FlowOpts{
		Automation: newAutomation(cdpdriver.Options{
			Headless:  headless,
			ExecPath:  execPath,
			NoSandbox: noSandbox,
			Logger:    l,
		}),
		Fs:       fs,
		Root:     root,
		Profile:  profile,
		Logger:   l,
		Handlers: handlers,
	})
	statuses := orch.Run(sigCtx, params)
	if prog != nil {
		prog.Wait()
		printSummary(os.Stdout, statuses)
	}
	logSummary(l, statuses)
	return nil
}

// newLogger logs to the console if console is set and to path unless path
// is empty.
func newLogger(fs afero.Fs, path string, console bool) (logger.Logger, error) {
	var sinks []logger.Logger
	if console {
		sinks = append(sinks, logger.NewStandardLogger(newConsoleLog()))
	}
	if path != "" {
		fl, err := logger.NewFileLogger(fs, path, DEF_LOG_FLAGS)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fl)
	}
	return logger.NewMultiLogger(sinks...), nil
}
