package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mini-maxit/taucheck/internal/cases"
	"github.com/mini-maxit/taucheck/internal/config"
	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/internal/option"
	"github.com/mini-maxit/taucheck/internal/ordering"
	"github.com/mini-maxit/taucheck/internal/rabbitmq"
	"github.com/mini-maxit/taucheck/internal/rabbitmq/responder"
	"github.com/mini-maxit/taucheck/internal/report"
	"github.com/mini-maxit/taucheck/internal/scheduler"
	"github.com/mini-maxit/taucheck/internal/stages/verifier"
	"github.com/mini-maxit/taucheck/pkg/constants"
	"github.com/mini-maxit/taucheck/pkg/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options holds the command line flags. Flags that were not given on the
// command line fall back to the config file, the environment and defaults.
type Options struct {
	Outputs    string
	Order      string
	Verify     string
	Checker    string
	Timeout    float64
	Processes  int
	Fatal      bool
	Verbose    int
	Seed       uint64
	Format     string
	ConfigFile string
	AmqpURL    string
	AmqpQueue  string
	ScratchDir string
}

// NewRootCommand creates the taucheck command.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "taucheck [flags] APP TESTS",
		Short: "Test a program against a directory of test cases",
		Long: `Test the program APP using test cases provided in the TESTS directory.

Every NAME.in file in TESTS is fed to APP on standard input and the output is
compared with NAME.out. APP is run through the shell, so it may carry arguments.
Ordering and verification names may be abbreviated to any unambiguous prefix.

Exit codes:
  0 - All cases passed
  1 - Some case did not pass
  2 - Command error (invalid options, missing files, checker failure, etc.)

Examples:
  taucheck ./solution tests/
  taucheck -e identical -d size -p 4 "python3 sol.py" tests/
  taucheck -e checker -c ./check tests/ --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Outputs, "outputs", "o", "", "output file directory, same as TESTS by default")
	f.StringVarP(&opts.Order, "order", "d", constants.DefaultOrder, "test ordering: lexicographical, natural, random, size")
	f.StringVarP(&opts.Verify, "verify", "e", constants.DefaultVerify, "verifier: identical, loose, checker")
	f.StringVarP(&opts.Checker, "checker", "c", "", "checker program, called with input, expected output (if any) and produced output paths")
	f.Float64VarP(&opts.Timeout, "timeout", "t", constants.DefaultTimeoutSec, "program timeout in seconds")
	f.IntVarP(&opts.Processes, "processes", "p", constants.DefaultProcesses, "number of parallel workers")
	f.BoolVarP(&opts.Fatal, "fatal", "f", false, "stop testing at the first non-passing case")
	f.CountVarP(&opts.Verbose, "verbose", "v", "verbosity, repeat for more")
	f.Uint64Var(&opts.Seed, "seed", 0, "seed for the random ordering")
	f.StringVar(&opts.Format, "format", constants.DefaultFormat, "report format (text|json)")
	f.StringVar(&opts.ConfigFile, "config", "", "YAML config file")
	f.StringVar(&opts.AmqpURL, "amqp-url", "", "publish results to this RabbitMQ broker")
	f.StringVar(&opts.AmqpQueue, "amqp-queue", constants.DefaultAmqpQueueName, "queue to publish results to")
	f.StringVar(&opts.ScratchDir, "scratch-dir", "", "directory for produced output files, the system temp dir by default")

	return cmd
}

// runSettings is the configuration after flags, file, environment and
// defaults are merged and every name is resolved.
type runSettings struct {
	cfg      *config.Config
	order    ordering.Strategy
	strategy verifier.Strategy
	inDir    string
	outDir   string
}

func runCheck(cmd *cobra.Command, opts *Options, app, tests string) error {
	start := time.Now()
	logger.SetVerbosity(opts.Verbose)
	defer logger.Sync()
	log := logger.NewNamedLogger("cli")

	rep, err := report.NewReporter(opts.Format, opts.Verbose)
	if err != nil {
		return WrapExitError(constants.ExitCommandError, "invalid options", err)
	}

	settings, err := resolveSettings(cmd, opts, tests)
	if err != nil {
		return err
	}

	cs, err := cases.Discover(settings.inDir, settings.outDir)
	if err != nil {
		return WrapExitError(constants.ExitCommandError, "failed to find test cases", err)
	}
	cs = settings.order(cs)
	log.Infof("Running %d case(s) from %s", len(cs), settings.inDir)

	// Every worker's programs and checkers share this writer.
	var programStderr io.Writer
	if opts.Verbose > 0 {
		programStderr = zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr()))
	}
	vcfg := verifier.Config{
		Command:    app,
		InputDir:   settings.inDir,
		OutputDir:  settings.outDir,
		Checker:    settings.cfg.Checker,
		Timeout:    time.Duration(settings.cfg.Timeout * float64(time.Second)),
		ScratchDir: settings.cfg.ScratchDir,
		Stderr:     programStderr,
	}
	factory := func(int) (verifier.Verifier, error) {
		return verifier.NewVerifier(settings.strategy, vcfg, nil)
	}

	sched, err := scheduler.NewScheduler(settings.cfg.Processes, factory, opts.Fatal)
	if err != nil {
		return WrapExitError(constants.ExitCommandError, "invalid options", err)
	}

	resp, closeResponder, err := openResponder(settings.cfg, log)
	if err != nil {
		return WrapExitError(constants.ExitCommandError, "failed to set up result publishing", err)
	}
	defer closeResponder()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := 0
	onStatus := func(st status.VerifyStatus) {
		done++
		log.Infof("[%d/%d] %s: %s", done, len(cs), st.Case, st.Outcome)
		log.Debugf("Worker pool: %v", sched.GetWorkersStatus())
		if resp == nil {
			return
		}
		if err := resp.PublishStatus(st); err != nil {
			log.Errorf("Failed to publish status of case %s: %s", st.Case, err)
		}
	}

	res, err := sched.Run(ctx, cs, onStatus)
	if err != nil {
		return WrapExitError(constants.ExitCommandError, "verification failed", err)
	}

	statuses := res.Statuses
	ordering.SortStatuses(statuses)
	summary := status.Summarize(statuses, time.Since(start), res.Stopped)

	if resp != nil {
		if err := resp.PublishSummary(summary); err != nil {
			log.Errorf("Failed to publish summary: %s", err)
		}
	}

	if err := rep.Report(cmd.OutOrStdout(), statuses, summary); err != nil {
		return WrapExitError(constants.ExitCommandError, "failed to write report", err)
	}

	if !summary.Accepted {
		return NewExitError(constants.ExitRejected, fmt.Sprintf("%d of %d case(s) did not pass", summary.Total-summary.Correct, summary.Total))
	}
	return nil
}

// resolveSettings merges the configuration sources and resolves abbreviated
// names. Every configuration error is reported here, before any case runs.
func resolveSettings(cmd *cobra.Command, opts *Options, tests string) (*runSettings, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, WrapExitError(constants.ExitCommandError, "invalid environment", err)
	}
	if opts.ConfigFile != "" {
		if err := cfg.ApplyFile(opts.ConfigFile); err != nil {
			return nil, WrapExitError(constants.ExitCommandError, "invalid config file", err)
		}
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(constants.ExitCommandError, "invalid options", err)
	}

	orderName, err := option.Resolve(ordering.Names, cfg.Order)
	if err != nil {
		return nil, WrapExitError(constants.ExitCommandError, "invalid ordering", err)
	}
	verifyName, err := option.Resolve(verifier.StrategyNames, cfg.Verify)
	if err != nil {
		return nil, WrapExitError(constants.ExitCommandError, "invalid verifier", err)
	}
	strategy, err := verifier.ParseStrategy(verifyName)
	if err != nil {
		return nil, WrapExitError(constants.ExitCommandError, "invalid verifier", err)
	}

	var rng *rand.Rand
	if cmd.Flags().Changed("seed") {
		rng = ordering.NewSeededRand(opts.Seed)
	}
	order, err := ordering.Lookup(orderName, rng)
	if err != nil {
		return nil, WrapExitError(constants.ExitCommandError, "invalid ordering", err)
	}

	outDir := ""
	if opts.Outputs != "" {
		outDir = opts.Outputs
	} else if strategy != verifier.Checker {
		outDir = tests
	}

	if cfg.Checker != "" && strategy != verifier.Checker {
		fmt.Fprintln(cmd.ErrOrStderr(), "[?] Checker parameter provided but verifier is not checker.")
	}

	return &runSettings{
		cfg:      cfg,
		order:    order,
		strategy: strategy,
		inDir:    tests,
		outDir:   outDir,
	}, nil
}

// applyFlags overrides cfg with the flags given explicitly on the command line.
func applyFlags(cmd *cobra.Command, opts *Options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("order") {
		cfg.Order = opts.Order
	}
	if flags.Changed("verify") {
		cfg.Verify = opts.Verify
	}
	if flags.Changed("checker") {
		cfg.Checker = opts.Checker
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
	if flags.Changed("processes") {
		cfg.Processes = opts.Processes
	}
	if flags.Changed("scratch-dir") {
		cfg.ScratchDir = opts.ScratchDir
	}
	if flags.Changed("amqp-url") {
		cfg.AmqpURL = opts.AmqpURL
	}
	if flags.Changed("amqp-queue") {
		cfg.AmqpQueue = opts.AmqpQueue
	}
}

// openResponder connects to the broker when publishing is configured. The
// returned close function is always safe to call.
func openResponder(cfg *config.Config, log *zap.SugaredLogger) (responder.Responder, func(), error) {
	if cfg.AmqpURL == "" {
		return nil, func() {}, nil
	}

	conn, err := rabbitmq.NewRabbitMqConnection(cfg.AmqpURL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := rabbitmq.NewRabbitMQChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	resp, err := responder.NewResponder(ch, cfg.AmqpQueue, constants.RabbitMQPublishChanSize)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	log.Infof("Publishing results of run %s to queue %s", resp.RunID(), cfg.AmqpQueue)

	return resp, func() {
		if err := resp.Close(); err != nil {
			log.Errorf("Failed to publish results: %s", err)
		}
		if err := ch.Close(); err != nil {
			log.Warnf("Failed to close RabbitMQ channel: %s", err)
		}
		if err := conn.Close(); err != nil {
			log.Warnf("Failed to close RabbitMQ connection: %s", err)
		}
	}, nil
}

// Execute runs the root command with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	code := GetExitCode(err)
	if err != nil && code != constants.ExitRejected {
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	return code
}
