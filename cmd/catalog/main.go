package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"device-catalog/internal/collector"
	"device-catalog/internal/config"
	"device-catalog/internal/logging"
	"device-catalog/internal/model"
	"device-catalog/internal/probe"
	"device-catalog/internal/repository"
	apperrors "device-catalog/pkg/errors"
)

const appName = "catalog"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A local .env seeds the environment before flags and config read it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	app := newApp(os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args); err != nil {
		exitWith(err)
	}
}

// newApp builds the root command. The reader and writer carry the
// interactive prompt and the user-facing output; logs go to stderr.
func newApp(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    appName,
		Usage:   "catalogue this machine into a CSV device store",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			storeFlag(),
			&cli.BoolFlag{
				Name:    "replace",
				Usage:   "overwrite the stored record when this machine is already catalogued",
				Sources: cli.EnvVars("CATALOG_REPLACE"),
			},
			&cli.DurationFlag{
				Name:    "speedtest-timeout",
				Usage:   "deadline for the internet throughput measurement",
				Sources: cli.EnvVars("SPEEDTEST_TIMEOUT"),
				Value:   config.DefaultSpeedtestTimeout,
			},
			logLevelFlag(),
			prettyFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runCatalog(ctx, cmd, in, out)
		},
		Commands: []*cli.Command{
			listCommand(in, out),
		},
	}
}

func listCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print every catalogued device record",
		Flags: []cli.Flag{
			storeFlag(),
			logLevelFlag(),
			prettyFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runList(ctx, cmd, in, out)
		},
	}
}

// runCatalog probes the machine and appends the snapshot to the store.
// A duplicate MAC address refuses the write unless --replace is set.
func runCatalog(ctx context.Context, cmd *cli.Command, in io.Reader, out io.Writer) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	storePath, err := resolveStorePath(cmd.String("store"), in, out)
	if err != nil {
		return err
	}
	cfg.Store.Path = storePath
	cfg.Store.ReplaceOnConflict = cmd.Bool("replace")

	prober := probe.NewSystemProber(cfg.Collector, log)
	coll := collector.NewSnapshotCollector(prober, log)
	repo := repository.NewCSVRepository(cfg.Store.Path, log)

	record, err := coll.Collect(ctx)
	if err != nil {
		return err
	}

	if err := repo.Upsert(ctx, *record); err != nil {
		if !errors.Is(err, repository.ErrDuplicateMAC) || !cfg.Store.ReplaceOnConflict {
			return storeFailure(cfg.Store.Path, *record, err)
		}

		log.Info().Str("mac_address", record.MACAddress).Msg("Machine already catalogued, replacing record")
		if err := repo.Replace(ctx, *record); err != nil {
			return storeFailure(cfg.Store.Path, *record, err)
		}
	}

	fmt.Fprintf(out, "Data successfully written to %s\n", cfg.Store.Path)
	return nil
}

// runList prints the catalogued records in store order.
func runList(ctx context.Context, cmd *cli.Command, in io.Reader, out io.Writer) error {
	_, log, err := setup(cmd)
	if err != nil {
		return err
	}

	storePath, err := resolveStorePath(cmd.String("store"), in, out)
	if err != nil {
		return err
	}

	repo := repository.NewCSVRepository(storePath, log)
	records, err := repo.List(ctx)
	if err != nil {
		return storeFailure(storePath, model.DeviceRecord{}, err)
	}

	return printRecords(out, records)
}

// setup loads the configuration, applies the flag overrides and
// configures logging.
func setup(cmd *cli.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Logger{}, apperrors.WrapError(err, "failed to load configuration")
	}

	cfg.Logging.Level = cmd.String("log-level")
	cfg.Logging.Pretty = cmd.Bool("pretty")
	// The list command does not define the speedtest flag.
	if d := cmd.Duration("speedtest-timeout"); d > 0 {
		cfg.Collector.SpeedtestTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Logger{}, apperrors.WrapError(err, "invalid configuration")
	}

	log, err := logging.Setup(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	if err != nil {
		return nil, zerolog.Logger{}, apperrors.WrapError(err, "failed to configure logging")
	}

	return cfg, log, nil
}

// resolveStorePath returns the store path from the flag, falling back
// to an interactive prompt. Blank answers re-prompt.
func resolveStorePath(flagValue string, in io.Reader, out io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Please enter the csv file path:")
		line, err := reader.ReadString('\n')
		if path := strings.TrimSpace(line); path != "" {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("no store path provided")
		}
	}
}

func printRecords(out io.Writer, records []model.DeviceRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "<empty>")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(model.Fields(), "\t"))
	for _, record := range records {
		fmt.Fprintln(tw, strings.Join(record.Values(), "\t"))
	}
	return tw.Flush()
}

// storeFailure maps raw store errors onto the failure taxonomy the
// exit path reports from.
func storeFailure(path string, record model.DeviceRecord, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateMAC):
		return apperrors.DuplicateRecordError(record.MACAddress)
	case errors.Is(err, repository.ErrPermissionDenied):
		return apperrors.PermissionDeniedError(path, err)
	case errors.Is(err, repository.ErrRecordNotFound):
		return apperrors.RecordNotFoundError(record.MACAddress)
	case errors.Is(err, repository.ErrInvalidRecord):
		return apperrors.InvalidRecordError(err.Error())
	default:
		return apperrors.UnknownError(err.Error(), err)
	}
}

// failureReason renders the human readable line printed when a run
// fails.
func failureReason(appErr *apperrors.AppError) string {
	switch appErr.Code {
	case apperrors.ErrorCodeDuplicateRecord:
		return "This machine has already been catalogued"
	case apperrors.ErrorCodeUnsupportedPlatform:
		return "This program only supports Linux and Windows."
	case apperrors.ErrorCodePermissionDenied:
		if path, ok := appErr.Details["path"].(string); ok && path != "" {
			return "You do not have the permission to read or write this file: " + path
		}
		return "You do not have the permission to read or write this file"
	case apperrors.ErrorCodeProbeUnavailable, apperrors.ErrorCodeProbeTimeout:
		return "Could not catalogue this machine: " + appErr.Message
	default:
		return appErr.Message
	}
}

// exitWith prints the failure reason and exits with the code of the
// failure class.
func exitWith(err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.UnknownError(err.Error(), err)
	}

	zlog.Error().
		Str("error_code", string(appErr.Code)).
		Str("run_id", appErr.RunID).
		Msg(appErr.Message)
	zlog.Debug().Str("stack_trace", appErr.StackTrace).Msg("Failure stack trace")

	fmt.Println(failureReason(appErr))
	os.Exit(appErr.ExitCode())
}

func storeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "store",
		Aliases: []string{"s"},
		Usage:   "path to the CSV store file (prompted for when omitted)",
		Sources: cli.EnvVars("CATALOG_STORE"),
	}
}

func logLevelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
		Value:   config.DefaultLogLevel,
	}
}

func prettyFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "pretty",
		Usage:   "human readable log output instead of JSON",
		Sources: cli.EnvVars("CATALOG_PRETTY"),
	}
}
