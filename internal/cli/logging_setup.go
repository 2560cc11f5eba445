package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/logging"
	"github.com/rshade/entitydeck/internal/metrics"
)

type recorderKey struct{}

// withRecorder stores the metrics recorder of the running command.
func withRecorder(ctx context.Context, rec *metrics.Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

// recorderFrom returns the recorder stored by withRecorder. A nil recorder is valid and
// records nothing.
func recorderFrom(ctx context.Context) *metrics.Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*metrics.Recorder)
	return rec
}

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) *logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	// Ensure log directory exists after all overrides have been applied.
	if loggingCfg.File != "" {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	// The browser owns the terminal. Without a log file its logs are dropped.
	lc := loggingCfg.ToLoggingConfig()
	if loggingCfg.File == "" && isBrowseCommand(cmd) && !debug {
		lc.Output = logging.OutputDiscard
	}

	result := logging.NewLoggerWithPath(lc)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// isBrowseCommand reports whether cmd runs the full-screen browser.
func isBrowseCommand(cmd *cobra.Command) bool {
	return cmd.Name() == "browse" || !cmd.HasParent()
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
