package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghodss/yaml"
	"github.com/relloyd/geniepipe/logger"
)

func newActionLogger(level string, stackDumpOnPanic bool) logger.Logger {
	if level == "" {
		level = "info"
	}
	return logger.NewLogger("geniepipe", level, stackDumpOnPanic)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(log logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-chanOS:
			log.Warn("received ", sig, ", cancelling run")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(chanOS)
	}()
	return ctx, cancel
}

// outputRunConfig writes cfg to w as YAML or JSON.
func outputRunConfig(cfg interface{}, w io.Writer, yamlOrJson string) error {
	var data []byte
	var err error
	switch yamlOrJson {
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	default:
		return fmt.Errorf("unsupported output format %q", yamlOrJson)
	}
	if err != nil {
		return fmt.Errorf("unable to marshal the run config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func execStatements(ctx context.Context, printLogFn func(msg string), execFn func(ctx context.Context) error) error {
	printLogFn("Executing SQL...")
	if err := execFn(ctx); err != nil {
		return err
	}
	printLogFn("SQL succeeded without error.")
	return nil
}

func getPrintLogFunc(log logger.Logger, w io.Writer, useStdOut bool) func(msg string) {
	return func(msg string) {
		if useStdOut {
			_, _ = fmt.Fprintln(w, msg)
		} else {
			log.Info(msg)
		}
	}
}
