package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/sourcegraph/conc/pool"

	"github.com/RyanBlaney/brainwave-monitor/configs"
	"github.com/RyanBlaney/brainwave-monitor/internal/server"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string // Monitor configuration file (optional)
	OutputFile   string
	OutputFormat string
	SourceType   string
	Mode         string
	Addr         string
	Seed         int64
	Timeout      time.Duration // assess only: how long to wait for a full window
	Verbose      bool
	LogLevel     string

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// MonitorApp handles the monitor application lifecycle
type MonitorApp struct {
	ctx     *Context
	config  *configs.Config
	factory *source.Factory
	logger  logging.Logger
}

// NewMonitorApp creates a monitor from the viper backed configuration
func NewMonitorApp(ctx *Context) (*MonitorApp, error) {
	baseConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}
	return NewMonitorAppWithConfig(ctx, baseConfig, nil)
}

// NewMonitorAppWithConfig creates a monitor on top of an explicit base
// configuration. A nil factory builds the sources named by the configuration.
func NewMonitorAppWithConfig(ctx *Context, baseConfig *configs.Config, factory *source.Factory) (*MonitorApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := loadAndMergeConfig(ctx, baseConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	if factory == nil {
		factory, err = NewSourceFactory(config, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Monitor application initialized", logging.Fields{
		"config_file":   ctx.ConfigFile,
		"source_type":   config.SourceType(),
		"sample_rate":   config.EEG.SampleRate,
		"window_size":   config.WindowSize(),
		"output_format": ctx.OutputFormat,
	})

	return &MonitorApp{
		ctx:     ctx,
		config:  config,
		factory: factory,
		logger:  logger,
	}, nil
}

// Config returns the effective configuration
func (app *MonitorApp) Config() *configs.Config {
	return app.config
}

// Serve opens the source and runs ingestion and the HTTP endpoint until ctx
// is done or either of them stops.
func (app *MonitorApp) Serve(ctx context.Context) error {
	pipeline, err := BuildPipeline(app.config, app.factory, app.logger)
	if err != nil {
		return err
	}

	if err := pipeline.Source.Open(ctx); err != nil {
		return fmt.Errorf("failed to open %s source: %w", pipeline.Source.Type(), err)
	}
	defer pipeline.Source.Close()

	var observers []server.AssessmentObserver
	reporter := app.metricsReporter()
	if reporter != nil {
		observers = append(observers, reporter)
	}

	srv := server.NewServer(app.serverConfig(), pipeline.Assessor, pipeline.Ingestor.Stats, app.logger, observers...)

	app.logger.Info("Starting brainwave monitor", logging.Fields{
		"source_type": pipeline.Source.Type(),
		"addr":        app.config.Server.Addr,
		"window_size": pipeline.Window.Capacity(),
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := pool.New().WithContext(runCtx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		defer cancel()
		return pipeline.Ingestor.Run(ctx)
	})
	p.Go(func(ctx context.Context) error {
		defer cancel()
		return srv.Run(ctx)
	})
	if reporter != nil {
		p.Go(func(ctx context.Context) error {
			reporter.run(ctx, pipeline.Ingestor.Stats)
			return nil
		})
	}

	err = p.Wait()
	app.logger.Info("Brainwave monitor stopped", logging.Fields{
		"samples_ingested": pipeline.Ingestor.Stats().SamplesIngested,
	})
	return err
}

// Assess fills one window from the configured source and assesses it
func (app *MonitorApp) Assess(ctx context.Context) (eeg.Assessment, *Pipeline, error) {
	pipeline, err := BuildPipeline(app.config, app.factory, app.logger)
	if err != nil {
		return eeg.Assessment{}, nil, err
	}

	if err := pipeline.Source.Open(ctx); err != nil {
		return eeg.Assessment{}, nil, fmt.Errorf("failed to open %s source: %w", pipeline.Source.Type(), err)
	}
	defer pipeline.Source.Close()

	timeout := app.fillTimeout()
	fillCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- pipeline.Ingestor.Run(fillCtx) }()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	timedOut := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("timed out after %v waiting for a full window (%d/%d samples)",
			timeout, pipeline.Window.Len(), pipeline.Window.Capacity())
	}

	running := true
	for !pipeline.Window.IsFull() {
		select {
		case <-fillCtx.Done():
			if running {
				<-done
				running = false
			}
			if pipeline.Window.IsFull() {
				break
			}
			return eeg.Assessment{}, pipeline, timedOut()
		case err := <-done:
			running = false
			if pipeline.Window.IsFull() {
				break
			}
			if fillCtx.Err() != nil {
				return eeg.Assessment{}, pipeline, timedOut()
			}
			if err == nil {
				err = fmt.Errorf("source stopped after %d/%d samples", pipeline.Window.Len(), pipeline.Window.Capacity())
			}
			return eeg.Assessment{}, pipeline, err
		case <-ticker.C:
		}
	}

	cancel()
	if running {
		<-done
	}

	assessment := pipeline.Assessor.GetAssessment()
	if reporter := app.metricsReporter(); reporter != nil {
		reporter.ObserveAssessment(assessment)
		reporter.reportIngest(pipeline.Ingestor.Stats())
	}

	return assessment, pipeline, nil
}

// RunAssess assesses one window and writes it through the output formatter
func (app *MonitorApp) RunAssess(ctx context.Context) error {
	assessment, pipeline, err := app.Assess(ctx)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}
	return app.outputResults(assessment, pipeline)
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	if ctx.Logger != nil {
		return ctx.Logger
	}

	switch strings.ToLower(ctx.LogLevel) {
	case "debug":
		logging.SetLevel(logging.DebugLevel)
	case "warn", "warning":
		logging.SetLevel(logging.WarnLevel)
	case "error":
		logging.SetLevel(logging.ErrorLevel)
	case "info":
		logging.SetLevel(logging.InfoLevel)
	}

	return logging.NewDefaultLogger()
}

// loadAndMergeConfig loads the optional monitor file and merges CLI flags
func loadAndMergeConfig(ctx *Context, baseConfig *configs.Config) (*configs.Config, error) {
	config := baseConfig
	if ctx.ConfigFile != "" {
		fileConfig, err := loadMonitorConfigFromFile(ctx.ConfigFile, baseConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load monitor configuration: %w", err)
		}
		config = fileConfig
	}

	merged := mergeMonitorConfig(config, ctx)

	if err := configs.ValidateConfig(merged); err != nil {
		return nil, fmt.Errorf("invalid monitor configuration: %w", err)
	}

	return merged, nil
}

func (app *MonitorApp) serverConfig() *server.Config {
	config := server.DefaultConfig()
	config.Addr = app.config.Server.Addr
	config.ReadTimeout = app.config.Server.ReadTimeout
	config.WriteTimeout = app.config.Server.WriteTimeout
	config.ShutdownTimeout = app.config.Server.ShutdownTimeout
	config.EnableMetrics = app.config.Metrics.Prometheus
	return config
}

func (app *MonitorApp) metricsReporter() *metricsReporter {
	if !app.config.Metrics.Enabled {
		return nil
	}
	return newMetricsReporter(app.config.Metrics, app.config.SourceType(), app.logger)
}

// fillTimeout allows twice the window duration plus the stream resolve time
func (app *MonitorApp) fillTimeout() time.Duration {
	if app.ctx.Timeout > 0 {
		return app.ctx.Timeout
	}
	window := time.Duration(app.config.EEG.WindowSeconds) * time.Second
	return 2*window + app.config.Source.Hardware.ResolveTimeout
}

// outputResults handles all result output
func (app *MonitorApp) outputResults(assessment eeg.Assessment, pipeline *Pipeline) error {
	n, capacity := pipeline.Assessor.WindowFill()
	stats := pipeline.Ingestor.Stats()

	outputData := map[string]any{
		"assessment": assessment,
		"window": map[string]any{
			"samples":     n,
			"capacity":    capacity,
			"sample_rate": app.config.EEG.SampleRate,
		},
		"source": map[string]any{
			"type":             stats.Type,
			"samples_ingested": stats.SamplesIngested,
			"pull_errors":      stats.PullErrors,
		},
	}

	// Create formatter
	var formatter output.Formatter
	switch app.ctx.OutputFormat {
	case "json":
		formatter = &output.JSONFormatter{}
	case "yaml":
		formatter = &output.YAMLFormatter{}
	case "csv":
		formatter = &output.CSVFormatter{}
	case "table":
		formatter = &output.TableFormatter{}
	default:
		formatter = &output.JSONFormatter{}
	}

	formattedData, err := formatter.Format(outputData, true)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

func (app *MonitorApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Info("Assessment written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})
	return nil
}
