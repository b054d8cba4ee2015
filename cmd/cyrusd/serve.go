package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	cyrus "github.com/ceedaragents/cyrus-sub010"
	"github.com/ceedaragents/cyrus-sub010/bus"
	"github.com/ceedaragents/cyrus-sub010/classify"
	anthropicclassify "github.com/ceedaragents/cyrus-sub010/classify/anthropic"
	openaiclassify "github.com/ceedaragents/cyrus-sub010/classify/openai"
	"github.com/ceedaragents/cyrus-sub010/config"
	"github.com/ceedaragents/cyrus-sub010/engine"
	"github.com/ceedaragents/cyrus-sub010/logging"
	"github.com/ceedaragents/cyrus-sub010/runner"
	"github.com/ceedaragents/cyrus-sub010/sink"
	"github.com/ceedaragents/cyrus-sub010/team"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Read platform payloads as NDJSON on stdin and orchestrate sessions",
		Long: `serve reads one JSON payload per line from stdin, routes each through
the message bus, and prints agent activity to stdout. Payloads arriving on
stdin are treated as trusted; webhook signature checks belong to the HTTP
front end that feeds this process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	level := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.NewSlogLoggerTo(os.Stderr, level, cfg.Logging.Format, cfg.Logging.AddSource)

	var telemetry *logging.SessionLogger
	if sa, ok := logger.(*logging.SlogAdapter); ok {
		telemetry = logging.NewSessionLogger(sa.Logger)
	}

	r := buildRunner(cfg)
	c := cyrus.New(func(o *cyrus.Options) {
		o.Runner = r
		o.Sink = sink.NewWriter(cmd.OutOrStdout())
		o.Logger = logger
		o.EngineConfig = engine.Config{
			MaxConcurrentInvocations: cfg.Runner.MaxConcurrent,
			InvocationTimeout:        cfg.Runner.Timeout,
			AllowedTools:             cfg.Runner.AllowedTools,
			HistoryLimit:             cfg.Session.HistoryLimit,
		}
		o.EngineOptions = []func(eo *engine.Options){
			func(eo *engine.Options) {
				eo.Classifier = buildClassifier(cfg)
				eo.Scorer = team.NewScorer(func(so *team.ScorerOptions) {
					so.Threshold = cfg.Team.Threshold
					if len(cfg.Team.Keywords) > 0 {
						so.Keywords = cfg.Team.Keywords
					}
				})
				eo.Telemetry = telemetry
			},
		}
	})
	defer c.Close()

	logger.Info("cyrusd serving",
		"runner", r.Name(), "classifier", cfg.Classifier.Provider, "team_threshold", cfg.Team.Threshold)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			logger.Warn("skipping malformed payload line", "error", err)
			continue
		}
		if err := c.Dispatch(cmd.Context(), raw, bus.Context{VerificationMode: bus.VerifiedTrusted}); err != nil {
			logger.Warn("payload not dispatched", "error", err)
		}
		c.EvictIdle(cfg.Session.EvictAfter)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	// Stdin is done; wait for in-flight invocations before the sink drains.
	if err := c.Drain(cmd.Context()); err != nil {
		logger.Warn("shutdown before all invocations finished", "error", err)
	}
	return nil
}

// buildClassifier selects the work classifier from configuration. The LLM
// providers pick up credentials from their SDK environment variables.
func buildClassifier(cfg *config.Config) classify.Classifier {
	switch cfg.Classifier.Provider {
	case "anthropic":
		return anthropicclassify.NewClassifier(func(o *anthropicclassify.Options) {
			if cfg.Classifier.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Classifier.Model)
			}
		})
	case "openai":
		return openaiclassify.NewClassifier(func(o *openaiclassify.Options) {
			if cfg.Classifier.Model != "" {
				o.Model = cfg.Classifier.Model
			}
		})
	default:
		return classify.NewKeywordClassifier()
	}
}

func buildRunner(cfg *config.Config) *runner.Process {
	var protocol runner.Protocol
	switch cfg.Runner.Tool {
	case "codex":
		protocol = runner.NewCodexProtocol()
	default:
		protocol = runner.NewClaudeProtocol()
	}
	return runner.NewProcess(protocol, func(o *runner.Options) {
		o.Binary = cfg.Runner.Binary
		o.DefaultTimeout = cfg.Runner.Timeout
		o.GracePeriod = cfg.Runner.GracePeriod
	})
}
