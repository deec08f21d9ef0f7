package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/adapter"
	"github.com/justapithecus/seam/adapter/redis"
	"github.com/justapithecus/seam/adapter/webhook"
	"github.com/justapithecus/seam/cli/config"
	"github.com/justapithecus/seam/journal"
	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/runtime"
	"github.com/justapithecus/seam/sink"
	"github.com/justapithecus/seam/types"
)

// sinkChoice captures the resolved sink configuration.
type sinkChoice struct {
	backend   string
	path      string
	region    string
	endpoint  string
	pathStyle bool
}

// notifyChoice captures the resolved notification configuration.
type notifyChoice struct {
	notifyType string
	url        string
	channel    string
	headers    map[string]string
	timeout    time.Duration
	retries    int
}

// DecodeCommand returns the decode command.
// Decode scans a directory of frame images, reconstructs the transmitted
// file, and reports the outcome through the process exit code.
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Reconstruct a file from a directory of captured frame images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory of captured frame images (required unless set in config)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Name for the reconstructed file (default: decoded.bin)",
			},
			ConfigFlag,
			&cli.StringFlag{
				Name:  "sink",
				Usage: "Delivery backend for the reconstructed file: fs, s3, memory",
				Value: "fs",
			},
			&cli.StringFlag{
				Name:  "sink-path",
				Usage: "Sink location: a directory for fs, bucket[/prefix] for s3",
			},
			&cli.StringFlag{
				Name:  "s3-region",
				Usage: "AWS region for the s3 sink",
			},
			&cli.StringFlag{
				Name:  "s3-endpoint",
				Usage: "Custom S3 endpoint URL (R2, MinIO)",
			},
			&cli.BoolFlag{
				Name:  "s3-path-style",
				Usage: "Use path-style S3 addressing (required by most S3-compatible providers)",
			},
			&cli.StringFlag{
				Name:  "journal",
				Usage: "Write a per-frame scan journal to this path",
			},
			&cli.BoolFlag{
				Name:  "journal-compress",
				Usage: "LZ4-compress the scan journal",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a JSON decode report to this path ('-' for stderr)",
			},
			&cli.StringFlag{
				Name:  "notify",
				Usage: "Publish a decode_completed event: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "notify-url",
				Usage: "Webhook endpoint or Redis connection URL",
			},
			&cli.StringFlag{
				Name:  "notify-channel",
				Usage: "Redis pub/sub channel (default: seam:decode_completed)",
			},
			&cli.StringSliceFlag{
				Name:  "notify-header",
				Usage: "Custom webhook header as key=value (repeatable)",
			},
			&cli.DurationFlag{
				Name:  "notify-timeout",
				Usage: "Per-publish timeout",
				Value: 10 * time.Second,
			},
			&cli.IntFlag{
				Name:  "notify-retries",
				Usage: "Publish retry attempts",
				Value: 3,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the result summary on stdout",
			},
		},
		Action: decodeAction,
	}
}

func decodeAction(c *cli.Context) error {
	cfg, err := loadSeamConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeError)
	}

	dir := resolveString(c, "dir", configVal(cfg, func(cc *config.Config) string { return cc.Dir }))
	if dir == "" {
		return cli.Exit("--dir is required (or set dir in seam.yaml)", runtime.ExitCodeError)
	}

	out := resolveString(c, "out", configVal(cfg, func(cc *config.Config) string { return cc.Out }))
	if out == "" {
		out = runtime.DefaultOutputName
	}

	sc := parseSinkConfigWithPrecedence(c, cfg)
	if err := validateSinkConfig(sc); err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeError)
	}

	snk, err := buildSink(sc)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sink setup failed: %v", err), runtime.ExitCodeError)
	}

	var jw *journal.Writer
	journalPath := resolveString(c, "journal", configVal(cfg, func(cc *config.Config) string { return cc.Journal }))
	if journalPath != "" {
		compress := resolveBool(c, "journal-compress", cfg != nil && cfg.JournalCompress)
		jw, err = journal.Create(journalPath, dir, compress)
		if err != nil {
			return cli.Exit(fmt.Sprintf("journal create failed: %v", err), runtime.ExitCodeError)
		}
		defer func() {
			if err := jw.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: journal close failed: %v\n", err)
			}
		}()
	}

	notifyType := resolveString(c, "notify", configVal(cfg, func(cc *config.Config) string { return cc.Notify.Type }))
	warnIgnoredNotifyFlags(c, notifyType)

	var ad adapter.Adapter
	if notifyType != "" {
		nc, err := parseNotifyConfigWithPrecedence(c, cfg, notifyType)
		if err != nil {
			return cli.Exit(err.Error(), runtime.ExitCodeError)
		}
		ad, err = buildNotifyAdapter(nc)
		if err != nil {
			return cli.Exit(fmt.Sprintf("notify setup failed: %v", err), runtime.ExitCodeError)
		}
		defer func() { _ = ad.Close() }()
	}

	collector := metrics.NewCollector(dir, sc.backend, out)

	orchestrator, err := runtime.NewDecodeOrchestrator(&runtime.DecodeConfig{
		ScanMeta:  &types.ScanMeta{Dir: dir, Output: out},
		Journal:   jw,
		Sink:      snk,
		Collector: collector,
		Adapter:   ad,
	})
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeError)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := orchestrator.Execute(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("decode failed: %v", err), runtime.ExitCodeError)
	}

	exitCode := runtime.ExitCodeFor(result.Outcome.Status)

	quiet := resolveBool(c, "quiet", cfg != nil && cfg.Quiet)
	if !quiet {
		printDecodeResult(result)
	}

	if reportPath := c.String("report"); reportPath != "" {
		report := runtime.BuildScanReport(result, collector.Snapshot(), exitCode)
		if err := runtime.WriteScanReport(report, reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	return cli.Exit("", exitCode)
}

// loadSeamConfig loads the config file named by --config. No config file
// is not an error; decode runs on flags alone.
func loadSeamConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil
	}
	return config.Load(path)
}

// resolveString resolves a flag value with precedence:
// CLI flag (explicitly set) > config file > urfave default.
func resolveString(c *cli.Context, name, configFallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if configFallback != "" {
		return configFallback
	}
	return c.String(name)
}

// resolveInt resolves an int flag with the same precedence as
// resolveString. A zero config fallback means "not set in config".
func resolveInt(c *cli.Context, name string, configFallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if configFallback != 0 {
		return configFallback
	}
	return c.Int(name)
}

// resolveBool resolves a bool flag. A true config value wins over the
// flag default; an explicitly set flag wins over everything.
func resolveBool(c *cli.Context, name string, configFallback bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	if configFallback {
		return true
	}
	return c.Bool(name)
}

// resolveDuration resolves a duration flag. A zero config fallback means
// "not set in config".
func resolveDuration(c *cli.Context, name string, configFallback time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if configFallback > 0 {
		return configFallback
	}
	return c.Duration(name)
}

// configVal safely extracts a string from a possibly nil config.
func configVal(cfg *config.Config, get func(*config.Config) string) string {
	if cfg == nil {
		return ""
	}
	return get(cfg)
}

// parseSinkConfigWithPrecedence resolves the sink flags against the
// config file. An fs sink with no path writes to the working directory.
func parseSinkConfigWithPrecedence(c *cli.Context, cfg *config.Config) sinkChoice {
	sc := sinkChoice{
		backend:   resolveString(c, "sink", configVal(cfg, func(cc *config.Config) string { return cc.Sink.Backend })),
		path:      resolveString(c, "sink-path", configVal(cfg, func(cc *config.Config) string { return cc.Sink.Path })),
		region:    resolveString(c, "s3-region", configVal(cfg, func(cc *config.Config) string { return cc.Sink.Region })),
		endpoint:  resolveString(c, "s3-endpoint", configVal(cfg, func(cc *config.Config) string { return cc.Sink.Endpoint })),
		pathStyle: resolveBool(c, "s3-path-style", cfg != nil && cfg.Sink.S3PathStyle),
	}
	if sc.backend == sink.BackendFS && sc.path == "" {
		sc.path = "."
	}
	return sc
}

// validateSinkConfig checks the sink choice before any decoding starts,
// so a doomed delivery fails fast instead of after a full scan.
func validateSinkConfig(sc sinkChoice) error {
	switch sc.backend {
	case sink.BackendFS:
		path, err := homedir.Expand(sc.path)
		if err != nil {
			return fmt.Errorf("cannot resolve sink path %q: %w", sc.path, err)
		}
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("sink path %q does not exist. Create it first: mkdir -p %s", sc.path, sc.path)
		}
		if err != nil {
			return fmt.Errorf("cannot access sink path %q: %w", sc.path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("sink path %q is not a directory", sc.path)
		}
		return nil
	case sink.BackendS3:
		if sc.path == "" {
			return fmt.Errorf("--sink-path required for the s3 sink. Format: bucket-name or bucket-name/prefix")
		}
		return nil
	case sink.BackendMemory:
		return nil
	default:
		return fmt.Errorf("invalid --sink %q. Valid options: fs, s3, memory", sc.backend)
	}
}

// buildSink constructs the delivery sink from a validated choice.
func buildSink(sc sinkChoice) (sink.Sink, error) {
	if sc.backend == sink.BackendFS {
		expanded, err := homedir.Expand(sc.path)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve sink path %q: %w", sc.path, err)
		}
		sc.path = expanded
	}
	return sink.New(sc.backend, sc.path, sink.S3Config{
		Region:       sc.region,
		Endpoint:     sc.endpoint,
		UsePathStyle: sc.pathStyle,
	})
}

// parseNotifyConfigWithPrecedence resolves notification settings with
// CLI > config > default precedence. Config headers merge under CLI
// headers; a CLI header overrides the config value for the same key.
func parseNotifyConfigWithPrecedence(c *cli.Context, cfg *config.Config, notifyType string) (*notifyChoice, error) {
	nc := &notifyChoice{
		notifyType: notifyType,
		url:        resolveString(c, "notify-url", configVal(cfg, func(cc *config.Config) string { return cc.Notify.URL })),
		channel:    resolveString(c, "notify-channel", configVal(cfg, func(cc *config.Config) string { return cc.Notify.Channel })),
		headers:    make(map[string]string),
	}

	var cfgTimeout time.Duration
	if cfg != nil {
		cfgTimeout = cfg.Notify.Timeout.Duration
	}
	nc.timeout = resolveDuration(c, "notify-timeout", cfgTimeout)

	// Retries distinguishes an explicit zero from "not set", so the
	// config field is a pointer rather than a plain int.
	switch {
	case c.IsSet("notify-retries"):
		nc.retries = c.Int("notify-retries")
	case cfg != nil && cfg.Notify.Retries != nil:
		nc.retries = *cfg.Notify.Retries
	default:
		nc.retries = c.Int("notify-retries")
	}

	if cfg != nil {
		for k, v := range cfg.Notify.Headers {
			nc.headers[k] = v
		}
	}
	for _, h := range c.StringSlice("notify-header") {
		key, val, ok := strings.Cut(h, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --notify-header %q: expected key=value format", h)
		}
		nc.headers[key] = val
	}

	switch notifyType {
	case "webhook":
		if nc.url == "" {
			return nil, fmt.Errorf("--notify-url is required when --notify=webhook")
		}
	case "redis":
		if nc.url == "" {
			return nil, fmt.Errorf("--notify-url is required when --notify=redis")
		}
	default:
		return nil, fmt.Errorf("unknown notify type %q. Valid options: webhook, redis", notifyType)
	}

	return nc, nil
}

// buildNotifyAdapter constructs the adapter from a validated choice.
func buildNotifyAdapter(nc *notifyChoice) (adapter.Adapter, error) {
	switch nc.notifyType {
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     nc.url,
			Headers: nc.headers,
			Timeout: nc.timeout,
			Retries: nc.retries,
		})
	case "redis":
		return redis.New(redis.Config{
			URL:     nc.url,
			Channel: nc.channel,
			Timeout: nc.timeout,
			Retries: nc.retries,
		})
	default:
		return nil, fmt.Errorf("unknown notify type %q", nc.notifyType)
	}
}

// warnIgnoredNotifyFlags reports notify flags that have no effect with
// the selected type. Warnings only; the decode proceeds.
func warnIgnoredNotifyFlags(c *cli.Context, notifyType string) {
	if notifyType == "" {
		for _, name := range []string{"notify-url", "notify-channel", "notify-header"} {
			if c.IsSet(name) {
				fmt.Fprintf(os.Stderr, "Warning: --%s is ignored without --notify\n", name)
			}
		}
		return
	}
	if notifyType == "webhook" && c.IsSet("notify-channel") {
		fmt.Fprintf(os.Stderr, "Warning: --notify-channel is ignored for webhook notifications\n")
	}
	if notifyType == "redis" && c.IsSet("notify-header") {
		fmt.Fprintf(os.Stderr, "Warning: --notify-header is ignored for redis notifications\n")
	}
}

func printDecodeResult(result *runtime.DecodeResult) {
	fmt.Printf("\n=== Decode Complete ===\n")
	fmt.Printf("Directory: %s\n", result.ScanMeta.Dir)
	fmt.Printf("Outcome:   %s\n", result.Outcome.Status)
	if result.Outcome.Emitted() {
		fmt.Printf("Output:    %s (%d bytes)\n", result.ScanMeta.Output, result.OutputBytes)
	}
	if result.Meta != nil {
		fmt.Printf("Segments:  %d of %d\n", result.Stats.SegmentsAccepted, result.Meta.SegmentCount)
	}
	if len(result.Outcome.MissingIDs) > 0 {
		fmt.Printf("Missing:   %s\n", formatMissingIDs(result.Outcome.MissingIDs))
	}
	fmt.Printf("Frames:    %d scanned, %d rejected, %d ignored\n",
		result.Stats.FramesScanned, result.Stats.FramesRejected, result.Stats.FramesIgnored)
	fmt.Printf("Duration:  %s\n", result.Duration.Round(time.Millisecond))
	if result.Outcome.Status != types.OutcomeSuccess && result.Outcome.Message != "" {
		fmt.Printf("Reason:    %s\n", result.Outcome.Message)
	}
}

// formatMissingIDs renders missing segment ids, elided past the first
// ten so a sparse transfer does not flood the terminal.
func formatMissingIDs(ids []uint64) string {
	const max = 10
	parts := make([]string, 0, len(ids))
	for i, id := range ids {
		if i == max {
			parts = append(parts, fmt.Sprintf("... (%d total)", len(ids)))
			break
		}
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ", ")
}
