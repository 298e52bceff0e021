// cmd/fixturebot/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhzfoot/fixturebot/internal/config"
	"github.com/bhzfoot/fixturebot/internal/extract"
	"github.com/bhzfoot/fixturebot/internal/fetch"
	"github.com/bhzfoot/fixturebot/internal/monitoring"
	"github.com/bhzfoot/fixturebot/internal/normalize"
	"github.com/bhzfoot/fixturebot/internal/output"
	"github.com/bhzfoot/fixturebot/internal/pipeline"
	"github.com/bhzfoot/fixturebot/internal/sink"
	"github.com/bhzfoot/fixturebot/internal/source"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "configs/fixturebot.yaml", "configuration file")
		dryRun      = flag.Bool("dry-run", false, "collect and export fixtures without posting them")
		verbose     = flag.Bool("v", false, "debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("fixturebot %s (built %s)\n", version, buildTime)
		return
	}

	if err := run(*configFile, *dryRun, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "fixturebot: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, dryRun, verbose bool) error {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dryRun {
		cfg.DryRun = true
	}

	level := utils.ParseLogLevel(cfg.LogLevel)
	if verbose {
		level = utils.DebugLevel
	}
	logger := utils.NewLoggerWithLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()
	if cfg.Metrics.Enabled {
		server := monitoring.NewServer(cfg.Metrics.ListenAddress, metrics, logger)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Stop(shutdownCtx)
		}()
	}

	loc := cfg.Location()
	resolver := normalize.NewDateTimeResolver(loc)
	aliases := config.DefaultAliases()
	for alias, canonical := range cfg.Aliases {
		aliases[alias] = canonical
	}
	canon := normalize.NewCanonicalizer(aliases)
	normalizer := normalize.NewNormalizer(canon, resolver, logger)

	from, to := cfg.WindowBounds(time.Now().In(loc))
	window := normalize.NewWindow(from, to, loc)
	logger.Infof("window %s to %s, %d teams",
		from.Format("2006-01-02"), to.Format("2006-01-02"), len(cfg.Teams))

	sources, err := buildSources(cfg, metrics, logger)
	if err != nil {
		return err
	}

	orch := pipeline.New(pipeline.Options{
		Sources:    sources,
		Teams:      cfg.Teams,
		Normalizer: normalizer,
		Window:     window,
		Pause:      cfg.Pause.Std(),
		Logger:     logger,
		Metrics:    metrics,
	})

	summary, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(summary)

	if cfg.DryRun {
		return exportFixtures(cfg, summary.Fixtures, logger)
	}

	client := sink.NewClient(sink.Config{
		URL:     cfg.Sink.URL,
		Token:   cfg.Sink.Token,
		Source:  cfg.Sink.Source,
		Timeout: cfg.Sink.Timeout.Std(),
	}, resolver, logger)

	resp, err := client.Submit(ctx, summary.Fixtures)
	if err != nil {
		metrics.SinkPosts.WithLabelValues("error").Inc()
		return fmt.Errorf("submitting fixtures: %w", err)
	}
	metrics.SinkPosts.WithLabelValues("ok").Inc()
	fmt.Printf("submitted %d fixtures: created=%d updated=%d skipped=%d\n",
		len(summary.Fixtures), resp.Created, resp.Updated, resp.Skipped)
	return nil
}

// buildSources wires the enabled sources in a fixed order: the competition
// scoreboard first, then per-team pages, then the JSON API. Each source gets
// its own HTTP client so rate limits apply per upstream host.
func buildSources(cfg *config.Config, metrics *monitoring.Metrics, logger utils.Logger) ([]source.Source, error) {
	clientConfig := func(baseURL string, headers map[string]string) fetch.ClientConfig {
		return fetch.ClientConfig{
			BaseURL:       baseURL,
			Timeout:       cfg.HTTP.Timeout.Std(),
			RetryAttempts: cfg.HTTP.RetryAttempts,
			RetryDelay:    cfg.HTTP.RetryDelay.Std(),
			RateLimit:     cfg.HTTP.RateLimit,
			RateBurst:     cfg.HTTP.RateBurst,
			UserAgent:     cfg.HTTP.UserAgent,
			Headers:       headers,
			Metrics:       metrics,
		}
	}

	heuristicCfg := extract.DefaultHeuristicConfig()
	heuristicCfg.VenueMarkers = append(heuristicCfg.VenueMarkers, cfg.Venues...)
	chain := extract.NewChain(logger,
		extract.NewStructuredStrategy(),
		extract.NewHeuristicStrategy(heuristicCfg),
		extract.NewTextStrategy(extract.DefaultTextConfig()),
	)

	var sources []source.Source
	if sc := cfg.Sources.Scoreboard; sc != nil {
		client := fetch.NewClient(clientConfig("", nil), logger)
		sources = append(sources, source.NewScoreboard(sc.URL, sc.Competition, client, chain, logger))
	}
	if tp := cfg.Sources.TeamPages; tp != nil {
		client := fetch.NewClient(clientConfig("", nil), logger)
		var renderer *fetch.Renderer
		if tp.Render {
			renderer = fetch.NewRenderer(fetch.RendererConfig{UserAgent: cfg.HTTP.UserAgent}, logger)
		}
		sources = append(sources, source.NewTeamPages(tp.Pages, tp.Competition, client, renderer, chain, logger))
	}
	if api := cfg.Sources.EventsAPI; api != nil {
		client := fetch.NewClient(clientConfig(api.BaseURL, api.Headers), logger)
		sources = append(sources, source.NewEventsAPI(api.BaseURL, api.Competition, api.TeamIDs, client, logger))
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return sources, nil
}

func exportFixtures(cfg *config.Config, fixtures []normalize.Fixture, logger utils.Logger) error {
	file := cfg.Output.File
	if file == "" {
		file = "fixtures." + extensionFor(cfg.Output.Format)
	}
	manager, err := output.NewManager(cfg.Output.Format, file)
	if err != nil {
		return err
	}
	if err := manager.Write(fixtures); err != nil {
		return fmt.Errorf("exporting fixtures: %w", err)
	}
	logger.Infof("dry run: %d fixtures written to %s", len(fixtures), file)
	return nil
}

func extensionFor(format string) string {
	switch format {
	case "csv":
		return "csv"
	case "excel":
		return "xlsx"
	default:
		return "json"
	}
}

func printSummary(summary *pipeline.Summary) {
	fmt.Printf("run completed in %s: %d fixtures\n",
		summary.Finished.Sub(summary.Started).Round(time.Millisecond), len(summary.Fixtures))
	for _, report := range summary.Reports {
		line := fmt.Sprintf("  %-14s %-20s %-9s raw=%-3d kept=%-3d dropped=%d",
			report.Team, report.Source, report.State, report.Raw, report.Kept, report.Dropped)
		if report.Err != nil {
			line += fmt.Sprintf("  (%v)", report.Err)
		}
		fmt.Println(line)
	}
	for _, fixture := range summary.Fixtures {
		fmt.Printf("  %s  %s x %s  [%s] %s\n",
			fixture.MatchDatetime, fixture.HomeTeam, fixture.AwayTeam,
			fixture.Competition, fixture.Venue)
	}
}
