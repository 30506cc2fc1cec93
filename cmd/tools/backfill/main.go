// Backfill populates a region's observation history from the source in one
// shot, then optionally runs a first forecast. Intended for bootstrapping a
// fresh store before the engine takes over monthly ingest.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/pipeline"
	"github.com/gridcast/gridcast/internal/source"
	"github.com/gridcast/gridcast/internal/store"
	"github.com/gridcast/gridcast/internal/timeseries"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	region := flag.String("region", "NJ", "Region (two-letter state code)")
	startStr := flag.String("start", "2001-01", "First period to fetch (YYYY-MM)")
	endStr := flag.String("end", "", "Last period to fetch (YYYY-MM, default: current month)")
	runForecast := flag.Bool("forecast", false, "Run a forecast after the backfill")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	start, err := timeseries.ParsePeriod(*startStr)
	if err != nil {
		logger.Fatal("Invalid start period", "error", err)
	}
	end := timeseries.PeriodFromTime(time.Now().UTC())
	if *endStr != "" {
		end, err = timeseries.ParsePeriod(*endStr)
		if err != nil {
			logger.Fatal("Invalid end period", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.New(ctx, cfg.Store)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to store", "error", err, "type", cfg.Store.Type)
	}
	defer st.Close()

	src := source.NewEIAClient(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Source.Sector, cfg.Source.Timeout)
	orc := pipeline.New(st, src, nil, logger, cfg.Pipeline)

	runCtx, runCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer runCancel()

	res, err := orc.RunIngest(runCtx, *region, &start, &end)
	if err != nil {
		logger.Fatal("Backfill failed", "error", err, "run_id", res.RunID)
	}
	logger.Info("Backfill completed",
		"region", *region,
		"status", res.Status,
		"observations", res.Observations,
		"range", fmt.Sprintf("%s..%s", start, end),
	)

	if !*runForecast {
		return
	}

	res, err = orc.RunForecast(runCtx, *region, nil)
	if err != nil {
		logger.Fatal("Forecast failed", "error", err, "run_id", res.RunID)
	}
	logger.Info("Forecast completed",
		"region", *region,
		"status", res.Status,
		"forecasts", res.Forecasts,
		"metrics", res.Metrics,
	)
}
