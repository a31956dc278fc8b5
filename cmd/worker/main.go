package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/infra"
	"server/internal/sqlinline"
)

const (
	aggregateInterval = time.Minute
	maxDaysPerSweep   = 31
)

// The worker folds raw usage_events rows into the analytics_daily rollup so
// the admin stats endpoint never scans the event table.
type aggregator struct {
	runner *infra.SQLRunner
	logger infra.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	agg := &aggregator{runner: infra.NewSQLRunner(dbpool, logger), logger: logger}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(aggregateInterval)
	defer ticker.Stop()

	logger.Info().Msg("usage aggregator started")
	agg.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			agg.sweep(ctx)
		case <-stop:
			logger.Info().Msg("usage aggregator stopping")
			return
		}
	}
}

// sweep rolls up every day that has events newer than its rollup row.
func (a *aggregator) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := a.runner.Query(sweepCtx, sqlinline.QSelectPendingUsageDays, maxDaysPerSweep)
	if err != nil {
		a.logger.Error().Err(err).Msg("list pending days failed")
		return
	}
	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			rows.Close()
			a.logger.Error().Err(err).Msg("scan pending day failed")
			return
		}
		days = append(days, day)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		a.logger.Error().Err(err).Msg("pending days iteration failed")
		return
	}

	for _, day := range days {
		if _, err := a.runner.Exec(sweepCtx, sqlinline.QAggregateUsageDay, day); err != nil {
			a.logger.Error().Err(err).Time("day", day).Msg("aggregate day failed")
			continue
		}
		a.logger.Info().Str("day", day.Format("2006-01-02")).Msg("day aggregated")
	}
}
