package follow

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/followbot/gofollow/pkg/config"
	"github.com/followbot/gofollow/pkg/logger"
	"github.com/followbot/gofollow/pkg/sdk/api"
)

// Engine wires a detection path to the filter, executor and exit manager.
// One configured wallet selects the push stream; several select polling,
// since the activity stream subscription carries a single address.
type Engine struct {
	cfg      *config.Config
	filter   *Filter
	executor *Executor
	exit     *ExitManager
	differ   *Differ
	dedup    *Deduplicator

	trades chan *LeaderTrade
}

// NewEngine assembles the engine. executor and exit may be nil in
// simulation mode; accepted trades are then logged and dropped.
func NewEngine(cfg *config.Config, lister PositionLister, executor *Executor, exit *ExitManager) *Engine {
	return &Engine{
		cfg:      cfg,
		filter:   NewFilter(cfg),
		executor: executor,
		exit:     exit,
		differ:   NewDiffer(lister),
		dedup:    NewDeduplicator(),
		trades:   make(chan *LeaderTrade, 256),
	}
}

// Run blocks until the context ends, driving whichever detection path the
// target count selects.
func (e *Engine) Run(ctx context.Context) error {
	targets := e.cfg.Copy.TargetAddresses
	if len(targets) == 1 {
		return e.runStream(ctx, targets[0])
	}
	return e.runPolling(ctx, targets)
}

// runStream consumes the live activity feed for a single wallet. The
// handler runs on the stream's read goroutine and only converts, matches
// and queues; processing happens here so exchange calls never stall the
// socket.
func (e *Engine) runStream(ctx context.Context, target string) error {
	want := strings.ToLower(target)

	stream := api.NewActivityStream(func(a api.ActivityTrade) {
		if strings.ToLower(a.ProxyWallet) != want {
			return
		}
		trade, err := FromActivity(&a)
		if err != nil {
			logger.Debugf("engine: drop malformed trade: %v", err)
			return
		}
		select {
		case e.trades <- trade:
		default:
			logger.Warnf("engine: trade queue full, dropping %s", trade.ID)
		}
	})

	if err := stream.Start(ctx); err != nil {
		return errors.Wrap(err, "start activity stream")
	}
	defer stream.Stop()

	logger.Infof("engine: streaming trades for %s", target)
	for {
		select {
		case <-ctx.Done():
			return nil
		case trade := <-e.trades:
			if e.dedup.Seen(trade.ID) {
				logger.Debugf("engine: duplicate trade %s", trade.ID)
				continue
			}
			e.process(ctx, trade)
		}
	}
}

// runPolling diffs position snapshots for every wallet on a fixed cadence.
// Wallets are processed sequentially in configuration order; a slow cycle
// delays the next tick rather than overlapping it.
func (e *Engine) runPolling(ctx context.Context, targets []string) error {
	interval := e.cfg.PollInterval()
	logger.Infof("engine: polling %d wallets every %s", len(targets), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, wallet := range targets {
			trades, err := e.differ.Poll(ctx, wallet)
			if err != nil {
				logger.Errorf("engine: poll %s: %v", wallet, err)
				continue
			}
			for _, trade := range trades {
				e.process(ctx, trade)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// process runs one detected trade through the filter and executor. Failures
// are logged and never abort the detection loop.
func (e *Engine) process(ctx context.Context, trade *LeaderTrade) {
	if !e.filter.Accept(trade) {
		return
	}

	if e.cfg.Simulation || e.executor == nil {
		logger.Infof("engine: SIM %s %s size=%s price=%s notional=%s",
			trade.Side, trade.Asset, trade.Size, trade.Price, trade.Notional())
		return
	}

	fill, err := e.executor.Execute(ctx, trade)
	if err != nil {
		logger.Errorf("engine: replicate %s %s: %v", trade.Side, trade.Asset, err)
		return
	}
	if fill != nil && e.exit != nil {
		e.exit.RecordEntry(trade.Asset, fill.Size, fill.Price)
	}
}
