// Package monitor keeps a pool's plan current: it refreshes the pool state on
// an interval, applies operator commands and re-renders after every change.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"poolrebalancer/internal/dex"
	"poolrebalancer/internal/display"
	"poolrebalancer/internal/model"
	"poolrebalancer/internal/rebalance"
	"poolrebalancer/internal/storage"
)

// Config holds refresh settings for the Runner.
type Config struct {
	// Interval between refreshes. Zero disables periodic refresh.
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner ties a PoolReader, a Session and the calculator together.
type Runner struct {
	cfg     Config
	reader  dex.PoolReader
	session *display.Session
	calc    *rebalance.Calculator
	sinks   []storage.Sink
	out     io.Writer
	logger  *zap.Logger

	outMu sync.Mutex
	wg    sync.WaitGroup
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg Config, reader dex.PoolReader, session *display.Session, calc *rebalance.Calculator, sinks []storage.Sink, out io.Writer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = rebalance.NewCalculator(rebalance.DefaultConfig(), logger)
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		cfg:     cfg,
		reader:  reader,
		session: session,
		calc:    calc,
		sinks:   sinks,
		out:     out,
		logger:  logger,
	}
}

// Run refreshes immediately, then on every tick, until commands reaches EOF,
// a quit command arrives or ctx is canceled. In-flight fetches are awaited
// before Run returns.
//
// Commands, one per line:
//
//	pool <address>   switch pools
//	target <price>   change the target price
//	refresh          fetch now
//	quit             stop
func (r *Runner) Run(ctx context.Context, commands io.Reader) error {
	if r.reader == nil {
		return fmt.Errorf("pool reader is nil")
	}
	if r.session == nil {
		return fmt.Errorf("session is nil")
	}
	defer r.wg.Wait()

	lines := make(chan string)
	if commands != nil {
		go readCommands(ctx, commands, lines)
	}

	var tick <-chan time.Time
	if r.cfg.Interval > 0 {
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.publish(ctx)
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			r.refresh(ctx)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := r.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func readCommands(ctx context.Context, commands io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(commands)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		case lines <- scanner.Text():
		}
	}
}

func (r *Runner) handle(ctx context.Context, line string) bool {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "":
	case "quit", "exit":
		return true
	case "refresh":
		r.refresh(ctx)
	case "pool":
		if arg == "" {
			r.logger.Warn("pool command needs an address")
			return false
		}
		token := r.session.SetPool(arg)
		r.logger.Info("pool changed", zap.String("pool", arg))
		r.publish(ctx)
		r.fetch(ctx, token, arg)
	case "target":
		r.session.SetTarget(arg)
		r.logger.Info("target changed", zap.String("target", arg))
		r.publish(ctx)
	default:
		r.logger.Warn("unknown command", zap.String("command", line))
	}
	return false
}

func (r *Runner) refresh(ctx context.Context) {
	token, poolID := r.session.Begin()
	r.fetch(ctx, token, poolID)
}

func (r *Runner) fetch(ctx context.Context, token uint64, poolID string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		state, err := r.fetchWithRetry(ctx, poolID)
		if ctx.Err() != nil {
			return
		}
		if !r.session.Resolve(token, state, err) {
			r.logger.Debug("stale pool state dropped", zap.String("pool", poolID), zap.Uint64("token", token))
			return
		}
		if err != nil {
			r.logger.Warn("fetch pool state failed", zap.String("pool", poolID), zap.Error(err))
		}
		r.publish(ctx)
	}()
}

func (r *Runner) fetchWithRetry(ctx context.Context, poolID string) (model.PoolState, error) {
	var state model.PoolState
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, retryable, func(ctx context.Context) error {
		var err error
		state, err = r.reader.FetchPoolState(ctx, poolID)
		if err != nil && retryable(err) {
			r.logger.Debug("fetch pool state attempt failed", zap.String("pool", poolID), zap.Error(err))
		}
		return err
	})
	return state, err
}

// retryable limits retries to transport failures.
func retryable(err error) bool {
	return errors.Is(err, dex.ErrSourceUnavailable)
}

func (r *Runner) publish(ctx context.Context) {
	r.outMu.Lock()
	defer r.outMu.Unlock()

	snapshot := r.session.Snapshot()
	view := display.Derive(snapshot, r.calc)
	if err := view.Render(r.out); err != nil {
		r.logger.Warn("render failed", zap.Error(err))
	}

	record, ok := display.Record(snapshot, view)
	if !ok {
		return
	}
	for _, sink := range r.sinks {
		if err := sink.PutPlanBatch(ctx, []model.PlanRecord{record}); err != nil {
			r.logger.Warn("store plan failed", zap.String("pool", record.Pool), zap.Error(err))
		}
	}
}
