package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/D13ya/evalprof/internal/inference"
	"github.com/D13ya/evalprof/internal/model"
	"github.com/D13ya/evalprof/internal/report"
	"github.com/D13ya/evalprof/pkg/logger"
	"github.com/D13ya/evalprof/pkg/profiler"
)

type config struct {
	target   string
	dim      int
	chains   int
	iters    int
	step     float64
	leapfrog int
	mapIters int
	progress time.Duration
	jsonPath string
	chart    string
	verbose  int
	seed     uint64
}

func main() {
	cfg := config{}
	flag.StringVar(&cfg.target, "target", "normal", "target density: normal or banana")
	flag.IntVar(&cfg.dim, "dim", 10, "dimension of the normal target")
	flag.IntVar(&cfg.chains, "chains", 4, "number of concurrent chains")
	flag.IntVar(&cfg.iters, "iters", 1000, "transitions per chain")
	flag.Float64Var(&cfg.step, "step", 0.1, "leapfrog step size")
	flag.IntVar(&cfg.leapfrog, "leapfrog", 10, "leapfrog steps per transition")
	flag.IntVar(&cfg.mapIters, "map", 0, "run a mode search of at most this many iterations before sampling")
	flag.DurationVar(&cfg.progress, "progress", time.Second, "interval between progress snapshots (0 disables)")
	flag.StringVar(&cfg.jsonPath, "json", "", "write the final profile as JSON to this path")
	flag.StringVar(&cfg.chart, "chart", "", "write an HTML chart of the profile to this path")
	flag.IntVar(&cfg.verbose, "log-v", 0, "log verbosity")
	flag.Uint64Var(&cfg.seed, "seed", 0, "random seed; 0 picks one from the clock")
	flag.Parse()
	if cfg.seed == 0 {
		cfg.seed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.SetVerbosity(cfg.verbose)
	l := logger.New("[evalprof] ")
	if err := run(ctx, cfg, l, os.Stdout); err != nil {
		l.Fatalf("run failed: %v", err)
	}
}

func run(ctx context.Context, cfg config, l *log.Logger, stdout io.Writer) error {
	m, err := model.ByName(cfg.target, cfg.dim)
	if err != nil {
		return err
	}

	prof := profiler.New()
	lr := logger.NewLogr(l)
	runner := &inference.Runner{
		Profiler: prof,
		Density:  model.NewEvaluator(m, prof, lr.WithName("model")),
		Sampler:  inference.HMC{StepSize: cfg.step, Leapfrog: cfg.leapfrog},
		Chains:   cfg.chains,
		Iters:    cfg.iters,
		MAPIters: cfg.mapIters,
		Seed:     cfg.seed,
		Progress: cfg.progress,
		Log:      lr.WithName("runner"),
	}
	lr.Info("starting run", "target", cfg.target, "chains", cfg.chains, "seed", cfg.seed)

	prof.BeginRun()
	res, runErr := runner.Run(ctx)
	if res == nil {
		return runErr
	}

	if err := report.WriteText(stdout, res.Final); err != nil {
		return errors.Join(runErr, fmt.Errorf("text report: %w", err))
	}
	for i, c := range res.Chains {
		fmt.Fprintf(stdout, "chain %d: draws=%d accept=%.2f divergent=%d\n", i, len(c.Draws), c.AcceptRate(), c.Divergent)
	}
	if err := writeReports(cfg, res); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func writeReports(cfg config, res *inference.Result) error {
	if cfg.jsonPath != "" {
		if err := writeFile(cfg.jsonPath, func(w io.Writer) error {
			return report.WriteJSON(w, res.Final)
		}); err != nil {
			return fmt.Errorf("json report: %w", err)
		}
	}
	if cfg.chart != "" {
		if err := writeFile(cfg.chart, func(w io.Writer) error {
			return report.WriteChart(w, res.Final, res.Timeline)
		}); err != nil {
			return fmt.Errorf("chart report: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
