// Command collide runs a batch of identical two-body collisions and prints
// how often each channel was chosen. With -remote the batch is run by a
// scatterd instance over gRPC.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/lgpang/smash/internal/engine"
	"github.com/lgpang/smash/internal/metrics"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/scatterd"
	"github.com/lgpang/smash/internal/workload"
	"github.com/lgpang/smash/pkg/config"
	"github.com/lgpang/smash/pkg/logger"
	"github.com/lgpang/smash/pkg/utils"
)

type options struct {
	configPath string
	projectile string
	target     string
	sqrtS      float64
	events     int
	seed       int64
	asJSON     bool
	trace      bool
	remote     string
	logLevel   string
}

func main() {
	_ = godotenv.Load()

	var o options
	flag.StringVar(&o.configPath, "config", os.Getenv("SCATTERD_CONFIG"), "path to the YAML configuration (defaults when empty)")
	flag.StringVar(&o.projectile, "projectile", "", "projectile species name or PDG code")
	flag.StringVar(&o.target, "target", "", "target species name or PDG code")
	flag.Float64Var(&o.sqrtS, "sqrt-s", 0, "CM energy in GeV")
	flag.IntVar(&o.events, "events", 0, "number of collisions")
	flag.Int64Var(&o.seed, "seed", 0, "random seed (0 uses the configured seed)")
	flag.BoolVar(&o.asJSON, "json", false, "print statistics as JSON")
	flag.BoolVar(&o.trace, "trace", false, "print every performed action to stderr")
	flag.StringVar(&o.remote, "remote", os.Getenv("SCATTERD_REMOTE"), "scatterd gRPC address; the batch runs there when set")
	flag.StringVar(&o.logLevel, "log-level", "", "log level (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "collide:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, stdout, stderr io.Writer) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	logger.SetDefault(logger.NewText(cfg.LogLevel, stderr))

	batch := config.Batch{Projectile: "p", Target: "p", SqrtS: 2.0, Events: 1000}
	if cfg.Batch != nil {
		batch = *cfg.Batch
	}
	if o.projectile != "" {
		batch.Projectile = o.projectile
	}
	if o.target != "" {
		batch.Target = o.target
	}
	if o.sqrtS > 0 {
		batch.SqrtS = o.sqrtS
	}
	if o.events > 0 {
		batch.Events = o.events
	}

	var (
		stats *metrics.CollisionStats
		err   error
	)
	if o.remote != "" {
		stats, err = runRemote(ctx, o.remote, batch)
	} else {
		var trace io.Writer
		if o.trace {
			trace = stderr
		}
		stats, err = runLocal(ctx, &cfg, batch, trace)
	}
	if err != nil {
		return err
	}

	if o.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	return printStats(stdout, batch, stats)
}

// runLocal performs the batch in-process. Performed actions are written to
// trace when it is non-nil.
func runLocal(ctx context.Context, cfg *config.Config, batch config.Batch, trace io.Writer) (*metrics.CollisionStats, error) {
	catalog, phys, opts, err := scatterd.Setup(cfg)
	if err != nil {
		return nil, err
	}
	ta, err := catalog.Lookup(batch.Projectile)
	if err != nil {
		return nil, err
	}
	tb, err := catalog.Lookup(batch.Target)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine(utils.NewRunID(), opts)
	if trace != nil {
		eng.SetObserver(traceObserver(trace))
	}
	// collision times draw from the physics stream, so one seed fixes the whole run
	gen := workload.NewGenerator(phys.Rand.Int63())
	if _, err := gen.ScheduleCollisions(eng, phys, ta, tb, batch); err != nil {
		return nil, err
	}
	if err := eng.ExecuteAll(ctx); err != nil {
		return nil, err
	}
	return eng.Stats(), nil
}

// runRemote asks the scatterd instance at addr to perform the batch.
func runRemote(ctx context.Context, addr string, batch config.Batch) (*metrics.CollisionStats, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	rec, err := scatterd.NewScatterServiceClient(conn).Batch(ctx, scatterd.BatchRequest{
		CollideRequest: scatterd.CollideRequest{
			Projectile: batch.Projectile,
			Target:     batch.Target,
			SqrtS:      batch.SqrtS,
			Time:       batch.Time,
		},
		Events:  batch.Events,
		Arrival: batch.Arrival,
		Window:  batch.Window,
	})
	if err != nil {
		return nil, err
	}
	if rec.Stats == nil {
		return nil, fmt.Errorf("run %s returned no statistics", rec.Run.ID)
	}
	logger.Info("remote batch performed", "addr", addr, "run_id", rec.Run.ID, "status", rec.Run.Status)
	return rec.Stats, nil
}

func traceObserver(w io.Writer) engine.Observer {
	return func(a *scatter.Action, err error) {
		if err != nil {
			fmt.Fprintf(w, "t=%.4f %s failed: %v\n", a.Time(), a.ID(), err)
			return
		}
		out := a.OutgoingParticles()
		names := make([]string, 0, len(out))
		for _, d := range out {
			names = append(names, d.Type.Name)
		}
		fmt.Fprintf(w, "t=%.4f %s %s -> %s\n", a.Time(), a.ID(), a.ProcessType(), strings.Join(names, " "))
	}
}

func printStats(w io.Writer, batch config.Batch, stats *metrics.CollisionStats) error {
	fmt.Fprintf(w, "%s + %s at sqrt(s) = %.4f GeV, %d events (%d failed)\n",
		batch.Projectile, batch.Target, batch.SqrtS, stats.Total, stats.Failed)
	fmt.Fprintf(w, "mean total cross section %.3f mb, mean multiplicity %.2f\n\n",
		stats.MeanRawWeight, stats.MeanMultiplicity)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROCESS\tCHANNEL\tCOUNT\tFRACTION\tPARTIAL_MB")
	for _, c := range stats.Channels {
		channel := c.Channel
		if channel == "" {
			channel = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%.3f\n", c.Process, channel, c.Count, c.Fraction, c.MeanPartialWeight)
	}
	return tw.Flush()
}
