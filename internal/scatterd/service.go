// Package scatterd exposes the scattering engine over gRPC and HTTP.
package scatterd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lgpang/smash/internal/engine"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/stringfrag"
	"github.com/lgpang/smash/internal/workload"
	"github.com/lgpang/smash/pkg/config"
	"github.com/lgpang/smash/pkg/logger"
	"github.com/lgpang/smash/pkg/particle"
	"github.com/lgpang/smash/pkg/utils"
)

// MaxBatchEvents bounds the number of collisions of one batch request.
const MaxBatchEvents = 100000

var (
	// ErrInvalidRequest marks requests that cannot describe a collision.
	ErrInvalidRequest = errors.New("invalid request")
)

// CollideRequest names an incoming pair and its CM energy.
type CollideRequest struct {
	// Projectile and Target are species names or PDG codes.
	Projectile string  `json:"projectile"`
	Target     string  `json:"target"`
	SqrtS      float64 `json:"sqrt_s"`
	Time       float64 `json:"time,omitempty"`
}

// BatchRequest repeats one collision Events times. Arrival and Window
// spread the collision times, see workload.Generator.
type BatchRequest struct {
	CollideRequest
	Events  int     `json:"events"`
	Arrival string  `json:"arrival,omitempty"`
	Window  float64 `json:"window,omitempty"`
}

// Particle is the wire form of a particle. Four-vectors are (E, px, py, pz)
// and (t, x, y, z).
type Particle struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	PDG           int32      `json:"pdg"`
	Momentum      [4]float64 `json:"momentum"`
	Position      [4]float64 `json:"position"`
	FormationTime float64    `json:"formation_time"`
	XSecScaling   float64    `json:"xsec_scaling"`
}

// CollideResult is the outcome of one performed action.
type CollideResult struct {
	ActionID      string     `json:"action_id"`
	Process       string     `json:"process"`
	SqrtS         float64    `json:"sqrt_s"`
	RawWeight     float64    `json:"raw_weight_mb"`
	PartialWeight float64    `json:"partial_weight_mb"`
	Outgoing      []Particle `json:"outgoing"`
}

// Channel is the wire form of a collision branch.
type Channel struct {
	Process   string   `json:"process"`
	Weight    float64  `json:"weight_mb"`
	Particles []string `json:"particles"`
}

// BranchesResult lists the channels of a pair without performing it.
type BranchesResult struct {
	SqrtS            float64    `json:"sqrt_s"`
	Total            float64    `json:"total_mb"`
	Channels         []Channel  `json:"channels"`
	StringCumulative [6]float64 `json:"string_cumulative_mb"`
}

// Service performs collisions over shared physics collaborators. The
// collaborators are not safe for concurrent use; every request holds mu.
type Service struct {
	mu      sync.Mutex
	catalog *particle.Catalog
	phys    *scatter.Physics
	opts    scatter.Options
	runs    *RunStore
	log     *slog.Logger

	notifier       *Notifier
	callbackURL    string
	callbackSecret string
}

// NewService creates a service over phys, adding channels with opts.
func NewService(catalog *particle.Catalog, phys *scatter.Physics, opts scatter.Options) *Service {
	runs, _ := NewRunStore(DefaultRunHistory)
	return &Service{
		catalog: catalog,
		phys:    phys,
		opts:    opts,
		runs:    runs,
		log:     logger.Area("Scatterd"),

		notifier: NewNotifier(),
	}
}

// SetCallback posts every finished batch to url, see Notifier.Notify.
// An empty url disables notifications.
func (s *Service) SetCallback(url, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbackURL = url
	s.callbackSecret = secret
}

// Runs returns the store of finished batches.
func (s *Service) Runs() *RunStore {
	return s.runs
}

// Setup builds the species catalog, physics collaborators and channel
// options described by cfg.
func Setup(cfg *config.Config) (*particle.Catalog, *scatter.Physics, scatter.Options, error) {
	var (
		catalog *particle.Catalog
		err     error
	)
	if cfg.ParticlesFile != "" {
		catalog, err = particle.LoadCatalog(cfg.ParticlesFile)
	} else {
		catalog, err = particle.DefaultCatalog()
	}
	if err != nil {
		return nil, nil, scatter.Options{}, fmt.Errorf("failed to load particle catalog: %w", err)
	}

	opts, err := cfg.CollisionTerm.ScatterOptions()
	if err != nil {
		return nil, nil, scatter.Options{}, fmt.Errorf("invalid collision term: %w", err)
	}

	rng := utils.NewRandSource(cfg.Seed)
	logger.Area("Scatterd").Info("physics ready", "seed", rng.Seed(), "species", len(catalog.All()), "strings", cfg.CollisionTerm.Strings)
	phys, err := scatter.NewPhysics(catalog, rng)
	if err != nil {
		return nil, nil, scatter.Options{}, err
	}
	phys.Isotropic = cfg.CollisionTerm.Isotropic
	phys.StringFormationTime = cfg.CollisionTerm.StringFormationTime
	if cfg.CollisionTerm.Strings {
		phys.Hard = stringfrag.NewClusterGenerator(catalog)
		phys.Soft = stringfrag.NewSoftProcess(catalog, rng, phys.StringFormationTime)
	}
	return catalog, phys, opts, nil
}

// NewServiceFromConfig is Setup followed by NewService.
func NewServiceFromConfig(cfg *config.Config) (*Service, error) {
	catalog, phys, opts, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	svc := NewService(catalog, phys, opts)
	svc.SetCallback(cfg.Server.CallbackURL, cfg.Server.CallbackSecret)
	return svc, nil
}

// resolve looks up the species of req.
func (s *Service) resolve(req CollideRequest) (*particle.Type, *particle.Type, error) {
	if req.SqrtS <= 0 {
		return nil, nil, fmt.Errorf("%w: sqrt_s must be positive, got %g", ErrInvalidRequest, req.SqrtS)
	}
	ta, err := s.catalog.Lookup(req.Projectile)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: projectile: %v", ErrInvalidRequest, err)
	}
	tb, err := s.catalog.Lookup(req.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: target: %v", ErrInvalidRequest, err)
	}
	return ta, tb, nil
}

// newAction builds an unperformed action for req. Callers hold mu.
func (s *Service) newAction(req CollideRequest) (*scatter.Action, error) {
	ta, tb, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	a, b, err := scatter.HeadOnPair(ta, tb, req.SqrtS, req.Time)
	if err != nil {
		return nil, err
	}
	return scatter.NewAction(a, b, req.Time, s.phys), nil
}

// Collide performs one action and returns its final state.
func (s *Service) Collide(ctx context.Context, req CollideRequest) (*CollideResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	action, err := s.newAction(req)
	if err != nil {
		return nil, err
	}
	if err := action.AddAllProcesses(s.opts); err != nil {
		return nil, err
	}
	if err := action.GenerateFinalState(); err != nil {
		return nil, err
	}
	s.log.Debug("collision performed", "action", action.ID(), "process", action.ProcessType())

	out := action.OutgoingParticles()
	result := &CollideResult{
		ActionID:      action.ID(),
		Process:       action.ProcessType().String(),
		SqrtS:         action.SqrtS(),
		RawWeight:     action.RawWeight(),
		PartialWeight: action.PartialWeight(),
		Outgoing:      make([]Particle, 0, len(out)),
	}
	for _, d := range out {
		result.Outgoing = append(result.Outgoing, toParticle(d))
	}
	return result, nil
}

// Branches lists the channels of a pair without selecting one.
func (s *Service) Branches(ctx context.Context, req CollideRequest) (*BranchesResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	action, err := s.newAction(req)
	if err != nil {
		return nil, err
	}
	if err := action.AddAllProcesses(s.opts); err != nil {
		return nil, err
	}

	branches := action.Branches()
	result := &BranchesResult{
		SqrtS:            action.SqrtS(),
		Total:            action.RawWeight(),
		Channels:         make([]Channel, 0, len(branches)),
		StringCumulative: action.StringCumulative(),
	}
	for _, b := range branches {
		names := make([]string, 0, len(b.Types()))
		for _, t := range b.Types() {
			names = append(names, t.Name)
		}
		result.Channels = append(result.Channels, Channel{
			Process:   b.Process().String(),
			Weight:    b.Weight(),
			Particles: names,
		})
	}
	return result, nil
}

// Batch performs req.Events collisions of the pair through an engine run.
// Runs that were created are kept in the run store, failed and cancelled
// ones included.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*RunRecord, error) {
	if req.Events <= 0 || req.Events > MaxBatchEvents {
		return nil, fmt.Errorf("%w: events must be in [1, %d], got %d", ErrInvalidRequest, MaxBatchEvents, req.Events)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ta, tb, err := s.resolve(req.CollideRequest)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine(utils.NewRunID(), s.opts)
	rm := eng.GetRunManager()
	rm.SetMetadata("pair", ta.Name+"+"+tb.Name)
	rm.SetMetadata("sqrt_s", strconv.FormatFloat(req.SqrtS, 'g', -1, 64))
	if req.Arrival != "" {
		rm.SetMetadata("arrival", req.Arrival)
	}

	gen := workload.NewGenerator(s.phys.Rand.Int63())
	batch := config.Batch{
		Projectile: req.Projectile,
		Target:     req.Target,
		SqrtS:      req.SqrtS,
		Events:     req.Events,
		Time:       req.Time,
		Arrival:    req.Arrival,
		Window:     req.Window,
	}
	if _, err := gen.ScheduleCollisions(eng, s.phys, ta, tb, batch); err != nil {
		rm.Fail(err)
		s.store(&RunRecord{Request: req, Run: rm.GetRun()})
		if errors.Is(err, scatter.ErrBelowPairThreshold) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	runErr := eng.ExecuteAll(ctx)
	rec := &RunRecord{
		Request: req,
		Run:     rm.GetRun(),
		Stats:   eng.Stats(),
	}
	s.store(rec)
	if runErr != nil {
		return nil, runErr
	}
	s.log.Info("batch performed",
		"run_id", rec.Run.ID,
		"projectile", req.Projectile,
		"target", req.Target,
		"sqrt_s", req.SqrtS,
		"events", req.Events,
		"failed", rec.Stats.Failed)
	return rec, nil
}

// store keeps rec and posts it to the callback. Callers hold mu.
func (s *Service) store(rec *RunRecord) {
	if err := s.runs.Put(rec); err != nil {
		s.log.Warn("failed to store run", "run_id", rec.Run.ID, "error", err)
	}
	s.notifier.Notify(s.callbackURL, s.callbackSecret, rec)
}

func toParticle(d particle.Data) Particle {
	return Particle{
		ID:            d.ID,
		Name:          d.Type.Name,
		PDG:           int32(d.Type.PDG),
		Momentum:      [4]float64{d.Momentum.E(), d.Momentum.Px(), d.Momentum.Py(), d.Momentum.Pz()},
		Position:      [4]float64{d.Position.T, d.Position.R.X, d.Position.R.Y, d.Position.R.Z},
		FormationTime: d.FormationTime,
		XSecScaling:   d.XSecScaling,
	}
}
