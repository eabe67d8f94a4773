package knots

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/knots/internal/logging"
	"github.com/aretw0/knots/internal/presentation/graph"
	"github.com/aretw0/knots/internal/runtime"
	"github.com/aretw0/knots/pkg/adapters/memory"
	"github.com/aretw0/knots/pkg/analysis"
	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/loader"
	"github.com/aretw0/knots/pkg/observability"
	"github.com/aretw0/knots/pkg/ports"
	"github.com/aretw0/knots/pkg/session"
	"github.com/google/uuid"
)

// Version is the released version of the module.
const Version = "0.1.0"

// HookFunc is a named condition predicate registered by the host.
type HookFunc = runtime.HookFunc

// ExpressionEvaluator resolves expression guards against the caller's state.
type ExpressionEvaluator = runtime.ExpressionEvaluator

// Conditions is the full condition capability set.
type Conditions = runtime.Conditions

// Engine is the high-level entry point for the knots library.
// It keeps one story in memory and plays it for any number of sessions,
// rebuilding a runtime per call from the persisted position.
type Engine[E any] struct {
	story    *domain.Story[E]
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	logger   *slog.Logger
	rtOpts   []runtime.Option
	Name     string
}

var _ ports.Engine = (*Engine[domain.Payload])(nil)

type config struct {
	name        string
	store       ports.SessionStore
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	hooks       domain.LifecycleHooks
	metrics     *observability.Metrics
	logger      *slog.Logger
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

// WithName labels the engine; the name is attached to every log line.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithMetrics installs Prometheus collectors alongside any lifecycle hooks.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStore sets where session positions are persisted (default: memory).
func WithStore(store ports.SessionStore) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithLocker enables distributed locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = locker
	}
}

// WithLockTTL sets the lease of distributed session locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.lockTTL = ttl
	}
}

// WithConditions replaces the whole condition capability set.
func WithConditions(conds Conditions) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithConditions(conds))
	}
}

// WithConditionHook registers a named condition hook.
func WithConditionHook(name string, fn HookFunc) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithConditionHook(name, fn))
	}
}

// WithExpressionEvaluator sets the evaluator for expression guards.
func WithExpressionEvaluator(eval ExpressionEvaluator) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithExpressionEvaluator(eval))
	}
}

// New initializes an Engine for story. It fails when the story's entry point
// does not resolve to a node.
func New[E any](story *domain.Story[E], opts ...Option) (*Engine[E], error) {
	if story == nil {
		return nil, fmt.Errorf("story is required")
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.name != "" {
		cfg.logger = cfg.logger.With("story", cfg.name)
	}
	if cfg.store == nil {
		cfg.store = memory.NewStore()
	}

	rtOpts := append([]runtime.Option{runtime.WithLogger(cfg.logger)}, cfg.runtimeOpts...)
	if _, err := runtime.New(story, rtOpts...); err != nil {
		return nil, fmt.Errorf("invalid story entry: %w", err)
	}

	sessOpts := []session.Option{session.WithLogger(cfg.logger)}
	if cfg.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(cfg.locker))
	}
	if cfg.lockTTL > 0 {
		sessOpts = append(sessOpts, session.WithLockTTL(cfg.lockTTL))
	}

	hooks := cfg.hooks
	if cfg.metrics != nil {
		hooks = observability.Combine(hooks, cfg.metrics.Hooks())
	}

	return &Engine[E]{
		story:    story,
		sessions: session.NewManager(cfg.store, sessOpts...),
		hooks:    hooks,
		metrics:  cfg.metrics,
		logger:   cfg.logger,
		rtOpts:   rtOpts,
		Name:     cfg.name,
	}, nil
}

// Load reads a YAML or JSON story file and initializes an Engine for it.
// The file name becomes the engine name unless WithName is given.
func Load(path string, opts ...Option) (*Engine[domain.Payload], error) {
	story, err := loader.Load[domain.Payload](path)
	if err != nil {
		return nil, err
	}
	return New(story, append([]Option{WithName(path)}, opts...)...)
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Story returns the story the engine plays.
func (e *Engine[E]) Story() *domain.Story[E] {
	return e.story
}

// Sessions returns the session manager backing the engine.
func (e *Engine[E]) Sessions() *session.Manager {
	return e.sessions
}

// Start creates a session at the story entry, or resumes it if it already
// exists, and returns its current step.
func (e *Engine[E]) Start(ctx context.Context, sessionID string, state any) (domain.StepResult[E], error) {
	if sessionID == "" {
		return domain.StepResult[E]{}, fmt.Errorf("session id is required")
	}

	// A new session is only stored once its entry step renders.
	var step domain.StepResult[E]
	s, created, err := e.sessions.LoadOrStart(ctx, sessionID, e.story.EntryPosition(), func(s *domain.Session) error {
		var err error
		step, err = e.render(s, state)
		return err
	})
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	if !created {
		return e.render(s, state)
	}

	e.logger.Info("session started", "session_id", sessionID)
	e.enter(ctx, step)
	return step, nil
}

// Current renders the session's current step without moving.
func (e *Engine[E]) Current(ctx context.Context, sessionID string, state any) (domain.StepResult[E], error) {
	s, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.StepResult[E]{}, err
	}
	return e.render(s, state)
}

// Choose takes a choice on the session's current node and persists the move.
func (e *Engine[E]) Choose(ctx context.Context, sessionID, choiceID string, state any) (domain.StepResult[E], error) {
	return e.transition(ctx, sessionID, domain.EventChoice, choiceID, func(rt *runtime.Runtime[E]) (domain.StepResult[E], error) {
		return rt.Choose(choiceID, state)
	})
}

// Divert jumps the session unconditionally to target and persists the move.
func (e *Engine[E]) Divert(ctx context.Context, sessionID string, target domain.Target, state any) (domain.StepResult[E], error) {
	return e.transition(ctx, sessionID, domain.EventDivert, "", func(rt *runtime.Runtime[E]) (domain.StepResult[E], error) {
		return rt.Divert(target, state)
	})
}

// End deletes the session.
func (e *Engine[E]) End(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// Session returns the stored session record.
func (e *Engine[E]) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Analyze reports the structural defects of the story and publishes the
// counts when metrics are installed.
func (e *Engine[E]) Analyze() domain.AnalysisResult {
	result := analysis.Analyze(e.story)
	if e.metrics != nil {
		e.metrics.ObserveAnalysis(result)
	}
	return result
}

// Diagram renders the story as a Mermaid flowchart with the analysis overlay.
// When sessionID is set, the session's trail and position are highlighted.
func (e *Engine[E]) Diagram(ctx context.Context, sessionID string) (string, error) {
	result := e.Analyze()
	overlay := &graph.Overlay{Issues: &result}

	if sessionID != "" {
		s, err := e.sessions.Load(ctx, sessionID)
		if err != nil {
			return "", err
		}
		overlay.Visited = s.History
		overlay.Current = &s.Position
	}

	return graph.GenerateMermaid(e.story, overlay), nil
}

type move[E any] func(rt *runtime.Runtime[E]) (domain.StepResult[E], error)

// transition restores a runtime at the stored position, applies fn and saves
// the new position. Hooks fire only after the save succeeded.
func (e *Engine[E]) transition(ctx context.Context, sessionID string, kind domain.EventType, choiceID string, fn move[E]) (domain.StepResult[E], error) {
	var (
		step domain.StepResult[E]
		from domain.Position
	)

	err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		rt, err := e.restore(s.Position)
		if err != nil {
			return err
		}

		from = s.Position
		step, err = fn(rt)
		if err != nil {
			return err
		}

		s.Advance(rt.Position(), step.Terminal())
		return nil
	})
	if err != nil {
		e.logger.Debug("transition rejected",
			"session_id", sessionID,
			"type", kind,
			"err", err,
		)
		return domain.StepResult[E]{}, err
	}

	e.fire(ctx, kind, choiceID, from, step)
	return step, nil
}

// restore builds a fresh runtime moved to pos.
func (e *Engine[E]) restore(pos domain.Position) (*runtime.Runtime[E], error) {
	rt, err := runtime.New(e.story, e.rtOpts...)
	if err != nil {
		return nil, err
	}
	if err := rt.Restore(pos); err != nil {
		return nil, fmt.Errorf("restoring %s: %w", pos, err)
	}
	return rt, nil
}

func (e *Engine[E]) render(s *domain.Session, state any) (domain.StepResult[E], error) {
	rt, err := e.restore(s.Position)
	if err != nil {
		return domain.StepResult[E]{}, err
	}
	return rt.Current(state)
}

func (e *Engine[E]) fire(ctx context.Context, kind domain.EventType, choiceID string, from domain.Position, step domain.StepResult[E]) {
	now := time.Now()
	if e.hooks.OnNodeLeave != nil {
		e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventNodeLeave},
			KnotID:    from.KnotID,
			NodeID:    from.NodeID,
		})
	}
	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: kind},
			From:      from,
			To:        step.Position(),
			ChoiceID:  choiceID,
		})
	}
	e.enter(ctx, step)
}

func (e *Engine[E]) enter(ctx context.Context, step domain.StepResult[E]) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter},
		KnotID:    step.KnotID,
		NodeID:    step.NodeID,
		Terminal:  step.Terminal(),
	})
}
