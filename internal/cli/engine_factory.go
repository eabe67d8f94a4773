package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/knots"
	"github.com/aretw0/knots/pkg/adapters/memory"
	"github.com/aretw0/knots/pkg/adapters/redis"
	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/observability"
	"github.com/aretw0/knots/pkg/persistence/middleware"
	"github.com/aretw0/knots/pkg/ports"
)

// EngineOptions collects the flags shared by every command that plays a story.
type EngineOptions struct {
	StoryPath   string
	RedisAddr   string
	RedisPrefix string
	SessionTTL  time.Duration
	LockTTL     time.Duration

	// SessionKey is a hex encoded AES-256 key. When set, sessions are sealed
	// before they reach the store.
	SessionKey string

	// Hooks answers hook conditions with fixed values, keyed by hook name.
	// Values are parsed with strconv.ParseBool.
	Hooks map[string]string

	Metrics *observability.Metrics
	Debug   bool
}

// Engine is the engine type every command works with.
type Engine = knots.Engine[domain.Payload]

// CreateEngine loads the story and wires the session store the flags ask for.
// The returned close function releases the store connection, if any.
func CreateEngine(opts EngineOptions, logger *slog.Logger) (*Engine, func() error, error) {
	engineOpts := []knots.Option{knots.WithLogger(logger)}
	closer := func() error { return nil }

	if opts.Debug {
		engineOpts = append(engineOpts, knots.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	if opts.Metrics != nil {
		engineOpts = append(engineOpts, knots.WithMetrics(opts.Metrics))
	}

	hooks, err := staticHooks(opts.Hooks)
	if err != nil {
		return nil, nil, err
	}
	for name, fn := range hooks {
		engineOpts = append(engineOpts, knots.WithConditionHook(name, fn))
	}

	var store ports.SessionStore = memory.NewStore()
	if opts.RedisAddr != "" {
		var storeOpts []redis.Option
		if opts.RedisPrefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		if opts.SessionTTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(opts.SessionTTL))
		}
		rs := redis.New(opts.RedisAddr, "", 0, storeOpts...)
		store = rs
		engineOpts = append(engineOpts, knots.WithLocker(redis.NewLocker(rs.Client(), rs.Prefix())))
		if opts.LockTTL > 0 {
			engineOpts = append(engineOpts, knots.WithLockTTL(opts.LockTTL))
		}
		closer = rs.Close
		logger.Debug("Using redis session store", "addr", opts.RedisAddr, "prefix", rs.Prefix())
	}

	if opts.SessionKey != "" {
		key, err := middleware.ParseKey(opts.SessionKey)
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		store = middleware.Chain(store, seal)
	}
	engineOpts = append(engineOpts, knots.WithStore(store))

	engine, err := knots.Load(opts.StoryPath, engineOpts...)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}

	return engine, closer, nil
}

// staticHooks turns name=bool flag pairs into condition hooks.
func staticHooks(raw map[string]string) (map[string]knots.HookFunc, error) {
	hooks := make(map[string]knots.HookFunc, len(raw))
	for name, value := range raw {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for hook %q: %w", name, err)
		}
		hooks[name] = func(state any) bool { return v }
	}
	return hooks, nil
}
