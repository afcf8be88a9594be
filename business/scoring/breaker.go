package scoring

import (
	"sync"
	"time"

	"ceap/domain"
	"ceap/pkg/logger"
)

type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	ResetTimeout     time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		ResetTimeout:     30 * time.Second,
	}
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if c.SuccessThreshold < 1 {
		c.SuccessThreshold = DefaultBreakerConfig().SuccessThreshold
	}
	if c.ResetTimeout < 0 {
		c.ResetTimeout = 0
	}
	return c
}

// CircuitBreaker fails fast once the scoring backend behind it is
// unhealthy. State and counters are one critical section per call; the
// wrapped call itself runs outside the lock.
type CircuitBreaker struct {
	name string
	cfg  BreakerConfig

	mu             sync.Mutex
	state          BreakerState
	failures       int
	successes      int
	openedAt       time.Time
	lastTransition time.Time
}

func NewCircuitBreaker(name string, cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:           name,
		cfg:            cfg.withDefaults(),
		state:          StateClosed,
		lastTransition: time.Now(),
	}
}

// Execute is the sole entry point. When the breaker is open and the
// reset timeout has not elapsed, fn is not invoked and a CircuitOpenError
// is returned; otherwise fn's outcome is recorded and its error passed
// through.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn()
	b.afterCall(err == nil)
	return err
}

func (b *CircuitBreaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cfg.ResetTimeout {
			return &domain.CircuitOpenError{Name: b.name, OpenedAt: b.openedAt}
		}
		// timeout elapsed: let this call through as a trial
		b.transition(StateHalfOpen)
	}
	return nil
}

func (b *CircuitBreaker) afterCall(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.open()
		}
	case StateHalfOpen:
		if !success {
			b.open()
			return
		}
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.failures = 0
			b.successes = 0
			b.transition(StateClosed)
		}
	}
}

// open must be called with the mutex held.
func (b *CircuitBreaker) open() {
	b.openedAt = time.Now()
	b.failures = 0
	b.successes = 0
	b.transition(StateOpen)
}

// transition must be called with the mutex held.
func (b *CircuitBreaker) transition(next BreakerState) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.lastTransition = time.Now()

	CircuitBreakerState.WithLabelValues(b.name).Set(float64(next))
	logger.Info("circuit breaker state change",
		"model_id", b.name,
		"from", prev.String(),
		"to", next.String(),
	)
}

// BreakerMetrics is a point-in-time snapshot for observability.
type BreakerMetrics struct {
	Name           string       `json:"name"`
	State          BreakerState `json:"state"`
	Failures       int          `json:"failures"`
	LastTransition time.Time    `json:"last_transition"`
}

func (b *CircuitBreaker) Metrics() BreakerMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerMetrics{
		Name:           b.name,
		State:          b.state,
		Failures:       b.failures,
		LastTransition: b.lastTransition,
	}
}

func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerRegistry owns one breaker per model id. Breakers for different
// models operate fully independently; the registry lock only guards the
// map itself.
type BreakerRegistry struct {
	mu       sync.Mutex
	defaults BreakerConfig
	configs  map[string]BreakerConfig
	breakers map[string]*CircuitBreaker
}

func NewBreakerRegistry(defaults BreakerConfig) *BreakerRegistry {
	return &BreakerRegistry{
		defaults: defaults.withDefaults(),
		configs:  make(map[string]BreakerConfig),
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Configure sets a per-model breaker config; it applies only to breakers
// created after the call.
func (r *BreakerRegistry) Configure(modelID string, cfg BreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[modelID] = cfg.withDefaults()
}

func (r *BreakerRegistry) For(modelID string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[modelID]; ok {
		return b
	}

	cfg, ok := r.configs[modelID]
	if !ok {
		cfg = r.defaults
	}
	b := NewCircuitBreaker(modelID, cfg)
	r.breakers[modelID] = b
	return b
}

func (r *BreakerRegistry) Snapshot() []BreakerMetrics {
	r.mu.Lock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make([]BreakerMetrics, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Metrics())
	}
	return out
}
