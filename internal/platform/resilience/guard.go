package resilience

// Guard pairs a CircuitBreaker with its enabled flag and the rule that
// decides which call errors count against the dependency.
type Guard struct {
	breaker   *CircuitBreaker
	enabled   bool
	isFailure func(error) bool
}

// NewGuard builds a guard from cfg. A nil isFailure counts every error.
func NewGuard(cfg CircuitBreakerConfig, isFailure func(error) bool) *Guard {
	cfg = NormalizeCircuitBreakerConfig(cfg)
	if isFailure == nil {
		isFailure = func(err error) bool { return err != nil }
	}

	return &Guard{
		breaker:   NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq),
		enabled:   cfg.Enabled,
		isFailure: isFailure,
	}
}

func (g *Guard) Allow() error {
	if g == nil || !g.enabled {
		return nil
	}
	return g.breaker.Allow()
}

// Record reports the outcome of a call admitted by Allow. Errors that are
// not dependency failures, such as rejected credentials, count as success.
func (g *Guard) Record(err error) {
	if g == nil || !g.enabled {
		return
	}
	if err != nil && g.isFailure(err) {
		g.breaker.RecordFailure()
		return
	}
	g.breaker.RecordSuccess()
}

func (g *Guard) State() CircuitState {
	if g == nil || !g.enabled {
		return CircuitStateClosed
	}
	return g.breaker.State()
}

// OnStateChange forwards breaker transitions to fn. It is a no-op on a
// disabled guard.
func (g *Guard) OnStateChange(fn StateChangeFunc) {
	if g == nil || !g.enabled {
		return
	}
	g.breaker.OnStateChange(fn)
}
