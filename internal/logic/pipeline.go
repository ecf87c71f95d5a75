package logic

import "time"

// Pipeline chains denoiser, filter and classifier. It is not safe for
// concurrent use: one cycle must complete before the next begins.
type Pipeline struct {
	cfg        Config
	clock      Clock
	denoiser   Denoiser
	filter     *Filter
	classifier *Classifier

	startTime     time.Time
	counts        CycleCounts
	lastHeartbeat time.Time
}

// NewPipeline validates cfg and creates a pipeline reading time from clock.
// The clock's current time is used as the start of the initial debounce
// window and of the uptime reported in heartbeats.
func NewPipeline(cfg Config, clock Clock) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	start := clock.Now()
	return &Pipeline{
		cfg:           cfg,
		clock:         clock,
		denoiser:      NewDenoiser(cfg.Center, cfg.NoiseThreshold),
		filter:        NewFilter(cfg.Alpha),
		classifier:    NewClassifier(cfg.ActivationThreshold, cfg.DeactivationThreshold, cfg.DebounceTime, start),
		startTime:     start,
		lastHeartbeat: start,
	}, nil
}

// Cycle runs one raw sample through the pipeline.
func (p *Pipeline) Cycle(raw int) Decision {
	now := p.clock.Now()
	denoised := p.denoiser.Denoise(raw)
	filtered := p.filter.Filter(denoised)
	step := p.classifier.Step(filtered, now)

	p.count(step)

	return Decision{
		Timestamp:  now,
		Raw:        raw,
		Denoised:   denoised,
		Filtered:   filtered,
		Gesture:    step.Gesture,
		Active:     step.Active,
		Suppressed: step.Suppressed,
		Edge:       step.Edge,
	}
}

func (p *Pipeline) count(step Step) {
	p.counts.Cycles++
	if step.Suppressed {
		p.counts.Suppressed++
	}
	switch step.Edge {
	case EdgeActivation:
		p.counts.Activations++
		if step.Gesture == GestureOpen {
			p.counts.Opens++
		} else {
			p.counts.Closes++
		}
	case EdgeDeactivation:
		p.counts.Deactivations++
	}
}

// Config returns the validated configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Gesture returns the held gesture.
func (p *Pipeline) Gesture() Gesture {
	return p.classifier.Gesture()
}

// Active reports whether the muscle is currently considered contracted.
func (p *Pipeline) Active() bool {
	return p.classifier.Active()
}

// FilterValue returns the unrounded low-pass state.
func (p *Pipeline) FilterValue() float64 {
	return p.filter.Value()
}

// Counts returns a copy of the cycle counters.
func (p *Pipeline) Counts() CycleCounts {
	return p.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (p *Pipeline) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(p.lastHeartbeat) < interval {
		return nil
	}

	p.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(p.startTime),
		Gesture:   p.classifier.Gesture(),
		Active:    p.classifier.Active(),
		Counts:    p.counts,
	}
}
