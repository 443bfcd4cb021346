package stage

import (
	"encoding/json"
	"fmt"
)

// Factory builds one Stage instance from its raw params document.
type Factory func(params json.RawMessage) (Stage, error)

// Registry maps stage Kinds to their factories. Unlike the open-ended
// effect registries this pattern is borrowed from, a Registry here is
// always built via NewRegistry with exactly the six closed Kinds
// registered; Register exists for tests and composition, not for
// runtime-defined stage types.
type Registry struct {
	factories map[Kind]Factory
}

// NewRegistry returns a Registry with all built-in stage kinds registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[Kind]Factory, 6)}
	r.MustRegister(KindMovingAverage, newMovingAverageFromParams)
	r.MustRegister(KindMeanAbsoluteValue, newMeanAbsoluteValueFromParams)
	r.MustRegister(KindRMS, newRMSFromParams)
	r.MustRegister(KindVariance, newVarianceFromParams)
	r.MustRegister(KindZScoreNormalize, newZScoreNormalizeFromParams)
	r.MustRegister(KindRectify, newRectifyFromParams)
	return r
}

// Register adds a factory for kind. Returns an error if kind is empty,
// factory is nil, or kind is already registered.
func (r *Registry) Register(kind Kind, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidConfig)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %s", ErrInvalidConfig, kind)
	}
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: duplicate registration for %s", ErrInvalidConfig, kind)
	}
	r.factories[kind] = factory
	return nil
}

// MustRegister is like Register but panics on error. Used only at
// construction time with the fixed built-in kind set.
func (r *Registry) MustRegister(kind Kind, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic("stage registry: " + err.Error())
	}
}

// Build constructs a Stage from cfg, looking up the factory for cfg.Type.
func (r *Registry) Build(cfg Config) (Stage, error) {
	factory, ok := r.factories[Kind(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStageType, cfg.Type)
	}
	return factory(cfg.Params)
}
