// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/automl/internal/core/effects"
	"github.com/example/automl/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - planners only describe I/O.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor with real I/O.
type DefaultEffectExecutor struct {
	store  secondary.ArtifactStore
	logger *zap.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(store secondary.ArtifactStore, logger *zap.Logger) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{store: store, logger: logger}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.FileEffect:
		return e.executeFile(ctx, typed)
	case effects.LogEffect:
		e.log(typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeFile(ctx context.Context, eff effects.FileEffect) error {
	switch eff.Operation {
	case "mkdir":
		return e.store.CreateDirectory(ctx, eff.Path)
	default:
		return fmt.Errorf("unknown file operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) log(eff effects.LogEffect) {
	fields := make([]zap.Field, 0, len(eff.Fields))
	for k, v := range eff.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch eff.Level {
	case "debug":
		e.logger.Debug(eff.Message, fields...)
	case "warn":
		e.logger.Warn(eff.Message, fields...)
	case "error":
		e.logger.Error(eff.Message, fields...)
	default:
		e.logger.Info(eff.Message, fields...)
	}
}
