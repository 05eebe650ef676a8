package app

import (
	"context"
	"fmt"

	"github.com/example/automl/internal/core/knowledge"
	"github.com/example/automl/internal/core/sweep"
	"github.com/example/automl/internal/ports/secondary"
)

// Preparer performs an entry's preparation right before its launch.
type Preparer interface {
	Prepare(ctx context.Context, prep sweep.Preparation) error
}

// KnowledgeBaseService assembles knowledge-base files on disk.
type KnowledgeBaseService struct {
	store secondary.ArtifactStore
}

// NewKnowledgeBaseService creates a new KnowledgeBaseService.
func NewKnowledgeBaseService(store secondary.ArtifactStore) *KnowledgeBaseService {
	return &KnowledgeBaseService{store: store}
}

// Prepare writes the knowledge base a preparation describes.
// Fragment files are read now, not at planning time, because an earlier
// optimizer run in the same sweep may have just produced them.
func (s *KnowledgeBaseService) Prepare(ctx context.Context, prep sweep.Preparation) error {
	switch prep.Kind {
	case sweep.PrepareNone, "":
		return nil
	case sweep.PrepareGuard:
		return s.writeGuard(ctx, prep)
	case sweep.PrepareIterationKB:
		return s.writeIterationKB(ctx, prep)
	default:
		return fmt.Errorf("unknown preparation kind: %s", prep.Kind)
	}
}

func (s *KnowledgeBaseService) writeGuard(ctx context.Context, prep sweep.Preparation) error {
	base, err := s.store.ReadFile(ctx, prep.BaseRulesPath)
	if err != nil {
		return fmt.Errorf("failed to read base rules: %w", err)
	}

	content := knowledge.ComposeGuard(base, prep.Facts)
	if err := s.store.WriteFile(ctx, prep.OutputPath, content); err != nil {
		return fmt.Errorf("failed to write guard file: %w", err)
	}
	return nil
}

func (s *KnowledgeBaseService) writeIterationKB(ctx context.Context, prep sweep.Preparation) error {
	kb, err := s.store.ReadFile(ctx, prep.KBPath)
	if err != nil {
		return fmt.Errorf("failed to read kb fragment: %w", err)
	}
	rules, err := s.store.ReadFile(ctx, prep.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to read rules fragment: %w", err)
	}

	if prep.MiningTarget != "" {
		rules = knowledge.FilterRules(rules, prep.MiningTarget)
	}

	content := knowledge.ComposeIterationKB(kb, rules)
	if err := s.store.WriteFile(ctx, prep.OutputPath, content); err != nil {
		return fmt.Errorf("failed to write complete kb: %w", err)
	}
	return nil
}

// Ensure KnowledgeBaseService implements Preparer
var _ Preparer = (*KnowledgeBaseService)(nil)
