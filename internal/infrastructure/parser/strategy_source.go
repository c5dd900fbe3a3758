package parser

import (
	"context"
	"fmt"
	"log/slog"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
	"quizfeed/internal/scanner"
)

// StrategySource implements ports.Extractor via a registered scanner strategy.
type StrategySource struct {
	registry *scanner.Registry
	source   config.SourceConfig
	logger   *slog.Logger
}

var _ ports.Extractor = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured source.
func NewStrategySource(reg *scanner.Registry, source config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		source:   source,
		logger:   log,
	}
}

// Extract resolves the configured scanner and runs it for a single candidate.
func (s *StrategySource) Extract(ctx context.Context, candidate domain.Candidate) ([]domain.QuestionRecord, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.source.Scanner)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.source.Name, err)
	}

	s.debug("extract candidate", "scanner", strategy.Name(), "url", candidate.URL)

	records, err := strategy.Scan(ctx, scanner.Request{
		Candidate: candidate,
		Options:   s.source.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", candidate.URL, err)
	}

	s.debug("candidate produced questions", "url", candidate.URL, "count", len(records))
	return records, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
