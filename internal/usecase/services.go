package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"intelligence-layer/internal/domain"
)

const (
	chunkTopK           = 2
	fallbackPrefixBytes = 10000
	maxKeyPoints        = 10
	maxRecommendations  = 10
	maxCharts           = 5
)

// ServiceConfig carries the knobs shared by the three analysis services.
type ServiceConfig struct {
	Model           string
	FastModel       string
	LargeInputBytes int
	ChunkCap        int
}

// serviceCore bundles the collaborators every analysis service needs.
type serviceCore struct {
	caller     *ModelCaller
	chunker    domain.Chunker
	normalizer Normalizer
	cfg        ServiceConfig
	logger     *slog.Logger
}

func newServiceCore(caller *ModelCaller, chunker domain.Chunker, cfg ServiceConfig, logger *slog.Logger) serviceCore {
	return serviceCore{
		caller:     caller,
		chunker:    chunker,
		normalizer: NewNormalizer(),
		cfg:        cfg,
		logger:     logger,
	}
}

// promptParts assembles a prompt: instruction first, document second. Textual
// categories embed the document inline; everything else rides as a binary part.
func promptParts(prompt string, content []byte, category domain.Category) []domain.PromptPart {
	if category == domain.CategoryCSV || category == domain.CategoryText {
		return []domain.PromptPart{
			domain.TextPart(prompt),
			domain.TextPart(string(content)),
		}
	}
	return []domain.PromptPart{
		domain.TextPart(prompt),
		domain.BinaryPart(content, category.MIMEType()),
	}
}

// isChunkable reports whether the content can be split into text chunks.
func isChunkable(category domain.Category) bool {
	return category == domain.CategoryCSV || category == domain.CategoryText
}

// invoke runs the standard single-call path and converts the error variant
// into a Go error.
func (s serviceCore) invoke(ctx context.Context, prompt string, content []byte, category domain.Category) (domain.ModelResponse, error) {
	resp := s.caller.Invoke(ctx, s.cfg.Model, promptParts(prompt, content, category), true)
	return resp, respErr(resp)
}

// invokeLarge handles oversized textual input: a bounded number of chunks is
// analyzed on the fast tier, the partial findings are consolidated with one
// full-tier call. When no chunk yields anything usable the first
// fallbackPrefixBytes of the document are analyzed directly.
func (s serviceCore) invokeLarge(ctx context.Context, prompt string, content []byte) (domain.ModelResponse, error) {
	chunks := s.chunker.Chunk(string(content))
	if len(chunks) > s.cfg.ChunkCap {
		chunks = chunks[:s.cfg.ChunkCap]
	}
	s.logger.Info("large input, chunked analysis",
		slog.Int("bytes", len(content)),
		slog.Int("chunks", len(chunks)))

	var partials []string
	for _, chunk := range chunks {
		resp := s.caller.Invoke(ctx, s.cfg.FastModel, []domain.PromptPart{
			domain.TextPart(prompt),
			domain.TextPart(chunk.Content),
		}, true)
		if resp.Erred() {
			s.logger.Warn("chunk analysis failed",
				slog.Int("ordinal", chunk.Ordinal),
				slog.String("error", resp.Text))
			continue
		}
		partials = append(partials, s.normalizer.List(resp, chunkTopK)...)
	}

	if len(partials) == 0 {
		prefix := content
		if len(prefix) > fallbackPrefixBytes {
			prefix = prefix[:fallbackPrefixBytes]
		}
		resp := s.caller.Invoke(ctx, s.cfg.Model, []domain.PromptPart{
			domain.TextPart(prompt),
			domain.TextPart(string(prefix)),
		}, true)
		return resp, respErr(resp)
	}

	merged := consolidationPreamble + "\n\n- " + strings.Join(partials, "\n- ")
	resp := s.caller.Invoke(ctx, s.cfg.Model, []domain.PromptPart{
		domain.TextPart(prompt),
		domain.TextPart(merged),
	}, true)
	return resp, respErr(resp)
}

func (s serviceCore) run(ctx context.Context, prompt string, content []byte, category domain.Category) (domain.ModelResponse, error) {
	if len(content) > s.cfg.LargeInputBytes && isChunkable(category) {
		return s.invokeLarge(ctx, prompt, content)
	}
	return s.invoke(ctx, prompt, content, category)
}

func respErr(resp domain.ModelResponse) error {
	if resp.Erred() {
		return errors.New(strings.TrimPrefix(resp.Text, "Error: "))
	}
	return nil
}

// SummaryService produces the document summary.
type SummaryService struct {
	core serviceCore
}

func NewSummaryService(caller *ModelCaller, chunker domain.Chunker, cfg ServiceConfig, logger *slog.Logger) *SummaryService {
	return &SummaryService{core: newServiceCore(caller, chunker, cfg, logger)}
}

func (s *SummaryService) Generate(ctx context.Context, content []byte, category domain.Category) (*domain.SummaryResult, error) {
	resp, err := s.core.run(ctx, summaryPrompt, content, category)
	if err != nil {
		return nil, fmt.Errorf("summary generation: %w", err)
	}
	return s.core.normalizer.Summary(resp, maxKeyPoints), nil
}

// RecommendationService produces actionable procurement recommendations.
type RecommendationService struct {
	core serviceCore
}

func NewRecommendationService(caller *ModelCaller, chunker domain.Chunker, cfg ServiceConfig, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{core: newServiceCore(caller, chunker, cfg, logger)}
}

func (s *RecommendationService) Generate(ctx context.Context, content []byte, category domain.Category) (*domain.RecommendationResult, error) {
	resp, err := s.core.run(ctx, recommendationsPrompt, content, category)
	if err != nil {
		return nil, fmt.Errorf("recommendations generation: %w", err)
	}
	return &domain.RecommendationResult{
		Recommendations: s.core.normalizer.List(resp, maxRecommendations),
	}, nil
}

// VisualsService proposes charts for the document.
type VisualsService struct {
	core serviceCore
}

func NewVisualsService(caller *ModelCaller, chunker domain.Chunker, cfg ServiceConfig, logger *slog.Logger) *VisualsService {
	return &VisualsService{core: newServiceCore(caller, chunker, cfg, logger)}
}

func (s *VisualsService) Generate(ctx context.Context, content []byte, category domain.Category) ([]domain.ChartSpec, error) {
	resp, err := s.core.run(ctx, visualsPrompt, content, category)
	if err != nil {
		return nil, fmt.Errorf("visuals generation: %w", err)
	}
	return s.core.normalizer.Charts(resp, maxCharts), nil
}
