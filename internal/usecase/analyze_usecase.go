package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"intelligence-layer/internal/domain"
)

// ContentFetcher downloads a document by URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// AnalyzeUsecase runs the full analysis pipeline for one request.
type AnalyzeUsecase interface {
	Execute(ctx context.Context, req domain.AnalysisRequest) domain.AnalysisResult
}

type analyzeUsecase struct {
	fetcher         ContentFetcher
	classifier      Classifier
	fingerprint     domain.FingerprintPolicy
	cache           domain.CacheStore
	summary         *SummaryService
	recommendations *RecommendationService
	visuals         *VisualsService
	maxContentBytes int
	maxWorkers      int
	logger          *slog.Logger
}

func NewAnalyzeUsecase(
	fetcher ContentFetcher,
	fingerprint domain.FingerprintPolicy,
	cache domain.CacheStore,
	summary *SummaryService,
	recommendations *RecommendationService,
	visuals *VisualsService,
	maxContentBytes int,
	maxWorkers int,
	logger *slog.Logger,
) AnalyzeUsecase {
	if maxWorkers < 1 {
		maxWorkers = 3
	}
	return &analyzeUsecase{
		fetcher:         fetcher,
		classifier:      NewClassifier(),
		fingerprint:     fingerprint,
		cache:           cache,
		summary:         summary,
		recommendations: recommendations,
		visuals:         visuals,
		maxContentBytes: maxContentBytes,
		maxWorkers:      maxWorkers,
		logger:          logger,
	}
}

func (u *analyzeUsecase) Execute(ctx context.Context, req domain.AnalysisRequest) domain.AnalysisResult {
	start := time.Now()
	analysisID := uuid.New().String()
	logger := u.logger.With(slog.String("analysis_id", analysisID))

	if err := req.Validate(); err != nil {
		logger.Warn("invalid analysis request", slog.String("error", err.Error()))
		return domain.ErrorResult(err.Error(), elapsed(start))
	}

	content := req.Content
	var urlKey string
	if req.FileURL != "" {
		// the URL digest lets us skip the download entirely on a repeat request
		urlKey = u.fingerprint.FromURL(req.FileURL)
		if !req.BypassCache {
			if cached, ok := u.lookupResult(ctx, urlKey); ok {
				logger.Info("served from cache", slog.String("key_kind", "url"))
				return cached
			}
		}

		fetched, err := u.fetcher.Fetch(ctx, req.FileURL)
		if err != nil {
			logger.Error("download failed",
				slog.String("url", req.FileURL),
				slog.String("error", err.Error()))
			return domain.ErrorResult(fmt.Sprintf("download failed: %v", err), elapsed(start))
		}
		content = fetched
	}

	// Same size ceiling for inline content as for downloads: no oversized
	// payload ever reaches a model call.
	if u.maxContentBytes > 0 && len(content) > u.maxContentBytes {
		logger.Warn("content too large", slog.Int("bytes", len(content)))
		return domain.ErrorResult(fmt.Sprintf("content exceeds %d bytes", u.maxContentBytes), elapsed(start))
	}

	contentKey := u.fingerprint.FromBytes(content)
	if !req.BypassCache {
		if cached, ok := u.lookupResult(ctx, contentKey); ok {
			logger.Info("served from cache", slog.String("key_kind", "content"))
			return cached
		}
	}

	category := u.classifier.Classify(content, req.MIMEHint)
	logger.Info("analysis started",
		slog.String("category", string(category)),
		slog.Int("bytes", len(content)))

	var result domain.AnalysisResult
	if category == domain.CategoryCSV {
		if profile, err := domain.ProfileCSV(string(content)); err == nil {
			result = u.runFastPath(profile)
			logger.Info("fast path complete", slog.Int("rows", profile.RowCount))
		} else {
			logger.Warn("csv profiling failed, falling back to model analysis",
				slog.String("error", err.Error()))
		}
	}
	if result == nil {
		result = u.runServices(ctx, content, category)
	}

	if !result.Failed() {
		u.storeResult(ctx, contentKey, result)
		if urlKey != "" {
			u.storeResult(ctx, urlKey, result)
		}
	}

	logger.Info("analysis complete", slog.Float64("elapsed_seconds", elapsed(start)))
	return result
}

// runServices fans the three analysis services out in parallel. Each branch
// captures its own outcome; one service failing never disturbs the others.
func (u *analyzeUsecase) runServices(ctx context.Context, content []byte, category domain.Category) domain.AnalysisResult {
	var (
		summaryOutcome ServiceOutcomeFn = timedService(func(ctx context.Context) (domain.ServiceOutcome, error) {
			s, err := u.summary.Generate(ctx, content, category)
			if err != nil {
				return domain.ServiceOutcome{}, err
			}
			return domain.ServiceOutcome{Succeeded: true, Summary: s}, nil
		})
		recsOutcome ServiceOutcomeFn = timedService(func(ctx context.Context) (domain.ServiceOutcome, error) {
			r, err := u.recommendations.Generate(ctx, content, category)
			if err != nil {
				return domain.ServiceOutcome{}, err
			}
			return domain.ServiceOutcome{Succeeded: true, Recommendations: r}, nil
		})
		visualsOutcome ServiceOutcomeFn = timedService(func(ctx context.Context) (domain.ServiceOutcome, error) {
			c, err := u.visuals.Generate(ctx, content, category)
			if err != nil {
				return domain.ServiceOutcome{}, err
			}
			return domain.ServiceOutcome{Succeeded: true, Charts: c}, nil
		})
	)

	var summary, recs, visuals domain.ServiceOutcome
	var g errgroup.Group
	g.SetLimit(u.maxWorkers)
	g.Go(func() error { summary = summaryOutcome(ctx); return nil })
	g.Go(func() error { recs = recsOutcome(ctx); return nil })
	g.Go(func() error { visuals = visualsOutcome(ctx); return nil })
	g.Wait() //nolint:errcheck // branches never return errors

	return domain.AnalysisResult{
		domain.ServiceSummary:         summary,
		domain.ServiceRecommendations: recs,
		domain.ServiceVisuals:         visuals,
	}
}

// ServiceOutcomeFn runs one service branch to a final outcome.
type ServiceOutcomeFn func(ctx context.Context) domain.ServiceOutcome

func timedService(run func(ctx context.Context) (domain.ServiceOutcome, error)) ServiceOutcomeFn {
	return func(ctx context.Context) domain.ServiceOutcome {
		start := time.Now()
		outcome, err := run(ctx)
		if err != nil {
			return domain.FailedOutcome(err.Error(), elapsed(start))
		}
		outcome.ElapsedSeconds = elapsed(start)
		return outcome
	}
}

func (u *analyzeUsecase) runFastPath(profile *domain.LocalCSVProfile) domain.AnalysisResult {
	start := time.Now()
	result := domain.AnalysisResult{
		domain.ServiceSummary: {
			Succeeded: true,
			Summary:   SynthesizeSummary(profile),
		},
		domain.ServiceRecommendations: {
			Succeeded:       true,
			Recommendations: SynthesizeRecommendations(profile),
		},
		domain.ServiceVisuals: {
			Succeeded: true,
			Charts:    SynthesizeCharts(profile),
		},
	}
	took := elapsed(start)
	for name, outcome := range result {
		outcome.ElapsedSeconds = took
		result[name] = outcome
	}
	return result
}

func (u *analyzeUsecase) lookupResult(ctx context.Context, key string) (domain.AnalysisResult, bool) {
	if u.cache == nil {
		return nil, false
	}
	raw, ok := u.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		u.logger.Warn("discarding corrupt cached result", slog.String("key", key))
		return nil, false
	}
	return result, true
}

func (u *analyzeUsecase) storeResult(ctx context.Context, key string, result domain.AnalysisResult) {
	if u.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := u.cache.Set(ctx, key, raw); err != nil {
		u.logger.Warn("result cache write failed", slog.String("error", err.Error()))
	}
}

func elapsed(start time.Time) float64 {
	return time.Since(start).Seconds()
}
