package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"intelligence-layer/internal/domain"
	"intelligence-layer/internal/usecase"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// fakeModelClient routes calls through a function and counts them.
type fakeModelClient struct {
	calls    atomic.Int64
	generate func(model string, parts []domain.PromptPart) (*domain.ModelOutput, error)
}

func (f *fakeModelClient) GenerateStructured(_ context.Context, model string, parts []domain.PromptPart, _ bool) (*domain.ModelOutput, error) {
	f.calls.Add(1)
	return f.generate(model, parts)
}

type mapStore struct {
	entries map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[string][]byte)}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s *mapStore) Set(_ context.Context, key string, value []byte) error {
	s.entries[key] = value
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func buildUsecase(t *testing.T, fetcher usecase.ContentFetcher, client domain.ModelClient, store domain.CacheStore) usecase.AnalyzeUsecase {
	t.Helper()
	caller := usecase.NewModelCaller(client, store, 0, 1, discard())
	cfg := usecase.ServiceConfig{
		Model:           "gpt-4o",
		FastModel:       "gpt-4o-mini",
		LargeInputBytes: 1 << 20,
		ChunkCap:        3,
	}
	chunker := domain.NewChunker(domain.DefaultChunkSize, domain.DefaultChunkOverlap)
	return usecase.NewAnalyzeUsecase(
		fetcher,
		domain.NewFingerprintPolicy(),
		store,
		usecase.NewSummaryService(caller, chunker, cfg, discard()),
		usecase.NewRecommendationService(caller, chunker, cfg, discard()),
		usecase.NewVisualsService(caller, chunker, cfg, discard()),
		1<<20,
		3,
		discard(),
	)
}

const procurementCSV = "Date,Supplier,Amount\n2024-01-01,Acme,100\n2024-01-02,Acme,200\n"

func TestAnalyze_CSVFastPathEndToEnd(t *testing.T) {
	client := &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return nil, errors.New("fast path must not call the model")
	}}
	uc := buildUsecase(t, nil, client, newMapStore())

	result := uc.Execute(context.Background(), domain.AnalysisRequest{
		Content: []byte(procurementCSV),
	})

	assert.False(t, result.Failed())
	assert.Zero(t, client.calls.Load())

	summary := result[domain.ServiceSummary]
	assert.True(t, summary.Succeeded)
	assert.Contains(t, summary.Summary.Title, "2 rows")

	recs := result[domain.ServiceRecommendations]
	assert.True(t, recs.Succeeded)
	assert.GreaterOrEqual(t, len(recs.Recommendations.Recommendations), 5)

	visuals := result[domain.ServiceVisuals]
	assert.True(t, visuals.Succeeded)
	var hasLine, referencesSupplier bool
	for _, chart := range visuals.Charts {
		if chart.ChartType == "line" && chart.XAxis == "Date" {
			hasLine = true
		}
		if (chart.ChartType == "bar" || chart.ChartType == "pie") && chart.XAxis == "Supplier" {
			referencesSupplier = true
		}
	}
	assert.True(t, hasLine, "expected a line chart over Date")
	assert.True(t, referencesSupplier, "expected a bar or pie chart over Supplier")
}

func TestAnalyze_PartialFailureIsolated(t *testing.T) {
	client := &fakeModelClient{generate: func(_ string, parts []domain.PromptPart) (*domain.ModelOutput, error) {
		if strings.Contains(parts[0].Text, "visualization specialist") {
			return nil, errors.New("invalid request")
		}
		return &domain.ModelOutput{Text: `{"summary":"ok","recommendations":["r1","r2"]}`}, nil
	}}
	uc := buildUsecase(t, nil, client, newMapStore())

	result := uc.Execute(context.Background(), domain.AnalysisRequest{
		Content: []byte("Quarterly procurement narrative, nothing tabular."),
	})

	assert.False(t, result.Failed())
	assert.True(t, result[domain.ServiceSummary].Succeeded)
	assert.True(t, result[domain.ServiceRecommendations].Succeeded)

	visuals := result[domain.ServiceVisuals]
	assert.False(t, visuals.Succeeded)
	assert.Contains(t, visuals.ErrorMessage, "invalid request")
	assert.Nil(t, visuals.Charts)
}

func TestAnalyze_ResultCacheRoundTrip(t *testing.T) {
	client := &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return &domain.ModelOutput{Text: `{"summary":"ok"}`}, nil
	}}
	store := newMapStore()
	uc := buildUsecase(t, nil, client, store)

	content := []byte("Plain narrative document about supplier contracts.")
	first := uc.Execute(context.Background(), domain.AnalysisRequest{Content: content})
	callsAfterFirst := client.calls.Load()
	second := uc.Execute(context.Background(), domain.AnalysisRequest{Content: content})

	assert.False(t, first.Failed())
	assert.Equal(t, callsAfterFirst, client.calls.Load(), "second run must be served from cache")
	assert.Equal(t, first[domain.ServiceSummary].Summary, second[domain.ServiceSummary].Summary)
}

func TestAnalyze_BypassCacheForcesRecompute(t *testing.T) {
	client := &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return &domain.ModelOutput{Text: `{"summary":"ok"}`}, nil
	}}
	store := newMapStore()
	uc := buildUsecase(t, nil, client, store)

	content := []byte("Plain narrative document about supplier contracts.")
	uc.Execute(context.Background(), domain.AnalysisRequest{Content: content})

	// drop the model-call cache so bypass actually reaches the client again
	for k := range store.entries {
		delete(store.entries, k)
	}
	callsBefore := client.calls.Load()
	uc.Execute(context.Background(), domain.AnalysisRequest{Content: content, BypassCache: true})

	assert.Greater(t, client.calls.Load(), callsBefore)
}

func TestAnalyze_InvalidRequest(t *testing.T) {
	uc := buildUsecase(t, nil, &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return &domain.ModelOutput{Text: "{}"}, nil
	}}, newMapStore())

	both := uc.Execute(context.Background(), domain.AnalysisRequest{
		FileURL: "https://example.com/f.csv",
		Content: []byte("x"),
	})
	assert.True(t, both.Failed())

	neither := uc.Execute(context.Background(), domain.AnalysisRequest{})
	assert.True(t, neither.Failed())
}

func TestAnalyze_OversizedInlineContentIsFatal(t *testing.T) {
	client := &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return &domain.ModelOutput{Text: "{}"}, nil
	}}
	uc := buildUsecase(t, nil, client, newMapStore())

	result := uc.Execute(context.Background(), domain.AnalysisRequest{
		Content: bytes.Repeat([]byte("x"), 1<<20+1),
	})

	assert.True(t, result.Failed())
	assert.Contains(t, result[domain.ServiceError].ErrorMessage, "exceeds")
	assert.Zero(t, client.calls.Load(), "oversized content must never reach the model")
}

func TestAnalyze_DownloadFailureIsFatal(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://example.com/gone.pdf").
		Return(nil, errors.New("giving up after 3 attempts"))

	uc := buildUsecase(t, fetcher, &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return &domain.ModelOutput{Text: "{}"}, nil
	}}, newMapStore())

	result := uc.Execute(context.Background(), domain.AnalysisRequest{
		FileURL: "https://example.com/gone.pdf",
	})

	assert.True(t, result.Failed())
	assert.Contains(t, result[domain.ServiceError].ErrorMessage, "download failed")
	fetcher.AssertExpectations(t)
}

func TestAnalyze_URLResultReusedWithoutRedownload(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://example.com/spend.csv").
		Return([]byte(procurementCSV), nil).Once()

	uc := buildUsecase(t, fetcher, &fakeModelClient{generate: func(string, []domain.PromptPart) (*domain.ModelOutput, error) {
		return &domain.ModelOutput{Text: "{}"}, nil
	}}, newMapStore())

	req := domain.AnalysisRequest{FileURL: "https://example.com/spend.csv"}
	first := uc.Execute(context.Background(), req)
	second := uc.Execute(context.Background(), req)

	assert.False(t, first.Failed())
	assert.False(t, second.Failed())
	fetcher.AssertExpectations(t)
}
