package analysis_http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"intelligence-layer/internal/domain"
	"intelligence-layer/internal/usecase"
)

type Handler struct {
	analyzeUsecase usecase.AnalyzeUsecase
}

func NewHandler(analyzeUsecase usecase.AnalyzeUsecase) *Handler {
	return &Handler{analyzeUsecase: analyzeUsecase}
}

// AnalyzeRequest is the wire shape of POST /v1/analyze. Exactly one of
// file_url and text must be set; use_cache defaults to true.
type AnalyzeRequest struct {
	FileURL  string `json:"file_url,omitempty"`
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	UseCache *bool  `json:"use_cache,omitempty"`
}

// Analyze a spend or procurement document
// (POST /v1/analyze)
func (h *Handler) Analyze(ctx echo.Context) error {
	var req AnalyzeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	input := domain.AnalysisRequest{
		FileURL:  req.FileURL,
		MIMEHint: req.MIMEType,
	}
	if req.Text != "" {
		input.Content = []byte(req.Text)
	}
	if req.UseCache != nil {
		input.BypassCache = !*req.UseCache
	}

	result := h.analyzeUsecase.Execute(ctx.Request().Context(), input)
	if result.Failed() {
		status := http.StatusInternalServerError
		if result[domain.ServiceError].ErrorMessage == domain.ErrInvalidRequest.Error() {
			status = http.StatusBadRequest
		}
		return ctx.JSON(status, result)
	}
	return ctx.JSON(http.StatusOK, result)
}

// Liveness probe
// (GET /v1/health)
func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes wires the handler into an echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/analyze", h.Analyze)
	e.GET("/v1/health", h.Health)
}
