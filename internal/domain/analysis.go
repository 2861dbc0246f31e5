package domain

// Service names used as keys in an AnalysisResult. The extra ServiceError key
// carries request-fatal failures (bad input, download failure) as a single entry.
const (
	ServiceSummary         = "summary"
	ServiceRecommendations = "recommendations"
	ServiceVisuals         = "visuals"
	ServiceError           = "error"
)

// Category is the coarse content classification that decides the analysis path.
type Category string

const (
	CategoryCSV    Category = "csv"
	CategoryPDF    Category = "pdf"
	CategoryText   Category = "text"
	CategoryBinary Category = "binary"
)

// MIMEType maps the category to the MIME type handed to the model provider.
func (c Category) MIMEType() string {
	switch c {
	case CategoryCSV:
		return "text/csv"
	case CategoryPDF:
		return "application/pdf"
	case CategoryText:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// AnalysisRequest describes one analysis invocation. Exactly one of FileURL and
// Content must be set; Validate enforces that at the orchestrator entry point.
type AnalysisRequest struct {
	FileURL     string
	Content     []byte
	MIMEHint    string
	BypassCache bool
}

// Validate checks the exactly-one-of invariant on the request source.
func (r AnalysisRequest) Validate() error {
	hasURL := r.FileURL != ""
	hasContent := len(r.Content) > 0
	if hasURL == hasContent {
		return ErrInvalidRequest
	}
	return nil
}

// SummaryResult is the structured output of the summary service.
type SummaryResult struct {
	Title             string   `json:"title,omitempty"`
	Summary           string   `json:"summary"`
	KeyPoints         []string `json:"key_points"`
	RecommendedCharts []string `json:"recommended_charts"`
}

// RecommendationResult is the structured output of the recommendations service.
type RecommendationResult struct {
	Recommendations []string `json:"recommendations"`
}

// ChartSpec describes one suggested visualization.
type ChartSpec struct {
	ChartType  string            `json:"chart_type"`
	Purpose    string            `json:"purpose,omitempty"`
	XAxis      string            `json:"x_axis,omitempty"`
	YAxis      string            `json:"y_axis,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	RenderData map[string]any    `json:"data,omitempty"`
}

// ChartTypeTextSummary is the degenerate chart entry synthesized when no chart
// could be extracted; a visuals list is never empty.
const ChartTypeTextSummary = "text_summary"

// ServiceOutcome is the per-service success/failure envelope.
// Invariant: Succeeded == true iff exactly one payload field is non-nil
// iff ErrorMessage is empty.
type ServiceOutcome struct {
	Succeeded       bool                  `json:"success"`
	Summary         *SummaryResult        `json:"summary,omitempty"`
	Recommendations *RecommendationResult `json:"recommendations,omitempty"`
	Charts          []ChartSpec           `json:"charts,omitempty"`
	ErrorMessage    string                `json:"error_message,omitempty"`
	ElapsedSeconds  float64               `json:"execution_time"`
}

// FailedOutcome builds a failed envelope for one service.
func FailedOutcome(message string, elapsed float64) ServiceOutcome {
	return ServiceOutcome{Succeeded: false, ErrorMessage: message, ElapsedSeconds: elapsed}
}

// AnalysisResult maps service names to their outcomes. Keys are unique and
// ordering carries no meaning.
type AnalysisResult map[string]ServiceOutcome

// ErrorResult wraps a request-fatal failure as the single "error" entry.
func ErrorResult(message string, elapsed float64) AnalysisResult {
	return AnalysisResult{ServiceError: FailedOutcome(message, elapsed)}
}

// Failed reports whether the result carries a request-fatal error entry.
func (r AnalysisResult) Failed() bool {
	_, ok := r[ServiceError]
	return ok
}
