package domain

import "context"

// PromptPart is one element of a model prompt: either plain text or a binary
// payload (e.g. a PDF) with its MIME type.
type PromptPart struct {
	Text     string
	Data     []byte
	MIMEType string
}

// TextPart builds a text prompt part.
func TextPart(text string) PromptPart {
	return PromptPart{Text: text}
}

// BinaryPart builds a binary prompt part.
func BinaryPart(data []byte, mimeType string) PromptPart {
	return PromptPart{Data: data, MIMEType: mimeType}
}

// ModelClient defines the capability to generate structured content from a
// prompt, selecting a named model. The provider may be slow, rate limited, or
// transiently unavailable; JSON-mode output is advisory, not guaranteed.
type ModelClient interface {
	GenerateStructured(ctx context.Context, model string, parts []PromptPart, jsonMode bool) (*ModelOutput, error)
}

// ModelOutput carries the raw provider response. Parsed is non-nil only when
// the provider itself returned a decoded structure.
type ModelOutput struct {
	Text   string
	Parsed any
}

// ResponseKind tags the origin of a ModelResponse.
type ResponseKind string

const (
	ResponseLive   ResponseKind = "live"
	ResponseCached ResponseKind = "cached"
	ResponseError  ResponseKind = "error"
)

// ModelResponse is the closed union handed to normalizers: a live provider
// response, a cache replay, or an error sentinel. All variants expose Text and
// Parsed uniformly, so callers never branch on response shape.
type ModelResponse struct {
	Kind   ResponseKind `json:"kind"`
	Text   string       `json:"text"`
	Parsed any          `json:"parsed,omitempty"`
}

// LiveResponse wraps a fresh provider output.
func LiveResponse(out *ModelOutput) ModelResponse {
	return ModelResponse{Kind: ResponseLive, Text: out.Text, Parsed: out.Parsed}
}

// CachedResponse wraps a replayed cache entry.
func CachedResponse(text string, parsed any) ModelResponse {
	return ModelResponse{Kind: ResponseCached, Text: text, Parsed: parsed}
}

// ErrorResponse wraps a model failure as a normal, checkable value.
func ErrorResponse(err error) ModelResponse {
	return ModelResponse{Kind: ResponseError, Text: "Error: " + err.Error()}
}

// Erred reports whether the response is the error sentinel.
func (r ModelResponse) Erred() bool {
	return r.Kind == ResponseError
}
