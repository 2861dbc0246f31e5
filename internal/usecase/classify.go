package usecase

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"intelligence-layer/internal/domain"
)

const (
	sniffWindow = 1000
	sniffLines  = 5
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// Classifier assigns a content category to a fetched document. A caller
// supplied MIME hint is trusted verbatim and skips sniffing entirely.
type Classifier struct{}

func NewClassifier() Classifier {
	return Classifier{}
}

func (Classifier) Classify(content []byte, mimeHint string) domain.Category {
	if hint := strings.TrimSpace(mimeHint); hint != "" {
		return categoryFromHint(hint)
	}
	if sniffCSV(content) {
		return domain.CategoryCSV
	}
	if bytes.HasPrefix(content, pdfMagic) {
		return domain.CategoryPDF
	}
	if bytes.HasPrefix(content, zipMagic) {
		return domain.CategoryBinary
	}
	if utf8.Valid(content) {
		return domain.CategoryText
	}
	return domain.CategoryBinary
}

func categoryFromHint(hint string) domain.Category {
	h := strings.ToLower(hint)
	switch {
	case strings.Contains(h, "csv"):
		return domain.CategoryCSV
	case strings.Contains(h, "pdf"):
		return domain.CategoryPDF
	case strings.HasPrefix(h, "text/"), h == "text":
		return domain.CategoryText
	case strings.Contains(h, "json"), strings.Contains(h, "xml"):
		return domain.CategoryText
	default:
		return domain.CategoryBinary
	}
}

// sniffCSV inspects the first sniffWindow bytes: the content looks like CSV
// when the first few lines carry a consistent comma count of at least two.
func sniffCSV(content []byte) bool {
	sample := content
	if len(sample) > sniffWindow {
		sample = sample[:sniffWindow]
		// truncation can split a multi-byte rune; trim the ragged tail
		for i := 0; i < utf8.UTFMax && len(sample) > 0 && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	if !utf8.Valid(sample) {
		return false
	}

	lines := strings.Split(strings.ReplaceAll(string(sample), "\r\n", "\n"), "\n")
	counted := make([]int, 0, sniffLines)
	for _, line := range lines {
		if len(counted) == sniffLines {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		counted = append(counted, strings.Count(line, ","))
	}
	if len(counted) < 2 {
		return false
	}

	minCommas, maxCommas := counted[0], counted[0]
	for _, c := range counted[1:] {
		if c < minCommas {
			minCommas = c
		}
		if c > maxCommas {
			maxCommas = c
		}
	}
	return minCommas >= 2 && maxCommas-minCommas <= 1
}
