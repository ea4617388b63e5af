// Package formatter renders conversation transcripts for download in
// several document formats.
package formatter

import (
	"fmt"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

const baseTitle = "Conversation transcript"

type Formatter interface {
	Format(t *entity.Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// transcriptTitle names the document after the user when a display name
// is available.
func transcriptTitle(t *entity.Transcript) string {
	if t.DisplayName != "" {
		return fmt.Sprintf("%s: %s", baseTitle, t.DisplayName)
	}
	return fmt.Sprintf("%s: %s", baseTitle, t.UserID)
}
