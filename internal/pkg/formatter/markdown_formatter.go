package formatter

import (
	"bytes"
	"fmt"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(t *entity.Transcript) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", transcriptTitle(t))
	fmt.Fprintf(&buf, "Exported %s\n\n", t.ExportedAt.Format("2006-01-02 15:04:05 MST"))

	for i, turn := range t.Turns {
		fmt.Fprintf(&buf, "## Turn %d\n\n", i+1)
		fmt.Fprintf(&buf, "**Q:** %s\n\n", turn.Question)
		fmt.Fprintf(&buf, "**A:** %s\n\n", turn.Answer)
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
