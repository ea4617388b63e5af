package formatter

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/document"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(t *entity.Transcript) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(transcriptTitle(t))

	doc.AddParagraph()

	for i, turn := range t.Turns {
		qPar := doc.AddParagraph()
		qPar.SetStyle("Heading2")
		qPar.AddRun().AddText(fmt.Sprintf("Q%d: %s", i+1, turn.Question))

		aPar := doc.AddParagraph()
		aPar.AddRun().AddText(turn.Answer)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
