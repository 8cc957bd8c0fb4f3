package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextExtractor reads the text layer of a PDF. Scanned images yield no
// text and are reported as unreadable.
type PDFTextExtractor struct{}

func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

func (p *PDFTextExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	text, err = rowsText(ctx, reader)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		// Some producers only expose content through the plain-text stream.
		text, err = plainText(reader)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrUnreadableDocument
	}
	return text, nil
}

// rowsText keeps line structure, which the section extractor depends on.
func rowsText(ctx context.Context, reader *pdf.Reader) (string, error) {
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			b.WriteString(strings.TrimRight(line.String(), " "))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func plainText(reader *pdf.Reader) (string, error) {
	rs, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}
