// Adapted from https://github.com/koushamad/PDFtoMD/blob/master/PDFtoMD.go

package document_parsing

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gen2brain/go-fitz"
)

var (
	hardcodedImages = regexp.MustCompile(`!\[\]\(data:image/[^)]+\)`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// PDFToMD converts every page of the PDF into markdown. Pages whose layout
// cannot be converted fall back to their plain text.
func PDFToMD(contents []byte) (string, error) {
	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return "", fmt.Errorf("error opening pdf: %w", err)
	}
	defer doc.Close()

	converter := md.NewConverter("", true, nil)

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		page, err := pageToMD(doc, converter, i)
		if err != nil {
			return "", fmt.Errorf("error extracting page %d: %w", i+1, err)
		}

		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		b.WriteString(page)
		b.WriteString("\n\n")
	}

	return strings.TrimSpace(b.String()), nil
}

func pageToMD(doc *fitz.Document, converter *md.Converter, page int) (string, error) {
	html, err := doc.HTML(page, true)
	if err == nil {
		text, convErr := converter.ConvertString(html)
		if convErr == nil {
			return CleanMarkdown(text), nil
		}
	}
	return doc.Text(page)
}

// CleanMarkdown drops inline base64 images, which only inflate the prompt,
// and collapses runs of blank lines.
func CleanMarkdown(content string) string {
	content = hardcodedImages.ReplaceAllString(content, "")
	return blankRuns.ReplaceAllString(content, "\n\n")
}
