package extract

import (
	"encoding/base64"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"mentorchat/internal/model"
	"mentorchat/internal/pkg/docxextract"
	"mentorchat/internal/pkg/pdfextract"
)

const (
	maxTextChars = 8000
	maxCSVRows   = 50
	maxPDFPages  = 5
)

var (
	csvMimes = map[string]bool{
		"text/csv":                 true,
		"application/vnd.ms-excel": true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	}
	docMimes = map[string]bool{
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}
)

type Kind int

const (
	// KindNone marks an unrecognized mime: the attachment is silently skipped.
	KindNone Kind = iota
	KindImage
	KindText
)

// Content is the extraction result. Failures never surface as errors; a
// text-producing branch that cannot read its input degrades to an empty
// excerpt and the caller drops it.
type Content struct {
	Kind    Kind
	DataURL string
	Excerpt string
}

// FromAttachment routes on the declared mime and produces either an inline
// image data URL or a bounded text excerpt.
func FromAttachment(att model.Attachment) Content {
	mime := strings.ToLower(strings.TrimSpace(att.Mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return imageContent(att.Path, mime)
	case csvMimes[mime]:
		return Content{Kind: KindText, Excerpt: csvPreview(att.Path)}
	case mime == "application/pdf":
		return Content{Kind: KindText, Excerpt: pdfPreview(att.Path)}
	case docMimes[mime]:
		return Content{Kind: KindText, Excerpt: docxPreview(att.Path)}
	case strings.HasPrefix(mime, "text/"):
		return Content{Kind: KindText, Excerpt: textPreview(att.Path)}
	default:
		return Content{Kind: KindNone}
	}
}

// imageContent inlines the whole file as a data URL. No size cap is applied;
// oversized images inflate the provider payload accordingly.
func imageContent(path, mime string) Content {
	b, err := os.ReadFile(path)
	if err != nil {
		return Content{Kind: KindNone}
	}
	encoded := base64.StdEncoding.EncodeToString(b)
	return Content{Kind: KindImage, DataURL: "data:" + mime + ";base64," + encoded}
}

func textPreview(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return truncateRunes(strings.ToValidUTF8(string(b), ""), maxTextChars)
}

// csvPreview renders the leading rows, cells joined by ", " and rows by
// newlines. Rows beyond index maxCSVRows are dropped.
func csvPreview(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []string
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ""
		}
		rows = append(rows, strings.Join(record, ", "))
		if i >= maxCSVRows {
			break
		}
	}
	return strings.Join(rows, "\n")
}

func pdfPreview(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f, maxPDFPages)
	if err != nil {
		return ""
	}
	return text
}

func docxPreview(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	text, err := docxextract.ExtractText(f)
	if err != nil {
		return ""
	}
	return truncateRunes(text, maxTextChars)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
