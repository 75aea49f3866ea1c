package extractor

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/title-fetcher/internal/metadata"
)

/*
Responsibilities
- Parse an HTML document
- Locate the first <title> element in document order
- Normalize its text into a display title

A document without a title yields the empty string. Extraction never
fails outward: malformed documents are reported to the metadata sink
and treated as having no title.
*/

type TitleExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewTitleExtractor(
	metadataSink metadata.MetadataSink,
) TitleExtractor {
	return TitleExtractor{
		metadataSink: metadataSink,
	}
}

// Extract returns the normalized title of htmlByte, or "" when there is none.
func (t *TitleExtractor) Extract(
	sourceUrl string,
	htmlByte []byte,
) string {
	raw, err := t.extract(htmlByte)
	if err != nil {
		var extractionError *ExtractionError
		if errors.As(err, &extractionError) {
			t.metadataSink.RecordError(
				time.Now(),
				"extractor",
				"TitleExtractor.Extract",
				mapExtractionErrorToMetadataCause(extractionError),
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, sourceUrl),
				},
			)
		}
		return ""
	}
	return NormalizeTitle(raw)
}

func (t *TitleExtractor) extract(htmlByte []byte) (string, error) {
	if len(bytes.TrimSpace(htmlByte)) == 0 {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		return "", &ExtractionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseParseFailed,
		}
	}

	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", nil
	}

	// The HTML parser closes an open <title> at EOF; an unterminated
	// title element is not a title.
	if !hasClosedTitle(htmlByte) {
		return "", &ExtractionError{
			Retryable: false,
			Cause:     ErrCauseUnclosedTitle,
		}
	}

	return sel.Text(), nil
}

func hasClosedTitle(htmlByte []byte) bool {
	lower := bytes.ToLower(htmlByte)
	open := bytes.Index(lower, []byte("<title"))
	if open < 0 {
		return false
	}
	return bytes.Contains(lower[open:], []byte("</title"))
}

// NormalizeTitle cuts raw before its first "|" or, when there is none,
// before its first ":", and trims surrounding whitespace.
func NormalizeTitle(raw string) string {
	if i := strings.Index(raw, "|"); i >= 0 {
		raw = raw[:i]
	} else if i := strings.Index(raw, ":"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
