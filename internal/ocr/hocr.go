// Package ocr reads output of the external OCR collaborator. The engine
// itself is a black box; what arrives here is either a plain text blob or an
// hOCR document (the HTML microformat Tesseract and friends emit), which
// additionally carries per-word recognition confidence.
package ocr

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dmaldon/resolutor/internal/model"
)

var reWConf = regexp.MustCompile(`x_wconf\s+(\d+(?:\.\d+)?)`)

// ParseHOCR decodes an hOCR document into a RawDocument. Line text is the
// concatenation of the line's word spans; line confidence is the mean of the
// word confidences. When any line carries no confidence the whole document
// reports unknown confidence rather than a partially-filled slice.
func ParseHOCR(r io.Reader, source string) (model.RawDocument, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("parse hOCR: %w", err)
	}

	var lines []string
	var confidences []float64
	complete := true

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isOCRLine(n) {
			text, conf, ok := readLine(n)
			if text != "" {
				lines = append(lines, text)
				confidences = append(confidences, conf)
				if !ok {
					complete = false
				}
			}
			return // Lines do not nest
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(lines) == 0 {
		return model.RawDocument{}, fmt.Errorf("no hOCR lines in %s", source)
	}

	raw := model.RawDocument{
		Source: source,
		Text:   strings.Join(lines, "\n"),
	}
	if complete {
		raw.LineConfidence = confidences
	}
	return raw, nil
}

// ParseHOCRFile reads and decodes an hOCR file
func ParseHOCRFile(path string) (model.RawDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("open hOCR file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseHOCR(f, path)
}

func isOCRLine(n *html.Node) bool {
	return hasClass(n, "ocr_line") || hasClass(n, "ocrx_line") || hasClass(n, "ocr_header") || hasClass(n, "ocr_caption")
}

// readLine gathers the text and mean word confidence of one hOCR line.
// ok is false when no word span carried a confidence.
func readLine(line *html.Node) (string, float64, bool) {
	var words []string
	var sum float64
	var counted int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			if w := strings.TrimSpace(textContent(n)); w != "" {
				words = append(words, w)
			}
			if conf, ok := wordConfidence(n); ok {
				sum += conf
				counted++
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(line)

	// Lines without word spans still contribute their raw text
	if len(words) == 0 {
		return strings.Join(strings.Fields(textContent(line)), " "), 0, false
	}
	if counted == 0 {
		return strings.Join(words, " "), 0, false
	}
	return strings.Join(words, " "), sum / float64(counted), true
}

func wordConfidence(n *html.Node) (float64, bool) {
	m := reWConf.FindStringSubmatch(attr(n, "title"))
	if m == nil {
		return 0, false
	}
	conf, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return conf, true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(textContent(c))
		buf.WriteString(" ")
	}
	return strings.TrimSpace(buf.String())
}
