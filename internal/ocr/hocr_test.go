package ocr

import (
	"strings"
	"testing"
)

const hocrWithConfidence = `<html><body>
<div class="ocr_page">
  <span class="ocr_line">
    <span class="ocrx_word" title="bbox 0 0 10 10; x_wconf 90">RESOLUCIÓN</span>
    <span class="ocrx_word" title="bbox 10 0 20 10; x_wconf 80">No.</span>
    <span class="ocrx_word" title="bbox 20 0 30 10; x_wconf 70">045-2024</span>
  </span>
  <span class="ocrx_line">
    <span class="ocrx_word" title="x_wconf 60">Dado</span>
    <span class="ocrx_word" title="x_wconf 40">en</span>
    <span class="ocrx_word" title="x_wconf 50">Quito</span>
  </span>
</div>
</body></html>`

func TestParseHOCR_LinesAndConfidence(t *testing.T) {
	doc, err := ParseHOCR(strings.NewReader(hocrWithConfidence), "scan.hocr")
	if err != nil {
		t.Fatalf("ParseHOCR failed: %v", err)
	}

	if doc.Source != "scan.hocr" {
		t.Errorf("Source = %q", doc.Source)
	}
	wantText := "RESOLUCIÓN No. 045-2024\nDado en Quito"
	if doc.Text != wantText {
		t.Errorf("Text = %q, want %q", doc.Text, wantText)
	}

	if !doc.HasConfidence() {
		t.Fatal("Expected per-line confidence")
	}
	if len(doc.LineConfidence) != 2 {
		t.Fatalf("Expected 2 line confidences, got %d", len(doc.LineConfidence))
	}
	if doc.LineConfidence[0] != 80 {
		t.Errorf("First line confidence = %v, want 80", doc.LineConfidence[0])
	}
	if doc.LineConfidence[1] != 50 {
		t.Errorf("Second line confidence = %v, want 50", doc.LineConfidence[1])
	}
}

func TestParseHOCR_PartialConfidenceDropsAll(t *testing.T) {
	src := `<html><body>
<span class="ocr_line">
  <span class="ocrx_word" title="x_wconf 90">primera</span>
</span>
<span class="ocr_line">
  <span class="ocrx_word" title="bbox 0 0 1 1">segunda</span>
</span>
</body></html>`

	doc, err := ParseHOCR(strings.NewReader(src), "partial.hocr")
	if err != nil {
		t.Fatalf("ParseHOCR failed: %v", err)
	}
	if doc.Text != "primera\nsegunda" {
		t.Errorf("Text = %q", doc.Text)
	}
	if doc.HasConfidence() {
		t.Error("Confidences must be all-or-nothing; partial data should yield none")
	}
}

func TestParseHOCR_LineWithoutWordSpans(t *testing.T) {
	src := `<html><body>
<span class="ocr_line">texto  suelto   de la línea</span>
</body></html>`

	doc, err := ParseHOCR(strings.NewReader(src), "bare.hocr")
	if err != nil {
		t.Fatalf("ParseHOCR failed: %v", err)
	}
	if doc.Text != "texto suelto de la línea" {
		t.Errorf("Text = %q", doc.Text)
	}
	if doc.HasConfidence() {
		t.Error("A line without word spans carries no confidence")
	}
}

func TestParseHOCR_NoLines(t *testing.T) {
	_, err := ParseHOCR(strings.NewReader("<html><body><p>nada</p></body></html>"), "empty.hocr")
	if err == nil {
		t.Fatal("Expected error for a document without hOCR lines")
	}
	if !strings.Contains(err.Error(), "empty.hocr") {
		t.Errorf("Error should name the source: %v", err)
	}
}
