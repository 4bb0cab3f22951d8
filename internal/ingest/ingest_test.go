package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func TestExtractTXT(t *testing.T) {
	text, err := Extract([]byte("Clause 1: Termination at will.\r\n\r\nClause 2: No warranty.\n"), "txt", "contract.txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Clause 1: Termination at will.\nClause 2: No warranty."
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestExtractTXTByMimeType(t *testing.T) {
	text, err := Extract([]byte("hello world"), "text/plain; charset=utf-8", "notes.txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	cases := []struct {
		name         string
		declaredType string
		fileName     string
	}{
		{"xlsx extension", "", "sheet.xlsx"},
		{"xlsx mime", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "sheet.xlsx"},
		{"image", "image/png", "scan.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract([]byte("irrelevant"), tc.declaredType, tc.fileName)
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestExtractEmptyTXTFailsExtraction(t *testing.T) {
	_, err := Extract(nil, "txt", "empty.txt")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractWhitespaceOnlyTXTFailsExtraction(t *testing.T) {
	_, err := Extract([]byte("   \n\t\n  "), "txt", "blank.txt")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractCorruptPDFFailsExtraction(t *testing.T) {
	_, err := Extract([]byte("%PDF-1.7 not a real pdf body"), "pdf", "contract.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractDOCX(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Section 1.</w:t></w:r></w:p><w:p><w:r><w:t>Section 2.</w:t></w:r></w:p></w:body></w:document>`)

	text, err := Extract(data, "docx", "contract.docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Section 1.\nSection 2."
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestExtractDOCXSniffedFromZip(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Hidden type.</w:t></w:r></w:p></w:body></w:document>`)

	// Browsers often upload docx as application/octet-stream.
	text, err := Extract(data, "application/octet-stream", "upload.bin")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hidden type." {
		t.Fatalf("text = %q", text)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := "  First   line \t here\r\n\r\n\r\nSecond\x00 line  \n"
	once := Normalize(raw)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("normalize not idempotent: %q vs %q", once, twice)
	}
	want := "First line here\nSecond line"
	if once != want {
		t.Fatalf("normalized = %q, want %q", once, want)
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"_rels/.rels":         `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`,
		"word/document.xml":   documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
