package ingest

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpenExportCSVFromZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"README.TXT":  "ignore me",
		"LPAY_CD.CSV": "FILING_ID,AMOUNT\n1,100\n",
	})

	r, err := openExportCSV(data, "LPAY_CD.CSV")
	if err != nil {
		t.Fatalf("openExportCSV returned error: %v", err)
	}
	content, _ := io.ReadAll(r)
	if string(content) != "FILING_ID,AMOUNT\n1,100\n" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestOpenExportCSVMatchesNestedEntry(t *testing.T) {
	data := buildZip(t, map[string]string{
		"export/lpay_cd.csv": "FILING_ID\n1\n",
	})

	if _, err := openExportCSV(data, "LPAY_CD.CSV"); err != nil {
		t.Errorf("expected case-insensitive nested match, got error: %v", err)
	}
}

func TestOpenExportCSVMissingEntry(t *testing.T) {
	data := buildZip(t, map[string]string{"OTHER.CSV": "x\n"})

	if _, err := openExportCSV(data, "LPAY_CD.CSV"); err == nil {
		t.Error("expected an error when the named file is absent")
	}
}

func TestOpenExportCSVPlainDownload(t *testing.T) {
	csv := []byte("FILING_ID\n1\n")

	r, err := openExportCSV(csv, "")
	if err != nil {
		t.Fatalf("openExportCSV returned error: %v", err)
	}
	content, _ := io.ReadAll(r)
	if !bytes.Equal(content, csv) {
		t.Errorf("plain download should pass through unchanged")
	}
}
