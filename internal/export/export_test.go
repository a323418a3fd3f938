package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/sandeepkv93/todos/internal/model"
)

type fixedList []model.Task

func (f fixedList) All() []model.Task { return f }

func sample() fixedList {
	return fixedList{
		{ID: "a", Title: "buy milk", Order: 1, Done: true},
		{ID: "b", Title: "write report", Order: 2},
	}
}

func TestExportMarkdown(t *testing.T) {
	out, err := NewExporter(sample(), "Groceries").Export("md")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "# Groceries\n\n- [x] buy milk\n- [ ] write report\n"
	if string(out) != want {
		t.Fatalf("unexpected markdown:\n%s", out)
	}
}

func TestExportJSON(t *testing.T) {
	out, err := NewExporter(sample(), "").Export("json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var got []jsonTask
	if err := sonic.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Title != "buy milk" || !got[0].Done || got[1].Order != 2 {
		t.Fatalf("unexpected json: %#v", got)
	}
}

func TestExportCSV(t *testing.T) {
	out, err := NewExporter(sample(), "").Export("CSV")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 || lines[0] != "id,order,title,done" || lines[1] != "a,1,buy milk,true" {
		t.Fatalf("unexpected csv: %q", out)
	}
}

func TestExportPDF(t *testing.T) {
	out, err := NewExporter(sample(), "").Export(".pdf")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", out[:min(len(out), 16)])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := NewExporter(sample(), "").Export("docx"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
