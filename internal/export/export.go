// Package export writes the task list as markdown, JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jung-kurt/gofpdf"

	"github.com/sandeepkv93/todos/internal/model"
	"github.com/sandeepkv93/todos/internal/views"
)

const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatPDF      = "pdf"
)

func Formats() []string {
	return []string{FormatMarkdown, FormatJSON, FormatCSV, FormatPDF}
}

// Lister is satisfied by the task store.
type Lister interface {
	All() []model.Task
}

type Exporter struct {
	tasks Lister
	title string
}

func NewExporter(tasks Lister, title string) *Exporter {
	if strings.TrimSpace(title) == "" {
		title = "Todos"
	}
	return &Exporter{tasks: tasks, title: title}
}

type jsonTask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
	Done  bool   `json:"done"`
}

func (e *Exporter) Export(format string) ([]byte, error) {
	all := e.tasks.All()
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case FormatMarkdown, "markdown":
		return []byte(views.Markdown(e.title, boardItems(all))), nil
	case FormatJSON:
		out := make([]jsonTask, 0, len(all))
		for _, t := range all {
			out = append(out, jsonTask{ID: t.ID, Title: t.Title, Order: t.Order, Done: t.Done})
		}
		return sonic.ConfigStd.MarshalIndent(out, "", "  ")
	case FormatCSV:
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "order", "title", "done"})
		for _, t := range all {
			_ = w.Write([]string{t.ID, strconv.Itoa(t.Order), t.Title, strconv.FormatBool(t.Done)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case FormatPDF:
		return e.pdf(all)
	default:
		return nil, fmt.Errorf("export: unknown format %s", format)
	}
}

func (e *Exporter) pdf(all []model.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(e.title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, e.title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	remaining := 0
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for i, t := range all {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		} else {
			remaining++
		}
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s %s", i+1, box, t.Title)), "0", "L", false)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(40, 6, views.SummaryLine(views.Summary{
		DoneCount:      len(all) - remaining,
		RemainingCount: remaining,
		IsListNonEmpty: len(all) > 0,
	}))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boardItems(all []model.Task) []views.BoardItem {
	out := make([]views.BoardItem, 0, len(all))
	for _, t := range all {
		out = append(out, views.BoardItem{ID: t.ID, TaskView: views.TaskView{Title: t.Title, Order: t.Order, Done: t.Done}})
	}
	return out
}
