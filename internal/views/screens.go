package views

import (
	"fmt"
	"strings"
)

type ListPanelData struct {
	InputView string
	Snapshot  BoardSnapshot
	Cursor    int
	EditingID string
	EditView  string
}

type HelpPanelData struct {
	Mode     string
	Bindings []string
	HelpView string
}

// RenderListPanel draws the new-task input, the select-all toggle, the items
// and the footer. The toggle and list are hidden while the list is empty.
func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString("todos:\n")
	b.WriteString(data.InputView + "\n")

	snap := data.Snapshot
	if !snap.Summary.IsListNonEmpty && len(snap.Items) == 0 {
		return strings.TrimSpace(b.String())
	}

	b.WriteString(fmt.Sprintf("%s mark all as complete\n", checkbox(snap.SelectAll)))
	b.WriteString(RenderList(snap.Items, data.Cursor, data.EditingID, data.EditView))
	b.WriteString("\n" + SummaryLine(snap.Summary))
	return strings.TrimSpace(b.String())
}

func RenderList(items []BoardItem, cursor int, editingID, editView string) string {
	var b strings.Builder
	for i, item := range items {
		marker := " "
		if i == cursor {
			marker = theme.cursor.Render(">")
		}
		if item.ID == editingID {
			b.WriteString(fmt.Sprintf("%s %d. %s\n", marker, i+1, editView))
			continue
		}
		title := item.Title
		if item.Done {
			title = theme.done.Render(title)
		}
		b.WriteString(fmt.Sprintf("%s %d. %s %s\n", marker, i+1, checkbox(item.Done), title))
	}
	return b.String()
}

// SummaryLine renders the remaining count and, when anything is done, the
// clear-completed hint.
func SummaryLine(s Summary) string {
	unit := "items"
	if s.RemainingCount == 1 {
		unit = "item"
	}
	line := fmt.Sprintf("%d %s left", s.RemainingCount, unit)
	if s.DoneCount > 0 {
		line += fmt.Sprintf(" | Clear completed (%d)", s.DoneCount)
	}
	return line
}

// Markdown renders the items as a GitHub style checklist.
func Markdown(title string, items []BoardItem) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("# " + title + "\n\n")
	}
	if len(items) == 0 {
		b.WriteString("_Nothing to do._\n")
		return b.String()
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- [%s] %s\n", markdownCheck(item.Done), item.Title))
	}
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n%s",
		strings.ToLower(data.Mode),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func markdownCheck(done bool) string {
	if done {
		return "x"
	}
	return " "
}
