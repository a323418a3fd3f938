package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	listWidth = 64
	sideWidth = 40
)

// AppData is one frame of the terminal UI. Empty sections are left out.
type AppData struct {
	Header       string
	ListPane     string
	SidePane     string
	StatusLine   string
	StatusError  bool
	Notification string
	Footer       string
}

type palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
	frame  lipgloss.Style
	muted  lipgloss.Style
	done   lipgloss.Style
	cursor lipgloss.Style
}

var theme = palette{
	title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	failed: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	done:   lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8")),
	cursor: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
}

func RenderApp(data AppData) string {
	body := theme.frame.Width(listWidth).Render(data.ListPane)
	if data.SidePane != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, theme.frame.Width(sideWidth).Render(data.SidePane))
	}

	out := []string{theme.title.Render(data.Header), body}
	if data.StatusLine != "" {
		style := theme.ok
		if data.StatusError {
			style = theme.failed
		}
		out = append(out, style.Render(data.StatusLine))
	}
	if data.Notification != "" {
		out = append(out, theme.frame.Render(data.Notification))
	}
	if data.Footer != "" {
		out = append(out, theme.muted.Render(data.Footer))
	}
	return strings.Join(out, "\n")
}

// RenderMarkdown renders md for a dark terminal, wrapped to the list width.
// The raw text is returned when glamour cannot render it.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(listWidth+sideWidth),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
