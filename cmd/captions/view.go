package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	captioning "github.com/koscakluka/ema-captions/core"
	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/notices"
	"github.com/muesli/reflow/wordwrap"
)

const (
	defaultWidth = 80
	placeholder  = `Press space and begin speaking...`
	cursor       = "|"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listeningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	idleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	finalStyle       = lipgloss.NewStyle().Bold(true)
	pendingStyle     = lipgloss.NewStyle().Faint(true).Italic(true)
	placeholderStyle = lipgloss.NewStyle().Faint(true)
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	destructiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	boxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	inner := max(width-boxStyle.GetHorizontalFrameSize(), 10)

	sections := []string{
		m.renderHeader(),
		boxStyle.Width(inner).Render(renderCaptions(m.log, inner)),
	}
	if status := renderStatus(m.notice, m.err); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderHeader() string {
	languageName := m.controller.Languages().Display(m.language)
	title := titleStyle.Render(fmt.Sprintf("Live Captions (%s)", languageName))

	var indicator string
	switch m.state {
	case captioning.StateListening:
		indicator = m.spinner.View() + listeningStyle.Render(" listening")
	case captioning.StateStopping:
		indicator = m.spinner.View() + listeningStyle.Render(" finishing")
	default:
		indicator = idleStyle.Render("○ idle")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", indicator)
}

// renderCaptions lays out the caption log oldest first. The pending entry is
// shown faint and italic with a trailing cursor.
func renderCaptions(log captions.Log, width int) string {
	entries := log.Entries()
	if len(entries) == 0 {
		return placeholderStyle.Render(placeholder)
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		text := entry.Text
		style := finalStyle
		if !entry.IsFinal {
			text += cursor
			style = pendingStyle
		}
		lines = append(lines, style.Render(wordwrap.String(text, width)))
	}
	return strings.Join(lines, "\n")
}

func renderStatus(notice notices.Notice, err error) string {
	if err != nil {
		return destructiveStyle.Render(err.Error())
	}
	if notice == (notices.Notice{}) {
		return ""
	}
	if notice.Severity == notices.SeverityDestructive {
		return destructiveStyle.Render(notice.String())
	}
	return infoStyle.Render(notice.String())
}
