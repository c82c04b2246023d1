// Package tui contains the interactive review picker for pending intake
// requests. Conversion itself happens in the intake service; the picker only
// collects which requests the operator wants to accept.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"intakr/internal/intake"
)

const reviewVisible = 15

type reviewModel struct {
	requests []intake.Request
	filtered []int // indices into requests
	selected map[int]bool
	cursor   int
	filter   textinput.Model
	done     bool
	canceled bool
}

// ReviewResult holds the requests the operator selected for acceptance.
type ReviewResult struct {
	RequestIDs []string
	Canceled   bool
}

// ReviewApp wraps reviewModel for standalone use with tea.NewProgram.
type ReviewApp struct {
	picker reviewModel
	result *ReviewResult
}

func NewReviewApp(requests []intake.Request) *ReviewApp {
	return &ReviewApp{
		picker: newReview(requests),
	}
}

func (a *ReviewApp) Init() tea.Cmd {
	return a.picker.Init()
}

func (a *ReviewApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.picker.Update(msg)
	a.picker = m.(reviewModel)

	if a.picker.done || a.picker.canceled {
		a.result = a.picker.Result()
		return a, tea.Quit
	}

	return a, cmd
}

func (a *ReviewApp) View() string {
	return a.picker.View()
}

func (a *ReviewApp) GetResult() *ReviewResult {
	return a.result
}

func newReview(requests []intake.Request) reviewModel {
	ti := textinput.New()
	ti.Placeholder = "Filter requests..."
	ti.Focus()

	filtered := make([]int, len(requests))
	for i := range requests {
		filtered[i] = i
	}

	return reviewModel{
		requests: requests,
		filtered: filtered,
		selected: make(map[int]bool),
		filter:   ti,
	}
}

func (m reviewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, nil
		case "enter":
			if len(m.selected) > 0 {
				m.done = true
			}
			return m, nil
		case " ":
			if len(m.filtered) > 0 {
				idx := m.filtered[m.cursor]
				if m.selected[idx] {
					delete(m.selected, idx)
				} else {
					m.selected[idx] = true
				}
			}
			return m, nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	prevFilter := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)

	// Re-filter on text change
	if m.filter.Value() != prevFilter {
		m.applyFilter()
	}

	return m, cmd
}

func (m *reviewModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.filtered = m.filtered[:0]
	for i, r := range m.requests {
		if query == "" ||
			strings.Contains(strings.ToLower(r.ProjectName), query) ||
			strings.Contains(strings.ToLower(r.RequestedBy), query) ||
			strings.Contains(strings.ToLower(r.Description), query) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m reviewModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Review Pending Project Requests"))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("  No requests match filter"))
		b.WriteString("\n")
	} else {
		// Calculate scroll window
		start := 0
		if m.cursor >= reviewVisible {
			start = m.cursor - reviewVisible + 1
		}
		end := min(start+reviewVisible, len(m.filtered))

		for vi := start; vi < end; vi++ {
			idx := m.filtered[vi]
			req := m.requests[idx]

			cursor := "  "
			if vi == m.cursor {
				cursor = "> "
			}

			check := "[ ]"
			if m.selected[idx] {
				check = "[x]"
			}

			desc := ""
			if req.Description != "" {
				d := req.Description
				if len(d) > 50 {
					d = d[:50] + "..."
				}
				desc = dimStyle.Render(" - " + d)
			}

			label := fmt.Sprintf("%s (by %s)", req.ProjectName, req.RequestedBy)
			line := fmt.Sprintf("%s%s %s%s", cursor, check, label, desc)
			if vi == m.cursor {
				line = highlightStyle.Render(fmt.Sprintf("%s%s ", cursor, check)) + label + desc
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	count := len(m.selected)
	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"\n%d selected · Space: toggle · Enter: accept selected · Esc: cancel", count)))

	return b.String()
}

func (m reviewModel) Result() *ReviewResult {
	if m.canceled {
		return &ReviewResult{Canceled: true}
	}
	var ids []string
	for i, r := range m.requests {
		if m.selected[i] {
			ids = append(ids, r.ID)
		}
	}
	return &ReviewResult{RequestIDs: ids}
}
