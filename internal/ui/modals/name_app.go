package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// NameAppState is the dialog that names a new app before it is created
// from a template.
type NameAppState struct {
	TemplateSlug string
	TemplateName string
	Description  string
	Creating     bool

	name string
	form *huh.Form
}

func (*NameAppState) modalState() {}

// NewNameAppState opens the dialog pre-filled with initialName
func NewNameAppState(slug, templateName, description, initialName string) *NameAppState {
	s := &NameAppState{
		TemplateSlug: slug,
		TemplateName: templateName,
		Description:  description,
		name:         initialName,
	}
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("App name").
				Placeholder("Untitled").
				CharLimit(ModalInputCharLimit).
				Value(&s.name),
		),
	).WithTheme(ModalTheme()).
		WithShowHelp(false).
		WithWidth(ModalInputWidth)
	initHuhForm(s.form)
	return s
}

func (s *NameAppState) Title() string { return "Create app from " + s.TemplateName }

func (s *NameAppState) Help() string {
	if s.Creating {
		return "Creating app..."
	}
	return "Enter: create  Esc: cancel"
}

// Name returns the entered name, trimmed
func (s *NameAppState) Name() string {
	return strings.TrimSpace(s.name)
}

func (s *NameAppState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	parts := []string{title}
	if s.Description != "" {
		desc := lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Render(ansi.Wordwrap(s.Description, ModalInputWidth, ""))
		parts = append(parts, desc, "")
	}
	parts = append(parts, s.form.View(), ModalHelpStyle.Render(s.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *NameAppState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if s.Creating {
		return s, nil
	}
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}
