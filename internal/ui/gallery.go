package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/keys"
)

// GalleryIntro is shown above the template cards
const GalleryIntro = "Use one of our app templates to get started quickly. You can customize it using our visual editor."

// GalleryView renders template cards in a grid and an optional detail pane
type GalleryView struct {
	templates []api.Template
	selected  int
	width     int
	height    int
	focused   bool
	err       string

	detail     *api.Template
	detailView viewport.Model
}

// NewGalleryView creates an empty gallery view
func NewGalleryView() *GalleryView {
	vp := viewport.New()
	vp.SoftWrap = true
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return &GalleryView{detailView: vp}
}

// SetSize sets the content area dimensions
func (g *GalleryView) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.detailView.SetWidth(max(width-BorderSize, 1))
	g.detailView.SetHeight(max(height-BorderSize-2, 1))
}

// SetFocused sets whether keys move the card selection
func (g *GalleryView) SetFocused(focused bool) {
	g.focused = focused
}

// SetTemplates replaces the cards, keeping the selection in range
func (g *GalleryView) SetTemplates(templates []api.Template) {
	g.templates = templates
	if g.selected >= len(templates) {
		g.selected = max(len(templates)-1, 0)
	}
	g.err = ""
}

// SetError shows a message in place of the cards
func (g *GalleryView) SetError(msg string) {
	g.err = msg
}

// Select highlights the card with slug
func (g *GalleryView) Select(slug string) {
	for i, t := range g.templates {
		if t.Slug == slug {
			g.selected = i
			return
		}
	}
}

// SelectedTemplate returns the highlighted template
func (g *GalleryView) SelectedTemplate() (api.Template, bool) {
	if g.selected < 0 || g.selected >= len(g.templates) {
		return api.Template{}, false
	}
	return g.templates[g.selected], true
}

// ShowDetail opens the JSON detail pane for a template with embedded app data
func (g *GalleryView) ShowDetail(t api.Template) {
	g.detail = &t
	raw, err := json.Marshal(t.App)
	if err != nil {
		g.detailView.SetContent(StatusErrorStyle.Render(err.Error()))
	} else {
		g.detailView.SetContent(HighlightJSON(raw))
	}
	g.detailView.GotoTop()
}

// HideDetail closes the detail pane
func (g *GalleryView) HideDetail() {
	g.detail = nil
}

// DetailVisible reports whether the detail pane is open
func (g *GalleryView) DetailVisible() bool {
	return g.detail != nil
}

// columns returns how many cards fit on a row
func (g *GalleryView) columns() int {
	cols := (g.width + CardGap) / (CardWidth + CardGap)
	return max(cols, 1)
}

// Update moves the card selection or scrolls the detail pane
func (g *GalleryView) Update(msg tea.Msg) (*GalleryView, tea.Cmd) {
	if g.detail != nil {
		var cmd tea.Cmd
		g.detailView, cmd = g.detailView.Update(msg)
		return g, cmd
	}

	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !g.focused || len(g.templates) == 0 {
		return g, nil
	}
	cols := g.columns()
	switch keyMsg.String() {
	case keys.Left, "h":
		if g.selected > 0 {
			g.selected--
		}
	case keys.Right, "l":
		if g.selected < len(g.templates)-1 {
			g.selected++
		}
	case keys.Up, "k":
		if g.selected-cols >= 0 {
			g.selected -= cols
		}
	case keys.Down, "j":
		if g.selected+cols < len(g.templates) {
			g.selected += cols
		}
	case keys.Home:
		g.selected = 0
	case keys.End:
		g.selected = len(g.templates) - 1
	}
	return g, nil
}

// View renders the gallery
func (g *GalleryView) View() string {
	if g.detail != nil {
		return g.renderDetail()
	}

	title := PanelTitleStyle.Render("App Templates")
	intro := StatusMutedStyle.Width(max(g.width-2, 10)).Render(GalleryIntro)

	var body string
	switch {
	case g.err != "":
		body = StatusErrorStyle.Render(g.err)
	case len(g.templates) == 0:
		body = StatusMutedStyle.Render("No templates available.")
	default:
		body = g.renderCards()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, intro, "", body)
	return lipgloss.NewStyle().MaxHeight(g.height).Render(content)
}

func (g *GalleryView) renderCards() string {
	cols := g.columns()
	var rows []string
	for start := 0; start < len(g.templates); start += cols {
		end := min(start+cols, len(g.templates))
		cards := make([]string, 0, cols*2)
		for i := start; i < end; i++ {
			if i > start {
				cards = append(cards, strings.Repeat(" ", CardGap))
			}
			cards = append(cards, g.renderCard(g.templates[i], i == g.selected && g.focused))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (g *GalleryView) renderCard(t api.Template, selected bool) string {
	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	inner := CardWidth - BorderSize - 2

	name := t.Name
	if name == "" {
		name = t.Slug
	}
	name = runewidth.Truncate(name, inner, "…")
	name = name + strings.Repeat(" ", max(inner-runewidth.StringWidth(name), 0))

	descLines := CardHeight - BorderSize - 1
	desc := wrapLines(t.Summary(), inner, descLines)

	content := lipgloss.JoinVertical(lipgloss.Left,
		CardTitleStyle.Render(name),
		CardDescStyle.Render(desc),
	)
	return style.Width(CardWidth).Height(CardHeight).Render(content)
}

func (g *GalleryView) renderDetail() string {
	header := PanelTitleStyle.Render(fmt.Sprintf("%s (%s)", g.detail.Name, g.detail.Slug))
	pct := StatusMutedStyle.Render(fmt.Sprintf("%3.f%%", g.detailView.ScrollPercent()*100))
	top := lipgloss.JoinHorizontal(lipgloss.Top, header, " ", pct)

	content := lipgloss.JoinVertical(lipgloss.Left, top, g.detailView.View())
	return PanelFocusedStyle.
		Width(g.width).
		Height(g.height).
		Render(content)
}

// wrapLines word-wraps text to width and keeps at most n lines, marking
// truncation with an ellipsis
func wrapLines(text string, width, n int) string {
	if text == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(ansi.Wordwrap(text, width, ""), "\n")
	if len(lines) > n {
		lines = lines[:n]
		last := lines[n-1]
		lines[n-1] = ansi.Truncate(last, width-1, "") + "…"
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "…")
	}
	return strings.Join(lines, "\n")
}
