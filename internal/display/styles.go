package display

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used to render a game. They are bound
// to a renderer so the colour profile follows the output.
type Styles struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Player   lipgloss.Style
	Turn     lipgloss.Style
	Folded   lipgloss.Style
	Marker   lipgloss.Style
	Pot      lipgloss.Style
	Info     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Selected lipgloss.Style
	Box      lipgloss.Style
}

// NewStyles builds the default palette on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Label: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Player: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),
		Turn: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Folded: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Marker: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Pot: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Selected: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
	}
}
