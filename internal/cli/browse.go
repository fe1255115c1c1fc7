package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/signkit/signspace/pkg/proforme"
	"github.com/signkit/signspace/pkg/space"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newBrowseCmd creates the browse command: an interactive list of the
// proformes active for a cultural context. Selecting one prints its
// handshape, orientation, and concept associations.
func newBrowseCmd() *cobra.Command {
	var (
		region    string
		formality float64
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively inspect the proforme catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := proforme.NewRegistry()
			registry.PrepareForContext(space.CulturalContext{
				Region:         region,
				FormalityLevel: formality,
			})

			model := newProformeListModel(registry.Active())
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(proformeListModel); ok && m.selected != nil {
				printProforme(m.selected)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "france", "cultural region")
	cmd.Flags().Float64Var(&formality, "formality", 0.5, "formality level in [0,1]")

	return cmd
}

// =============================================================================
// proformeListModel - Interactive proforme selection
// =============================================================================

// proformeListModel is the bubbletea model for interactive proforme browsing.
type proformeListModel struct {
	proformes []*proforme.Proforme
	cursor    int
	selected  *proforme.Proforme
}

func newProformeListModel(proformes []*proforme.Proforme) proformeListModel {
	return proformeListModel{proformes: proformes}
}

func (m proformeListModel) Init() tea.Cmd {
	return nil
}

func (m proformeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.proformes)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.proformes[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m proformeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Proforme"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, p := range m.proformes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		regional := ""
		if len(p.Regions) > 0 {
			regional = StyleHighlight.Render(strings.Join(p.Regions, ","))
		}

		line := fmt.Sprintf("%s%-18s %-22s %s", cursor, p.Name, listDimStyle.Render(p.Represents), regional)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.proformes))))

	return b.String()
}

// printProforme prints the full detail of one proforme.
func printProforme(p *proforme.Proforme) {
	printNewline()
	fmt.Println(StyleTitle.Render(p.Name))
	printKeyValue("id", p.ID)
	printKeyValue("represents", p.Represents)
	if len(p.Associated) > 0 {
		printKeyValue("associated", strings.Join(p.Associated, ", "))
	}
	if len(p.Regions) > 0 {
		printKeyValue("regions", strings.Join(p.Regions, ", "))
	}
	printKeyValue("orientation", fmt.Sprintf("palm %s, fingers %s", p.Orient.Palm, p.Orient.Fingers))
	printKeyValue("handshape", fmt.Sprintf("thumb %.1f · index %.1f · middle %.1f · ring %.1f · pinky %.1f",
		p.Shape.Thumb, p.Shape.Index, p.Shape.Middle, p.Shape.Ring, p.Shape.Pinky))
	printKeyValue("tension", fmt.Sprintf("%.2f", p.Shape.Tension))
	if p.Pos != nil {
		printKeyValue("position", fmt.Sprintf("(%.2f, %.2f, %.2f)", p.Pos.X, p.Pos.Y, p.Pos.Z))
	}
}
