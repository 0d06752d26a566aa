package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/edit"
	pkgio "github.com/matzehuels/scatter/pkg/io"
)

// Editor key steps.
const (
	moveStep   = 10.0
	rotateStep = 15.0
	scaleUp    = 1.1
	scaleDown  = 1 / 1.1
	maxUndo    = 100
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// tuiCommand creates the interactive editor command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file]",
		Short: "Edit a saved composition interactively",
		Long: `Edit a saved composition interactively.

  j/k        select shape         arrows     move (shift: x5)
  r/R        rotate -/+15°        +/-        scale
  f/b        bring front / back   d          delete
  u          undo                 s          save
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			comp, err := pkgio.ImportComposition(path)
			if err != nil {
				return err
			}

			m := newEditorModel(comp, func(c art.Composition) error {
				return pkgio.ExportComposition(c, path)
			})
			m.title = path

			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			if em, ok := final.(editorModel); ok && em.dirty {
				printWarning("Unsaved changes discarded")
			} else if ok && em.saves > 0 {
				printSuccess("Saved %s", path)
			}
			return nil
		},
	}
}

// =============================================================================
// editorModel - Interactive shape editor
// =============================================================================

// editorModel is the bubbletea model of the shape editor. Every key that
// changes the composition goes through edit.Op, so the editor and
// 'scatter edit' share semantics.
type editorModel struct {
	comp    art.Composition
	history []art.Composition
	save    func(art.Composition) error

	title  string
	cursor int
	offset int
	height int

	dirty  bool
	saves  int
	status string
	err    error
}

func newEditorModel(c art.Composition, save func(art.Composition) error) editorModel {
	return editorModel{comp: c, save: save, height: 15}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
		m.scroll()
	}
	return m, nil
}

func (m editorModel) handleKey(key string) (tea.Model, tea.Cmd) {
	m.status, m.err = "", nil

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "j":
		if m.cursor < len(m.comp.Shapes)-1 {
			m.cursor++
		}
	case "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "left":
		m.nudge(-moveStep, 0)
	case "right":
		m.nudge(moveStep, 0)
	case "up":
		m.nudge(0, -moveStep)
	case "down":
		m.nudge(0, moveStep)
	case "shift+left":
		m.nudge(-5*moveStep, 0)
	case "shift+right":
		m.nudge(5*moveStep, 0)
	case "shift+up":
		m.nudge(0, -5*moveStep)
	case "shift+down":
		m.nudge(0, 5*moveStep)
	case "r":
		m.apply(edit.Op{Op: edit.OpRotateBy, Degrees: -rotateStep})
	case "R":
		m.apply(edit.Op{Op: edit.OpRotateBy, Degrees: rotateStep})
	case "+", "=":
		m.apply(edit.Op{Op: edit.OpScale, Factor: scaleUp})
	case "-":
		m.apply(edit.Op{Op: edit.OpScale, Factor: scaleDown})
	case "f":
		m.apply(edit.Op{Op: edit.OpFront})
	case "b":
		m.apply(edit.Op{Op: edit.OpBack})
	case "d":
		m.apply(edit.Op{Op: edit.OpDelete})
	case "u":
		m.undo()
	case "s":
		m.write()
	}
	m.scroll()
	return m, nil
}

func (m *editorModel) nudge(dx, dy float64) {
	m.apply(edit.Op{Op: edit.OpNudge, DX: dx, DY: dy})
}

// apply runs op against the selected shape, recording an undo step. The
// cursor follows the shape when it is reordered.
func (m *editorModel) apply(op edit.Op) {
	if len(m.comp.Shapes) == 0 {
		return
	}
	id := m.comp.Shapes[m.cursor].ID
	op.Shape = id

	before := m.comp.Clone()
	if err := op.Apply(&m.comp); err != nil {
		m.comp, m.err = before, err
		return
	}
	m.history = append(m.history, before)
	if len(m.history) > maxUndo {
		m.history = m.history[1:]
	}
	m.dirty = true

	switch op.Op {
	case edit.OpDelete:
		m.status = "deleted " + id
		m.cursor = min(m.cursor, max(len(m.comp.Shapes)-1, 0))
	case edit.OpFront, edit.OpBack:
		if i, ok := edit.Find(&m.comp, id); ok {
			m.cursor = i
		}
	}
}

func (m *editorModel) undo() {
	if len(m.history) == 0 {
		m.status = "nothing to undo"
		return
	}
	m.comp = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.cursor = min(m.cursor, max(len(m.comp.Shapes)-1, 0))
	m.dirty = m.saves > 0 || len(m.history) > 0
	m.status = "undone"
}

func (m *editorModel) write() {
	if m.save == nil {
		return
	}
	if err := m.save(m.comp); err != nil {
		m.err = err
		return
	}
	m.dirty = false
	m.saves++
	m.status = "saved"
}

// scroll keeps the cursor inside the visible window.
func (m *editorModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m editorModel) View() string {
	var b strings.Builder

	title := "Scatter Editor"
	if m.title != "" {
		title += "  " + StyleDim.Render(m.title)
	}
	if m.dirty {
		title += StyleWarning.Render(" *")
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k select  arrows move  r/R rotate  +/- scale  f/b front/back  d delete  u undo  s save  q quit"))
	b.WriteString("\n\n")

	if len(m.comp.Shapes) == 0 {
		b.WriteString(StyleDim.Render("  no shapes"))
		b.WriteString("\n")
	} else {
		end := min(m.offset+m.height, len(m.comp.Shapes))
		b.WriteString(shapeTable(m.comp.Shapes[m.offset:end], m.cursor-m.offset))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.comp.Shapes))))
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(iconError + " " + m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(iconSuccess + " " + m.status))
	}
	return b.String()
}
