package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	pio "github.com/matzehuels/prooftower/pkg/io"
	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/proof"
	"github.com/matzehuels/prooftower/pkg/proof/magic"
	"github.com/matzehuels/prooftower/pkg/viewer"
	"github.com/matzehuels/prooftower/pkg/watch"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMagicStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

const exploreHelp = "↑/↓ move  ⏎ toggle  u/U pull/push up  d/D pull/push down  f focus  m magic  l layout  r reset  q quit"

// exploreCommand creates the interactive proof explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var watchFile bool

	cmd := &cobra.Command{
		Use:   "explore [trace.xml]",
		Short: "Browse a proof interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], watchFile)
		},
	}

	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "reload the proof when the file changes")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, path string, watchFile bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	// The view logs nothing: log lines would tear the alternate screen.
	opts := viewer.Options{
		Layout: cfg.LayoutOptions(),
		Magic:  cfg.Magic.Enabled,
	}
	v, err := openProofView(ctx, path, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newExploreModel(ctx, v, path), tea.WithContext(ctx), tea.WithAltScreen())

	if watchFile {
		// Handler calls are serialized, so cur needs no lock.
		cur := v
		w, err := watch.New([]string{path}, func([]string) {
			st := cur.State()
			opts.Layout, opts.Magic = st.Layout, st.Magic
			next, err := openProofView(ctx, path, opts)
			if err == nil {
				cur = next
			}
			p.Send(reloadMsg{view: next, err: err})
		}, watch.Options{})
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.Send(watchErrMsg{err: err})
			}
		}()
	}

	final, err := p.Run()
	if m, ok := final.(exploreModel); ok && m.watchErr != nil {
		c.Logger.Warn("stopped watching", "path", path, "error", m.watchErr)
	}
	return err
}

func openProofView(ctx context.Context, path string, opts viewer.Options) (*viewer.ProofView, error) {
	list, err := pio.ImportProof(path)
	if err != nil {
		return nil, err
	}
	return viewer.NewProofView(ctx, list, opts)
}

// watchErrMsg reports that the file watcher gave up.
type watchErrMsg struct{ err error }

// reloadMsg carries a proof reopened after its file changed.
type reloadMsg struct {
	view *viewer.ProofView
	err  error
}

// =============================================================================
// exploreModel - Interactive proof navigation
// =============================================================================

// exploreModel is the bubbletea model of the explorer. Views are driven
// with the immediate renderer, so every operation has settled by the time
// it returns.
type exploreModel struct {
	ctx    context.Context
	view   *viewer.ProofView
	name   string
	nodes  []*proof.HNode
	Cursor int
	Offset int
	Height int
	status string

	watchErr error
}

func newExploreModel(ctx context.Context, v *viewer.ProofView, path string) exploreModel {
	m := exploreModel{ctx: ctx, view: v, name: filepath.Base(path), Height: 20}
	m.refresh("")
	return m
}

// refresh re-reads the visible nodes and keeps the cursor on the node it
// pointed at when that node is still shown.
func (m *exploreModel) refresh(keep string) {
	m.nodes = m.view.Hierarchy().Descendants()
	m.Cursor = 0
	for i, n := range m.nodes {
		if n.ID == keep {
			m.Cursor = i
			break
		}
	}
	m.scroll()
}

func (m *exploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m exploreModel) selected() string {
	if len(m.nodes) == 0 {
		return ""
	}
	return m.nodes[m.Cursor].ID
}

// apply runs op and reports its outcome in the status line.
func (m *exploreModel) apply(name string, op func(ctx context.Context) (viewer.Outcome, error)) {
	keep := m.selected()
	out, err := op(m.ctx)
	switch {
	case err != nil:
		m.status = StyleWarning.Render(err.Error())
	default:
		m.status = fmt.Sprintf("%s: %s", name, out)
	}
	m.refresh(keep)
}

func (m *exploreModel) rewrite(op magic.Op) {
	id := m.selected()
	m.apply(string(op), func(ctx context.Context) (viewer.Outcome, error) {
		return m.view.Rewrite(ctx, op, id)
	})
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.scroll()
			}
		case "down", "j":
			if m.Cursor < len(m.nodes)-1 {
				m.Cursor++
				m.scroll()
			}
		case "enter", " ":
			id := m.selected()
			m.apply("toggle", func(ctx context.Context) (viewer.Outcome, error) {
				return m.view.Toggle(ctx, id)
			})
		case "u":
			m.rewrite(magic.OpPullUp)
		case "U":
			m.rewrite(magic.OpPushUp)
		case "d":
			m.rewrite(magic.OpPullDown)
		case "D":
			m.rewrite(magic.OpPushDown)
		case "f":
			id := m.selected()
			m.apply("focus", func(ctx context.Context) (viewer.Outcome, error) {
				return m.view.FocusSubProof(ctx, id)
			})
		case "m":
			on := !m.view.Magic()
			m.apply("magic", func(ctx context.Context) (viewer.Outcome, error) {
				return m.view.SetMagic(ctx, on)
			})
		case "l":
			opts := m.view.Layout()
			if opts.Mode == layout.ModeLinear {
				opts.Mode = layout.ModeTree
			} else {
				opts.Mode = layout.ModeLinear
			}
			m.apply("layout", func(ctx context.Context) (viewer.Outcome, error) {
				return m.view.SetLayout(ctx, opts)
			})
		case "r":
			m.apply("reset", m.view.Reset)
		}
	case watchErrMsg:
		m.watchErr = msg.err
		m.status = StyleWarning.Render("watch stopped: " + msg.err.Error())
	case reloadMsg:
		if msg.err != nil {
			m.status = StyleWarning.Render("reload failed: " + msg.err.Error())
			return m, nil
		}
		keep := m.selected()
		m.view = msg.view
		m.status = "reloaded " + m.name
		m.refresh(keep)
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	title := m.name
	if m.view.Magic() {
		title += " " + listMagicStyle.Render("[magic]")
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(exploreHelp))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}
	for i := m.Offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor)
		b.WriteString(strings.Repeat("  ", n.Depth))
		b.WriteString(style.Render(nodeLine(n)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d nodes", len(m.nodes), m.view.Hierarchy().Len())))
	if m.status != "" {
		b.WriteString("  " + m.status)
	}
	return b.String()
}

// nodeLine renders one node: its label and a marker for collapsed or
// synthetic nodes.
func nodeLine(n *proof.HNode) string {
	label := n.Node.Label(n.Format)
	switch {
	case n.Node.Type.IsSynthetic():
		label = listMagicStyle.Render(label)
	case n.IsCollapsed():
		label += listDimStyle.Render(fmt.Sprintf(" (+%d)", len(n.All)))
	}
	return label
}
