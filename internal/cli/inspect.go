package cli

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/radials/pkg/radial"
	"github.com/matzehuels/radials/pkg/render"
	"github.com/matzehuels/radials/pkg/widget"
)

// Terminal cells are mapped to surface pixels with these factors.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

var (
	inspectSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	inspectTooltipStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan).Padding(0, 1)
	inspectErrorStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorRed).Padding(0, 1)
)

// inspectKeys are the key bindings of the inspector.
type inspectKeys struct {
	Next      key.Binding
	Prev      key.Binding
	Leave     key.Binding
	Threshold key.Binding
	Target    key.Binding
	Save      key.Binding
	Quit      key.Binding
}

func newInspectKeys() inspectKeys {
	return inspectKeys{
		Next:      key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→", "next slice")),
		Prev:      key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "prev slice")),
		Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave")),
		Threshold: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "threshold")),
		Target:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit target")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save svg")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k inspectKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Leave, k.Threshold, k.Target, k.Save, k.Quit}
}

func (k inspectKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next, k.Leave}, {k.Threshold, k.Target, k.Save, k.Quit}}
}

// runMsg carries a scheduled widget callback onto the bubbletea loop.
type runMsg func()

// termReporter keeps the latest error report for display.
type termReporter struct {
	last *widget.ErrorReport
}

func (r *termReporter) ReportError(rep widget.ErrorReport) { r.last = &rep }
func (r *termReporter) ClearErrors()                       { r.last = nil }

// inspectModel hosts a widget inside a bubbletea program. Bubbletea's
// Update is the widget's event loop: key presses become pointer events,
// window size changes become debounced resizes.
type inspectModel struct {
	w        *widget.Widget
	sink     *render.SVGSink
	errs     *termReporter
	req      widget.Request
	title    string
	snapshot string

	keys    inspectKeys
	help    help.Model
	target  textinput.Model
	editing bool

	cursor   int // index into the bundle's arcs, -1 for none
	pending  int // updates not yet acknowledged
	status   string
	quitting bool
}

func newInspectModel(req widget.Request, title, snapshot string, sched widget.Scheduler, opts ...widget.Option) (*inspectModel, error) {
	m := &inspectModel{
		sink:     render.NewSVGSink(render.WithTitle(title)),
		errs:     &termReporter{},
		req:      req,
		title:    title,
		snapshot: snapshot,
		keys:     newInspectKeys(),
		help:     help.New(),
		target:   textinput.New(),
		cursor:   -1,
	}
	m.target.Prompt = "target: "
	m.target.CharLimit = 24
	w, err := widget.New(widget.RendererContext{Renderer: m.sink, Errors: m.errs}, sched, opts...)
	if err != nil {
		return nil, err
	}
	m.w = w
	// The widget parks this update until the first window size arrives.
	m.update(req)
	return m, nil
}

func (m *inspectModel) update(req widget.Request) {
	m.req = req
	m.pending++
	m.w.Update(req, func() { m.pending-- })
}

func (m *inspectModel) Init() tea.Cmd { return nil }

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		m.clampCursor()
	case tea.WindowSizeMsg:
		size := radial.Size{Width: float64(msg.Width) * cellWidth, Height: float64(msg.Height) * cellHeight}
		m.req.Size = size
		m.w.Resize(size)
		if m.w.Readiness() == widget.Loading {
			m.w.MarkReady()
			m.clampCursor()
		}
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *inspectModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		return m.editTarget(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.w.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.hover(m.cursor + 1)
	case key.Matches(msg, m.keys.Prev):
		m.hover(m.cursor - 1)
	case key.Matches(msg, m.keys.Leave):
		m.cursor = -1
		m.w.PointerLeave()
	case key.Matches(msg, m.keys.Threshold):
		req := m.req
		req.Config.Threshold = !req.Config.Threshold
		m.update(req)
		m.clampCursor()
	case key.Matches(msg, m.keys.Target):
		m.editing = true
		m.target.Reset()
		m.target.Placeholder = strconv.FormatFloat(m.req.Config.TargetValue, 'g', -1, 64)
		return m.target.Focus()
	case key.Matches(msg, m.keys.Save):
		m.writeSnapshot()
	}
	return nil
}

// editTarget feeds keys to the target input. Enter applies a finite value,
// esc or an empty input keeps the current target.
func (m *inspectModel) editTarget(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.target.Blur()
		text := strings.TrimSpace(m.target.Value())
		if text == "" {
			return nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			m.status = fmt.Sprintf("invalid target %q", text)
			return nil
		}
		req := m.req
		req.Config.TargetValue = v
		m.update(req)
		m.clampCursor()
		m.status = "target " + text
		return nil
	case tea.KeyEsc, tea.KeyCtrlC:
		m.editing = false
		m.target.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.target, cmd = m.target.Update(msg)
	return cmd
}

// hover moves the pointer to the arc at index i, wrapping around.
func (m *inspectModel) hover(i int) {
	b, ok := m.w.Bundle()
	if !ok || len(b.Arcs) == 0 {
		return
	}
	i = (i%len(b.Arcs) + len(b.Arcs)) % len(b.Arcs)
	a := b.Arcs[i]
	c := a.Centroid()
	if m.w.PointerEnter(a.RecordIndex, b.CenterX+c.X, b.CenterY+c.Y) {
		m.cursor = i
	}
}

// clampCursor drops the selection when the redrawn chart has no such arc.
func (m *inspectModel) clampCursor() {
	b, ok := m.w.Bundle()
	if !ok || m.cursor >= len(b.Arcs) {
		m.cursor = -1
	}
}

func (m *inspectModel) writeSnapshot() {
	data := m.sink.Snapshot(m.w.Tooltip())
	if data == nil {
		m.status = "nothing to save"
		return
	}
	if err := os.WriteFile(m.snapshot, data, 0o644); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "saved " + m.snapshot
}

func (m *inspectModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")

	if m.w.Readiness() == widget.Loading {
		b.WriteString(StyleDim.Render("waiting for terminal size..."))
		return b.String()
	}

	if rep := m.errs.last; rep != nil {
		b.WriteString(inspectErrorStyle.Render(StyleError.Bold(true).Render(rep.Title) + "\n" + rep.Message))
		b.WriteString("\n")
	} else if bundle, ok := m.w.Bundle(); ok {
		b.WriteString(m.arcTable(bundle))
		b.WriteString("\n")
	}

	if t := m.w.Tooltip(); t.Visible {
		b.WriteString(inspectTooltipStyle.Render(t.Content))
		b.WriteString("\n")
	}
	if m.editing {
		b.WriteString(m.target.View())
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%s · %s · %.0fx%.0f", m.w.Readiness(), m.w.State(), m.req.Size.Width, m.req.Size.Height)
	if m.status != "" {
		footer += " · " + m.status
	}
	b.WriteString(StyleDim.Render(footer))
	return b.String()
}

func (m *inspectModel) arcTable(bundle radial.Bundle) string {
	rows := make([][]string, 0, len(bundle.Arcs))
	for i, a := range bundle.Arcs {
		rec := bundle.Records[a.RecordIndex]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		above := ""
		if a.AboveThreshold {
			above = "▲"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Fill)).Render("██")
		rows = append(rows, []string{
			cursor,
			swatch,
			rec.Category,
			rec.Group,
			fmt.Sprintf("%g", rec.MetricA),
			fmt.Sprintf("%.1f°–%.1f°", degrees(a.StartAngle), degrees(a.EndAngle)),
			fmt.Sprintf("%.0f–%.0f", a.InnerRadius, a.OuterRadius),
			above,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Category", "Group", "Value", "Angle", "Radius", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if row == m.cursor {
				return inspectSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// inspectCommand creates the interactive terminal inspector.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		chart    chartFlags
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "inspect [data]",
		Short: "Explore a chart interactively in the terminal",
		Long: `Explore a chart interactively in the terminal.

Arrow keys hover slices and show their tooltip. Resizing the terminal
re-lays out the chart after a short pause. "t" toggles the threshold,
"e" edits the target value and "s" saves the current view, tooltip
included, as SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, roles, cfg, err := chart.loadChart(cmd, args[0])
			if err != nil {
				return err
			}
			if snapshot == "" {
				snapshot = basePath("", args[0]) + ".snapshot.svg"
			}

			var prog *tea.Program
			sched := widget.NewTimerScheduler(func(fn func()) { prog.Send(runMsg(fn)) })
			m, err := newInspectModel(
				widget.Request{Rows: tbl.Rows, Roles: roles, Config: cfg},
				args[0], snapshot, sched,
				widget.WithID(args[0]),
			)
			if err != nil {
				return err
			}
			prog = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}

	chart.register(cmd)
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "file written by the save key (default: <input>.snapshot.svg)")

	return cmd
}
