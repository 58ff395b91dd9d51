package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// A terminal cell stands for cellW × cellH screen pixels of the chart.
const (
	cellW = 8.0
	cellH = 16.0

	headerRows = 1
	footerRows = 1
	panelWidth = 34

	// panStep is how far one arrow key moves the chart, in screen pixels.
	panStep = 4 * cellW
)

var (
	styleConnector = lipgloss.NewStyle().Foreground(colorDim)
	styleNode      = lipgloss.NewStyle().Foreground(colorWhite)
	styleSelected  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeader    = lipgloss.NewStyle().Foreground(colorGray)
	stylePanel     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			Width(panelWidth - 2)
)

// =============================================================================
// Messages
// =============================================================================

// rosterChangedMsg asks the viewer to reload the roster.
type rosterChangedMsg struct{}

// reloadedMsg carries a freshly built layout.
type reloadedMsg struct {
	roster *hris.Roster
	layout *layout.Layout
	err    error
}

// ReloadFunc rebuilds the roster and its layout.
type ReloadFunc func() (*hris.Roster, *layout.Layout, error)

// =============================================================================
// ChartModel - Interactive org chart
// =============================================================================

// ChartModel is the bubbletea model of `orgtower view`. All navigation goes
// through the canvas controller, so the terminal viewer and the HTTP
// session API share one interaction model.
type ChartModel struct {
	ctrl    *canvas.Controller
	roster  *hris.Roster
	reports map[string]int
	title   string
	reload  ReloadFunc

	width, height int
	status        string
}

// NewChartModel creates a viewer over ctrl. reload may be nil when the
// roster cannot change.
func NewChartModel(title string, roster *hris.Roster, ctrl *canvas.Controller, reload ReloadFunc) ChartModel {
	return ChartModel{
		ctrl:    ctrl,
		roster:  roster,
		reports: hris.DirectReports(roster.Employees),
		title:   title,
		reload:  reload,
		width:   100,
		height:  30,
	}
}

// Controller returns the controller, for saving the view on exit.
func (m ChartModel) Controller() *canvas.Controller { return m.ctrl }

func (m ChartModel) Init() tea.Cmd {
	return nil
}

func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case rosterChangedMsg:
		if m.reload == nil {
			return m, nil
		}
		m.status = "refreshing..."
		reload := m.reload
		return m, func() tea.Msg {
			r, l, err := reload()
			return reloadedMsg{roster: r, layout: l, err: err}
		}

	case reloadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.roster = msg.roster
		m.reports = hris.DirectReports(msg.roster.Employees)
		m.ctrl.SetLayout(msg.layout)
		m.status = fmt.Sprintf("roster updated · %d employees", len(msg.roster.Employees))
	}
	return m, nil
}

func (m ChartModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.drag(0, panStep)
	case "down", "j":
		m.drag(0, -panStep)
	case "left", "h":
		m.drag(panStep, 0)
	case "right", "l":
		m.drag(-panStep, 0)
	case "+", "=":
		m.ctrl.ZoomIn()
	case "-", "_":
		m.ctrl.ZoomOut()
	case "0", "r":
		m.ctrl.Reset()
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "m":
		m.selectManager()
	case "esc":
		m.ctrl.ClearSelection()
	}
	return m, nil
}

// handleMouse translates terminal mouse events into pointer events.
func (m *ChartModel) handleMouse(msg tea.MouseMsg) {
	p := canvas.Point{X: float64(msg.X) * cellW, Y: float64(msg.Y-headerRows) * cellH}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.Wheel(-1, p)
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.Wheel(1, p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y < headerRows || msg.X >= m.chartWidth() {
			return
		}
		m.ctrl.PointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.PointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		m.ctrl.PointerUp()
	}
}

// drag pans by (dx, dy) screen pixels with a press far outside the canvas,
// where no node can be hit.
func (m *ChartModel) drag(dx, dy float64) {
	start := canvas.Point{X: -1e9, Y: -1e9}
	m.ctrl.PointerDown(start)
	m.ctrl.PointerMove(canvas.Point{X: start.X + dx, Y: start.Y + dy})
	m.ctrl.PointerUp()
}

// cycle moves the selection through the chart in reading order and brings
// the new node into view.
func (m *ChartModel) cycle(step int) {
	nodes := m.ctrl.Layout().Nodes
	if len(nodes) == 0 {
		return
	}
	i := -1
	if n, ok := m.ctrl.Selected(); ok {
		for j, cand := range nodes {
			if cand == n {
				i = j
				break
			}
		}
	}
	switch {
	case i < 0 && step < 0:
		i = len(nodes) - 1
	case i < 0:
		i = 0
	default:
		i = (i + step + len(nodes)) % len(nodes)
	}
	m.ctrl.Select(nodes[i].ID())
	m.centerOn(nodes[i])
}

func (m *ChartModel) selectManager() {
	n, ok := m.ctrl.Selected()
	if !ok || !n.Employee.HasManager() {
		return
	}
	if m.ctrl.Select(n.Employee.ManagerID) {
		if p, ok := m.ctrl.Selected(); ok {
			m.centerOn(p)
		}
	}
}

// centerOn pans so that n sits in the middle of the chart area.
func (m *ChartModel) centerOn(n *layout.Node) {
	cfg := m.ctrl.Layout().Config
	at := m.ctrl.CanvasToScreen(canvas.Point{X: n.X + cfg.NodeWidth/2, Y: n.Y + cfg.NodeHeight/2})
	mid := canvas.Point{X: float64(m.chartWidth()) * cellW / 2, Y: float64(m.chartHeight()) * cellH / 2}
	m.drag(mid.X-at.X, mid.Y-at.Y)
}

func (m ChartModel) chartWidth() int {
	w := m.width
	if _, ok := m.ctrl.Selected(); ok {
		w -= panelWidth
	}
	return max(w, 1)
}

func (m ChartModel) chartHeight() int {
	return max(m.height-headerRows-footerRows, 1)
}

// =============================================================================
// View
// =============================================================================

func (m ChartModel) View() string {
	var b strings.Builder

	view := m.ctrl.View()
	stats := m.ctrl.Layout().Stats
	header := fmt.Sprintf("%s  %s", StyleTitle.Render(m.title),
		styleHeader.Render(fmt.Sprintf("%d shown · %d hidden · zoom %.0f%%", stats.Rendered, stats.Hidden(), view.Zoom*100)))
	b.WriteString(header)
	b.WriteString("\n")

	chart := m.renderChart()
	if n, ok := m.ctrl.Selected(); ok {
		chart = lipgloss.JoinHorizontal(lipgloss.Top, chart, m.renderPanel(n))
	}
	b.WriteString(chart)
	b.WriteString("\n")

	footer := "←↑↓→ pan  +/- zoom  r reset  tab select  m manager  esc close  q quit"
	if m.status != "" {
		footer = m.status + "  ·  " + footer
	}
	b.WriteString(StyleDim.Render(footer))
	return b.String()
}

// cell kinds, painted with different styles.
const (
	cellBlank = iota
	cellLine
	cellNode
	cellSelected
)

type grid struct {
	w, h  int
	runes [][]rune
	kinds [][]int
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), kinds: make([][]int, h)}
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.kinds[y] = make([]int, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, kind int) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.kinds[y][x] = kind
}

func (g *grid) text(x, y, maxLen int, s string, kind int) {
	for i, r := range []rune(truncate(s, maxLen)) {
		g.set(x+i, y, r, kind)
	}
}

func (g *grid) String() string {
	styles := map[int]lipgloss.Style{cellLine: styleConnector, cellNode: styleNode, cellSelected: styleSelected}
	lines := make([]string, g.h)
	for y := range g.runes {
		var line strings.Builder
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.kinds[y][x] == g.kinds[y][start] {
				continue
			}
			seg := string(g.runes[y][start:x])
			if st, ok := styles[g.kinds[y][start]]; ok {
				seg = st.Render(seg)
			}
			line.WriteString(seg)
			start = x
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// toCell maps a canvas point to a terminal cell of the chart area.
func (m ChartModel) toCell(x, y float64) (int, int) {
	p := m.ctrl.CanvasToScreen(canvas.Point{X: x, Y: y})
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

func (m ChartModel) renderChart() string {
	g := newGrid(m.chartWidth(), m.chartHeight())
	l := m.ctrl.Layout()

	for _, c := range l.Connectors {
		x1, y1 := m.toCell(c.X1, c.Y1)
		x2, y2 := m.toCell(c.X2, c.Y2)
		_, ym := m.toCell(c.X1, c.MidY())
		for y := y1; y < ym; y++ {
			g.set(x1, y, '│', cellLine)
		}
		for x := min(x1, x2); x <= max(x1, x2); x++ {
			g.set(x, ym, '─', cellLine)
		}
		for y := ym + 1; y < y2; y++ {
			g.set(x2, y, '│', cellLine)
		}
	}

	selected := m.ctrl.View().SelectedID
	for _, n := range l.Nodes {
		kind := cellNode
		if n.ID() == selected {
			kind = cellSelected
		}
		x0, y0 := m.toCell(n.X, n.Y)
		x1, y1 := m.toCell(n.X+l.Config.NodeWidth, n.Y+l.Config.NodeHeight)
		drawNode(g, n.Employee, x0, y0, x1, y1, kind)
	}
	return g.String()
}

// drawNode draws a bordered box when there is room, otherwise just the name.
func drawNode(g *grid, e hris.Employee, x0, y0, x1, y1, kind int) {
	w, h := x1-x0, y1-y0
	if w < 6 || h < 2 {
		label := e.Name()
		if w < 6 {
			label = e.Initials()
		}
		g.text(x0, y0, max(w, len([]rune(label))), label, kind)
		return
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, '─', kind)
		g.set(x, y1, '─', kind)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, '│', kind)
		g.set(x1, y, '│', kind)
	}
	g.set(x0, y0, '╭', kind)
	g.set(x1, y0, '╮', kind)
	g.set(x0, y1, '╰', kind)
	g.set(x1, y1, '╯', kind)

	inner := w - 1
	g.text(x0+1, y0+1, inner, e.Name(), kind)
	if h >= 3 {
		g.text(x0+1, y0+2, inner, e.Title, kind)
	}
}

// renderPanel shows the selected employee's details.
func (m ChartModel) renderPanel(n *layout.Node) string {
	e := n.Employee
	rows := [][]string{{"Title", e.Title}}
	for _, f := range hris.Detail(e) {
		rows = append(rows, []string{f.Label, f.Value})
	}
	reports := m.reports[e.ID]
	color := hris.SpanColor(reports)
	rows = append(rows, []string{"Reports", spanStyles[color].Render(fmt.Sprintf("%d (%s)", reports, color))})

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	body := StyleTitle.Render(truncate(e.Name(), panelWidth-4)) + "\n" + t.Render()
	return stylePanel.Render(body)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
