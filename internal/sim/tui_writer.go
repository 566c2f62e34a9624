package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a line for the event viewport.
type logMsg struct{ line string }

// reportMsg carries a scan report.
type reportMsg struct{ telemetry.ReportRow }

// decisionMsg carries the coordinator's decision.
type decisionMsg struct{ telemetry.DecisionRow }

// stateMsg carries a simulation state update.
type stateMsg struct{ telemetry.SimulationStateRow }

// adminMsg reports admin server status.
type adminMsg struct{ active bool }

type telemetryMsg struct{ telemetry.TelemetryRow }

const (
	maxLogLines         = 1000
	maxSectionHeightPct = 0.25
)

var (
	grayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	blueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("10")).Padding(0, 1)
)

// TUIWriter renders the mission using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
// Quitting the TUI interrupts the process so the simulator shuts down.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

func stamp(ts time.Time) string {
	return grayStyle.Render("[" + ts.Format("15:04:05") + "]")
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.TelemetryRow) error {
	w.program.Send(telemetryMsg{row})
	return nil
}

// WriteReport implements ReportWriter.
func (w *TUIWriter) WriteReport(r telemetry.ReportRow) error {
	w.program.Send(reportMsg{r})
	return nil
}

// WriteEvent implements EventWriter. Scan phase events are left to the
// drone table.
func (w *TUIWriter) WriteEvent(e telemetry.EventRow) error {
	var line string
	switch e.EventType {
	case telemetry.EventScanPhase:
		return nil
	case telemetry.EventStateChange:
		line = fmt.Sprintf("%s %s %s %s -> %s", stamp(e.Timestamp), blueStyle.Render("STATE"), e.DroneID, e.From, e.To)
	case telemetry.EventScanError:
		line = fmt.Sprintf("%s %s %s target=%s %s", stamp(e.Timestamp), redStyle.Render("ERROR"), e.DroneID, e.TargetID, e.Detail)
	case telemetry.EventScanFinished:
		line = fmt.Sprintf("%s %s %s", stamp(e.Timestamp), cyanStyle.Render("FINISHED"), e.DroneID)
	default:
		line = fmt.Sprintf("%s %s %s %s", stamp(e.Timestamp), magentaStyle.Render(strings.ToUpper(e.EventType)), e.DroneID, e.Detail)
	}
	w.program.Send(logMsg{line: strings.TrimSpace(line)})
	return nil
}

// WriteDecision implements DecisionWriter.
func (w *TUIWriter) WriteDecision(d telemetry.DecisionRow) error {
	w.program.Send(decisionMsg{d})
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.SimulationStateRow) error {
	w.program.Send(stateMsg{SimulationStateRow: row})
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// SetAdminStatus updates the admin server indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	repVP        viewport.Model
	logs         []string
	repLogs      []string
	drones       map[string]telemetry.TelemetryRow
	state        telemetry.SimulationStateRow
	decision     *telemetry.DecisionRow
	admin        bool
	wrap         bool
	autoscroll   bool
	help         bool
	header       string
	headerHeight int
	width        int
	height       int
}

var droneColumns = []table.Column{
	{Title: "Drone", Width: 10},
	{Title: "State", Width: 11},
	{Title: "Phase", Width: 8},
	{Title: "Target", Width: 7},
	{Title: "Alt", Width: 6},
	{Title: "Position", Width: 20},
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	n := 1
	if cfg != nil && len(cfg.Drones) > 0 {
		n = len(cfg.Drones)
	}
	t := table.New(table.WithColumns(droneColumns), table.WithHeight(n+1))
	return tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		repVP:      viewport.New(0, 0),
		drones:     make(map[string]telemetry.TelemetryRow),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.repVP.Width = msg.Width
		m.relayout()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.relayout()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.repVP.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
				m.repVP.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
				m.repVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
				m.repVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
				m.repVP.LineUp(10)
			}
		}
		return m, nil
	case logMsg:
		m.logs = appendCapped(m.logs, msg.line)
		m.refreshViewport()
	case reportMsg:
		style := yellowStyle
		if msg.Confidence >= 0.5 {
			style = greenStyle
		}
		line := fmt.Sprintf("%s %s -> %s %s fov=%.2f dist=%.1f", stamp(msg.Timestamp), msg.DroneID, msg.TargetID,
			style.Render(fmt.Sprintf("%.3f", msg.Confidence)), msg.FOV, msg.DistanceM)
		m.repLogs = appendCapped(m.repLogs, line)
		m.refreshReports()
		m.relayout()
	case decisionMsg:
		d := msg.DecisionRow
		m.decision = &d
		m.relayout()
	case telemetryMsg:
		m.drones[msg.DroneID] = msg.TelemetryRow
		m.table.SetRows(m.droneRows())
	case stateMsg:
		m.state = msg.SimulationStateRow
	case adminMsg:
		m.admin = msg.active
	}
	return m, nil
}

func appendCapped(lines []string, l string) []string {
	lines = append(lines, l)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}

func (m tuiModel) droneRows() []table.Row {
	ids := make([]string, 0, len(m.drones))
	for id := range m.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		r := m.drones[id]
		rows = append(rows, table.Row{
			id, r.State, r.Phase, r.TargetID,
			fmt.Sprintf("%.1f", r.Altitude),
			fmt.Sprintf("%.1f,%.1f,%.1f", r.X, r.Y, r.Z),
		})
	}
	return rows
}

// relayout recomputes the header and splits the remaining height between
// the report and event viewports.
func (m *tuiModel) relayout() {
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)

	repLines := len(m.repLogs)
	if repLines == 0 {
		repLines = 1
	}
	if limit := m.maxSectionLines(); repLines > limit {
		repLines = limit
	}
	m.repVP.Height = repLines

	decisionHeight := 0
	if m.decision != nil {
		decisionHeight = lipgloss.Height(m.renderDecision()) + 1
	}
	h := m.height - m.headerHeight - lipgloss.Height(m.renderBottom()) - (1 + m.repVP.Height) - decisionHeight - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
		m.repVP.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		lines = make([]string, len(m.logs))
		for i, l := range m.logs {
			lines[i] = wordwrap.String(l, m.vp.Width)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshReports() {
	content := "none"
	if len(m.repLogs) > 0 {
		content = strings.Join(m.repLogs, "\n")
	}
	m.repVP.SetContent(content)
	if m.autoscroll {
		m.repVP.GotoBottom()
	}
}

func (m tuiModel) maxSectionLines() int {
	h := int(float64(m.height) * maxSectionHeightPct)
	if h < 1 {
		h = 1
	}
	return h
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{m.header, divider}
	if m.decision != nil {
		sections = append(sections, m.renderDecision(), divider)
	}
	sections = append(sections,
		"Reports:",
		m.repVP.View(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	)
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	tableView := m.table.View()
	width := m.width - lipgloss.Width(tableView) - 2
	mission := renderMissionPanel(m.cfg, m.wrap, width)
	if mission == "" {
		return tableView
	}
	sep := grayStyle.Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, mission)
}

func renderMissionPanel(cfg *config.SimulationConfig, wrap bool, width int) string {
	if cfg == nil {
		return ""
	}
	lines := []string{
		"Mission " + cfg.Mission.ID,
		"Looking for: " + cfg.Mission.Description,
		fmt.Sprintf("Drones: %d  People: %d", len(cfg.Drones), len(cfg.Persons)),
	}
	if wrap && width > 0 {
		for i, l := range lines {
			lines[i] = wordwrap.String(l, width)
		}
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderDecision() string {
	d := m.decision
	if d == nil {
		return ""
	}
	if d.Status != "landing" {
		return panelStyle.BorderForeground(lipgloss.Color("9")).Render(
			fmt.Sprintf("DECISION %s\n%s", d.Status, d.Reason))
	}
	return panelStyle.Render(fmt.Sprintf("DECISION target %s (score %.3f)\n%s lands at %.1f, %.1f, %.1f (%.1f m away)",
		d.TargetID, d.Score, d.Responder, d.LandX, d.LandY, d.LandZ, d.ResponderDistance))
}

func indicator(on bool) string {
	if on {
		return greenStyle.Render("●")
	}
	return redStyle.Render("●")
}

func (m tuiModel) renderBottom() string {
	state := fmt.Sprintf("%s tick=%d elapsed=%.1fs scanning=%d finished=%d reports=%d decided=%t",
		blueStyle.Render("STATE"), m.state.Tick, m.state.ElapsedS, m.state.DronesScanning,
		m.state.DronesFinished, m.state.Reports, m.state.Decided)
	return fmt.Sprintf("%s | Admin %s | Wrap %s | Scroll %s | Help %s",
		state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.help))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
