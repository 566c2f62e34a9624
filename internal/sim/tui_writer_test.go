package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	ts := time.Unix(0, 0).UTC()
	if err := w.Write(telemetry.TelemetryRow{DroneID: "d", MissionID: "m", Timestamp: ts}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[0].(telemetryMsg); !ok {
		t.Fatalf("expected telemetryMsg, got %T", p.msgs[0])
	}
	_ = w.WriteState(telemetry.SimulationStateRow{Tick: 1})
	if _, ok := p.msgs[1].(stateMsg); !ok {
		t.Fatalf("expected stateMsg, got %T", p.msgs[1])
	}
	w.SetAdminStatus(true)
	if _, ok := p.msgs[2].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[2])
	}
	_ = w.WriteEvent(telemetry.EventRow{EventType: telemetry.EventStateChange, DroneID: "d", From: "Idle", To: "Ascending", Timestamp: ts})
	if lm, ok := p.msgs[3].(logMsg); !ok || !strings.Contains(lm.line, "Idle -> Ascending") {
		t.Fatalf("expected state change logMsg, got %#v", p.msgs[3])
	}
	_ = w.WriteEvent(telemetry.EventRow{EventType: telemetry.EventScanPhase})
	if len(p.msgs) != 4 {
		t.Fatalf("scan phase events should not reach the TUI")
	}
	_ = w.WriteReport(telemetry.ReportRow{TargetID: "T1"})
	_ = w.WriteDecision(telemetry.DecisionRow{Status: "landing"})
	if _, ok := p.msgs[4].(reportMsg); !ok {
		t.Fatalf("expected reportMsg, got %T", p.msgs[4])
	}
	if _, ok := p.msgs[5].(decisionMsg); !ok {
		t.Fatalf("expected decisionMsg, got %T", p.msgs[5])
	}
}

func testTUIConfig() *config.SimulationConfig {
	cfg := &config.SimulationConfig{Drones: []string{"Drone_1", "Drone_2"}}
	cfg.Mission.ID = "m1"
	cfg.Mission.Description = "a person wearing a bright red cap and a blue jacket"
	return cfg
}

func TestDroneTableFollowsTelemetry(t *testing.T) {
	m := newTUIModel(testTUIConfig())
	mi, _ := m.Update(telemetryMsg{telemetry.TelemetryRow{DroneID: "Drone_2", State: "Cruising", Altitude: 80}})
	m = mi.(tuiModel)
	mi, _ = m.Update(telemetryMsg{telemetry.TelemetryRow{DroneID: "Drone_1", State: "Scanning", Phase: "Capture", TargetID: "T3"}})
	m = mi.(tuiModel)
	rows := m.table.Rows()
	if len(rows) != 2 || rows[0][0] != "Drone_1" || rows[0][3] != "T3" || rows[1][4] != "80.0" {
		t.Fatalf("unexpected rows %v", rows)
	}
	mi, _ = m.Update(telemetryMsg{telemetry.TelemetryRow{DroneID: "Drone_1", State: "Landing"}})
	m = mi.(tuiModel)
	if got := m.table.Rows()[0][1]; got != "Landing" {
		t.Fatalf("row not updated, state %q", got)
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(testTUIConfig())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = mi.(tuiModel)
	before := strings.Count(renderMissionPanel(m.cfg, false, 20), "\n")
	after := strings.Count(renderMissionPanel(m.cfg, true, 20), "\n")
	if after <= before {
		t.Fatalf("expected the description to wrap (%d <= %d lines)", after, before)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(&config.SimulationConfig{})
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	if expected := len(m.logs) - m.vp.Height; m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d, got %d", expected, m.vp.YOffset)
	}
}

func TestDecisionPanel(t *testing.T) {
	m := newTUIModel(testTUIConfig())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = mi.(tuiModel)
	if strings.Contains(m.View(), "DECISION") {
		t.Fatal("decision panel shown before a decision")
	}
	mi, _ = m.Update(decisionMsg{telemetry.DecisionRow{Status: "landing", TargetID: "T1", Responder: "Drone_2", Score: 0.9}})
	m = mi.(tuiModel)
	view := m.View()
	if !strings.Contains(view, "DECISION target T1") || !strings.Contains(view, "Drone_2 lands at") {
		t.Fatalf("decision not rendered:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTUIModel(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
