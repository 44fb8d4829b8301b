package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/armsim/pkg/arm"
	"github.com/gwillem/armsim/pkg/bus"
	"github.com/gwillem/armsim/pkg/servo"
	"github.com/gwillem/armsim/pkg/sim"
)

type DemoCommand struct {
	Headless bool    `long:"headless" description:"Run without the TUI, logging joint state"`
	Port     string  `long:"port" description:"Mirror motion to physical servos on this serial port"`
	Speed    float64 `long:"speed" default:"20" description:"Joint speed in rpm"`
	Model    string  `long:"model" description:"Arm model JSON (defaults to the built-in ReactorX-200)"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Joint colors - distinct colors for each joint
var jointColors = map[arm.Joint]string{
	arm.Waist:         "196", // red
	arm.Shoulder:      "208", // orange
	arm.Elbow:         "226", // yellow
	arm.WristAngle:    "46",  // green
	arm.WristRotation: "51",  // cyan
	arm.Gripper:       "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// chartViewer is the render target the controller's viewer loop syncs: it
// snapshots the engine, converts to joint degrees and hands frames to the
// TUI. Frames are dropped when the TUI is behind.
type chartViewer struct {
	eng   *sim.Engine
	specs map[arm.Joint]arm.Spec
	ch    chan frameMsg
	gone  atomic.Bool
}

func newChartViewer(eng *sim.Engine) *chartViewer {
	return &chartViewer{
		eng:   eng,
		specs: arm.ReactorX200Specs(),
		ch:    make(chan frameMsg, 1),
	}
}

func (v *chartViewer) Sync() error {
	qpos := v.eng.Positions()
	frame := make(frameMsg, len(v.specs))
	for _, j := range arm.AllJoints() {
		spec, ok := v.specs[j]
		if !ok || spec.ID >= len(qpos) {
			continue
		}
		frame[j] = spec.Units.Position.ToApp(qpos[spec.ID])
	}

	select {
	case v.ch <- frame:
	default:
	}
	return nil
}

func (v *chartViewer) Active() bool { return !v.gone.Load() }

func (v *chartViewer) close() { v.gone.Store(true) }

// Messages from the controller
type frameMsg map[arm.Joint]float64
type logMsg string

func waitForFrame(v *chartViewer) tea.Cmd {
	return func() tea.Msg {
		return <-v.ch
	}
}

func waitForLog(ctrl *servo.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

type demoModel struct {
	ctrl     *servo.Controller
	viewer   *chartViewer
	chart    *streamlinechart.Model
	width    int
	height   int
	logs     []string
	quitting bool
}

func newDemoModel(ctrl *servo.Controller, viewer *chartViewer) demoModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-180, 180),
	)

	// Set up data set styles for each joint
	for _, j := range arm.AllJoints() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[j]))
		chart.SetDataSetStyles(string(j), runes.ThinLineStyle, style)
	}

	return demoModel{
		ctrl:   ctrl,
		viewer: viewer,
		chart:  &chart,
	}
}

func (m *demoModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *demoModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *demoModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func (m demoModel) Init() tea.Cmd {
	return tea.Batch(
		waitForFrame(m.viewer),
		waitForLog(m.ctrl),
	)
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case frameMsg:
		for _, j := range arm.AllJoints() {
			if pos, ok := msg[j]; ok {
				m.chart.PushDataSet(string(j), pos)
			}
		}
		m.chart.DrawAll()
		return m, waitForFrame(m.viewer)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m demoModel) View() string {
	if m.quitting {
		return "Demo stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("armsim demo"))
	sb.WriteString(fmt.Sprintf(" - tick %s", m.ctrl.TickPeriod()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9"))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, j := range arm.AllJoints() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[j])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+string(j))
	}
	return strings.Join(items, "  ")
}

type sweepStep struct {
	joint arm.Joint
	pos   float64
	pause time.Duration
}

func sweepSteps() []sweepStep {
	return []sweepStep{
		{arm.Waist, -45, 1500 * time.Millisecond},
		{arm.Waist, 45, 2500 * time.Millisecond},
		{arm.Waist, 0, 1500 * time.Millisecond},
		{arm.Shoulder, 35, 1200 * time.Millisecond},
		{arm.Elbow, -40, 1200 * time.Millisecond},
		{arm.WristAngle, 50, 1200 * time.Millisecond},
		{arm.WristRotation, -60, 1200 * time.Millisecond},
		{arm.Shoulder, 0, 800 * time.Millisecond},
		{arm.Elbow, 0, 800 * time.Millisecond},
		{arm.WristAngle, 0, 800 * time.Millisecond},
		{arm.WristRotation, 0, 800 * time.Millisecond},
		{arm.Gripper, 20, 1000 * time.Millisecond},
		{arm.Gripper, -10, 1000 * time.Millisecond},
		{arm.Gripper, 5, 800 * time.Millisecond},
	}
}

func runSweep(ctx context.Context, a *arm.Arm) error {
	for _, s := range sweepSteps() {
		if err := a.SetPosition(s.joint, s.pos); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pause):
		}
	}
	return a.HomeAll()
}

func (c *DemoCommand) Execute(args []string) error {
	model, err := loadModel(c.Model)
	if err != nil {
		return err
	}
	engine, err := sim.NewEngine(model)
	if err != nil {
		return err
	}

	var viewer *chartViewer
	if !c.Headless {
		viewer = newChartViewer(engine)
	}

	cfg := servo.Config{Backend: engine}
	if viewer != nil {
		cfg.Viewer = viewer
	}
	simCtrl, err := servo.NewController(cfg)
	if err != nil {
		return err
	}

	// With a serial port the simulation leads and the hardware twin
	// mirrors every command, each controller pacing its own backend.
	var ctrl arm.Controller = simCtrl
	var hw *bus.Bus
	if c.Port != "" {
		hw, err = bus.New(bus.Config{Port: c.Port})
		if err != nil {
			return fmt.Errorf("attach hardware twin: %w", err)
		}
		hwCtrl, err := servo.NewController(servo.Config{Backend: hw})
		if err != nil {
			hw.Close()
			return err
		}
		multi, err := arm.NewMulti(simCtrl, hwCtrl)
		if err != nil {
			hw.Close()
			return err
		}
		hwCtrl.Start()
		ctrl = multi
	}

	a, err := arm.NewReactorX200(ctrl)
	if err != nil {
		if hw != nil {
			hw.Close()
		}
		return err
	}

	vels := make([]float64, len(a.Joints()))
	for i := range vels {
		vels[i] = c.Speed
	}
	if err := a.SetVelocities(vels); err != nil {
		return err
	}

	simCtrl.Start()
	if err := a.EnableAll(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if c.Headless {
		err := runHeadless(ctx, a, simCtrl)
		if cerr := closeAll(a, hw); err == nil {
			err = cerr
		}
		return err
	}

	// loop the sweep until the TUI quits
	go func() {
		for ctx.Err() == nil {
			if err := runSweep(ctx, a); err != nil {
				return
			}
		}
	}()

	p := tea.NewProgram(newDemoModel(simCtrl, viewer), tea.WithAltScreen())
	_, err = p.Run()
	viewer.close()
	cancel()
	if cerr := closeAll(a, hw); err == nil {
		err = cerr
	}
	return err
}

func closeAll(a *arm.Arm, hw *bus.Bus) error {
	var errs []error
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	if hw != nil {
		if err := hw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runHeadless(ctx context.Context, a *arm.Arm, ctrl *servo.Controller) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Infof("simulating %d joints, tick period %s", len(a.Joints()), ctrl.TickPeriod())

	go func() {
		for msg := range ctrl.Logs() {
			log.Warn(msg)
		}
	}()

	if err := runSweep(ctx, a); err != nil {
		return err
	}

	// give the arm a moment to settle home before the final readout
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Second):
	}

	positions, err := a.Positions()
	if err != nil {
		return err
	}
	forces, err := a.Forces()
	if err != nil {
		return err
	}
	for i, j := range a.Joints() {
		log.WithField("joint", string(j)).Infof("settled at %.1f deg, load %.1f%%", positions[i], forces[i])
	}
	return nil
}
