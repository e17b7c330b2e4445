package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/tankersim/internal/control"
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/vessel"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const historyLen = 120

// Monitor steps an environment on a timer and shows the vessel, its path
// and the depth sensor. The rudder is either keyed in by hand or left to
// an autopilot policy.
type Monitor struct {
	env    *env.Env
	auto   control.Policy
	manual *control.Manual
	reset  env.ResetOptions

	useAuto bool
	paused  bool
	speed   int
	obs     env.Observation
	tel     env.Telemetry
	action  int
	ret     float64
	done    bool
	err     error

	chart *chart
	trail []point
	cte   []float64

	lastFrame time.Time
	fps       float64
	width     int
	height    int
}

// NewMonitor resets e with opts. A nil autopilot starts and stays in
// manual mode.
func NewMonitor(e *env.Env, autopilot control.Policy, opts env.ResetOptions) (*Monitor, error) {
	m := &Monitor{
		env:     e,
		auto:    autopilot,
		manual:  control.NewManual(),
		reset:   opts,
		useAuto: autopilot != nil,
		speed:   1,
		width:   80,
		height:  40,
	}
	if err := m.restart(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) restart() error {
	obs, err := m.env.Reset(m.reset)
	if err != nil {
		return err
	}
	if rs, ok := m.auto.(control.Resetter); ok {
		rs.Reset()
	}
	m.obs = obs
	m.tel = m.env.Snapshot()
	m.action = vessel.ActionHold
	m.ret = 0
	m.done = false
	m.err = nil
	m.trail = m.trail[:0]
	m.cte = m.cte[:0]
	m.record()
	return nil
}

func (m *Monitor) record() {
	m.trail = append(m.trail, point{m.tel.State.North, m.tel.State.East})
	if len(m.trail) > trailLen {
		m.trail = m.trail[1:]
	}
	m.cte = append(m.cte, m.tel.Guidance.CrossTrack)
	if len(m.cte) > historyLen {
		m.cte = m.cte[1:]
	}
}

// step advances the environment once with the active policy.
func (m *Monitor) step() {
	if m.done || m.err != nil {
		return
	}
	var p control.Policy = m.manual
	if m.useAuto {
		p = m.auto
	}
	a := p.Act(m.obs, m.tel)

	obs, reward, done, err := m.env.Step(a)
	if err != nil {
		m.err = err
		return
	}
	m.obs = obs
	m.tel = m.env.Snapshot()
	m.action = a
	m.ret += reward
	m.done = done || m.env.Steps() >= env.MaxEpisodeSteps
	m.record()
}

func (m *Monitor) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Monitor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "d":
		m.manual.SetAction(vessel.ActionStarboard)
		m.useAuto = false
	case "left", "a":
		m.manual.SetAction(vessel.ActionPort)
		m.useAuto = false
	case "m":
		if m.auto != nil {
			m.useAuto = !m.useAuto
		}
	case " ", "p":
		m.paused = !m.paused
	case "n":
		// single step while paused
		m.step()
	case "r":
		if err := m.restart(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, 32)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *Monitor) View() string {
	cw := max(m.width-6, 50)
	ch := max(m.height-24, 12)
	if m.chart == nil || m.chart.w != cw || m.chart.h != ch {
		m.chart = newChart(cw, ch, DefaultRadius)
	}
	m.chart.draw(m.env, m.tel, m.trail)

	var b strings.Builder

	statusIcon, statusText := green.Render("●"), green.Render("running")
	switch {
	case m.err != nil:
		statusIcon, statusText = red.Render("●"), red.Render("failed")
	case m.done:
		statusIcon, statusText = yellow.Render("■"), yellow.Render("done")
	case m.paused:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	}
	mode := magenta.Render("manual")
	if m.useAuto {
		mode = cyan.Render("autopilot")
	}
	fmt.Fprintf(&b, "\n   %s %s  %s  %s  %s\n",
		statusIcon, cyan.Render("tankersim"), statusText, mode,
		dim.Render(fmt.Sprintf("x%d  %.0ffps", m.speed, m.fps)))

	path := m.env.Path()
	total := 1
	if path != nil {
		total = max(path.Len()-1, 1)
	}
	barWidth := 36
	filled := min(m.tel.WP1*barWidth/total, barWidth)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	fmt.Fprintf(&b, "   %s %s\n\n", bar, dim.Render(fmt.Sprintf("wp %d/%d  t=%.0fs", m.tel.WP1, total, m.tel.Time)))

	for _, row := range strings.Split(strings.TrimSuffix(m.chart.String(), "\n"), "\n") {
		b.WriteString("   " + row + "\n")
	}

	t := m.tel
	fmt.Fprintf(&b, "\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("u="), white.Render(fmt.Sprintf("%.2fm/s", t.State.U)),
		dim.Render("ψ="), white.Render(fmt.Sprintf("%.1f°", geo.Rtd(t.State.Psi))),
		dim.Render("δ="), white.Render(fmt.Sprintf("%+.1f°", geo.Rtd(t.Rudder))),
		dim.Render("depth="), white.Render(fmt.Sprintf("%.0fm", t.Env.Depth)))
	fmt.Fprintf(&b, "   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("cte="), white.Render(fmt.Sprintf("%.1fm", t.Guidance.CrossTrack)),
		dim.Render("χd="), white.Render(fmt.Sprintf("%.1f°", geo.Rtd(t.Guidance.DesiredCourse))),
		dim.Render("Δχ="), white.Render(fmt.Sprintf("%+.1f°", geo.Rtd(t.CourseError))),
		dim.Render("return="), white.Render(fmt.Sprintf("%.2f", m.ret)))

	if c := m.obs.Closeness(); len(c) > 0 {
		fmt.Fprintf(&b, "   %s %s\n", dim.Render("beams"), closenessBar(c))
	}

	if len(m.cte) > 1 {
		graph := asciigraph.Plot(m.cte,
			asciigraph.Height(5),
			asciigraph.Width(min(cw-12, historyLen)),
			asciigraph.Caption("cross-track error [m]"))
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString("   " + cyan.Render(line) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   ←→ rudder  m autopilot  space pause  n step  ±speed  r reset  q quit") + "\n")

	return b.String()
}

// closenessBar shades each beam from dim (deep water) to red (shallow
// water close by).
func closenessBar(c []float64) string {
	chars := []rune{' ', '░', '▒', '▓', '█'}
	var sb strings.Builder
	for _, v := range c {
		idx := int(math.Round(v * float64(len(chars)-1)))
		idx = max(0, min(idx, len(chars)-1))
		style := dim
		if v > 0.5 {
			style = red
		} else if v > 0 {
			style = yellow
		}
		sb.WriteString(style.Render(string(chars[idx])))
	}
	return sb.String()
}

// Run shows the monitor in the alternate screen until the user quits.
func Run(m *Monitor) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
