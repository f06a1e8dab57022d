package watch

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

const barWidth = 20

type statsMsg pool.Stats

type errMsg struct{ err error }

type pollMsg struct{}

type statsModel struct {
	fetch    func() (pool.Stats, error)
	interval time.Duration
	address  string
	stats    pool.Stats
	err      error
	updated  time.Time
	paused   bool
	quitting bool
}

// newStatsModel creates a TUI model that polls fetch every interval.
func newStatsModel(address string, interval time.Duration, fetch func() (pool.Stats, error)) statsModel {
	return statsModel{
		fetch:    fetch,
		interval: interval,
		address:  address,
	}
}

func (m statsModel) poll() tea.Msg {
	st, err := m.fetch()
	if err != nil {
		return errMsg{err: err}
	}

	return statsMsg(st)
}

func (m statsModel) schedule() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return pollMsg{} })
}

// Init fetches the first snapshot.
func (m statsModel) Init() tea.Cmd {
	return m.poll
}

// Update handles messages and updates the model state.
func (m statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true

			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
			if !m.paused {
				return m, m.poll
			}
		case "r":
			return m, m.poll
		}
	case statsMsg:
		m.stats = pool.Stats(msg)
		m.err = nil
		m.updated = time.Now()
		if !m.paused {
			return m, m.schedule()
		}
	case errMsg:
		m.err = msg.err
		if !m.paused {
			return m, m.schedule()
		}
	case pollMsg:
		if !m.paused {
			return m, m.poll
		}
	}

	return m, nil
}

// View renders the current state of the model.
func (m statsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Pool %s\n", m.address))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	if m.err != nil {
		b.WriteString(fmt.Sprintf("  error: %v\n\n", m.err))
	}

	if len(m.stats.Categories) == 0 {
		b.WriteString("  no categories\n")
	}
	for _, c := range m.stats.Categories {
		b.WriteString(fmt.Sprintf("  %-16s %s %3d/%-3d in use\n",
			c.Name, bar(c.InUse, c.Capacity), c.InUse, c.Capacity))
	}
	b.WriteString(fmt.Sprintf("\n  pending releases: %d\n", m.stats.PendingReleases))

	if !m.updated.IsZero() {
		b.WriteString(fmt.Sprintf("  updated: %s\n", m.updated.Format(time.TimeOnly)))
	}
	if m.paused {
		b.WriteString("  [paused]\n")
	}

	b.WriteString("\n  p: pause  r: refresh  q or Ctrl+C: quit\n")

	return b.String()
}

// bar draws used out of total as a fixed width gauge.
func bar(used, total int) string {
	filled := 0
	if total > 0 {
		filled = used * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}

	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
