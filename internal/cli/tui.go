package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

func (c *CLI) inspectCommand() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "inspect [project.json]",
		Short: "Browse the computed schedule interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args, projectID)
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project ID in the configured store")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, args []string, projectID string) error {
	b, err := c.openBackend(ctx, args, projectID)
	if err != nil {
		return err
	}
	defer b.Close()

	runner, err := c.newRunner(b)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Orchestrate(ctx, b.projectID, pipeline.ModePreview)
	if err != nil {
		return err
	}
	if res.Blocked {
		printResult(res, args)
		return res.CycleError()
	}

	_, err = tea.NewProgram(NewScheduleModel(res), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// ScheduleModel - Interactive schedule table
// =============================================================================

// ScheduleRow is one task of the table, in wave order.
type ScheduleRow struct {
	Task     schedule.Task
	Schedule *cpm.Schedule
}

// ScheduleModel is the bubbletea model for browsing a computed schedule.
type ScheduleModel struct {
	Title        string
	Rows         []ScheduleRow
	Paths        [][]string
	Cursor       int
	Height       int
	Offset       int
	CriticalOnly bool
}

// NewScheduleModel orders the result's tasks by wave, critical tasks first
// within a wave as the waves list them.
func NewScheduleModel(res *pipeline.Result) ScheduleModel {
	byID := make(map[string]schedule.Task, len(res.Tasks))
	for _, t := range res.Tasks {
		byID[t.ID] = t
	}

	var rows []ScheduleRow
	for _, w := range res.Analysis.Waves {
		for _, id := range w.TaskIDs {
			rows = append(rows, ScheduleRow{Task: byID[id], Schedule: res.Analysis.Schedule(id)})
		}
	}
	return ScheduleModel{
		Title:  fmt.Sprintf("%s · finish %s", res.ProjectID, res.Analysis.ProjectFinish),
		Rows:   rows,
		Paths:  res.CriticalPaths,
		Height: 15,
	}
}

// visible returns the rows shown under the current filter.
func (m ScheduleModel) visible() []ScheduleRow {
	if !m.CriticalOnly {
		return m.Rows
	}
	var out []ScheduleRow
	for _, r := range m.Rows {
		if r.Schedule.Critical {
			out = append(out, r)
		}
	}
	return out
}

func (m ScheduleModel) Init() tea.Cmd {
	return nil
}

func (m ScheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		n := len(m.visible())
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "c":
			m.CriticalOnly = !m.CriticalOnly
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m ScheduleModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  c critical only  q quit"))
	b.WriteString("\n\n")

	rows := m.visible()
	end := min(m.Offset+m.Height, len(rows))

	cells := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		s := r.Schedule
		cells = append(cells, []string{
			cursor,
			taskLabel(r.Task),
			strconv.Itoa(s.Duration),
			s.EarlyStart.String(),
			s.EarlyFinish.String(),
			s.LateStart.String(),
			s.LateFinish.String(),
			strconv.Itoa(s.Float),
			strconv.Itoa(s.Wave),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Task", "Days", "Early start", "Early finish", "Late start", "Late finish", "Float", "Wave").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(rows) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle()
			if rows[idx].Schedule.Critical {
				style = StyleCritical
			}
			if idx == m.Cursor {
				style = style.Bold(true).Underline(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	for _, p := range m.Paths {
		b.WriteString(StyleCritical.Render("critical ") + StyleDim.Render(strings.Join(p, " "+iconArrow+" ")))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(rows)), len(rows))))

	return b.String()
}

func taskLabel(t schedule.Task) string {
	if t.Name == "" || t.Name == t.ID {
		return t.ID
	}
	return t.ID + " " + StyleDim.Render(t.Name)
}
