package auto

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgeflow/forgeflow/internal/plan"
)

// approvalModel is the bubbletea model for the plan approval gate
type approvalModel struct {
	plan     *plan.Plan
	approved bool
	quitting bool
}

// ShowPlanApproval displays the generated plan and asks the user to
// approve execution.
func ShowPlanApproval(p *plan.Plan) (bool, error) {
	program := tea.NewProgram(approvalModel{plan: p})

	finalModel, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("run approval UI: %w", err)
	}
	return finalModel.(approvalModel).approved, nil
}

func (m approvalModel) Init() tea.Cmd {
	return nil
}

func (m approvalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.approved = true
			m.quitting = true
			return m, tea.Quit
		case "n", "N", "q", "ctrl+c":
			m.approved = false
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m approvalModel) View() string {
	if m.quitting {
		if m.approved {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Render("Plan approved. Proceeding with execution...\n")
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Render("Plan rejected. Exiting...\n")
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var s string

	s += titleStyle.Render("Generated Build Plan") + "\n\n"
	s += fmt.Sprintf("Tasks:      %s\n", headerStyle.Render(fmt.Sprintf("%d", len(m.plan.Tasks))))
	s += fmt.Sprintf("Complexity: %s\n\n", headerStyle.Render(string(m.plan.Complexity)))

	s += labelStyle.Render("Objectives:") + "\n"
	for _, objective := range m.plan.Objectives {
		s += fmt.Sprintf("  - %s\n", objective)
	}
	s += "\n"

	s += labelStyle.Render("Task Preview (first 5):") + "\n"
	for i, task := range m.plan.Tasks {
		if i >= 5 {
			break
		}
		typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(taskTypeColor(task.Type)))
		s += fmt.Sprintf("  %d. [%s] %s\n", i+1, typeStyle.Render(string(task.Type)), task.Description)
	}
	if len(m.plan.Tasks) > 5 {
		s += fmt.Sprintf("  ... and %d more tasks\n", len(m.plan.Tasks)-5)
	}

	s += "\n"
	s += titleStyle.Render("Approve and execute?") + " "
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("(y)") + " / "
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("(n)")
	s += ": "

	return s
}

// taskTypeColor returns the ANSI color code for a task type
func taskTypeColor(taskType plan.TaskType) string {
	switch taskType {
	case plan.TaskTypeScaffold:
		return "1" // red: the root everything hangs off
	case plan.TaskTypeImplement, plan.TaskTypeRefactor, plan.TaskTypeQuickFix:
		return "3" // yellow
	case plan.TaskTypeTestGen:
		return "2" // green
	default:
		return "8" // gray
	}
}
