package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"productupdate.io/client/internal/core/domain"
)

// newUpdatesCommand creates the updates command
func newUpdatesCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "updates",
		Short: "Browse available updates interactively",
		Long: `Open an interactive list of the updates the server reports for the
installed products. Navigate with the arrow keys, press enter to toggle
details for the selected update, and q to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := newUpdatesModel(container)

			program := tea.NewProgram(model)
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("updates browser failed: %w", err)
			}

			return nil
		},
	}
}

// updateRow is one available update prepared for display.
type updateRow struct {
	descriptor *domain.UpdateDescriptor
	installed  string
}

// updatesModel holds the state for the Bubble Tea updates browser.
type updatesModel struct {
	container   *Container
	rows        []updateRow
	selectedRow int
	showDetail  bool
	loaded      bool
	err         error
}

func newUpdatesModel(container *Container) updatesModel {
	return updatesModel{container: container}
}

// updatesLoadedMsg is sent when the update check completes.
type updatesLoadedMsg struct {
	rows []updateRow
}

// updatesErrMsg is sent when the update check fails.
type updatesErrMsg struct {
	err error
}

// Init implements the Bubble Tea init method
func (m updatesModel) Init() tea.Cmd {
	return m.loadUpdatesCmd()
}

// Update implements the Bubble Tea update method
func (m updatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.selectedRow > 0 {
				m.selectedRow--
			}
			return m, nil

		case "down", "j":
			if m.selectedRow < len(m.rows)-1 {
				m.selectedRow++
			}
			return m, nil

		case "enter", " ":
			m.showDetail = !m.showDetail
			return m, nil

		case "r":
			return m, m.loadUpdatesCmd()
		}

	case updatesLoadedMsg:
		m.rows = msg.rows
		m.loaded = true
		if m.selectedRow >= len(m.rows) {
			m.selectedRow = 0
		}
		return m, nil

	case updatesErrMsg:
		m.err = msg.err
		m.loaded = true
		return m, nil
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m updatesModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit\n", m.err)
	}
	if !m.loaded {
		return dimStyle.Render("Checking for updates...") + "\n"
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Render("Available updates")

	if len(m.rows) == 0 {
		body := dimStyle.Render("All products are up to date.")
		if !m.container.AuthManager.IsAuthenticated() {
			body = warnStyle.Render("Not logged in - updates are hidden until you authenticate.")
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", m.footer())
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Render(fmt.Sprintf("%-40s │ %-10s │ %-10s", "PRODUCT", "INSTALLED", "NEW"))

	lines := []string{title, "", header}
	for i, row := range m.rows {
		rowStyle := lipgloss.NewStyle()
		if i == m.selectedRow {
			rowStyle = rowStyle.Background(lipgloss.Color("240"))
		}

		lines = append(lines, rowStyle.Render(fmt.Sprintf("%-40s │ %-10s │ %-10s",
			truncate(row.descriptor.PluginFile, 40), row.installed, row.descriptor.NewVersion)))
	}

	if m.showDetail && m.selectedRow < len(m.rows) {
		lines = append(lines, "", m.renderDetail(m.rows[m.selectedRow].descriptor))
	}

	lines = append(lines, "", m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m updatesModel) renderDetail(descriptor *domain.UpdateDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Slug:     %s\n", descriptor.Slug)
	if descriptor.Requires != "" {
		fmt.Fprintf(&b, "Requires: %s\n", descriptor.Requires)
	}
	if descriptor.Tested != "" {
		fmt.Fprintf(&b, "Tested:   %s\n", descriptor.Tested)
	}
	if descriptor.Homepage != "" {
		fmt.Fprintf(&b, "Homepage: %s\n", descriptor.Homepage)
	}
	if description, ok := descriptor.Sections["description"]; ok {
		fmt.Fprintf(&b, "\n%s\n", truncate(description, 400))
	}

	return dimStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m updatesModel) footer() string {
	return dimStyle.Render("Controls: [↑↓] Navigate | [Enter] Details | [r] Refresh | [q] Quit")
}

// loadUpdatesCmd runs one update check cycle off the UI loop.
func (m updatesModel) loadUpdatesCmd() tea.Cmd {
	return func() tea.Msg {
		check, err := m.container.Installer.CheckForUpdates(context.Background())
		if err != nil {
			return updatesErrMsg{err: err}
		}

		pluginFiles := make([]string, 0, len(check.Response))
		for pluginFile := range check.Response {
			pluginFiles = append(pluginFiles, pluginFile)
		}
		sort.Strings(pluginFiles)

		rows := make([]updateRow, 0, len(pluginFiles))
		for _, pluginFile := range pluginFiles {
			rows = append(rows, updateRow{
				descriptor: check.Response[pluginFile],
				installed:  check.Checked[pluginFile],
			})
		}

		return updatesLoadedMsg{rows: rows}
	}
}

// truncate shortens a string to the given display length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
