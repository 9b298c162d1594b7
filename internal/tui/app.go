// Package tui provides the interactive terminal dashboard for Questline.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// App is the main TUI application model.
type App struct {
	client       *Client
	list         list.Model
	progress     progress.Model
	profile      Profile
	stats        Stats
	recent       []string
	showAll      bool
	message      string
	errMessage   string
	width        int
	height       int
	loading      bool
	daemonOnline bool
}

// New creates a new TUI application.
func New(apiAddr string) *App {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 14)
	l.Title = "Today's Quests"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &App{
		client:   NewClient(apiAddr),
		list:     l,
		progress: progress.New(progress.WithDefaultGradient()),
		loading:  true,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Messages ---

type dashboardLoadedMsg struct {
	data *DashboardData
}

type allTasksLoadedMsg struct {
	tasks []TaskItem
}

type taskCompletedMsg struct {
	profile Profile
	xp      int
	gems    int
}

type daemonStatusMsg struct {
	online bool
}

type errMsg struct {
	err error
}

// --- Commands ---

func (a *App) fetchDashboard() tea.Cmd {
	return func() tea.Msg {
		data, err := a.client.GetDashboard()
		if err != nil {
			return errMsg{err}
		}
		return dashboardLoadedMsg{data}
	}
}

func (a *App) fetchAllTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := a.client.ListTasks("")
		if err != nil {
			return errMsg{err}
		}
		return allTasksLoadedMsg{tasks}
	}
}

func (a *App) completeTask(id string) tea.Cmd {
	return func() tea.Msg {
		profile, xp, gems, err := a.client.CompleteTask(id)
		if err != nil {
			return errMsg{err}
		}
		return taskCompletedMsg{profile, xp, gems}
	}
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		ok, _ := a.client.CheckHealth()
		return daemonStatusMsg{ok}
	}
}

func (a *App) refresh() tea.Cmd {
	a.loading = true
	if a.showAll {
		return a.fetchAllTasks()
	}
	return a.fetchDashboard()
}

// --- tea.Model ---

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchDashboard(), a.checkDaemon())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(msg.Width-4, msg.Height-12)
		a.progress.Width = msg.Width - 20
		return a, nil

	case dashboardLoadedMsg:
		a.loading = false
		a.profile = msg.data.Profile
		a.stats = msg.data.Stats
		a.recent = msg.data.Recent
		a.setTasks(msg.data.Tasks)
		return a, nil

	case allTasksLoadedMsg:
		a.loading = false
		a.setTasks(msg.tasks)
		return a, nil

	case taskCompletedMsg:
		a.profile = msg.profile
		if msg.xp > 0 {
			a.message = fmt.Sprintf("Quest complete! +%d xp, +%d gems", msg.xp, msg.gems)
		} else {
			a.message = "Already completed"
		}
		a.errMessage = ""
		return a, a.refresh()

	case daemonStatusMsg:
		a.daemonOnline = msg.online
		return a, nil

	case errMsg:
		a.loading = false
		a.errMessage = msg.err.Error()
		return a, nil

	case tea.KeyMsg:
		// Let the list's fuzzy filter swallow keys while active.
		if a.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit

		case "r":
			a.message = ""
			a.errMessage = ""
			return a, a.refresh()

		case "tab":
			a.showAll = !a.showAll
			if a.showAll {
				a.list.Title = "All Quests"
			} else {
				a.list.Title = "Today's Quests"
			}
			return a, a.refresh()

		case "enter", "c":
			if item, ok := a.list.SelectedItem().(TaskItem); ok {
				if item.Completed {
					a.message = "Already completed"
					return a, nil
				}
				return a, a.completeTask(item.ID)
			}
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a *App) setTasks(tasks []TaskItem) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = t
	}
	a.list.SetItems(items)
}

// View implements tea.Model
func (a *App) View() string {
	if a.loading && a.profile.Username == "" {
		return "Loading dashboard..."
	}

	header := a.renderHeader()
	body := a.list.View()
	status := a.renderStatusBar()
	help := helpStyle.Render("enter/c complete • tab today/all • r refresh • q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, help)
}

func (a *App) renderHeader() string {
	bar := a.progress.ViewAs(float64(a.profile.XPProgressPercent) / 100)

	line1 := fmt.Sprintf("%s  •  Level %d  •  %d xp  •  %d gems  •  streak %d",
		a.profile.Username, a.profile.Level, a.profile.XP, a.profile.Gems, a.profile.Streak)
	line2 := fmt.Sprintf("%s  %d/%d to next level", bar, a.profile.XPProgressPercent, 100)

	lines := []string{line1, line2}
	if !a.showAll {
		lines = append(lines, fmt.Sprintf("Today: %d/%d done, %d xp earned (%d%%)",
			a.stats.CompletedTasks, a.stats.TotalTasks, a.stats.EarnedXP, a.stats.ProgressPercentage))
	}
	for _, title := range a.recent {
		lines = append(lines, fmt.Sprintf("🏆 %s", title))
	}

	return headerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a *App) renderStatusBar() string {
	daemon := errorStyle.Render("daemon offline")
	if a.daemonOnline {
		daemon = messageStyle.Render("daemon online")
	}

	extra := ""
	if a.errMessage != "" {
		extra = "  " + errorStyle.Render(a.errMessage)
	} else if a.message != "" {
		extra = "  " + messageStyle.Render(a.message)
	}

	return statusBarStyle.Render(daemon + extra)
}
