// Package tui provides the interactive task dashboard.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/output"
	"taskdash/internal/service"
	"taskdash/internal/viewmodel"
)

const helpLine = "j/k move  1/2/3 sort title/status/due  f filter  / search  c status  d delete  r reload  esc dismiss  q quit"

// App is the Bubble Tea model of the dashboard. All task state lives in
// the view-model; App only keeps cursor and input state.
type App struct {
	ctx    context.Context
	vm     *viewmodel.Model
	styles output.Styles

	cursor        int
	searching     bool
	searchInput   textinput.Model
	confirmDelete *service.Task

	// messageTTL is how long after an action the message line is redrawn.
	messageTTL time.Duration
}

// NewApp creates the dashboard over vm. Backend calls use ctx.
func NewApp(ctx context.Context, vm *viewmodel.Model, out io.Writer) *App {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search tasks..."
	searchInput.Prompt = "/ "
	searchInput.CharLimit = 100
	searchInput.Width = 40

	return &App{
		ctx:         ctx,
		vm:          vm,
		styles:      output.StylesFor(lipgloss.NewRenderer(out)),
		searchInput: searchInput,
		messageTTL:  viewmodel.MessageTTL,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, vm *viewmodel.Model, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(NewApp(ctx, vm, out),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// Message types
type loadedMsg struct{ err error }
type statusesLoadedMsg struct{}
type statusChangedMsg struct{ err error }
type taskDeletedMsg struct {
	deleted bool
	err     error
}
type messageExpiredMsg struct{}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Sequence(a.loadStatuses(), a.load())
}

func (a *App) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: a.vm.Load(a.ctx)}
	}
}

func (a *App) loadStatuses() tea.Cmd {
	return func() tea.Msg {
		_ = a.vm.LoadStatuses(a.ctx)
		return statusesLoadedMsg{}
	}
}

func (a *App) changeStatus(task service.Task, status service.Status) tea.Cmd {
	return func() tea.Msg {
		return statusChangedMsg{err: a.vm.ChangeStatus(a.ctx, task, status)}
	}
}

func (a *App) deleteTask(task service.Task) tea.Cmd {
	return func() tea.Msg {
		// The y key already confirmed.
		deleted, err := a.vm.Delete(a.ctx, task, func(service.Task) bool { return true })
		return taskDeletedMsg{deleted: deleted, err: err}
	}
}

func (a *App) expireMessage() tea.Cmd {
	return tea.Tick(a.messageTTL, func(time.Time) tea.Msg {
		return messageExpiredMsg{}
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		switch {
		case a.searching:
			return a.handleSearchKey(msg)
		case a.confirmDelete != nil:
			return a.handleConfirmKey(msg)
		default:
			return a.handleKey(msg)
		}

	case loadedMsg:
		a.clampCursor()
		return a, nil

	case statusesLoadedMsg:
		return a, nil

	case statusChangedMsg:
		a.clampCursor()
		if msg.err != nil {
			return a, nil
		}
		return a, a.expireMessage()

	case taskDeletedMsg:
		a.clampCursor()
		if msg.err != nil || !msg.deleted {
			return a, nil
		}
		return a, a.expireMessage()

	case messageExpiredMsg:
		// View reads the message through State, which drops it once expired.
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.cursor++
		a.clampCursor()
	case "k", "up":
		a.cursor--
		a.clampCursor()
	case "1":
		a.vm.ToggleSort(viewmodel.SortTitle)
	case "2":
		a.vm.ToggleSort(viewmodel.SortStatus)
	case "3":
		a.vm.ToggleSort(viewmodel.SortDueDate)
	case "f":
		a.cycleFilter()
		a.clampCursor()
	case "/":
		a.searching = true
		a.searchInput.SetValue(a.vm.State().Filter.Search)
		a.searchInput.CursorEnd()
		return a, a.searchInput.Focus()
	case "r":
		return a, a.load()
	case "esc":
		a.vm.ClearMessage()
	case "c":
		task, ok := a.selected()
		if !ok || a.vm.State().StatusUpdating == task.ID {
			return a, nil
		}
		return a, a.changeStatus(task, a.vm.NextStatus(task.Status))
	case "d":
		if task, ok := a.selected(); ok {
			a.confirmDelete = &task
		}
	}
	return a, nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task := *a.confirmDelete
	a.confirmDelete = nil
	if msg.String() == "y" || msg.String() == "Y" {
		return a, a.deleteTask(task)
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.searching = false
		a.searchInput.Blur()
		return a, nil
	case tea.KeyEsc:
		a.searching = false
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		a.vm.SetSearch("")
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.vm.SetSearch(a.searchInput.Value())
	a.clampCursor()
	return a, cmd
}

// cycleFilter steps the status filter through all, then each known status.
func (a *App) cycleFilter() {
	state := a.vm.State()
	options := []string{viewmodel.AllStatuses}
	for _, s := range state.Statuses {
		options = append(options, string(s))
	}
	next := options[0]
	for i, o := range options {
		if o == state.Filter.Status {
			next = options[(i+1)%len(options)]
			break
		}
	}
	a.vm.SetStatusFilter(next)
}

func (a *App) selected() (service.Task, bool) {
	view := a.vm.View()
	if a.cursor < 0 || a.cursor >= len(view) {
		return service.Task{}, false
	}
	return view[a.cursor], true
}

func (a *App) clampCursor() {
	n := len(a.vm.View())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// View implements tea.Model.
func (a *App) View() string {
	state := a.vm.State()
	now := a.vm.Now()
	st := a.styles
	var b strings.Builder

	b.WriteString(st.Header.Render("Task Dashboard"))
	b.WriteString("\n\n")
	b.WriteString(st.StatsLine(a.vm.Stats()))
	b.WriteString("\n")

	search := state.Filter.Search
	if search == "" {
		search = "-"
	}
	fmt.Fprintf(&b, "%s\n\n", st.Faded.Render(fmt.Sprintf("Filter: %s  Sort: %s %s  Search: %s",
		state.Filter.Status, state.Sort.Field, state.Sort.Direction, search)))

	switch {
	case state.Loading:
		b.WriteString("Loading tasks...\n")
	case state.Err != "":
		b.WriteString(st.Error.Render(state.Err) + "\n")
	case state.Message != "":
		b.WriteString(st.Success.Render(state.Message) + "\n")
	default:
		b.WriteString("\n")
	}

	view := a.vm.View()
	if len(view) == 0 {
		b.WriteString("no tasks found\n")
	} else {
		b.WriteString("  " + st.HeaderRow() + "\n")
		for i, t := range view {
			marker := "  "
			if i == a.cursor {
				marker = "> "
			}
			line := marker + st.Row(t, now)
			if t.ID == state.StatusUpdating {
				line += st.Faded.Render("  (updating)")
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case a.searching:
		b.WriteString(a.searchInput.View() + "\n")
	case a.confirmDelete != nil:
		fmt.Fprintf(&b, "Delete task \"%s\"? (y/N)\n", a.confirmDelete.Title)
	default:
		b.WriteString(st.Faded.Render(helpLine) + "\n")
	}
	return b.String()
}
