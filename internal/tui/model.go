// Package tui is the interactive presentation layer: a Bubble Tea list of
// the visible todos with inline add, toggle, confirmed delete and manual
// reordering.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/orchestrator"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ model.Item }

func (i listItem) FilterValue() string { return i.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+ui.ItemLine(0, it.Item, m.Width()-6))
}

// opDoneMsg reports that a command's remote operation settled.
type opDoneMsg struct {
	op      store.Op
	outcome orchestrator.Outcome
}

// Model is the Bubble Tea model.
type Model struct {
	ctx    context.Context
	orch   *orchestrator.Orchestrator
	bridge *bridge

	list    list.Model
	spinner spinner.Model
	snap    store.Snapshot
	loaded  bool

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	// Pending delete confirmation, nil when none
	confirming *confirmRequest

	width, height int
}

// New builds the model and registers the delete gate and store
// subscription. The returned cancel func drops the subscription.
func New(ctx context.Context, orch *orchestrator.Orchestrator) (Model, func()) {
	b := newBridge()
	cancel := orch.Store().Subscribe(b.publish)

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = ui.HeaderTitle
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	// Filtering would make list indexes diverge from visible positions.
	l.SetFilteringEnabled(false)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.short

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = ui.Placeholder
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		orch:    orch,
		bridge:  b,
		list:    l,
		spinner: sp,
		ti:      ti,
		snap:    orch.Store().Snapshot(),
		width:   80,
		height:  24,
	}
	m.list.SetItems(toListItems(m.snap.Visible))
	m.resize()
	return m, cancel
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, orch *orchestrator.Orchestrator) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	m, cancel := New(ctx, orch)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{it})
	}
	return out
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCmd(),
		m.bridge.waitForSnapshot(),
		m.bridge.waitForConfirm(),
		m.spinner.Tick,
	)
}

// -------------- commands ----------------

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: store.OpLoad, outcome: m.orch.Load(m.ctx)}
	}
}

func (m Model) createCmd(title string) tea.Cmd {
	return func() tea.Msg {
		out, _ := m.orch.SubmitCreate(m.ctx, title)
		return opDoneMsg{op: store.OpCreate, outcome: out}
	}
}

func (m Model) toggleCmd(id int) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: store.OpUpdate, outcome: m.orch.Toggle(m.ctx, id)}
	}
}

func (m Model) deleteCmd(id int) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: store.OpDelete, outcome: m.orch.RequestDelete(m.ctx, id, m.bridge.confirm)}
	}
}

// -------------- update ----------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(store.Snapshot(msg))
		return m, m.bridge.waitForSnapshot()

	case confirmMsg:
		req := confirmRequest(msg)
		m.confirming = &req
		return m, m.bridge.waitForConfirm()

	case opDoneMsg:
		if msg.op == store.OpLoad {
			m.loaded = true
		}
		m.applySnapshot(m.orch.Store().Snapshot())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirming != nil {
			return m.updateConfirm(msg)
		}
		if m.adding {
			return m.updateAdd(msg)
		}
		if next, cmd, handled := m.updateList(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.confirming.reply <- true
		m.confirming = nil
	case key.Matches(msg, keys.Cancel):
		m.confirming.reply <- false
		m.confirming = nil
	}
	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title, err := orchestrator.ValidateTitle(m.ti.Value(), model.Titles(m.snap.Visible))
		if err != nil {
			m.addErr = err.Error()
			return m, nil
		}
		m.ti.SetValue("")
		m.ti.Blur()
		m.adding = false
		m.addErr = ""
		m.resize()
		return m, m.createCmd(title)
	case "esc":
		m.adding = false
		m.addErr = ""
		m.ti.SetValue("")
		m.ti.Blur()
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	if m.addErr != "" {
		// re-check while typing so a fixed title clears the error
		if _, err := orchestrator.ValidateTitle(m.ti.Value(), model.Titles(m.snap.Visible)); err == nil {
			m.addErr = ""
		} else {
			m.addErr = err.Error()
		}
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, keys.Add):
		m.adding = true
		m.addErr = ""
		m.ti.SetValue("")
		m.resize()
		return m, m.ti.Focus(), true

	case key.Matches(msg, keys.Toggle):
		if it, ok := m.selected(); ok {
			return m, m.toggleCmd(it.ID), true
		}
		return m, nil, true

	case key.Matches(msg, keys.Delete):
		if it, ok := m.selected(); ok {
			return m, m.deleteCmd(it.ID), true
		}
		return m, nil, true

	case key.Matches(msg, keys.MoveUp):
		return m.move(-1), nil, true

	case key.Matches(msg, keys.MoveDown):
		return m.move(1), nil, true

	case key.Matches(msg, keys.Reload):
		return m, m.loadCmd(), true
	}
	return m, nil, false
}

// move shifts the selected item by delta within the visible list. Moves
// off either end are ignored before reaching the store.
func (m Model) move(delta int) Model {
	from := m.list.Index()
	to := from + delta
	if from < 0 || from >= len(m.snap.Visible) || to < 0 || to >= len(m.snap.Visible) {
		return m
	}
	if err := m.orch.MoveItem(from, to); err != nil {
		m.snap.LastError = err.Error()
		return m
	}
	m.applySnapshot(m.orch.Store().Snapshot())
	m.list.Select(to)
	return m
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return it.Item, true
}

func (m *Model) applySnapshot(s store.Snapshot) {
	idx := m.list.Index()
	m.snap = s
	m.list.SetItems(toListItems(s.Visible))
	if n := len(s.Visible); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		m.list.Select(idx)
	}
}

func (m *Model) resize() {
	listHeight := m.height - 6
	if m.adding {
		listHeight -= 3
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

// -------------- view ----------------

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	switch {
	case !m.loaded && len(m.snap.Visible) == 0:
		b.WriteString(m.spinner.View() + " " + ui.Loading)
	case len(m.snap.Visible) == 0:
		b.WriteString(t.Title.Render(ui.HeaderTitle) + "\n\n" + t.Muted.Render(ui.EmptyList))
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n" + t.Muted.Render(ui.Completed(m.snap.Visible)))
	}

	if status := pendingMessage(m.snap.Pending); status != "" {
		b.WriteString("\n" + t.Accent.Render(m.spinner.View()+" "+status))
	}
	if m.snap.LastError != "" {
		b.WriteString("\n" + t.Error.Render("✖ "+m.snap.LastError) + t.Muted.Render("  (r: "+strings.ToLower(ui.Retry)+")"))
	}

	if m.adding {
		title := "Add new item"
		if m.addErr != "" {
			title += " — " + t.Error.Render(m.addErr)
		}
		b.WriteString("\n" + ui.Frame(title+"\n"+m.ti.View()))
	}
	if m.confirming != nil {
		prompt := fmt.Sprintf("%s\n%s\n%s", ui.ConfirmDelete, ui.ItemLine(0, m.confirming.item, m.width-8), t.Help.Render("y: yes • n: no"))
		b.WriteString("\n" + ui.Frame(prompt))
	}
	return ui.Frame(b.String())
}

// pendingMessage picks one status line; update wins over create, create
// over delete.
func pendingMessage(p store.Pending) string {
	switch {
	case p.Update:
		return ui.Updating
	case p.Create:
		return ui.Adding
	case p.Delete:
		return ui.Deleting
	}
	return ""
}
