package tui

import (
	"context"
	"errors"
	"fmt"
	imgcolor "image/color"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/lagerkoll/internal/adapters/api"
	"github.com/hylla/lagerkoll/internal/app"
	"github.com/hylla/lagerkoll/internal/domain"
)

// Service is the slice of the reconciler service the dashboard consumes.
type Service interface {
	Items() []domain.Item
	Connected() bool
	LastUpdated() time.Time
	HandleItemEvent(payload []byte) bool
	HandleSync(payload []byte) int
	HandleAlert(payload []byte) bool
	HandleConnected()
	HandleDisconnected()
	HandleReconnected()
}

// Notifier is the slice of the notification queue the dashboard consumes.
type Notifier interface {
	Enqueue(domain.NotificationSpec) domain.Notification
	Dismiss(id int)
	DismissNewest()
	DismissAll()
	Notifications() []domain.Notification
}

// ItemCreator posts one item-creation request to the external API.
type ItemCreator interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (*domain.Item, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeCreateItem
)

// createFormFields stores create-form field keys in display/update order.
var createFormFields = []string{"name", "stock", "description", "price"}

// create-form field indexes used throughout keyboard/update logic.
const (
	fieldName = iota
	fieldStock
	fieldDescription
	fieldPrice
)

// ItemEventMsg carries one raw single-item payload from the push channel.
type ItemEventMsg struct {
	Payload []byte
}

// SyncEventMsg carries one raw full-sync payload from the push channel.
type SyncEventMsg struct {
	Payload []byte
}

// AlertEventMsg carries one raw alert payload from the push channel.
type AlertEventMsg struct {
	Payload []byte
}

// ConnectedMsg signals the initial channel connection.
type ConnectedMsg struct{}

// DisconnectedMsg signals a dropped channel connection.
type DisconnectedMsg struct{}

// ReconnectedMsg signals a re-established channel connection.
type ReconnectedMsg struct{}

// toastExpiredMsg fires when one toast's display duration has elapsed.
type toastExpiredMsg struct {
	id int
}

// itemCreatedMsg carries the outcome of one outbound creation request.
type itemCreatedMsg struct {
	name      string
	item      *domain.Item
	fieldErrs map[string]string
	err       error
}

// Model represents model data used by this package.
type Model struct {
	svc     Service
	toasts  Notifier
	creator ItemCreator

	ready  bool
	width  int
	height int

	status string

	help     help.Model
	keys     keyMap
	showHelp bool

	selectedRow int

	mode       inputMode
	formInputs []textinput.Model
	formFocus  int
	fieldErrs  map[string]string
	submitting bool

	maxToasts      int
	lowStockAccent int

	// scheduledToasts tracks which toast ids already have a pending expiry
	// tick so re-renders never double-schedule.
	scheduledToasts map[int]struct{}
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, toasts Notifier, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:             svc,
		toasts:          toasts,
		status:          "waiting for channel...",
		help:            h,
		keys:            newKeyMap(),
		showHelp:        true,
		maxToasts:       5,
		lowStockAccent:  5,
		fieldErrs:       map[string]string{},
		scheduledToasts: map[int]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ItemEventMsg:
		if m.svc.HandleItemEvent(msg.Payload) {
			m.status = "update applied"
		}
		return m, m.scheduleToastExpiry()

	case SyncEventMsg:
		if applied := m.svc.HandleSync(msg.Payload); applied > 0 {
			m.status = fmt.Sprintf("synced %d items", applied)
			m.clampSelection()
		}
		return m, m.scheduleToastExpiry()

	case AlertEventMsg:
		if m.svc.HandleAlert(msg.Payload) {
			m.status = "alert received"
		}
		return m, m.scheduleToastExpiry()

	case ConnectedMsg:
		m.svc.HandleConnected()
		m.status = "connected"
		return m, nil

	case DisconnectedMsg:
		m.svc.HandleDisconnected()
		m.status = "connection lost, retrying..."
		return m, nil

	case ReconnectedMsg:
		m.svc.HandleReconnected()
		m.status = "reconnected"
		return m, nil

	case toastExpiredMsg:
		delete(m.scheduledToasts, msg.id)
		m.toasts.Dismiss(msg.id)
		return m, nil

	case itemCreatedMsg:
		return m.handleItemCreated(msg)

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleFormKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// scheduleToastExpiry issues one expiry tick per newly queued toast. The
// queue itself has no scheduler in TUI mode, so the dismissal stays on the
// program loop and the state stays single-writer.
func (m Model) scheduleToastExpiry() tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.toasts.Notifications() {
		if _, ok := m.scheduledToasts[n.ID]; ok {
			continue
		}
		m.scheduledToasts[n.ID] = struct{}{}
		id := n.ID
		cmds = append(cmds, tea.Tick(n.Duration, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// handleNormalModeKey handles dashboard keys.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if items := m.svc.Items(); m.selectedRow < len(items)-1 {
			m.selectedRow++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil
	case key.Matches(msg, m.keys.dismiss):
		m.toasts.DismissNewest()
		return m, nil
	case key.Matches(msg, m.keys.dismissAll):
		m.toasts.DismissAll()
		return m, nil
	case key.Matches(msg, m.keys.newItem):
		m.help.ShowAll = false
		return m, m.startCreateForm()
	default:
		return m, nil
	}
}

// startCreateForm opens the create-item form.
func (m *Model) startCreateForm() tea.Cmd {
	m.mode = modeCreateItem
	m.formFocus = 0
	m.fieldErrs = map[string]string{}
	m.submitting = false
	m.formInputs = []textinput.Model{
		newFormInput("item name (required)", 120),
		newFormInput("initial stock (required)", 12),
		newFormInput("short description (optional)", 240),
		newFormInput("price, e.g. 19.99 (optional)", 16),
	}
	m.formInputs[fieldStock].SetValue("0")
	m.status = "new item"
	return m.focusFormField(0)
}

// newFormInput constructs one form input.
func newFormInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// focusFormField focuses one create-form field.
func (m *Model) focusFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	return m.formInputs[idx].Focus()
}

// handleFormKey handles create-form keys.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.formInputs = nil
		m.fieldErrs = map[string]string{}
		m.submitting = false
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField((m.formFocus + 1) % len(m.formInputs))
	case "shift+tab", "up":
		return m, m.focusFormField((m.formFocus - 1 + len(m.formInputs)) % len(m.formInputs))
	case "enter":
		return m.submitCreateForm()
	default:
		if m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
		// Typing in a field clears its stale error.
		delete(m.fieldErrs, createFormFields[m.formFocus])
		return m, cmd
	}
}

// formValues reads the current create-form values by field key.
func (m Model) formValues() map[string]string {
	vals := map[string]string{}
	for idx, field := range createFormFields {
		if idx < len(m.formInputs) {
			vals[field] = strings.TrimSpace(m.formInputs[idx].Value())
		}
	}
	return vals
}

// validateCreateForm applies the client-side rules: name required, stock a
// non-negative integer, price numeric when given.
func validateCreateForm(vals map[string]string) (app.CreateItemInput, map[string]string) {
	errs := map[string]string{}
	in := app.CreateItemInput{
		Name:        vals["name"],
		Description: vals["description"],
	}

	if in.Name == "" {
		errs["name"] = "Item name is required"
	}

	switch stock, err := strconv.Atoi(vals["stock"]); {
	case vals["stock"] == "":
		errs["stock"] = "Initial stock is required"
	case err != nil:
		errs["stock"] = "Stock must be a whole number"
	case stock < 0:
		errs["stock"] = "Stock cannot be negative"
	default:
		in.Stock = stock
	}

	if raw := vals["price"]; raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs["price"] = "Price must be a valid number"
		} else {
			in.Price = &price
		}
	}

	return in, errs
}

// submitCreateForm validates locally, then posts through the creator.
func (m Model) submitCreateForm() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	in, errs := validateCreateForm(m.formValues())
	if len(errs) > 0 {
		m.fieldErrs = errs
		m.toasts.Enqueue(domain.NotificationSpec{
			Message:  "Please fix the errors below",
			Kind:     domain.NotificationError,
			Duration: 5 * time.Second,
		})
		m.status = "validation failed"
		return m, m.scheduleToastExpiry()
	}
	if m.creator == nil {
		m.status = "item creation unavailable"
		return m, nil
	}

	m.fieldErrs = map[string]string{}
	m.submitting = true
	m.status = "creating item..."
	creator := m.creator
	return m, func() tea.Msg {
		item, err := creator.CreateItem(context.Background(), in)
		msg := itemCreatedMsg{name: in.Name, item: item, err: err}
		var vErr *api.ValidationError
		if errors.As(err, &vErr) {
			fieldErrs := map[string]string{}
			for field := range vErr.Fields {
				fieldErrs[field] = vErr.FieldMessage(field)
			}
			msg.fieldErrs = fieldErrs
		}
		return msg
	}
}

// handleItemCreated folds the API outcome back into the form state.
func (m Model) handleItemCreated(msg itemCreatedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false

	switch {
	case msg.err == nil:
		m.mode = modeNone
		m.formInputs = nil
		m.fieldErrs = map[string]string{}
		m.status = "item created"
		m.toasts.Enqueue(domain.NotificationSpec{
			Message:  fmt.Sprintf("Item %q created successfully", msg.name),
			Kind:     domain.NotificationSuccess,
			Duration: 5 * time.Second,
		})

	case len(msg.fieldErrs) > 0:
		// Server-side validation: stay on the form, surface per-field errors.
		m.fieldErrs = msg.fieldErrs
		m.status = "validation failed"
		m.toasts.Enqueue(domain.NotificationSpec{
			Message:  "Validation errors occurred",
			Kind:     domain.NotificationError,
			Duration: 5 * time.Second,
		})

	default:
		m.status = "create failed"
		m.toasts.Enqueue(domain.NotificationSpec{
			Message:  "Error: " + msg.err.Error(),
			Kind:     domain.NotificationError,
			Duration: 7 * time.Second,
		})
	}

	return m, m.scheduleToastExpiry()
}

// clampSelection keeps the row cursor inside the item list.
func (m *Model) clampSelection() {
	if count := len(m.svc.Items()); m.selectedRow >= count {
		m.selectedRow = max(0, count-1)
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render builds the full dashboard frame.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("lagerkoll") + "  " + m.renderConnectionBadge()
	if last := m.svc.LastUpdated(); !last.IsZero() {
		header += statusStyle.Render("  updated " + last.Format("15:04:05"))
	}

	var body string
	if m.mode == modeCreateItem {
		body = m.renderCreateForm(accent, muted)
	} else {
		body = m.renderItemTable(accent, muted, dim)
	}

	sections := []string{header, "", body}
	if toasts := m.renderToasts(); toasts != "" {
		sections = append(sections, "", toasts)
	}
	sections = append(sections, "", statusStyle.Render(m.status))

	content := strings.Join(sections, "\n")
	if m.showHelp {
		helpBubble := m.help
		helpBubble.SetWidth(max(0, m.width-2))
		helpLine := lipgloss.NewStyle().
			Foreground(muted).
			BorderTop(true).
			BorderForeground(dim).
			Padding(0, 1).
			Width(max(0, m.width)).
			Render(helpBubble.View(m.keys))
		if m.height > 0 {
			contentHeight := max(0, m.height-lipgloss.Height(helpLine))
			content = fitLines(content, contentHeight)
		}
		content += "\n" + helpLine
	}
	return content
}

// renderConnectionBadge renders the passive channel status indicator.
func (m Model) renderConnectionBadge() string {
	if m.svc.Connected() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("● live")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("○ offline")
}

// renderItemTable renders the inventory list.
func (m Model) renderItemTable(accent, muted, dim imgcolor.Color) string {
	items := m.svc.Items()
	if len(items) == 0 {
		empty := lipgloss.NewStyle().Foreground(muted)
		return empty.Render("No items yet. Updates appear as the channel delivers them; press n to create one.")
	}

	headStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	outStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	lowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	nameWidth := clamp(m.width-28, 16, 48)
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, headStyle.Render(fmt.Sprintf("  %-6s %-*s %8s", "ID", nameWidth, "NAME", "STOCK")))

	for idx, item := range items {
		stockCell := fmt.Sprintf("%8d", item.Stock)
		tag := ""
		switch {
		case item.Stock == 0:
			stockCell = outStyle.Render(stockCell)
			tag = outStyle.Render("  out of stock")
		case item.Stock <= m.lowStockAccent:
			stockCell = lowStyle.Render(stockCell)
			tag = lowStyle.Render("  low")
		}

		prefix := "  "
		row := fmt.Sprintf("%-6d %-*s", item.ID, nameWidth, truncate(item.Name, nameWidth))
		if idx == m.selectedRow {
			prefix = "│ "
			row = selStyle.Render(row)
		} else {
			row = rowStyle.Render(row)
		}
		lines = append(lines, prefix+row+" "+stockCell+tag)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

// formFieldView pairs one display label with its field key.
type formFieldView struct {
	label string
	field string
}

var createFormLabels = []formFieldView{
	{label: "Name *", field: "name"},
	{label: "Stock *", field: "stock"},
	{label: "Description", field: "description"},
	{label: "Price", field: "price"},
}

// renderCreateForm renders the create-item form with inline field errors.
func (m Model) renderCreateForm(accent, muted imgcolor.Color) string {
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	focusedLabel := lipgloss.NewStyle().Bold(true).Foreground(accent)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	lines := []string{lipgloss.NewStyle().Bold(true).Render("Create New Item"), ""}
	for idx, fv := range createFormLabels {
		label := labelStyle.Render(fv.label)
		if idx == m.formFocus {
			label = focusedLabel.Render(fv.label)
		}
		lines = append(lines, label)
		if idx < len(m.formInputs) {
			lines = append(lines, m.formInputs[idx].View())
		}
		if msg, ok := m.fieldErrs[fv.field]; ok && msg != "" {
			lines = append(lines, errStyle.Render("  "+msg))
		}
		lines = append(lines, "")
	}
	if m.submitting {
		lines = append(lines, hintStyle.Render("creating..."))
	} else {
		lines = append(lines, hintStyle.Render("enter submit • tab next field • esc cancel"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	return box.Render(strings.Join(lines, "\n"))
}

// renderToasts renders the newest queued notifications, newest last.
func (m Model) renderToasts() string {
	notifications := m.toasts.Notifications()
	if len(notifications) == 0 {
		return ""
	}
	if len(notifications) > m.maxToasts {
		notifications = notifications[len(notifications)-m.maxToasts:]
	}

	lines := make([]string, 0, len(notifications))
	for _, n := range notifications {
		lines = append(lines, renderToastLine(n))
	}
	return strings.Join(lines, "\n")
}

// renderToastLine renders one toast with its kind accent.
func renderToastLine(n domain.Notification) string {
	var (
		marker string
		color  imgcolor.Color
	)
	switch n.Kind {
	case domain.NotificationSuccess:
		marker, color = "✔", lipgloss.Color("42")
	case domain.NotificationError:
		marker, color = "✖", lipgloss.Color("203")
	case domain.NotificationWarning:
		marker, color = "!", lipgloss.Color("214")
	default:
		marker, color = "i", lipgloss.Color("75")
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(marker) + " " + n.Message
}

// fitLines pads or trims content to an exact line count.
func fitLines(content string, height int) string {
	if height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// truncate shortens s to width runes with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
