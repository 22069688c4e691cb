package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/lagerkoll/internal/adapters/api"
	"github.com/hylla/lagerkoll/internal/app"
	"github.com/hylla/lagerkoll/internal/domain"
	"github.com/hylla/lagerkoll/internal/notify"
)

// fakeCreator records the last creation request and returns canned results.
type fakeCreator struct {
	lastInput app.CreateItemInput
	item      *domain.Item
	err       error
	calls     int
}

func (f *fakeCreator) CreateItem(_ context.Context, in app.CreateItemInput) (*domain.Item, error) {
	f.calls++
	f.lastInput = in
	return f.item, f.err
}

func newTestModel(t *testing.T, opts ...Option) (Model, *app.Service, *notify.Queue) {
	t.Helper()
	queue := notify.NewQueue(nil, nil)
	svc := app.NewService(queue, nil, nil, app.ServiceConfig{})
	m := NewModel(svc, queue, opts...)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), svc, queue
}

func pressKey(t *testing.T, m Model, code rune) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyPressMsg{Code: code, Text: string(code)})
	return updated.(Model), cmd
}

func pressSpecial(t *testing.T, m Model, code rune) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyPressMsg{Code: code})
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = pressKey(t, m, r)
	}
	return m
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestItemEventAppliesAndSchedulesToastExpiry(t *testing.T) {
	m, svc, queue := newTestModel(t)

	updated, cmd := m.Update(ItemEventMsg{Payload: []byte(`{"id": 1, "name": "Widget", "stock": 25}`)})
	m = updated.(Model)

	if len(svc.Items()) != 1 {
		t.Fatalf("expected 1 item, got %d", len(svc.Items()))
	}
	if queue.Len() != 1 {
		t.Fatalf("expected 1 toast, got %d", queue.Len())
	}
	if cmd == nil {
		t.Fatal("expected expiry tick scheduled for the new toast")
	}

	// The expiry message dismisses the toast.
	id := queue.Notifications()[0].ID
	updated, _ = m.Update(toastExpiredMsg{id: id})
	m = updated.(Model)
	if queue.Len() != 0 {
		t.Fatalf("expected toast dismissed, %d left", queue.Len())
	}
	_ = m
}

func TestToastExpiryScheduledOncePerNotification(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, cmd := m.Update(ItemEventMsg{Payload: []byte(`{"id": 1, "name": "Widget", "stock": 25}`)})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected tick for first toast")
	}

	// A dropped duplicate enqueues nothing, so no new tick is issued.
	updated, cmd = m.Update(ItemEventMsg{Payload: []byte(`{"id": 1, "name": "Widget", "stock": 25}`)})
	m = updated.(Model)
	if cmd != nil {
		t.Fatal("expected no tick when nothing was enqueued")
	}
	_ = m
}

func TestConnectionMessagesDriveServiceFlag(t *testing.T) {
	m, svc, _ := newTestModel(t)

	updated, _ := m.Update(ConnectedMsg{})
	m = updated.(Model)
	if !svc.Connected() {
		t.Fatal("expected connected after ConnectedMsg")
	}

	updated, _ = m.Update(DisconnectedMsg{})
	m = updated.(Model)
	if svc.Connected() {
		t.Fatal("expected disconnected after DisconnectedMsg")
	}

	updated, _ = m.Update(ReconnectedMsg{})
	m = updated.(Model)
	if !svc.Connected() {
		t.Fatal("expected connected after ReconnectedMsg")
	}
}

func TestSyncMessageLoadsItems(t *testing.T) {
	m, svc, queue := newTestModel(t)

	payload := []byte(`[{"id": 1, "name": "A", "stock": 2}, {"id": 2, "name": "B", "stock": 0}]`)
	updated, cmd := m.Update(SyncEventMsg{Payload: payload})
	m = updated.(Model)

	if len(svc.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(svc.Items()))
	}
	if cmd == nil {
		t.Fatal("expected ticks for the sync toasts")
	}
	// Trailing change toast plus loaded summary.
	if queue.Len() != 2 {
		t.Fatalf("expected 2 toasts, got %d", queue.Len())
	}
	_ = m
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := pressKey(t, m, 'q')
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestDismissKeys(t *testing.T) {
	m, _, queue := newTestModel(t)
	queue.Enqueue(domain.NotificationSpec{Message: "one"})
	queue.Enqueue(domain.NotificationSpec{Message: "two"})

	m, _ = pressKey(t, m, 'x')
	if queue.Len() != 1 {
		t.Fatalf("expected newest dismissed, %d left", queue.Len())
	}
	queue.Enqueue(domain.NotificationSpec{Message: "three"})
	m, _ = pressKey(t, m, 'X')
	if queue.Len() != 0 {
		t.Fatalf("expected all dismissed, %d left", queue.Len())
	}
	_ = m
}

func TestRowSelectionStaysInBounds(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, _ := m.Update(SyncEventMsg{Payload: []byte(`[{"id":1,"name":"A","stock":1},{"id":2,"name":"B","stock":1}]`)})
	m = updated.(Model)

	m, _ = pressKey(t, m, 'j')
	m, _ = pressKey(t, m, 'j')
	m, _ = pressKey(t, m, 'j')
	if m.selectedRow != 1 {
		t.Fatalf("selectedRow = %d, want clamped to 1", m.selectedRow)
	}
	m, _ = pressKey(t, m, 'k')
	m, _ = pressKey(t, m, 'k')
	m, _ = pressKey(t, m, 'k')
	if m.selectedRow != 0 {
		t.Fatalf("selectedRow = %d, want clamped to 0", m.selectedRow)
	}
}

func TestCreateFormOpensAndCancels(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = pressKey(t, m, 'n')
	if m.mode != modeCreateItem {
		t.Fatal("expected create mode after n")
	}
	if len(m.formInputs) != 4 {
		t.Fatalf("expected 4 form inputs, got %d", len(m.formInputs))
	}

	m, _ = pressSpecial(t, m, tea.KeyEscape)
	if m.mode != modeNone {
		t.Fatal("expected form closed on esc")
	}
}

func TestCreateFormLocalValidation(t *testing.T) {
	creator := &fakeCreator{}
	m, _, queue := newTestModel(t, WithItemCreator(creator))

	m, _ = pressKey(t, m, 'n')
	// Clear the default stock value, then submit with everything invalid.
	m.formInputs[fieldName].SetValue("")
	m.formInputs[fieldStock].SetValue("-3")
	m.formInputs[fieldPrice].SetValue("abc")

	m2, _ := pressSpecial(t, m, tea.KeyEnter)
	m = m2

	if creator.calls != 0 {
		t.Fatal("invalid form must not reach the API")
	}
	if m.fieldErrs["name"] != "Item name is required" {
		t.Fatalf("name error = %q", m.fieldErrs["name"])
	}
	if m.fieldErrs["stock"] != "Stock cannot be negative" {
		t.Fatalf("stock error = %q", m.fieldErrs["stock"])
	}
	if m.fieldErrs["price"] != "Price must be a valid number" {
		t.Fatalf("price error = %q", m.fieldErrs["price"])
	}

	toasts := queue.Notifications()
	if len(toasts) != 1 || toasts[0].Message != "Please fix the errors below" {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestCreateFormSubmitSuccess(t *testing.T) {
	creator := &fakeCreator{item: &domain.Item{ID: 9, Name: "Widget", Stock: 12}}
	m, _, queue := newTestModel(t, WithItemCreator(creator))

	m, _ = pressKey(t, m, 'n')
	m = typeText(t, m, "Widget")
	m, _ = pressSpecial(t, m, tea.KeyTab)
	m.formInputs[fieldStock].SetValue("12")
	m, _ = pressSpecial(t, m, tea.KeyTab)
	m, _ = pressSpecial(t, m, tea.KeyTab)
	m = typeText(t, m, "19.99")

	m2, cmd := pressSpecial(t, m, tea.KeyEnter)
	m = m2
	if !m.submitting {
		t.Fatal("expected submitting state while the request is in flight")
	}

	msg := runCmd(t, cmd)
	created, ok := msg.(itemCreatedMsg)
	if !ok {
		t.Fatalf("unexpected msg %T", msg)
	}
	if creator.lastInput.Name != "Widget" || creator.lastInput.Stock != 12 {
		t.Fatalf("unexpected input %+v", creator.lastInput)
	}
	if creator.lastInput.Price == nil || *creator.lastInput.Price != 19.99 {
		t.Fatalf("unexpected price %+v", creator.lastInput.Price)
	}

	updated, _ := m.Update(created)
	m = updated.(Model)
	if m.mode != modeNone {
		t.Fatal("expected form closed after success")
	}
	toasts := queue.Notifications()
	if len(toasts) != 1 || toasts[0].Message != `Item "Widget" created successfully` {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
	if toasts[0].Kind != domain.NotificationSuccess {
		t.Fatalf("kind = %q", toasts[0].Kind)
	}
}

func TestCreateFormServerValidationErrors(t *testing.T) {
	creator := &fakeCreator{err: &api.ValidationError{Fields: map[string][]string{
		"name": {"Name already exists"},
	}}}
	m, _, queue := newTestModel(t, WithItemCreator(creator))

	m, _ = pressKey(t, m, 'n')
	m = typeText(t, m, "Widget")

	m2, cmd := pressSpecial(t, m, tea.KeyEnter)
	m = m2
	msg := runCmd(t, cmd)

	updated, _ := m.Update(msg)
	m = updated.(Model)
	if m.mode != modeCreateItem {
		t.Fatal("expected form kept open on validation failure")
	}
	if m.fieldErrs["name"] != "Name already exists" {
		t.Fatalf("name error = %q", m.fieldErrs["name"])
	}
	toasts := queue.Notifications()
	if len(toasts) != 1 || toasts[0].Message != "Validation errors occurred" {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestCreateFormTransportError(t *testing.T) {
	creator := &fakeCreator{err: errors.New("connection refused")}
	m, _, queue := newTestModel(t, WithItemCreator(creator))

	m, _ = pressKey(t, m, 'n')
	m = typeText(t, m, "Widget")

	m2, cmd := pressSpecial(t, m, tea.KeyEnter)
	m = m2
	updated, _ := m.Update(runCmd(t, cmd))
	m = updated.(Model)

	toasts := queue.Notifications()
	if len(toasts) != 1 || toasts[0].Message != "Error: connection refused" {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
	if toasts[0].Kind != domain.NotificationError || toasts[0].Duration != 7*time.Second {
		t.Fatalf("unexpected toast %+v", toasts[0])
	}
	if m.submitting {
		t.Fatal("expected submitting cleared after failure")
	}
}

func TestViewRendersStateBadgesAndItems(t *testing.T) {
	m, _, queue := newTestModel(t)
	updated, _ := m.Update(ConnectedMsg{})
	m = updated.(Model)
	updated, _ = m.Update(SyncEventMsg{Payload: []byte(`[{"id":1,"name":"Widget","stock":0},{"id":2,"name":"Gadget","stock":3}]`)})
	m = updated.(Model)
	queue.DismissAll()
	queue.Enqueue(domain.NotificationSpec{Message: "visible toast"})

	out := m.render()
	if !strings.Contains(out, "live") {
		t.Fatal("expected live badge in view")
	}
	if !strings.Contains(out, "Widget") || !strings.Contains(out, "Gadget") {
		t.Fatal("expected item names rendered")
	}
	if !strings.Contains(out, "out of stock") {
		t.Fatal("expected out-of-stock tag rendered")
	}
	if !strings.Contains(out, "visible toast") {
		t.Fatal("expected toast rendered")
	}

	updated, _ = m.Update(DisconnectedMsg{})
	m = updated.(Model)
	if !strings.Contains(m.render(), "offline") {
		t.Fatal("expected offline badge after disconnect")
	}
}

func TestViewCapsToastStack(t *testing.T) {
	m, _, queue := newTestModel(t, WithMaxToasts(2))
	queue.Enqueue(domain.NotificationSpec{Message: "toast-one"})
	queue.Enqueue(domain.NotificationSpec{Message: "toast-two"})
	queue.Enqueue(domain.NotificationSpec{Message: "toast-three"})

	out := m.render()
	if strings.Contains(out, "toast-one") {
		t.Fatal("expected oldest toast hidden beyond cap")
	}
	if !strings.Contains(out, "toast-two") || !strings.Contains(out, "toast-three") {
		t.Fatal("expected newest toasts rendered")
	}
}
