package guard_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/vladislavdragonenkov/salesconsole/internal/api"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/guard"
	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

type mutatorCall struct {
	op           string
	id           string
	status       domain.Status
	registeredBy *string
}

type fakeMutator struct {
	calls []mutatorCall
	err   error
}

func (f *fakeMutator) UpdateSale(_ context.Context, id string, status domain.Status, registeredBy *string) error {
	f.calls = append(f.calls, mutatorCall{op: "update", id: id, status: status, registeredBy: registeredBy})
	return f.err
}

func (f *fakeMutator) DeleteSale(_ context.Context, id string) error {
	f.calls = append(f.calls, mutatorCall{op: "delete", id: id})
	return f.err
}

type fakeRefresher struct {
	refreshes int
}

func (f *fakeRefresher) Refresh(context.Context) { f.refreshes++ }

type fakeReporter struct {
	errors []error
}

func (f *fakeReporter) Report(err error) { f.errors = append(f.errors, err) }

func row(id string, status domain.Status) domain.SalesOrderRow {
	return domain.SalesOrderRow{SalesOrder: domain.SalesOrder{ID: id, Status: status}}
}

func newGuard(m *fakeMutator, r *fakeRefresher, rep *fakeReporter) *guard.Guard {
	return guard.NewGuard(m, r, rep, nil, nil)
}

func TestConfirmDelete_ShippedIsRefusedWithoutRequest(t *testing.T) {
	mutator := &fakeMutator{}
	refresher := &fakeRefresher{}
	reporter := &fakeReporter{}
	g := newGuard(mutator, refresher, reporter)

	if err := g.SelectForDelete(row("order-7", domain.StatusShipped)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if !g.DeleteBlocked() {
		t.Fatal("expected delete to be blocked for shipped order")
	}

	err := g.ConfirmDelete(context.Background())
	if !domain.IsShippedDeleteBlocked(err) {
		t.Fatalf("expected shipped-delete sentinel, got %v", err)
	}

	if len(mutator.calls) != 0 {
		t.Fatalf("expected no request, got %+v", mutator.calls)
	}
	if refresher.refreshes != 0 {
		t.Fatalf("expected no refresh, got %d", refresher.refreshes)
	}
	if len(reporter.errors) != 1 {
		t.Fatalf("expected exactly one notice, got %d", len(reporter.errors))
	}

	// Выбор сохраняется: пользователь ещё может закрыть диалог сам.
	if _, _, ok := g.Selected(); !ok {
		t.Fatal("expected selection to survive a refused confirm")
	}
}

func TestConfirmDelete_InvoicedIssuesOneRequestAndRefresh(t *testing.T) {
	mutator := &fakeMutator{}
	refresher := &fakeRefresher{}
	g := newGuard(mutator, refresher, &fakeReporter{})

	if err := g.SelectForDelete(row("order-2", domain.StatusInvoiced)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if g.DeleteBlocked() {
		t.Fatal("invoiced order must not block delete")
	}

	if err := g.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if len(mutator.calls) != 1 || mutator.calls[0].op != "delete" || mutator.calls[0].id != "order-2" {
		t.Fatalf("expected one delete for order-2, got %+v", mutator.calls)
	}
	if refresher.refreshes != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refresher.refreshes)
	}
	if _, _, ok := g.Selected(); ok {
		t.Fatal("expected selection to be cleared after success")
	}
}

func TestConfirmDelete_FailureKeepsSelection(t *testing.T) {
	mutator := &fakeMutator{err: &api.Error{Message: "boom", Status: http.StatusInternalServerError}}
	refresher := &fakeRefresher{}
	reporter := &fakeReporter{}
	g := newGuard(mutator, refresher, reporter)

	if err := g.SelectForDelete(row("order-2", domain.StatusPacked)); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	err := g.ConfirmDelete(context.Background())
	if err == nil {
		t.Fatal("expected confirm to fail")
	}

	if refresher.refreshes != 0 {
		t.Fatalf("expected no refresh on failure, got %d", refresher.refreshes)
	}
	if len(reporter.errors) != 1 {
		t.Fatalf("expected exactly one notice, got %d", len(reporter.errors))
	}
	if _, _, ok := g.Selected(); !ok {
		t.Fatal("expected selection to survive a failed confirm")
	}
}

func TestConfirmDelete_WithoutSelection(t *testing.T) {
	g := newGuard(&fakeMutator{}, &fakeRefresher{}, &fakeReporter{})

	if err := g.ConfirmDelete(context.Background()); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestSelection_IsExclusive(t *testing.T) {
	g := newGuard(&fakeMutator{}, &fakeRefresher{}, &fakeReporter{})

	if err := g.SelectForDelete(row("order-1", domain.StatusInvoiced)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := g.SelectForUpdate(row("order-2", domain.StatusPacked)); !errors.Is(err, domain.ErrSelectionBusy) {
		t.Fatalf("expected ErrSelectionBusy, got %v", err)
	}

	g.Cancel()
	if err := g.SelectForUpdate(row("order-2", domain.StatusPacked)); err != nil {
		t.Fatalf("select after cancel failed: %v", err)
	}
}

func TestConfirmUpdate_NormalizesAssignee(t *testing.T) {
	mutator := &fakeMutator{}
	refresher := &fakeRefresher{}
	g := newGuard(mutator, refresher, &fakeReporter{})

	// Явный null для "никто".
	if err := g.SelectForUpdate(row("order-3", domain.StatusInvoiced)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := g.ConfirmUpdate(context.Background(), domain.StatusPacked, nil); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	call := mutator.calls[0]
	if call.op != "update" || call.id != "order-3" || call.status != domain.StatusPacked {
		t.Fatalf("unexpected call %+v", call)
	}
	if call.registeredBy != nil {
		t.Fatalf("expected nil registeredBy, got %v", *call.registeredBy)
	}

	// Идентификатор выбранного пользователя.
	if err := g.SelectForUpdate(row("order-3", domain.StatusPacked)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	assignee := domain.User{ID: "user-5", Name: "Boris"}
	if err := g.ConfirmUpdate(context.Background(), domain.StatusShipped, &assignee); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	call = mutator.calls[1]
	if call.registeredBy == nil || *call.registeredBy != "user-5" {
		t.Fatalf("expected registeredBy user-5, got %+v", call.registeredBy)
	}
	if refresher.refreshes != 2 {
		t.Fatalf("expected 2 refreshes, got %d", refresher.refreshes)
	}
}

func TestConfirmUpdate_ShippedOrderIsNotBlocked(t *testing.T) {
	mutator := &fakeMutator{}
	g := newGuard(mutator, &fakeRefresher{}, &fakeReporter{})

	// Асимметрия с delete намеренная: update отгруженного заказа разрешён.
	if err := g.SelectForUpdate(row("order-7", domain.StatusShipped)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := g.ConfirmUpdate(context.Background(), domain.StatusRejected, nil); err != nil {
		t.Fatalf("expected update of shipped order to pass, got %v", err)
	}
	if len(mutator.calls) != 1 {
		t.Fatalf("expected one update call, got %d", len(mutator.calls))
	}
}

func TestConfirmUpdate_UnknownStatus(t *testing.T) {
	mutator := &fakeMutator{}
	g := newGuard(mutator, &fakeRefresher{}, &fakeReporter{})

	if err := g.SelectForUpdate(row("order-1", domain.StatusInvoiced)); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := g.ConfirmUpdate(context.Background(), "delivered", nil); !errors.Is(err, domain.ErrStatusUnknown) {
		t.Fatalf("expected ErrStatusUnknown, got %v", err)
	}
	if len(mutator.calls) != 0 {
		t.Fatalf("expected no request for unknown status, got %+v", mutator.calls)
	}
}
