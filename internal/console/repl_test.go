package console

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/salesconsole/internal/console/guard"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/query"
	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// replBackend — заглушка листинга и мутаций для команд консоли.
type replBackend struct {
	page      domain.SalesPage
	updateErr error
	deletes   int
	updates   int
}

func (b *replBackend) ListSales(_ context.Context, _ domain.ListQuery) (domain.SalesPage, error) {
	return b.page, nil
}

func (b *replBackend) UpdateSale(_ context.Context, _ string, _ domain.Status, _ *string) error {
	b.updates++
	return b.updateErr
}

func (b *replBackend) DeleteSale(_ context.Context, _ string) error {
	b.deletes++
	return nil
}

type silentReporter struct{}

func (silentReporter) Report(error) {}

func newTestREPL(t *testing.T, backend *replBackend) *REPL {
	t.Helper()
	engine := query.NewEngine(backend, silentReporter{}, nil, nil)
	g := guard.NewGuard(backend, engine, silentReporter{}, nil, nil)
	engine.Refresh(context.Background())
	return &REPL{engine: engine, guard: g}
}

func TestCmdDelete_BlockedShippedReleasesSelection(t *testing.T) {
	backend := &replBackend{page: domain.SalesPage{Count: 2, Rows: []domain.SalesOrderRow{
		{SalesOrder: domain.SalesOrder{ID: "order-1", Reference: "SO-1", Status: domain.StatusShipped}},
		{SalesOrder: domain.SalesOrder{ID: "order-2", Reference: "SO-2", Status: domain.StatusInvoiced}},
	}}}
	r := newTestREPL(t, backend)
	ctx := context.Background()

	r.cmdDelete(ctx, []string{"1"})

	if backend.deletes != 0 {
		t.Fatalf("expected no delete request for a shipped order, got %d", backend.deletes)
	}
	if _, _, busy := r.guard.Selected(); busy {
		t.Fatal("selection still held after refused delete")
	}

	// Следующая мутация должна дойти до сервера, а не упереться в занятый слот.
	r.cmdUpdate(ctx, []string{"2", "packed"})
	if backend.updates != 1 {
		t.Fatalf("expected one update after refused delete, got %d", backend.updates)
	}
}

func TestCmdUpdate_FailureReleasesSelection(t *testing.T) {
	backend := &replBackend{
		updateErr: errors.New("connection reset"),
		page: domain.SalesPage{Count: 1, Rows: []domain.SalesOrderRow{
			{SalesOrder: domain.SalesOrder{ID: "order-1", Reference: "SO-1", Status: domain.StatusInvoiced}},
		}},
	}
	r := newTestREPL(t, backend)
	ctx := context.Background()

	r.cmdUpdate(ctx, []string{"1", "rejected"})
	if _, _, busy := r.guard.Selected(); busy {
		t.Fatal("selection still held after failed update")
	}

	// Повтор той же команды после восстановления связи.
	backend.updateErr = nil
	r.cmdUpdate(ctx, []string{"1", "rejected"})
	if backend.updates != 2 {
		t.Fatalf("expected the retry to reach the server, got %d updates", backend.updates)
	}
}
