package query_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vladislavdragonenkov/salesconsole/internal/api"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/query"
	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// fakeLister записывает каждый запрос и отвечает по сценарию.
type fakeLister struct {
	mu      sync.Mutex
	queries []domain.ListQuery
	respond func(call int, q domain.ListQuery) (domain.SalesPage, error)
}

func (f *fakeLister) ListSales(ctx context.Context, q domain.ListQuery) (domain.SalesPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	call := len(f.queries)
	f.mu.Unlock()
	return f.respond(call, q)
}

func (f *fakeLister) query(t *testing.T, i int) domain.ListQuery {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.queries) {
		t.Fatalf("expected at least %d queries, got %d", i+1, len(f.queries))
	}
	return f.queries[i]
}

func (f *fakeLister) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeReporter struct {
	mu     sync.Mutex
	errors []error
}

func (f *fakeReporter) Report(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, err)
}

func (f *fakeReporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors)
}

func pageOf(ids ...string) domain.SalesPage {
	rows := make([]domain.SalesOrderRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.SalesOrderRow{
			SalesOrder: domain.SalesOrder{ID: id, Status: domain.StatusInvoiced},
		})
	}
	return domain.SalesPage{Count: len(rows), Rows: rows}
}

func TestRefresh_ReplacesRowsAndTotalPages(t *testing.T) {
	lister := &fakeLister{respond: func(int, domain.ListQuery) (domain.SalesPage, error) {
		p := pageOf("order-1", "order-2")
		p.Count = 23
		return p, nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)

	engine.Refresh(context.Background())

	if got := engine.TotalPages(); got != 3 {
		t.Fatalf("expected totalPages 3 for count 23, got %d", got)
	}
	if got := len(engine.Rows()); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	if lister.calls() != 1 {
		t.Fatalf("expected exactly one fetch, got %d", lister.calls())
	}
}

func TestQueryDerivation_OmitsAbsentFilters(t *testing.T) {
	lister := &fakeLister{respond: func(int, domain.ListQuery) (domain.SalesPage, error) {
		return pageOf(), nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)

	engine.Refresh(context.Background())

	q := lister.query(t, 0)
	want := domain.ListQuery{Page: 1}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Fatalf("unexpected query (-want +got):\n%s", diff)
	}
}

func TestQueryDerivation_StatusFilterOnly(t *testing.T) {
	lister := &fakeLister{respond: func(int, domain.ListQuery) (domain.SalesPage, error) {
		return pageOf(), nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)

	packed := domain.StatusPacked
	engine.SetStatusFilter(context.Background(), &packed)

	q := lister.query(t, 0)
	if q.Status == nil || *q.Status != domain.StatusPacked {
		t.Fatalf("expected status filter packed, got %+v", q.Status)
	}
	if q.AssigneeID != nil {
		t.Fatalf("expected no assignee filter, got %v", *q.AssigneeID)
	}
	if q.Page != 1 {
		t.Fatalf("expected page 1, got %d", q.Page)
	}
}

func TestQueryDerivation_AssigneeFilterCarriesUserID(t *testing.T) {
	lister := &fakeLister{respond: func(int, domain.ListQuery) (domain.SalesPage, error) {
		return pageOf(), nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)

	engine.SetAssigneeFilter(context.Background(), &domain.User{ID: "user-7", Name: "Anna"})

	q := lister.query(t, 0)
	if q.AssigneeID == nil || *q.AssigneeID != "user-7" {
		t.Fatalf("expected assignee filter user-7, got %+v", q.AssigneeID)
	}
}

func TestSetStatusFilter_DoesNotResetPage(t *testing.T) {
	lister := &fakeLister{respond: func(int, domain.ListQuery) (domain.SalesPage, error) {
		p := pageOf("order-1")
		p.Count = 30
		return p, nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)

	engine.Refresh(context.Background())
	engine.SetPage(context.Background(), 3)

	shipped := domain.StatusShipped
	engine.SetStatusFilter(context.Background(), &shipped)

	// Существующее поведение: смена фильтра оставляет страницу как есть.
	q := lister.query(t, 2)
	if q.Page != 3 {
		t.Fatalf("expected page to stay 3 after filter change, got %d", q.Page)
	}
}

func TestSetPage_ClampsToBounds(t *testing.T) {
	lister := &fakeLister{respond: func(int, domain.ListQuery) (domain.SalesPage, error) {
		p := pageOf("order-1")
		p.Count = 23 // 3 страницы
		return p, nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)
	engine.Refresh(context.Background())

	engine.SetPage(context.Background(), 99)
	if got := engine.Page(); got != 3 {
		t.Fatalf("expected page clamped to 3, got %d", got)
	}

	engine.SetPage(context.Background(), -4)
	if got := engine.Page(); got != 1 {
		t.Fatalf("expected page clamped to 1, got %d", got)
	}

	engine.PrevPage(context.Background())
	if got := engine.Page(); got != 1 {
		t.Fatalf("expected page to stay at 1, got %d", got)
	}
}

func TestFetchFailure_KeepsStateAndReportsOnce(t *testing.T) {
	lister := &fakeLister{respond: func(call int, _ domain.ListQuery) (domain.SalesPage, error) {
		if call == 1 {
			p := pageOf("order-1", "order-2")
			p.Count = 23
			return p, nil
		}
		return domain.SalesPage{}, &api.Error{Message: "boom", Status: http.StatusInternalServerError}
	}}
	reporter := &fakeReporter{}
	engine := query.NewEngine(lister, reporter, nil, nil)

	engine.Refresh(context.Background())
	engine.SetPage(context.Background(), 2)

	// Последняя удачная страница остаётся видимой.
	if got := len(engine.Rows()); got != 2 {
		t.Fatalf("expected previous rows to survive, got %d", got)
	}
	if got := engine.TotalPages(); got != 3 {
		t.Fatalf("expected totalPages to survive, got %d", got)
	}
	if reporter.count() != 1 {
		t.Fatalf("expected exactly one report, got %d", reporter.count())
	}
}

func TestRapidChanges_LastIssuedRequestWins(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	lister := &fakeLister{respond: func(call int, _ domain.ListQuery) (domain.SalesPage, error) {
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			return pageOf("stale-order"), nil
		}
		return pageOf("fresh-order-1", "fresh-order-2"), nil
	}}
	engine := query.NewEngine(lister, &fakeReporter{}, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		packed := domain.StatusPacked
		engine.SetStatusFilter(context.Background(), &packed)
	}()

	<-firstStarted
	// Второй запрос выдаётся, пока первый ещё в полёте, и завершается раньше.
	engine.Refresh(context.Background())

	// Первый (устаревший) ответ приходит последним и должен быть отброшен.
	close(releaseFirst)
	wg.Wait()

	rows := engine.Rows()
	if len(rows) != 2 || rows[0].ID != "fresh-order-1" {
		t.Fatalf("expected fresh rows to win, got %+v", rows)
	}
}
