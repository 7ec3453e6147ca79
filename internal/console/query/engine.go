package query

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	"github.com/vladislavdragonenkov/salesconsole/internal/metrics"
)

// Lister — коллаборатор, отдающий одну страницу заказов по запросу.
type Lister interface {
	ListSales(ctx context.Context, q domain.ListQuery) (domain.SalesPage, error)
}

// Reporter принимает ошибки транспорта и показывает их пользователю.
type Reporter interface {
	Report(err error)
}

// Engine владеет состоянием фильтров и пагинации и перечитывает листинг при
// каждом его изменении. Список заказов пишет только Engine; после любой
// мутации guard вызывает Refresh, а не правит список сам.
//
// Каждому запросу присваивается монотонный номер; ответ с номером, отличным
// от последнего выданного, отбрасывается. Побеждает последний выданный
// запрос, а не последний пришедший ответ.
type Engine struct {
	mu         sync.Mutex
	page       int
	totalPages int
	status     *domain.Status
	assignee   *domain.User
	rows       []domain.SalesOrderRow
	seq        uint64

	lister   Lister
	reporter Reporter
	metrics  *metrics.ConsoleMetrics
	logger   *log.Entry
}

// NewEngine создаёт движок листинга. metrics может быть nil.
func NewEngine(lister Lister, reporter Reporter, m *metrics.ConsoleMetrics, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.WithField("component", "query-engine")
	}
	return &Engine{
		page:       1,
		totalPages: 1,
		lister:     lister,
		reporter:   reporter,
		metrics:    m,
		logger:     logger,
	}
}

// Page возвращает текущую страницу (нумерация с единицы).
func (e *Engine) Page() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page
}

// TotalPages возвращает число страниц по последнему успешному ответу.
func (e *Engine) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalPages
}

// Rows возвращает копию текущей страницы в порядке, отданном сервером.
func (e *Engine) Rows() []domain.SalesOrderRow {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows := make([]domain.SalesOrderRow, len(e.rows))
	copy(rows, e.rows)
	return rows
}

// StatusFilter возвращает активный фильтр по статусу или nil.
func (e *Engine) StatusFilter() *domain.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == nil {
		return nil
	}
	s := *e.status
	return &s
}

// AssigneeFilter возвращает активный фильтр по назначенному или nil.
func (e *Engine) AssigneeFilter() *domain.User {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.assignee == nil {
		return nil
	}
	u := *e.assignee
	return &u
}

// SetPage переходит на страницу n, зажимая её в [1, totalPages], и
// перечитывает листинг.
func (e *Engine) SetPage(ctx context.Context, n int) {
	e.mu.Lock()
	if n < 1 {
		n = 1
	}
	if n > e.totalPages {
		n = e.totalPages
	}
	e.page = n
	e.mu.Unlock()

	e.fetch(ctx)
}

// NextPage переходит на следующую страницу, если она есть.
func (e *Engine) NextPage(ctx context.Context) {
	e.SetPage(ctx, e.Page()+1)
}

// PrevPage переходит на предыдущую страницу, если она есть.
func (e *Engine) PrevPage(ctx context.Context) {
	e.SetPage(ctx, e.Page()-1)
}

// SetStatusFilter меняет фильтр по статусу (nil — без фильтра) и перечитывает
// листинг. Страница намеренно не сбрасывается: так ведёт себя существующий
// интерфейс, и при меньшем отфильтрованном результате страница может
// оказаться пустой.
func (e *Engine) SetStatusFilter(ctx context.Context, s *domain.Status) {
	e.mu.Lock()
	if s == nil {
		e.status = nil
	} else {
		copied := *s
		e.status = &copied
	}
	e.mu.Unlock()

	e.fetch(ctx)
}

// SetAssigneeFilter меняет фильтр по назначенному пользователю (nil — без
// фильтра) и перечитывает листинг. Страница не сбрасывается, см. SetStatusFilter.
func (e *Engine) SetAssigneeFilter(ctx context.Context, u *domain.User) {
	e.mu.Lock()
	if u == nil {
		e.assignee = nil
	} else {
		copied := *u
		e.assignee = &copied
	}
	e.mu.Unlock()

	e.fetch(ctx)
}

// Refresh перечитывает листинг для текущего состояния. Вызывается после
// каждой успешной мутации, чтобы список отражал состояние сервера.
func (e *Engine) Refresh(ctx context.Context) {
	e.fetch(ctx)
}

// fetch выдаёт один запрос листинга. Неудача не трогает ни список, ни
// пагинацию: остаётся последняя успешно загруженная страница.
func (e *Engine) fetch(ctx context.Context) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	q := domain.ListQuery{Page: e.page}
	if e.status != nil {
		s := *e.status
		q.Status = &s
	}
	if e.assignee != nil {
		id := e.assignee.ID
		q.AssigneeID = &id
	}
	e.mu.Unlock()

	e.metrics.RecordQuery()
	start := time.Now()
	page, err := e.lister.ListSales(ctx, q)
	e.metrics.RecordQueryDuration(time.Since(start))

	if err != nil {
		e.metrics.RecordQueryError()
		e.logger.WithError(err).WithField("page", q.Page).Warn("sales list fetch failed")
		if e.reporter != nil {
			e.reporter.Report(err)
		}
		return
	}

	e.apply(seq, page)
}

// apply кладёт ответ в состояние, если он всё ещё последний выданный.
func (e *Engine) apply(seq uint64, page domain.SalesPage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		e.metrics.RecordStaleDiscarded()
		e.logger.WithFields(log.Fields{"seq": seq, "latest": e.seq}).Debug("discarding stale list response")
		return
	}

	e.rows = page.Rows
	e.totalPages = domain.TotalPages(page.Count)
}
