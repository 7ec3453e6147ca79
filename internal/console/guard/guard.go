package guard

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	"github.com/vladislavdragonenkov/salesconsole/internal/metrics"
)

// Mutator — коллаборатор, выполняющий мутации заказов на сервере.
type Mutator interface {
	UpdateSale(ctx context.Context, id string, status domain.Status, registeredBy *string) error
	DeleteSale(ctx context.Context, id string) error
}

// Refresher перечитывает листинг после успешной мутации.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Reporter принимает ошибки и показывает их пользователю.
type Reporter interface {
	Report(err error)
}

// Intent — какое действие ожидает подтверждения по выбранному заказу.
type Intent int

const (
	IntentNone Intent = iota
	IntentDelete
	IntentUpdate
)

// Guard валидирует и выполняет delete/update по выбранному заказу.
// Слот выбора эксклюзивен: одновременно может быть только одно незавершённое
// действие по одному заказу. Удаление отгруженного заказа запрещено;
// на update терминальных ограничений нет — эта асимметрия намеренная.
type Guard struct {
	mu       sync.Mutex
	selected *domain.SalesOrderRow
	intent   Intent

	api      Mutator
	pages    Refresher
	reporter Reporter
	metrics  *metrics.ConsoleMetrics
	logger   *log.Entry
}

// NewGuard конструирует guard мутаций. metrics может быть nil.
func NewGuard(api Mutator, pages Refresher, reporter Reporter, m *metrics.ConsoleMetrics, logger *log.Entry) *Guard {
	if logger == nil {
		logger = log.WithField("component", "mutation-guard")
	}
	return &Guard{
		api:      api,
		pages:    pages,
		reporter: reporter,
		metrics:  m,
		logger:   logger,
	}
}

// SelectForDelete выбирает заказ для удаления. ErrSelectionBusy, если другое
// действие уже ожидает подтверждения.
func (g *Guard) SelectForDelete(row domain.SalesOrderRow) error {
	return g.selectRow(row, IntentDelete)
}

// SelectForUpdate выбирает заказ для изменения статуса/назначенного.
func (g *Guard) SelectForUpdate(row domain.SalesOrderRow) error {
	return g.selectRow(row, IntentUpdate)
}

func (g *Guard) selectRow(row domain.SalesOrderRow, intent Intent) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.selected != nil {
		return domain.ErrSelectionBusy
	}
	copied := row
	g.selected = &copied
	g.intent = intent
	return nil
}

// Selected возвращает копию выбранного заказа и ожидаемое действие.
func (g *Guard) Selected() (domain.SalesOrderRow, Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.selected == nil {
		return domain.SalesOrderRow{}, IntentNone, false
	}
	return *g.selected, g.intent, true
}

// Cancel снимает выбор без выполнения действия.
func (g *Guard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked()
}

func (g *Guard) clearLocked() {
	g.selected = nil
	g.intent = IntentNone
}

// DeleteBlocked сообщает, заблокировано ли удаление выбранного заказа.
// Подтверждение удаления отгруженного заказа запрещено ещё до запроса.
func (g *Guard) DeleteBlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected != nil && g.selected.Status == domain.StatusShipped
}

// ConfirmDelete выполняет удаление выбранного заказа. Для отгруженного заказа
// запрос не отправляется вовсе. При успехе выбор снимается и листинг
// перечитывается; при неудаче выбор и список остаются как были.
func (g *Guard) ConfirmDelete(ctx context.Context) error {
	g.mu.Lock()
	if g.selected == nil || g.intent != IntentDelete {
		g.mu.Unlock()
		return domain.ErrNoSelection
	}
	row := *g.selected
	g.mu.Unlock()

	if row.Status == domain.StatusShipped {
		g.metrics.RecordDeleteBlocked()
		g.logger.WithField("order_id", row.ID).Info("delete refused for shipped order")
		if g.reporter != nil {
			g.reporter.Report(domain.ErrShippedDeleteBlocked)
		}
		return domain.ErrShippedDeleteBlocked
	}

	if err := g.api.DeleteSale(ctx, row.ID); err != nil {
		g.metrics.RecordMutationError("delete")
		g.logger.WithError(err).WithField("order_id", row.ID).Warn("delete failed")
		if g.reporter != nil {
			g.reporter.Report(err)
		}
		return fmt.Errorf("delete sales order %s: %w", row.ID, err)
	}

	g.Cancel()
	g.metrics.RecordMutation("delete")
	g.pages.Refresh(ctx)
	return nil
}

// ConfirmUpdate отправляет новый статус и назначенного пользователя.
// Назначенный нормализуется до идентификатора либо явного null ("никто").
// Терминальных ограничений нет: статус и назначенный отгруженного заказа
// менять можно.
func (g *Guard) ConfirmUpdate(ctx context.Context, status domain.Status, assignee *domain.User) error {
	g.mu.Lock()
	if g.selected == nil || g.intent != IntentUpdate {
		g.mu.Unlock()
		return domain.ErrNoSelection
	}
	row := *g.selected
	g.mu.Unlock()

	if !status.Valid() {
		return domain.ErrStatusUnknown
	}

	var registeredBy *string
	if assignee != nil {
		id := assignee.ID
		registeredBy = &id
	}

	if err := g.api.UpdateSale(ctx, row.ID, status, registeredBy); err != nil {
		g.metrics.RecordMutationError("update")
		g.logger.WithError(err).WithField("order_id", row.ID).Warn("update failed")
		if g.reporter != nil {
			g.reporter.Report(err)
		}
		return fmt.Errorf("update sales order %s: %w", row.ID, err)
	}

	g.Cancel()
	g.metrics.RecordMutation("update")
	g.pages.Refresh(ctx)
	return nil
}
