package notice

import (
	"errors"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/api"
	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// DefaultTTL — время жизни уведомления до самопогашения.
const DefaultTTL = 3 * time.Second

// Notice — транзиентное уведомление для пользователя.
type Notice struct {
	Message string
	Status  int
}

// Center принимает ошибки ядра, превращает их в уведомления и гасит их по
// истечении TTL. Forbidden (403) дополнительно запускает teardown сессии.
type Center struct {
	mu          sync.Mutex
	current     *Notice
	timer       *time.Timer
	ttl         time.Duration
	onForbidden func()
	logger      *log.Entry
}

// NewCenter создаёт центр уведомлений. onForbidden может быть nil.
func NewCenter(ttl time.Duration, onForbidden func(), logger *log.Entry) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "notices")
	}
	return &Center{ttl: ttl, onForbidden: onForbidden, logger: logger}
}

// Report классифицирует ошибку и публикует уведомление. Запрет удаления
// отгруженного заказа получает своё сообщение, 403 — сообщение сервера плюс
// teardown сессии, всё остальное — общий "something went wrong".
func (c *Center) Report(err error) {
	if err == nil {
		return
	}

	if domain.IsShippedDeleteBlocked(err) {
		c.Publish(Notice{
			Message: "you cannot delete an order that has been shipped",
			Status:  http.StatusBadRequest,
		})
		return
	}

	if api.IsForbidden(err) {
		message := "session expired"
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		c.Publish(Notice{Message: message, Status: http.StatusForbidden})
		if c.onForbidden != nil {
			c.onForbidden()
		}
		return
	}

	// Сообщение общее, но статус сервера на уведомлении сохраняем.
	status := api.StatusOf(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.logger.WithError(err).Debug("reporting generic failure")
	c.Publish(Notice{Message: "something went wrong", Status: status})
}

// Publish показывает уведомление и взводит таймер самопогашения.
// Новое уведомление замещает предыдущее и перезапускает таймер.
func (c *Center) Publish(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = &n
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.ttl, c.Dismiss)
}

// Current возвращает копию активного уведомления или nil.
func (c *Center) Current() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	copied := *c.current
	return &copied
}

// Dismiss гасит активное уведомление.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
