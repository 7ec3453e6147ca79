package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/salesconsole/internal/api"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/guard"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/notice"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/query"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/session"
	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	"github.com/vladislavdragonenkov/salesconsole/internal/server"
	"github.com/vladislavdragonenkov/salesconsole/internal/storage/memory"
)

// ConsoleFlowTestSuite гоняет консольные компоненты против реального
// HTTP-сервера поверх memory-хранилища.
type ConsoleFlowTestSuite struct {
	suite.Suite

	orders  domain.SalesOrderRepository
	srv     *httptest.Server
	sess    *session.Store
	client  *api.Client
	notices *notice.Center
	engine  *query.Engine
	guard   *guard.Guard

	deleteCalls atomic.Int64

	shippedID  string
	invoicedID string
}

func (s *ConsoleFlowTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	users := memory.NewUserRepository()
	s.orders = memory.NewOrderRepository(users)
	catalog := memory.NewCatalogRepository()
	catalog.SeedDemo()

	apiServer := server.New(server.Options{
		Orders:  s.orders,
		Users:   users,
		Catalog: catalog,
		Tokens:  server.NewTokenIssuer([]byte("integration-secret"), time.Hour),
	})

	s.deleteCalls.Store(0)
	handler := apiServer.Handler()
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			s.deleteCalls.Add(1)
		}
		handler.ServeHTTP(w, r)
	}))

	s.sess = session.NewStore(filepath.Join(s.T().TempDir(), "session"), logger)
	s.notices = notice.NewCenter(notice.DefaultTTL, func() {
		_ = s.sess.Clear()
	}, logger)
	s.client = api.NewClient(s.srv.URL, s.sess, logger)
	s.engine = query.NewEngine(s.client, s.notices, nil, logger)
	s.guard = guard.NewGuard(s.client, s.engine, s.notices, nil, logger)

	token, err := s.client.Signup(context.Background(), "Operator", "op@example.com", "secret12")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.sess.Set(token))

	s.seedOrders()
}

func (s *ConsoleFlowTestSuite) TearDownTest() {
	s.srv.Close()
}

// seedOrders создаёт 23 заказа с возрастающим CreatedAt: самые свежие
// оказываются на первой странице. Заказ №7 отгружен, №2 выставлен.
func (s *ConsoleFlowTestSuite) seedOrders() {
	base := time.Now().Add(-time.Hour).UTC()
	for i := 1; i <= 23; i++ {
		status := domain.StatusPacked
		switch i {
		case 7:
			status = domain.StatusShipped
		case 2:
			status = domain.StatusInvoiced
		}

		order := domain.SalesOrder{
			ID:         fmt.Sprintf("order-%02d", i),
			CustomerID: "customer-1",
			ProductID:  "product-1",
			Quantity:   1,
			TotalPrice: 120,
			Reference:  fmt.Sprintf("SO-%02d", i),
			Status:     status,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if status == domain.StatusShipped {
			shipped := order.CreatedAt
			order.ShippedDate = &shipped
		}
		require.NoError(s.T(), s.orders.Create(order))

		if i == 7 {
			s.shippedID = order.ID
		}
		if i == 2 {
			s.invoicedID = order.ID
		}
	}
}

// rowByID ищет заказ на текущей странице; при необходимости листает страницы.
func (s *ConsoleFlowTestSuite) rowByID(ctx context.Context, id string) domain.SalesOrderRow {
	for page := 1; page <= s.engine.TotalPages(); page++ {
		s.engine.SetPage(ctx, page)
		for _, row := range s.engine.Rows() {
			if row.ID == id {
				return row
			}
		}
	}
	s.T().Fatalf("order %s not found in listing", id)
	return domain.SalesOrderRow{}
}

func (s *ConsoleFlowTestSuite) TestListingAndPagination() {
	ctx := context.Background()

	s.engine.Refresh(ctx)
	require.Equal(s.T(), 3, s.engine.TotalPages())
	require.Len(s.T(), s.engine.Rows(), 10)
	require.Equal(s.T(), 1, s.engine.Page())

	// Самый свежий заказ первым.
	require.Equal(s.T(), "order-23", s.engine.Rows()[0].ID)

	s.engine.SetPage(ctx, 3)
	require.Equal(s.T(), 3, s.engine.Page())
	require.Len(s.T(), s.engine.Rows(), 3)

	// Выход за границы зажимается.
	s.engine.SetPage(ctx, 99)
	require.Equal(s.T(), 3, s.engine.Page())
	s.engine.SetPage(ctx, 0)
	require.Equal(s.T(), 1, s.engine.Page())
}

func (s *ConsoleFlowTestSuite) TestStatusFilterKeepsPage() {
	ctx := context.Background()

	s.engine.Refresh(ctx)
	s.engine.SetPage(ctx, 2)
	require.Equal(s.T(), 2, s.engine.Page())

	status := domain.StatusPacked
	s.engine.SetStatusFilter(ctx, &status)

	// Смена фильтра не сбрасывает страницу.
	require.Equal(s.T(), 2, s.engine.Page())
}

func (s *ConsoleFlowTestSuite) TestShippedDeleteRefusedWithoutRequest() {
	ctx := context.Background()

	s.engine.Refresh(ctx)
	row := s.rowByID(ctx, s.shippedID)

	require.NoError(s.T(), s.guard.SelectForDelete(row))
	require.True(s.T(), s.guard.DeleteBlocked())

	before := s.deleteCalls.Load()
	err := s.guard.ConfirmDelete(ctx)
	require.ErrorIs(s.T(), err, domain.ErrShippedDeleteBlocked)

	// Запрос на сервер не уходил, заказ жив, уведомление показано.
	require.Equal(s.T(), before, s.deleteCalls.Load())
	_, getErr := s.orders.Get(s.shippedID)
	require.NoError(s.T(), getErr)
	require.NotNil(s.T(), s.notices.Current())
}

func (s *ConsoleFlowTestSuite) TestInvoicedDeleteGoesThrough() {
	ctx := context.Background()

	s.engine.Refresh(ctx)
	row := s.rowByID(ctx, s.invoicedID)

	before := s.deleteCalls.Load()
	require.NoError(s.T(), s.guard.SelectForDelete(row))
	require.False(s.T(), s.guard.DeleteBlocked())
	require.NoError(s.T(), s.guard.ConfirmDelete(ctx))

	// Один DELETE и перезагрузка листинга.
	require.Equal(s.T(), before+1, s.deleteCalls.Load())
	_, getErr := s.orders.Get(s.invoicedID)
	require.ErrorIs(s.T(), getErr, domain.ErrOrderNotFound)

	total := 0
	for page := 1; page <= s.engine.TotalPages(); page++ {
		s.engine.SetPage(ctx, page)
		total += len(s.engine.Rows())
	}
	require.Equal(s.T(), 22, total)
}

func (s *ConsoleFlowTestSuite) TestUpdateShippedOrderAllowed() {
	ctx := context.Background()

	s.engine.Refresh(ctx)
	row := s.rowByID(ctx, s.shippedID)

	require.NoError(s.T(), s.guard.SelectForUpdate(row))
	require.NoError(s.T(), s.guard.ConfirmUpdate(ctx, domain.StatusRejected, nil))

	updated, err := s.orders.Get(s.shippedID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.StatusRejected, updated.Status)
	require.Nil(s.T(), updated.RegisteredBy)
	require.NotNil(s.T(), updated.RejectedDate)
}

func (s *ConsoleFlowTestSuite) TestForbiddenClearsSession() {
	ctx := context.Background()

	require.NoError(s.T(), s.sess.Set("garbage-token"))
	s.engine.Refresh(ctx)

	// 403 от сервера должен привести к сбросу сессии.
	require.False(s.T(), s.sess.Authenticated())
	require.NotNil(s.T(), s.notices.Current())
}

func TestConsoleFlowTestSuite(t *testing.T) {
	suite.Run(t, new(ConsoleFlowTestSuite))
}
