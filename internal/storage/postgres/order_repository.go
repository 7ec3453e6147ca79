package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию SalesOrderRepository.
func NewOrderRepository(store *Store) domain.SalesOrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.SalesOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sales_orders (
			id, customer_id, product_id, quantity, total_price, reference,
			status, registered_by, shipped_date, rejected_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		order.ID, order.CustomerID, order.ProductID, order.Quantity, order.TotalPrice,
		order.Reference, string(order.Status), order.RegisteredBy,
		order.ShippedDate, order.RejectedDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert sales order %s: %w", order.ID, domain.ErrOrderExists)
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(id string) (domain.SalesOrder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		order  domain.SalesOrder
		status string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, product_id, quantity, total_price, reference,
		       status, registered_by, shipped_date, rejected_date, created_at, updated_at
		FROM sales_orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.ProductID, &order.Quantity, &order.TotalPrice,
		&order.Reference, &status, &order.RegisteredBy,
		&order.ShippedDate, &order.RejectedDate, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SalesOrder{}, domain.ErrOrderNotFound
		}
		return domain.SalesOrder{}, fmt.Errorf("select sales order: %w", err)
	}
	order.Status = domain.Status(status)
	return order, nil
}

// List возвращает страницу заказов вместе с назначенными пользователями и
// общим числом записей под фильтром. Порядок: новые первыми.
func (r *orderRepository) List(q domain.ListQuery) (domain.SalesPage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	where := "WHERE 1=1"
	args := make([]any, 0, 4)
	if q.Status != nil {
		args = append(args, string(*q.Status))
		where += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if q.AssigneeID != nil {
		args = append(args, *q.AssigneeID)
		where += fmt.Sprintf(" AND o.registered_by = $%d", len(args))
	}

	var count int
	countQuery := "SELECT COUNT(*) FROM sales_orders o " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return domain.SalesPage{}, fmt.Errorf("count sales orders: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	args = append(args, domain.PageSize, (page-1)*domain.PageSize)

	rowsQuery := fmt.Sprintf(`
		SELECT o.id, o.customer_id, o.product_id, o.quantity, o.total_price, o.reference,
		       o.status, o.registered_by, o.shipped_date, o.rejected_date, o.created_at, o.updated_at,
		       u.id, u.name, u.email
		FROM sales_orders o
		LEFT JOIN users u ON u.id = o.registered_by
		%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, rowsQuery, args...)
	if err != nil {
		return domain.SalesPage{}, fmt.Errorf("select sales orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := domain.SalesPage{Count: count, Rows: make([]domain.SalesOrderRow, 0, domain.PageSize)}
	for rows.Next() {
		var (
			row       domain.SalesOrderRow
			status    string
			userID    sql.NullString
			userName  sql.NullString
			userEmail sql.NullString
		)
		if err := rows.Scan(
			&row.ID, &row.CustomerID, &row.ProductID, &row.Quantity, &row.TotalPrice,
			&row.Reference, &status, &row.RegisteredBy,
			&row.ShippedDate, &row.RejectedDate, &row.CreatedAt, &row.UpdatedAt,
			&userID, &userName, &userEmail,
		); err != nil {
			return domain.SalesPage{}, fmt.Errorf("scan sales order row: %w", err)
		}
		row.Status = domain.Status(status)
		if userID.Valid {
			row.User = &domain.User{ID: userID.String, Name: userName.String, Email: userEmail.String}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.SalesPage{}, fmt.Errorf("iterate sales orders: %w", err)
	}
	return result, nil
}

func (r *orderRepository) Update(order domain.SalesOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE sales_orders
		SET customer_id = $2, product_id = $3, quantity = $4, total_price = $5,
		    reference = $6, status = $7, registered_by = $8,
		    shipped_date = $9, rejected_date = $10, updated_at = $11
		WHERE id = $1
	`,
		order.ID, order.CustomerID, order.ProductID, order.Quantity, order.TotalPrice,
		order.Reference, string(order.Status), order.RegisteredBy,
		order.ShippedDate, order.RejectedDate, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sales order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sales order rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM sales_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sales order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sales order rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// isUniqueViolation распознаёт нарушение уникального ограничения PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.SalesOrderRepository = (*orderRepository)(nil)
