package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// stageCell возвращает ячейку флага стадии.
func stageCell(on bool) string {
	if on {
		return "x"
	}
	return "-"
}

// formatRow формирует одну строку листинга: номер заказа, статус,
// флаги стадий, сумма и назначенный пользователь.
func formatRow(index int, row domain.SalesOrderRow) string {
	flags := domain.Project(row.Status)

	user := "-"
	if row.User != nil {
		user = row.User.Name
	}

	return fmt.Sprintf("%3d  %-12s %-9s  %s %s %s %s  %4d  %10.2f  %-20s",
		index,
		row.Reference,
		row.Status,
		stageCell(flags.Invoiced),
		stageCell(flags.Packed),
		stageCell(flags.Shipped),
		stageCell(flags.Rejected),
		row.Quantity,
		row.TotalPrice,
		user,
	)
}

// renderPage печатает текущую страницу листинга.
func renderPage(rows []domain.SalesOrderRow, page, totalPages int, status *domain.Status, assignee *domain.User) {
	var filters []string
	if status != nil {
		filters = append(filters, "status="+string(*status))
	}
	if assignee != nil {
		filters = append(filters, "assignee="+assignee.Name)
	}
	filterNote := ""
	if len(filters) > 0 {
		filterNote = "  [" + strings.Join(filters, ", ") + "]"
	}

	fmt.Printf("page %d/%d%s\n", page, totalPages, filterNote)
	fmt.Printf("  #  %-12s %-9s  I P S R  %4s  %10s  %-20s\n", "order", "status", "qty", "total", "registered by")

	if len(rows) == 0 {
		fmt.Println("  (no orders)")
		return
	}
	for i, row := range rows {
		fmt.Println(formatRow(i+1, row))
	}
}

func renderUsers(users []domain.User) {
	if len(users) == 0 {
		fmt.Println("(no users)")
		return
	}
	for _, u := range users {
		fmt.Printf("  %-36s  %-20s %s\n", u.ID, u.Name, u.Email)
	}
}

func renderCustomers(customers []domain.Customer) {
	if len(customers) == 0 {
		fmt.Println("(no customers)")
		return
	}
	for _, c := range customers {
		fmt.Printf("  %-12s  %-20s %s\n", c.ID, c.Name, c.Address)
	}
}

func renderProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Println("(no products)")
		return
	}
	for _, p := range products {
		fmt.Printf("  %-12s  %-20s %8.2f  stock=%d\n", p.ID, p.Name, p.Price, p.Stock)
	}
}

// formatExpiry печатает срок жизни сессии в человекочитаемом виде.
func formatExpiry(expires time.Time, ok bool) string {
	if !ok {
		return "unknown"
	}
	if time.Now().After(expires) {
		return "expired"
	}
	return fmt.Sprintf("%s (in %s)", expires.Format(time.RFC3339), time.Until(expires).Round(time.Minute))
}
