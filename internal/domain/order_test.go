package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// helper для создания корректного заказа.
func makeOrder() domain.SalesOrder {
	now := time.Now().UTC()
	return domain.SalesOrder{
		ID:         "order-1",
		CustomerID: "customer-1",
		ProductID:  "product-1",
		Quantity:   3,
		TotalPrice: 150,
		Reference:  "SO-0001",
		Status:     domain.StatusInvoiced,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestProject_Table(t *testing.T) {
	cases := []struct {
		status domain.Status
		want   domain.StageFlags
	}{
		{domain.StatusInvoiced, domain.StageFlags{Invoiced: true}},
		{domain.StatusPacked, domain.StageFlags{Invoiced: true, Packed: true}},
		{domain.StatusShipped, domain.StageFlags{Invoiced: true, Packed: true, Shipped: true}},
		{domain.StatusRejected, domain.StageFlags{Rejected: true}},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			got := domain.Project(tc.status)
			if got != tc.want {
				t.Fatalf("Project(%s) = %+v, want %+v", tc.status, got, tc.want)
			}
		})
	}
}

func TestProject_UnknownStatusFailsClosed(t *testing.T) {
	for _, s := range []domain.Status{"", "pending", "SHIPPED", "delivered"} {
		if got := domain.Project(s); got != (domain.StageFlags{}) {
			t.Fatalf("Project(%q) = %+v, want all-false flags", s, got)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []domain.Status{
		domain.StatusInvoiced, domain.StatusPacked, domain.StatusShipped, domain.StatusRejected,
	} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if domain.Status("pending").Valid() {
		t.Fatal("expected pending to be invalid")
	}
	if domain.Status("").Valid() {
		t.Fatal("expected empty status to be invalid")
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{23, 3},
		{30, 3},
		{-5, 1},
	}

	for _, tc := range cases {
		if got := domain.TotalPages(tc.count); got != tc.want {
			t.Fatalf("TotalPages(%d) = %d, want %d", tc.count, got, tc.want)
		}
	}
}

func TestSalesOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestSalesOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.SalesOrder)
		want error
	}{
		{
			name: "no customer",
			mut:  func(o *domain.SalesOrder) { o.CustomerID = "" },
			want: domain.ErrCustomerRequired,
		},
		{
			name: "no product",
			mut:  func(o *domain.SalesOrder) { o.ProductID = "" },
			want: domain.ErrProductRequired,
		},
		{
			name: "qty invalid",
			mut:  func(o *domain.SalesOrder) { o.Quantity = 0 },
			want: domain.ErrQuantityInvalid,
		},
		{
			name: "negative total",
			mut:  func(o *domain.SalesOrder) { o.TotalPrice = -1 },
			want: domain.ErrTotalPriceNegative,
		},
		{
			name: "unknown status",
			mut:  func(o *domain.SalesOrder) { o.Status = "delivered" },
			want: domain.ErrStatusUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Изменяем состояние согласно сценарию.
			tc.mut(&order)

			errs := order.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, err := range errs {
				if err == tc.want {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tc.want, errs)
			}
		})
	}
}

func TestNewSaleValidateInvariants(t *testing.T) {
	sale := domain.NewSale{
		CustomerID: "customer-1",
		ProductID:  "product-1",
		Quantity:   2,
		Status:     domain.StatusPacked,
	}
	if errs := sale.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}

	sale.Quantity = 0
	sale.Status = "unknown"
	errs := sale.ValidateInvariants()
	if len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %v", errs)
	}
}
