package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleLibrarian Role = "librarian"
)

var ErrUnknownRole = errors.New("role must be one of admin, manager, librarian")

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleLibrarian:
		return r, nil
	}
	return "", ErrUnknownRole
}

// Privileged roles see every bill and may change the inventory.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

const (
	DashboardAdmin = "admin"
	DashboardBooks = "books"
)

func (r Role) Dashboard() string {
	if r == RoleAdmin {
		return DashboardAdmin
	}
	return DashboardBooks
}

type User struct {
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Username  string `json:"username" db:"username"`
	Password  string `json:"-" db:"password"`
	Gender    string `json:"gender" db:"gender"`
	Role      Role   `json:"role" db:"role"`
}

type Supplier struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email" db:"email"`
	Phone   string `json:"phone" db:"phone"`
	Address string `json:"address" db:"address"`
}

type Book struct {
	ISBN          string  `json:"isbn" db:"isbn"`
	Title         string  `json:"title" db:"title"`
	Author        string  `json:"author" db:"author"`
	Category      string  `json:"category" db:"category"`
	SupplierID    int64   `json:"supplierId" db:"supplier_id"`
	Description   string  `json:"description" db:"description"`
	Image         string  `json:"image" db:"image"`
	OriginalPrice float64 `json:"originalPrice" db:"original_price"`
	SellingPrice  float64 `json:"sellingPrice" db:"selling_price"`
	Quantity      int     `json:"quantity" db:"quantity"`
}

type Bill struct {
	OrderID     int64      `json:"orderId" db:"order_id"`
	BillUid     string     `json:"billUid" db:"bill_uid"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	Username    string     `json:"username" db:"username"`
	TotalAmount float64    `json:"totalAmount" db:"total_amount"`
	Items       []SoldBook `json:"items,omitempty" db:"-"`
	ReceiptPath string     `json:"receiptPath,omitempty" db:"-"`
}

// SoldBook is a sold-book-type row. Title and price are captured at sale time
// so the bill survives later edits or deletion of the book.
type SoldBook struct {
	OrderID      int64   `json:"-" db:"order_id"`
	ISBN         string  `json:"isbn" db:"isbn"`
	Title        string  `json:"title" db:"title"`
	UnitPrice    float64 `json:"unitPrice" db:"unit_price"`
	SoldQuantity int     `json:"soldQuantity" db:"sold_quantity"`
}

func (s SoldBook) LineTotal() float64 {
	return s.UnitPrice * float64(s.SoldQuantity)
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type ListBills struct {
	Paging `json:",inline"`
	Items  []Bill `json:"items"`
}

type BookFilter struct {
	Category string
	Title    string
	Page     int
	Size     int
}

type Dashboard struct {
	Username   string   `json:"username"`
	Role       Role     `json:"role"`
	Dashboard  string   `json:"dashboard"`
	BooksTotal int      `json:"booksTotal"`
	Categories []string `json:"categories"`
	LowStock   []Book   `json:"lowStock"`
}

type SalesStats struct {
	UserName   string    `json:"username" db:"username"`
	Bills      int       `json:"bills" db:"bills"`
	BooksSold  int       `json:"booksSold" db:"books_sold"`
	Revenue    float64   `json:"revenue" db:"revenue"`
	LastSaleAt time.Time `json:"lastSaleAt" db:"last_sale_at"`
}

type SalesStatsInfo struct {
	Data []SalesStats `json:"data"`
}
