package model

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Dashboard   string    `json:"dashboard"`
	User        User      `json:"user"`
}

type SupplierRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,digits,len=10"`
	Address string `json:"address" validate:"required"`
}

type AddBookRequest struct {
	ISBN          string          `json:"isbn" validate:"required,digits,len=13"`
	Title         string          `json:"title" validate:"required"`
	Author        string          `json:"author" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	OriginalPrice float64         `json:"originalPrice" validate:"gte=0"`
	SellingPrice  float64         `json:"sellingPrice" validate:"gte=0"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	Supplier      SupplierRequest `json:"supplier" validate:"required"`
}

func (r AddBookRequest) Book() Book {
	return Book{
		ISBN:          r.ISBN,
		Title:         r.Title,
		Author:        r.Author,
		Category:      r.Category,
		Description:   r.Description,
		Image:         r.Image,
		OriginalPrice: r.OriginalPrice,
		SellingPrice:  r.SellingPrice,
		Quantity:      r.Quantity,
	}
}

func (r SupplierRequest) Supplier() Supplier {
	return Supplier{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// FieldUpdateRequest edits exactly one column of a row.
type FieldUpdateRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type BillItemRequest struct {
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

type CreateBillRequest struct {
	Items       []BillItemRequest `json:"items"`
	TotalAmount *float64          `json:"totalAmount,omitempty"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Gender    string `json:"gender" validate:"required"`
	Role      string `json:"role" validate:"required"`
}
