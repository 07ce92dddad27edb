package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/handler"
	service_mocks "github.com/Astemirdum/bookstore-service/bookstore/internal/handler/mocks"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/pkg/auth"
)

const secret = "test-secret"

func newRouter(t *testing.T) (*echo.Echo, *service_mocks.MockBookstoreService) {
	t.Helper()
	c := gomock.NewController(t)
	svc := service_mocks.NewMockBookstoreService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(svc, auth.NewManager(secret, time.Hour), log)
	return h.NewRouter(), svc
}

func bearer(t *testing.T, username string, role model.Role) string {
	t.Helper()
	token, _, err := auth.NewManager(secret, time.Hour).Generate(username, string(role))
	require.NoError(t, err)
	return "Bearer " + token
}

// account makes the stored role of username match its token.
func account(svc *service_mocks.MockBookstoreService, username string, role model.Role) {
	svc.EXPECT().GetUser(gomock.Any(), username).Return(model.User{Username: username, Role: role}, nil).AnyTimes()
}

func do(e *echo.Echo, method, target, body, authorization string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	e, _ := newRouter(t)
	w := do(e, http.MethodGet, "/manage/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockBookstoreService)

	tests := []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			body: `{"username":"root","password":"s3cret"}`,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().
					Login(gomock.Any(), model.LoginRequest{Username: "root", Password: "s3cret"}).
					Return(model.LoginResponse{
						AccessToken: "tkn",
						ExpiresAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
						Dashboard:   model.DashboardAdmin,
						User:        model.User{Username: "root", Role: model.RoleAdmin, Password: "hash"},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"accessToken":"tkn","expiresAt":"2024-01-01T00:00:00Z","dashboard":"admin","user":{"firstName":"","lastName":"","email":"","username":"root","gender":"","role":"admin"}}`,
		},
		{
			name: "bad credentials",
			body: `{"username":"root","password":"nope"}`,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().Login(gomock.Any(), gomock.Any()).Return(model.LoginResponse{}, errs.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"incorrect username or password"}`,
		},
		{
			name: "empty username",
			body: `{"password":"nope"}`,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().Login(gomock.Any(), gomock.Any()).Return(model.LoginResponse{}, errs.ErrEmptyUsername)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"please enter your username"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newRouter(t)
			tt.mockBehavior(svc)

			w := do(e, http.MethodPost, "/api/v1/login", tt.body, "")
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Auth(t *testing.T) {
	t.Parallel()
	e, _ := newRouter(t)

	w := do(e, http.MethodGet, "/api/v1/books", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, `{"message":"No Authorization Header"}`, strings.Trim(w.Body.String(), "\n"))

	w = do(e, http.MethodGet, "/api/v1/books", "", "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, `{"message":"JwtAccessDenied"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockBookstoreService)

	tests := []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name:   "ok",
			target: "/api/v1/books?category=programming&title=go&page=1&size=1",
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().
					ListBooks(gomock.Any(), model.BookFilter{Category: "programming", Title: "go", Page: 1, Size: 1}).
					Return(model.ListBooks{
						Paging: model.Paging{Page: 1, PageSize: 1, TotalElements: 1},
						Items: []model.Book{{
							ISBN:         "9780134190440",
							Title:        "The Go Programming Language",
							Author:       "Donovan, Kernighan",
							Category:     "programming",
							SupplierID:   1,
							SellingPrice: 12.5,
							Quantity:     3,
						}},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"page":1,"pageSize":1,"totalElements":1,"items":[{"isbn":"9780134190440","title":"The Go Programming Language","author":"Donovan, Kernighan","category":"programming","supplierId":1,"description":"","image":"","originalPrice":0,"sellingPrice":12.5,"quantity":3}]}`,
		},
		{
			name:         "bad page",
			target:       "/api/v1/books?page=x",
			mockBehavior: func(r *service_mocks.MockBookstoreService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"page is invalid"}`,
		},
		{
			name:   "internal",
			target: "/api/v1/books",
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().ListBooks(gomock.Any(), model.BookFilter{}).Return(model.ListBooks{}, errors.New("db internal"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"db internal"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newRouter(t)
			tt.mockBehavior(svc)

			w := do(e, http.MethodGet, tt.target, "", bearer(t, "alice", model.RoleLibrarian))
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBook_NotFound(t *testing.T) {
	t.Parallel()
	e, svc := newRouter(t)
	svc.EXPECT().GetBook(gomock.Any(), "9780000000000").Return(model.Book{}, errs.ErrNotFound)

	w := do(e, http.MethodGet, "/api/v1/books/9780000000000", "", bearer(t, "alice", model.RoleLibrarian))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"message":"not found"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_AddBook(t *testing.T) {
	t.Parallel()
	const valid = `{"isbn":"9780134190440","title":"The Go Programming Language","author":"Donovan","category":"programming",` +
		`"originalPrice":10,"sellingPrice":12.5,"quantity":3,` +
		`"supplier":{"name":"Addison-Wesley","email":"orders@aw.example","phone":"5551234567","address":"Boston"}}`

	t.Run("librarian is forbidden", func(t *testing.T) {
		t.Parallel()
		e, _ := newRouter(t)
		w := do(e, http.MethodPost, "/api/v1/books", valid, bearer(t, "alice", model.RoleLibrarian))
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, `{"message":"access denied"}`, strings.Trim(w.Body.String(), "\n"))
	})
	t.Run("invalid isbn", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "mgr", model.RoleManager)
		body := strings.Replace(valid, "9780134190440", "978-0134190440", 1)
		w := do(e, http.MethodPost, "/api/v1/books", body, bearer(t, "mgr", model.RoleManager))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("invalid supplier phone", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "mgr", model.RoleManager)
		body := strings.Replace(valid, "5551234567", "555-123", 1)
		w := do(e, http.MethodPost, "/api/v1/books", body, bearer(t, "mgr", model.RoleManager))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "mgr", model.RoleManager)
		svc.EXPECT().AddBook(gomock.Any(), gomock.Any()).Return(model.Book{}, errs.ErrBookExists)
		w := do(e, http.MethodPost, "/api/v1/books", valid, bearer(t, "mgr", model.RoleManager))
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, `{"message":"book already exists"}`, strings.Trim(w.Body.String(), "\n"))
	})
	t.Run("created", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleAdmin)
		svc.EXPECT().AddBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req model.AddBookRequest) (model.Book, error) {
				book := req.Book()
				book.SupplierID = 4
				return book, nil
			})
		w := do(e, http.MethodPost, "/api/v1/books", valid, bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Body.String(), `"supplierId":4`)
	})
}

func TestHandler_UpdateBook(t *testing.T) {
	t.Parallel()
	e, svc := newRouter(t)
	account(svc, "mgr", model.RoleManager)
	svc.EXPECT().UpdateBookField(gomock.Any(), "9780134190440", "sellingPrice", "-1").
		Return(errors.Wrap(errs.ErrInvalidValue, "sellingPrice"))

	w := do(e, http.MethodPatch, "/api/v1/books/9780134190440", `{"field":"sellingPrice","value":"-1"}`, bearer(t, "mgr", model.RoleManager))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `{"message":"sellingPrice: invalid value"}`, strings.Trim(w.Body.String(), "\n"))

	svc.EXPECT().UpdateBookField(gomock.Any(), "9780134190440", "quantity", "4").Return(nil)
	w = do(e, http.MethodPatch, "/api/v1/books/9780134190440", `{"field":"quantity","value":"4"}`, bearer(t, "mgr", model.RoleManager))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_CreateBill(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockBookstoreService)

	tests := []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name: "empty list",
			body: `{"items":[]}`,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().CreateBill(gomock.Any(), "alice", gomock.Any()).Return(model.Bill{}, errs.ErrEmptyBill)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"the selected books list cannot be null or empty"}`,
		},
		{
			name: "insufficient stock",
			body: `{"items":[{"isbn":"9780134190440","quantity":100}]}`,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().CreateBill(gomock.Any(), "alice", model.CreateBillRequest{
					Items: []model.BillItemRequest{{ISBN: "9780134190440", Quantity: 100}},
				}).Return(model.Bill{}, errors.Wrap(errs.ErrInsufficientStock, "9780134190440"))
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"message":"9780134190440: insufficient stock"}`,
		},
		{
			name: "created",
			body: `{"items":[{"isbn":"9780134190440","quantity":2}],"totalAmount":25}`,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				r.EXPECT().CreateBill(gomock.Any(), "alice", gomock.Any()).Return(model.Bill{
					OrderID:     9,
					BillUid:     "3f1c9e7a-8f7b-4d7e-9f55-0d1f4cb0b7a1",
					CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
					Username:    "alice",
					TotalAmount: 25,
					Items:       []model.SoldBook{{OrderID: 9, ISBN: "9780134190440", Title: "Go", UnitPrice: 12.5, SoldQuantity: 2}},
				}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"orderId":9,"billUid":"3f1c9e7a-8f7b-4d7e-9f55-0d1f4cb0b7a1","createdAt":"2024-03-01T10:00:00Z","username":"alice","totalAmount":25,"items":[{"isbn":"9780134190440","title":"Go","unitPrice":12.5,"soldQuantity":2}]}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newRouter(t)
			tt.mockBehavior(svc)

			w := do(e, http.MethodPost, "/api/v1/bills", tt.body, bearer(t, "alice", model.RoleLibrarian))
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBill(t *testing.T) {
	t.Parallel()
	e, svc := newRouter(t)

	w := do(e, http.MethodGet, "/api/v1/bills/abc", "", bearer(t, "alice", model.RoleLibrarian))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `{"message":"orderId is invalid"}`, strings.Trim(w.Body.String(), "\n"))

	svc.EXPECT().GetBill(gomock.Any(), "alice", model.RoleLibrarian, int64(7)).Return(model.Bill{}, errs.ErrNotFound)
	w = do(e, http.MethodGet, "/api/v1/bills/7", "", bearer(t, "alice", model.RoleLibrarian))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Stats_Forbidden(t *testing.T) {
	t.Parallel()
	e, _ := newRouter(t)
	w := do(e, http.MethodGet, "/api/v1/stats/sales", "", bearer(t, "alice", model.RoleLibrarian))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Users(t *testing.T) {
	t.Parallel()

	t.Run("manager is forbidden", func(t *testing.T) {
		t.Parallel()
		e, _ := newRouter(t)
		w := do(e, http.MethodGet, "/api/v1/users", "", bearer(t, "mgr", model.RoleManager))
		require.Equal(t, http.StatusForbidden, w.Code)
	})
	t.Run("list", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleAdmin)
		svc.EXPECT().ListUsers(gomock.Any()).Return([]model.User{{Username: "root", Role: model.RoleAdmin}}, nil)
		w := do(e, http.MethodGet, "/api/v1/users", "", bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, `[{"firstName":"","lastName":"","email":"","username":"root","gender":"","role":"admin"}]`, strings.Trim(w.Body.String(), "\n"))
	})
	t.Run("username exists", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleAdmin)
		svc.EXPECT().AddUser(gomock.Any(), gomock.Any()).Return(model.User{}, errs.ErrUsernameExists)
		body := `{"firstName":"Alice","lastName":"Liddell","email":"alice@example.com","username":"alice","password":"s3cret","gender":"female","role":"librarian"}`
		w := do(e, http.MethodPost, "/api/v1/users", body, bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, `{"message":"username already exists"}`, strings.Trim(w.Body.String(), "\n"))
	})
	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleAdmin)
		w := do(e, http.MethodPost, "/api/v1/users", `{"username":"alice"}`, bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("self removal", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleAdmin)
		svc.EXPECT().RemoveUser(gomock.Any(), "root", "root").Return(errs.ErrSelfRemoval)
		w := do(e, http.MethodDelete, "/api/v1/users/root", "", bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, `{"message":"you cannot remove your own account"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockBookstoreService)

	tests := []struct {
		name         string
		username     string
		role         model.Role
		mockBehavior mockBehavior
		expectedCode int
	}{
		{
			name:     "deleted",
			username: "mgr",
			role:     model.RoleManager,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				account(r, "mgr", model.RoleManager)
				r.EXPECT().DeleteBook(gomock.Any(), "9780134190440").Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:     "not found",
			username: "root",
			role:     model.RoleAdmin,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {
				account(r, "root", model.RoleAdmin)
				r.EXPECT().DeleteBook(gomock.Any(), "9780134190440").Return(errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "librarian is forbidden",
			username:     "alice",
			role:         model.RoleLibrarian,
			mockBehavior: func(r *service_mocks.MockBookstoreService) {},
			expectedCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newRouter(t)
			tt.mockBehavior(svc)

			w := do(e, http.MethodDelete, "/api/v1/books/9780134190440", "", bearer(t, tt.username, tt.role))
			require.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestHandler_StoredRole(t *testing.T) {
	t.Parallel()

	t.Run("demoted admin", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleLibrarian)
		w := do(e, http.MethodGet, "/api/v1/users", "", bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, `{"message":"access denied"}`, strings.Trim(w.Body.String(), "\n"))
	})
	t.Run("admin demoted to manager keeps staff routes", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		account(svc, "root", model.RoleManager)
		svc.EXPECT().ListSuppliers(gomock.Any()).Return([]model.Supplier{}, nil)
		w := do(e, http.MethodGet, "/api/v1/suppliers", "", bearer(t, "root", model.RoleAdmin))
		require.Equal(t, http.StatusOK, w.Code)
	})
	t.Run("removed manager", func(t *testing.T) {
		t.Parallel()
		e, svc := newRouter(t)
		svc.EXPECT().GetUser(gomock.Any(), "mgr").Return(model.User{}, errs.ErrNotFound)
		w := do(e, http.MethodDelete, "/api/v1/books/9780134190440", "", bearer(t, "mgr", model.RoleManager))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, `{"message":"JwtAccessDenied"}`, strings.Trim(w.Body.String(), "\n"))
	})
}
