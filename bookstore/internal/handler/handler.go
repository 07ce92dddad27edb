package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/pkg/auth"
	md "github.com/Astemirdum/bookstore-service/pkg/middleware"
	"github.com/Astemirdum/bookstore-service/pkg/validate"
	_ "github.com/Astemirdum/bookstore-service/swagger"
)

type Handler struct {
	svc    BookstoreService
	tokens md.TokenParser
	log    *zap.Logger
}

func New(svc BookstoreService, tokens md.TokenParser, log *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		log:    log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.POST("/login", h.Login)

	api = api.Group("", md.JwtAuthentication(h.tokens))
	staff := []echo.MiddlewareFunc{
		md.RequireRoles(string(model.RoleAdmin), string(model.RoleManager)),
		h.storedRole(model.RoleAdmin, model.RoleManager),
	}
	admin := []echo.MiddlewareFunc{
		md.RequireRoles(string(model.RoleAdmin)),
		h.storedRole(model.RoleAdmin),
	}

	api.GET("/me", h.Me)
	api.GET("/dashboard", h.Dashboard)

	api.GET("/books", h.ListBooks)
	api.GET("/books/categories", h.Categories)
	api.GET("/books/low-stock", h.LowStock)
	api.GET("/books/:isbn", h.GetBook)
	api.POST("/books", h.AddBook, staff...)
	api.PATCH("/books/:isbn", h.UpdateBook, staff...)
	api.DELETE("/books/:isbn", h.DeleteBook, staff...)
	api.GET("/suppliers", h.ListSuppliers, staff...)

	api.POST("/bills", h.CreateBill)
	api.GET("/bills", h.ListBills)
	api.GET("/bills/:orderId", h.GetBill)

	api.GET("/stats/sales", h.GetSalesStats, staff...)

	users := api.Group("/users", admin...)
	users.GET("", h.ListUsers)
	users.POST("", h.AddUser)
	users.PATCH("/:username", h.UpdateUser)
	users.DELETE("/:username", h.RemoveUser)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps service errors onto status codes; anything unknown is a 500.
func httpError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, errs.ErrUsernameExists),
		errors.Is(err, errs.ErrEmailExists),
		errors.Is(err, errs.ErrBookExists),
		errors.Is(err, errs.ErrInsufficientStock),
		errors.Is(err, errs.ErrAmountMismatch):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrEmptyUsername),
		errors.Is(err, errs.ErrEmptyPassword),
		errors.Is(err, errs.ErrEmptyBill),
		errors.Is(err, errs.ErrNegativeAmount),
		errors.Is(err, errs.ErrInvalidQuantity),
		errors.Is(err, errs.ErrUnknownField),
		errors.Is(err, errs.ErrInvalidValue),
		errors.Is(err, errs.ErrInvalidGender),
		errors.Is(err, errs.ErrSelfRemoval),
		errors.Is(err, model.ErrUnknownRole):
		code = http.StatusBadRequest
	}
	return echo.NewHTTPError(code, err.Error())
}

func principal(c echo.Context) (string, model.Role) {
	ctx := c.Request().Context()
	username, _ := auth.GetUserName(ctx)
	role, _ := auth.GetRole(ctx)
	return username, model.Role(role)
}

// storedRole re-reads the caller's account so that a demoted or removed user
// loses privileged routes before their token expires.
func (h *Handler) storedRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := principal(c)
			user, err := h.svc.GetUser(c.Request().Context(), username)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "JwtAccessDenied")
				}
				return httpError(err)
			}
			for _, r := range roles {
				if user.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}
}

func pageParams(c echo.Context) (page, size int, err error) {
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil || page < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil || size < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "size is invalid")
		}
	}
	return page, size, nil
}

// Login godoc
// @Summary issue a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 400,401 {object} echo.HTTPError
// @Router /api/v1/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c echo.Context) error {
	username, _ := principal(c)
	user, err := h.svc.GetUser(c.Request().Context(), username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) Dashboard(c echo.Context) error {
	username, role := principal(c)
	d, err := h.svc.Dashboard(c.Request().Context(), username, role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}
