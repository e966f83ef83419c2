package cart

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/book"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
)

func makeAppWithCartHandler(t *testing.T, seed []Line) (*fiber.App, *Service) {
	t.Helper()
	log, _ := test.NewNullLogger()
	books := book.NewInMemoryRepository([]model.Book{
		{ID: 1, Title: "Laskar Pelangi", Price: decimal.NewFromInt(89000), Category: book.CategoryOf("Novel")},
		{ID: 2, Title: "Sapiens", Price: decimal.NewFromInt(150000), Category: book.CategoryOf("Sejarah")},
	})
	service := NewService(NewInMemoryRepository(seed), books, log)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id, "role": c.Get("X-Role")}})
			}
		}
		return c.Next()
	})
	NewHandler(service, log).RegisterRoutes(app, middleware.CustomerOnly())
	return app, service
}

func send(t *testing.T, app *fiber.App, method, target, body, userID, role string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-Role", role)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var env map[string]any
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res.StatusCode, env
}

func TestCartRoutes_Guards(t *testing.T) {
	app, _ := makeAppWithCartHandler(t, nil)

	if status, _ := send(t, app, "GET", "/cart", "", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", status)
	}
	status, env := send(t, app, "GET", "/cart", "", "1", model.RoleAdmin)
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for an admin, got %d", status)
	}
	if env["message"] != "Admins cannot shop." {
		t.Fatalf("unexpected message %v", env["message"])
	}
}

func TestAddToCart_MergesExistingLine(t *testing.T) {
	app, service := makeAppWithCartHandler(t, []Line{{ID: 7, UserID: 42, BookID: 1, Quantity: 1}})

	status, _ := send(t, app, "POST", "/cart", `{"items":[{"book_id":1,"quantity":2},{"book_id":2,"quantity":1}]}`, "42", model.RoleCustomer)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	lines, err := service.Get(42)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", lines)
	}
	if lines[0].ID != 7 || lines[0].Quantity != 3 {
		t.Fatalf("expected line 7 to hold 3 copies, got %+v", lines[0])
	}
	if lines[1].Book.Title != "Sapiens" {
		t.Fatalf("expected book attached to new line, got %+v", lines[1])
	}
	if got := model.CartTotal(lines).String(); got != "417000" {
		t.Fatalf("unexpected total %s", got)
	}
}

func TestAddToCart_Rejections(t *testing.T) {
	app, _ := makeAppWithCartHandler(t, nil)

	cases := []struct {
		name, body string
		want       int
	}{
		{"empty", `{"items":[]}`, fiber.StatusUnprocessableEntity},
		{"zero quantity", `{"items":[{"book_id":1,"quantity":0}]}`, fiber.StatusUnprocessableEntity},
		{"unknown book", `{"items":[{"book_id":99,"quantity":1}]}`, fiber.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if status, _ := send(t, app, "POST", "/cart", tc.body, "42", model.RoleCustomer); status != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, status)
			}
		})
	}
}

func TestUpdateAndRemoveLine(t *testing.T) {
	app, service := makeAppWithCartHandler(t, []Line{
		{ID: 1, UserID: 42, BookID: 1, Quantity: 1},
		{ID: 2, UserID: 43, BookID: 2, Quantity: 1},
	})

	if status, _ := send(t, app, "PUT", "/cart/1", `{"quantity":4}`, "42", model.RoleCustomer); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status, _ := send(t, app, "PUT", "/cart/1", `{"quantity":0}`, "42", model.RoleCustomer); status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for quantity 0, got %d", status)
	}
	// another user's line is invisible
	if status, _ := send(t, app, "PUT", "/cart/2", `{"quantity":4}`, "42", model.RoleCustomer); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for a foreign line, got %d", status)
	}

	lines, _ := service.Get(42)
	if len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %+v", lines)
	}

	if status, _ := send(t, app, "DELETE", "/cart/1", "", "42", model.RoleCustomer); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status, _ := send(t, app, "DELETE", "/cart/1", "", "42", model.RoleCustomer); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
}

func TestUpdateLine_BookLeftCatalog(t *testing.T) {
	app, service := makeAppWithCartHandler(t, []Line{{ID: 7, UserID: 42, BookID: 99, Quantity: 2}})

	if status, _ := send(t, app, "PUT", "/cart/7", `{"quantity":3}`, "42", model.RoleCustomer); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for a line whose book is gone, got %d", status)
	}
	if lines, _ := service.Get(42); len(lines) != 0 {
		t.Fatalf("a line without a book must not be listed, got %+v", lines)
	}
}

func TestRemoveBook_ClearsEveryCart(t *testing.T) {
	_, service := makeAppWithCartHandler(t, []Line{
		{ID: 1, UserID: 42, BookID: 1, Quantity: 1},
		{ID: 2, UserID: 42, BookID: 2, Quantity: 1},
		{ID: 3, UserID: 43, BookID: 1, Quantity: 5},
	})

	if err := service.RemoveBook(1); err != nil {
		t.Fatal(err)
	}
	if lines, _ := service.Get(42); len(lines) != 1 || lines[0].BookID != 2 {
		t.Fatalf("expected only book 2 left for user 42, got %+v", lines)
	}
	if lines, _ := service.Get(43); len(lines) != 0 {
		t.Fatalf("expected empty cart for user 43, got %+v", lines)
	}
}

func TestTake_AllOrNothing(t *testing.T) {
	repo := NewInMemoryRepository([]Line{
		{ID: 1, UserID: 42, BookID: 1, Quantity: 1},
		{ID: 2, UserID: 42, BookID: 2, Quantity: 2},
	})

	if _, err := repo.Take(42, []int{1, 99}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if lines, _ := repo.List(42); len(lines) != 2 {
		t.Fatalf("failed take must leave the cart intact, got %+v", lines)
	}

	taken, err := repo.Take(42, []int{2})
	if err != nil {
		t.Fatal(err)
	}
	if len(taken) != 1 || taken[0].Quantity != 2 {
		t.Fatalf("unexpected taken lines %+v", taken)
	}
	if err := repo.Restore(taken); err != nil {
		t.Fatal(err)
	}
	if lines, _ := repo.List(42); len(lines) != 2 {
		t.Fatalf("expected restored cart, got %+v", lines)
	}
}

func TestPostgresTake(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs(42, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "book_id", "quantity"}).AddRow(1, 42, 3, 2))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	if _, err := repo.Take(42, []int{1, 2}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound when a line is missing, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs(42, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "book_id", "quantity"}).AddRow(1, 42, 3, 2))
	mock.ExpectCommit()

	taken, err := repo.Take(42, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	if len(taken) != 1 || taken[0].BookID != 3 {
		t.Fatalf("unexpected lines %+v", taken)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresAdd_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("ON CONFLICT").
		WithArgs(42, 1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "book_id", "quantity"}).AddRow(5, 42, 1, 3))

	l, err := NewPostgresRepository(db).Add(42, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != 5 || l.Quantity != 3 {
		t.Fatalf("unexpected line %+v", l)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRemoveBook(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM cart_items WHERE book_id").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewPostgresRepository(db).RemoveBook(9)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 removed lines, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

type brokenBooks struct{ err error }

func (b brokenBooks) GetByID(int) (model.Book, error)       { return model.Book{}, b.err }
func (b brokenBooks) ListByIDs([]int) ([]model.Book, error) { return nil, b.err }

type unrestorable struct {
	Repository
	err error
}

func (r unrestorable) Restore([]Line) error { return r.err }

func TestTake_RestoreFailureIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	lookupErr := errors.New("catalog offline")
	repo := unrestorable{
		Repository: NewInMemoryRepository([]Line{{ID: 1, UserID: 1, BookID: 1, Quantity: 1}}),
		err:        errors.New("disk full"),
	}
	service := NewService(repo, brokenBooks{err: lookupErr}, log)

	_, _, err := service.Take(1, []int{1})
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Cause(err) != lookupErr {
		t.Errorf("expected the lookup error to be kept, got %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected an error log, got %+v", entry)
	}
	if entry.Message != "could not restore cart lines" || entry.Data["user_id"] != 1 {
		t.Errorf("unexpected log entry %q %v", entry.Message, entry.Data)
	}
}
