// Package router wires the development backend: repositories, services and
// the fiber routes under /api.
package router

import (
	"context"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/config"
	"github.com/wichananm65/bookstore-storefront/internal/server/auth"
	"github.com/wichananm65/bookstore-storefront/internal/server/book"
	"github.com/wichananm65/bookstore-storefront/internal/server/cart"
	"github.com/wichananm65/bookstore-storefront/internal/server/category"
	"github.com/wichananm65/bookstore-storefront/internal/server/database"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
	"github.com/wichananm65/bookstore-storefront/internal/server/order"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
	"github.com/wichananm65/bookstore-storefront/internal/server/statistics"
)

const bodyLimit = 4 << 20

type repositories struct {
	users      auth.Repository
	books      book.Repository
	activity   book.ActivityLog
	categories category.Repository
	carts      cart.Repository
	orders     order.Repository
}

func inMemory(seed bool) repositories {
	r := repositories{
		users:      auth.NewInMemoryRepository(nil),
		books:      book.NewInMemoryRepository(nil),
		activity:   book.NewInMemoryActivityLog(),
		categories: category.NewInMemoryRepository(nil),
		carts:      cart.NewInMemoryRepository(nil),
		orders:     order.NewInMemoryRepository(),
	}
	if seed {
		r.books = book.NewInMemoryRepository(database.Books())
		r.categories = category.NewInMemoryRepository(database.Categories)
	}
	return r
}

func postgres(db *sql.DB) repositories {
	return repositories{
		users:      auth.NewPostgresRepository(db),
		books:      book.NewPostgresRepository(db),
		activity:   book.NewPostgresActivityLog(db),
		categories: category.NewPostgresRepository(db),
		carts:      cart.NewPostgresRepository(db),
		orders:     order.NewPostgresRepository(db),
	}
}

// New builds the app. A nil db runs every repository in memory.
func New(ctx context.Context, cfg config.Server, db *sql.DB, log logrus.FieldLogger) (*fiber.App, error) {
	repos := inMemory(cfg.Seed)
	if db != nil {
		if err := database.Migrate(ctx, db); err != nil {
			return nil, err
		}
		repos = postgres(db)
		if cfg.Seed {
			if err := database.SeedCategories(ctx, db, database.Categories); err != nil {
				return nil, err
			}
			if err := database.SeedBooks(repos.books, database.Books()); err != nil {
				return nil, err
			}
		}
	}

	secret := []byte(cfg.JWTSecret)
	authService := auth.NewService(repos.users, secret, cfg.TokenTTL)
	if cfg.Seed {
		for _, a := range database.Accounts {
			if err := authService.Seed(a.User, a.Password); err != nil {
				return nil, errors.Wrapf(err, "seed account %s", a.User.Email)
			}
		}
	}
	bookService := book.NewService(repos.books, book.NewDiskStore(cfg.StorageDir), repos.activity, log)
	cartService := cart.NewService(repos.carts, bookService, log)
	bookService.UseCarts(cartService)
	orderService := order.NewService(repos.orders, cartService, bookService, log)
	statsService := statistics.NewService(bookService, authService, orderService)

	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return respond.Fail(c, code, err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestLogger(log))
	app.Static("/storage", cfg.StorageDir)

	api := app.Group("/api")
	requireAuth := middleware.Auth(secret)
	admin := []fiber.Handler{requireAuth, middleware.AdminOnly()}
	customer := []fiber.Handler{requireAuth, middleware.CustomerOnly()}

	auth.NewHandler(authService, log).RegisterPublicRoutes(api)
	bookHandler := book.NewHandler(bookService, cfg.PageSize, log)
	bookHandler.RegisterPublicRoutes(api)
	bookHandler.RegisterAdminRoutes(api, admin...)
	category.NewHandler(repos.categories, log).RegisterPublicRoutes(api)
	cart.NewHandler(cartService, log).RegisterRoutes(api, customer...)
	order.NewHandler(orderService, log).RegisterRoutes(api, customer...)
	statistics.NewHandler(statsService, log).RegisterRoutes(api, admin...)

	return app, nil
}
