// Package statistics serves the admin dashboard numbers.
package statistics

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
	"golang.org/x/sync/errgroup"
)

// LatestActivities is how many book activities the dashboard shows.
const LatestActivities = 5

type Books interface {
	Count() (int, error)
	CountByCategory() (map[string]int, error)
	LatestActivity(n int) ([]model.Activity, error)
}

type Counter interface {
	Count() (int, error)
}

type Service struct {
	books  Books
	users  Counter
	orders Counter
}

func NewService(books Books, users, orders Counter) *Service {
	return &Service{books: books, users: users, orders: orders}
}

// Collect gathers the counts concurrently. Categories outside
// model.DashboardCategories are not reported; missing ones count zero.
func (s *Service) Collect(ctx context.Context) (model.Statistics, error) {
	var st model.Statistics
	var byCategory map[string]int

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalBooks, err = s.books.Count()
		return errors.Wrap(err, "count books")
	})
	g.Go(func() (err error) {
		st.TotalUsers, err = s.users.Count()
		return errors.Wrap(err, "count users")
	})
	g.Go(func() (err error) {
		st.TotalOrders, err = s.orders.Count()
		return errors.Wrap(err, "count orders")
	})
	g.Go(func() (err error) {
		byCategory, err = s.books.CountByCategory()
		return errors.Wrap(err, "count categories")
	})
	g.Go(func() (err error) {
		st.BookActivities, err = s.books.LatestActivity(LatestActivities)
		return errors.Wrap(err, "latest activity")
	})
	if err := g.Wait(); err != nil {
		return model.Statistics{}, err
	}

	st.CategoryCounts = make(map[string]int, len(model.DashboardCategories))
	for _, name := range model.DashboardCategories {
		st.CategoryCounts[name] = byCategory[name]
	}
	if st.BookActivities == nil {
		st.BookActivities = []model.Activity{}
	}
	return st, nil
}

type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(s *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: s, log: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router, guards ...fiber.Handler) {
	r.Get("/admin/statistics", middleware.With(guards, h.getStatistics)...)
}

func (h *Handler) getStatistics(c *fiber.Ctx) error {
	st, err := h.service.Collect(c.UserContext())
	if err != nil {
		h.log.WithError(err).Error("collect statistics")
		return respond.Fail(c, fiber.StatusInternalServerError, "could not load statistics")
	}
	return respond.OK(c, "Statistics retrieved", st)
}
