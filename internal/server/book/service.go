package book

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

// Upload is an image sent with the admin form.
type Upload struct {
	Filename string
	Data     []byte
}

// CartCleaner forgets a deleted book in every cart.
type CartCleaner interface {
	RemoveBook(bookID int) error
}

type Service struct {
	repo     Repository
	covers   CoverStore
	activity ActivityLog
	carts    CartCleaner
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo Repository, covers CoverStore, activity ActivityLog, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, covers: covers, activity: activity, log: log, now: time.Now}
}

// UseCarts registers the carts to clean up on Delete.
func (s *Service) UseCarts(c CartCleaner) { s.carts = c }

func (s *Service) List(f Filter, page, perPage int) (respond.Page[model.Book], error) {
	books, err := s.repo.List(f)
	if err != nil {
		return respond.Page[model.Book]{}, err
	}
	return respond.Paginate(books, page, perPage), nil
}

func (s *Service) GetByID(id int) (model.Book, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]model.Book, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Create(b model.Book, img *Upload) (model.Book, error) {
	if err := s.attach(&b, img); err != nil {
		return model.Book{}, err
	}
	created, err := s.repo.Create(b)
	if err != nil {
		return model.Book{}, err
	}
	s.record(created.Title, model.ActivityAdded)
	return created, nil
}

// Update replaces the book's fields. The cover is kept unless img is set.
func (s *Service) Update(id int, b model.Book, img *Upload) (model.Book, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return model.Book{}, err
	}
	if err := s.attach(&b, img); err != nil {
		return model.Book{}, err
	}
	updated, err := s.repo.Update(id, b)
	if err != nil {
		return model.Book{}, err
	}
	s.record(updated.Title, model.ActivityUpdated)
	return updated, nil
}

func (s *Service) Delete(id int) error {
	b, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if s.carts != nil {
		if err := s.carts.RemoveBook(id); err != nil {
			s.log.WithError(err).WithField("book_id", id).Warn("could not remove deleted book from carts")
		}
	}
	s.record(b.Title, model.ActivityDeleted)
	return nil
}

func (s *Service) Count() (int, error) { return s.repo.Count() }

func (s *Service) CountByCategory() (map[string]int, error) { return s.repo.CountByCategory() }

func (s *Service) LatestActivity(n int) ([]model.Activity, error) { return s.activity.Latest(n) }

func (s *Service) attach(b *model.Book, img *Upload) error {
	if img == nil || len(img.Data) == 0 {
		return nil
	}
	p, err := s.covers.Save(img.Filename, img.Data)
	if err != nil {
		return err
	}
	b.Image = p
	return nil
}

func (s *Service) record(title, kind string) {
	if err := s.activity.Record(title, kind, s.now()); err != nil {
		s.log.WithError(err).WithField("title", title).Warn("could not record book activity")
	}
}
