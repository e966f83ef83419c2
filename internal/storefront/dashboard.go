package storefront

import (
	"context"
	"sort"

	"github.com/wichananm65/bookstore-storefront/internal/model"
	"golang.org/x/sync/errgroup"
)

type Dashboard struct {
	Stats      model.Statistics
	Categories []model.Category
}

// Slice is one bar of the category chart.
type Slice struct {
	Category string
	Count    int
	Percent  float64
}

// OpenDashboard loads statistics and the category list together.
func (a *App) OpenDashboard(ctx context.Context) (*Dashboard, error) {
	if err := a.guard(model.RoleAdmin); err != nil {
		return nil, err
	}
	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Stats, err = a.API.Statistics(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Categories, err = a.API.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Report(err)
		return nil, err
	}
	return d, nil
}

// Distribution lists the charted categories in their fixed order.
func (d *Dashboard) Distribution() []Slice {
	total := 0
	for _, name := range model.DashboardCategories {
		total += d.Stats.CategoryCounts[name]
	}
	out := make([]Slice, 0, len(model.DashboardCategories))
	for _, name := range model.DashboardCategories {
		s := Slice{Category: name, Count: d.Stats.CategoryCounts[name]}
		if total > 0 {
			s.Percent = float64(s.Count) * 100 / float64(total)
		}
		out = append(out, s)
	}
	return out
}

// Busiest returns the charted category with the most books; ties go to the
// earlier one.
func (d *Dashboard) Busiest() (Slice, bool) {
	dist := d.Distribution()
	if len(dist) == 0 {
		return Slice{}, false
	}
	sort.SliceStable(dist, func(i, j int) bool { return dist[i].Count > dist[j].Count })
	return dist[0], dist[0].Count > 0
}
