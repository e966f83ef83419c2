package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/config"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/notify"
	"github.com/wichananm65/bookstore-storefront/internal/session"
	"github.com/wichananm65/bookstore-storefront/internal/storefront"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storefront",
		Usage: "browse and shop the book catalog from a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Usage: "backend base url (overrides STOREFRONT_API_URL)"},
			&cli.StringFlag{Name: "log-level", Usage: "logrus level (overrides STOREFRONT_LOG_LEVEL)"},
			&cli.BoolFlag{Name: "log-json", Usage: "write log lines as JSON"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "answer yes to every confirmation"},
		},
		Before: setup,
		Commands: []*cli.Command{
			{Name: "login", Usage: "sign in", ArgsUsage: "EMAIL PASSWORD", Action: login},
			{Name: "register", Usage: "create a customer account", ArgsUsage: "NAME EMAIL PASSWORD", Action: register},
			{Name: "logout", Usage: "sign out", Action: logout},
			{Name: "whoami", Usage: "show the signed-in user", Action: whoami},
			{
				Name:  "books",
				Usage: "list the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}},
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1},
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "read search text from stdin, line by line; \"add ID\" adds to the cart"},
				},
				Action: books,
			},
			{Name: "show", Usage: "show one book", ArgsUsage: "BOOK_ID", Action: show},
			{
				Name:      "add",
				Usage:     "add a book to the cart",
				ArgsUsage: "BOOK_ID",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "qty", Aliases: []string{"q"}, Value: 1}},
				Action:    add,
			},
			{Name: "cart", Usage: "show the cart", Action: showCart},
			{Name: "set", Usage: "change a cart line quantity", ArgsUsage: "LINE_ID QUANTITY", Action: setQuantity},
			{Name: "remove", Usage: "remove a cart line", ArgsUsage: "LINE_ID", Action: removeLine},
			{Name: "checkout", Usage: "order the given cart lines", ArgsUsage: "LINE_ID...", Action: checkout},
			{Name: "orders", Usage: "list my orders", Action: orders},
			{Name: "cancel", Usage: "cancel a pending order", ArgsUsage: "ORDER_ID", Action: cancelOrder},
			{
				Name:  "admin",
				Usage: "catalog administration",
				Subcommands: []*cli.Command{
					{Name: "stats", Usage: "dashboard statistics", Action: stats},
					{
						Name:      "delete",
						Usage:     "delete a book",
						ArgsUsage: "BOOK_ID",
						Flags:     []cli.Flag{&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "find the book by title or author first"}},
						Action:    deleteBook,
					},
					{Name: "add", Usage: "add a book", Flags: bookFlags(), Action: addBook},
					{Name: "edit", Usage: "edit a book; unset flags keep their value", ArgsUsage: "BOOK_ID", Flags: bookFlags(), Action: editBook},
				},
			},
		},
	}
}

type shop struct {
	*storefront.App
	term *terminal
}

func setup(c *cli.Context) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if v := c.String("api"); v != "" {
		cfg.APIURL = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.SetLevel(lvl)
	if c.Bool("log-json") {
		log.SetFormatter(&log.JSONFormatter{})
	}

	path := cfg.SessionFile
	if path == "" {
		if path, err = session.DefaultPath(); err != nil {
			return err
		}
	}
	term := newTerminal(os.Stdin, os.Stdout, c.Bool("yes"))
	a := storefront.New(cfg, storefront.Deps{
		Store:   session.NewFileStore(path),
		Nav:     term,
		Notices: term,
		Confirm: term,
		Log:     log.StandardLogger(),
	})
	c.App.Metadata = map[string]any{"shop": &shop{App: a, term: term}}
	return nil
}

func shopOf(c *cli.Context) *shop { return c.App.Metadata["shop"].(*shop) }

func intArg(c *cli.Context, i int, name string) (int, error) {
	v, err := strconv.Atoi(c.Args().Get(i))
	if err != nil {
		return 0, errors.Errorf("%s must be a number", name)
	}
	return v, nil
}

func login(c *cli.Context) error {
	return shopOf(c).Login(c.Context, c.Args().Get(0), c.Args().Get(1))
}

func register(c *cli.Context) error {
	return shopOf(c).Register(c.Context, c.Args().Get(0), c.Args().Get(1), c.Args().Get(2))
}

func logout(c *cli.Context) error {
	shopOf(c).Logout()
	return nil
}

func whoami(c *cli.Context) error {
	s := shopOf(c)
	id, err := s.Profile()
	if err != nil {
		return nil
	}
	s.term.printf("%s <%s> (%s)\n", id.User.Name, id.User.Email, id.User.Role)
	return nil
}

func printBooks(t *terminal, list []model.Book, page storefront.PageInfo) {
	for _, b := range list {
		t.printf("%4d  %-40s %-24s %-12s Rp %s\n", b.ID, b.Title, b.Author, b.Category.Name, b.Price.StringFixed(0))
	}
	t.printf("page %d of %d, %d books\n", page.Current, page.Last, page.Total)
}

func books(c *cli.Context) error {
	s := shopOf(c)
	cat, err := s.OpenCatalog(c.Context)
	if err != nil {
		return err
	}
	defer cat.Close()

	if !c.Bool("watch") {
		if c.String("search") == "" && c.String("category") == "" && c.Int("page") <= 1 {
			printBooks(s.term, cat.Books(), cat.Page())
			return nil
		}
		cat.SetSearch(c.String("search"))
		cat.SetCategory(c.String("category"))
		if err := cat.GoToPage(c.Context, c.Int("page")); err != nil {
			return err
		}
		printBooks(s.term, cat.Books(), cat.Page())
		return nil
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	nav := s.MountNavbar(ctx)
	defer nav.Close()
	badge := notify.Subscribe(s.Bus, storefront.CartUpdated, func(storefront.CartChange) {
		s.term.printf("cart: %d\n", nav.CartCount())
	})
	defer badge.Cancel()
	printLinks(s.term, nav)

	cat.SetCategory(c.String("category"))
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "" {
				printBooks(s.term, cat.Books(), cat.Page())
				continue
			}
			if f := strings.Fields(line); len(f) == 2 && f[0] == "add" {
				if id, err := strconv.Atoi(f[1]); err == nil {
					_ = cat.AddToCart(ctx, id)
					continue
				}
			}
			cat.SetSearch(line)
		}
	}
}

func printLinks(t *terminal, n *storefront.Navbar) {
	parts := make([]string, 0, 4)
	for _, l := range n.Links() {
		parts = append(parts, l.Label+" "+l.Route)
	}
	t.printf("%s | cart: %d\n", strings.Join(parts, " | "), n.CartCount())
}

func show(c *cli.Context) error {
	id, err := intArg(c, 0, "BOOK_ID")
	if err != nil {
		return err
	}
	s := shopOf(c)
	d, err := s.OpenBookDetail(c.Context, id)
	if err != nil {
		return err
	}
	b := d.Book()
	s.term.printf("%s\n%s, %s %d\n%d pages, %s\nRp %s\n%s\ncover: %s\n",
		b.Title, b.Author, b.Publisher, b.PublishedYear, b.Pages, b.Language, b.Price.StringFixed(0), b.Description, d.CoverURL())
	return nil
}

func add(c *cli.Context) error {
	id, err := intArg(c, 0, "BOOK_ID")
	if err != nil {
		return err
	}
	d, err := shopOf(c).OpenBookDetail(c.Context, id)
	if err != nil {
		return err
	}
	return d.AddToCart(c.Context, c.Int("qty"))
}

func showCart(c *cli.Context) error {
	s := shopOf(c)
	cart, err := s.OpenCart(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	for _, l := range cart.Lines() {
		s.term.printf("%4d  %-40s x%-3d Rp %s\n", l.ID, l.Book.Title, l.Quantity, l.Subtotal().StringFixed(0))
	}
	s.term.printf("total Rp %s\n", cart.Total().StringFixed(0))
	return nil
}

func setQuantity(c *cli.Context) error {
	id, err := intArg(c, 0, "LINE_ID")
	if err != nil {
		return err
	}
	qty, err := intArg(c, 1, "QUANTITY")
	if err != nil {
		return err
	}
	cart, err := shopOf(c).OpenCart(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	return cart.MutateQuantity(c.Context, id, qty)
}

func removeLine(c *cli.Context) error {
	id, err := intArg(c, 0, "LINE_ID")
	if err != nil {
		return err
	}
	cart, err := shopOf(c).OpenCart(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	_, err = cart.Remove(c.Context, id)
	return err
}

func checkout(c *cli.Context) error {
	ids := make([]int, 0, c.NArg())
	for i := 0; i < c.NArg(); i++ {
		id, err := intArg(c, i, "LINE_ID")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	cart, err := shopOf(c).OpenCart(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	_, err = cart.Checkout(c.Context, ids)
	return err
}

func orders(c *cli.Context) error {
	s := shopOf(c)
	o, err := s.OpenOrders(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	for _, ord := range o.Orders() {
		s.term.printf("%4d  %-14s %-10s %s  Rp %s\n", ord.ID, ord.OrderNumber, ord.Status, ord.CreatedAt.Format("2006-01-02 15:04"), ord.TotalPrice.StringFixed(0))
		for _, it := range ord.Items {
			s.term.printf("        %-40s x%d\n", it.Book.Title, it.Quantity)
		}
	}
	return nil
}

func cancelOrder(c *cli.Context) error {
	id, err := intArg(c, 0, "ORDER_ID")
	if err != nil {
		return err
	}
	o, err := shopOf(c).OpenOrders(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	_, err = o.Cancel(c.Context, id)
	return err
}

func stats(c *cli.Context) error {
	s := shopOf(c)
	d, err := s.OpenDashboard(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	s.term.printf("books %d  users %d  orders %d\n", d.Stats.TotalBooks, d.Stats.TotalUsers, d.Stats.TotalOrders)
	for _, sl := range d.Distribution() {
		s.term.printf("  %-12s %3d  %5.1f%%\n", sl.Category, sl.Count, sl.Percent)
	}
	for _, a := range d.Stats.BookActivities {
		s.term.printf("  %s  %-10s %s\n", a.Time, a.Type, a.Title)
	}
	return nil
}

func deleteBook(c *cli.Context) error {
	id, err := intArg(c, 0, "BOOK_ID")
	if err != nil {
		return err
	}
	p, err := shopOf(c).OpenAdminBooks(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	defer p.Close()
	if q := c.String("search"); q != "" {
		p.SetSearch(q)
		// load now instead of waiting for the debounce
		if err := p.GoToPage(c.Context, 1); err != nil {
			return err
		}
	}
	if _, ok := bookOnPage(p.Books(), id); !ok {
		return errors.Errorf("book %d is not on the first page", id)
	}
	_, err = p.Delete(c.Context, id)
	return err
}

func bookOnPage(list []model.Book, id int) (model.Book, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return model.Book{}, false
}

// ignoreRedirect turns a guard redirect into a clean exit; the navigator
// already printed where the user was sent.
func ignoreRedirect(err error) error {
	if errors.Is(err, storefront.ErrRedirected) {
		return nil
	}
	return err
}

func bookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "author"},
		&cli.StringFlag{Name: "publisher"},
		&cli.IntFlag{Name: "year"},
		&cli.StringFlag{Name: "language", Value: "Indonesia"},
		&cli.IntFlag{Name: "pages"},
		&cli.StringFlag{Name: "price", Usage: "rupiah, e.g. 89000"},
		&cli.StringFlag{Name: "category"},
		&cli.StringFlag{Name: "description"},
		&cli.PathFlag{Name: "image", Usage: "cover file (jpeg, png, webp)"},
	}
}

// fillBook copies the flags onto in. Unset flags are left alone unless all
// is true, so an edit only changes what was given.
func fillBook(c *cli.Context, in *api.BookInput, all bool) error {
	set := func(name string) bool { return all || c.IsSet(name) }
	if set("title") {
		in.Title = c.String("title")
	}
	if set("author") {
		in.Author = c.String("author")
	}
	if set("publisher") {
		in.Publisher = c.String("publisher")
	}
	if set("year") {
		in.PublishedYear = c.Int("year")
	}
	if set("language") {
		in.Language = c.String("language")
	}
	if set("pages") {
		in.Pages = c.Int("pages")
	}
	if set("price") {
		p, err := decimal.NewFromString(c.String("price"))
		if err != nil {
			return errors.Errorf("price %q is not a number", c.String("price"))
		}
		in.Price = p
	}
	if set("category") {
		in.Category = c.String("category")
	}
	if set("description") {
		in.Description = c.String("description")
	}
	if path := c.Path("image"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "read cover")
		}
		in.Image = &api.Upload{Filename: filepath.Base(path), Data: data}
	}
	return nil
}

func submitBook(c *cli.Context, f *storefront.BookForm) error {
	_, err := f.Submit(c.Context)
	if err != nil {
		names := make([]string, 0, len(f.Fields))
		for name := range f.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			shopOf(c).term.printf("  %-14s %s\n", name, strings.Join(f.Fields[name], "; "))
		}
	}
	return err
}

func addBook(c *cli.Context) error {
	f, err := shopOf(c).OpenAddBook(c.Context)
	if err != nil {
		return ignoreRedirect(err)
	}
	if err := fillBook(c, &f.Input, true); err != nil {
		return err
	}
	return submitBook(c, f)
}

func editBook(c *cli.Context) error {
	id, err := intArg(c, 0, "BOOK_ID")
	if err != nil {
		return err
	}
	f, err := shopOf(c).OpenEditBook(c.Context, id)
	if err != nil {
		return ignoreRedirect(err)
	}
	if err := fillBook(c, &f.Input, false); err != nil {
		return err
	}
	return submitBook(c, f)
}
