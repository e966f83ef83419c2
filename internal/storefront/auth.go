package storefront

import (
	"context"

	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/session"
)

// Login signs in and opens the landing page for the user's role. Wrong
// credentials are returned to the form without leaving the page.
func (a *App) Login(ctx context.Context, email, password string) error {
	res, err := a.API.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		if api.IsKind(err, api.KindUnauthorized) {
			a.Notices.Notify(Notice{Level: LevelError, Title: "Login Gagal", Message: "Email atau password salah"})
			return err
		}
		a.Report(err)
		return err
	}
	if err := a.Session.Save(session.Identity{User: res.User, Token: res.Token}); err != nil {
		a.Log.WithError(err).Error("could not store session")
		a.Notices.Notify(Notice{Level: LevelError, Title: "Gagal", Message: "Sesi tidak dapat disimpan"})
		return err
	}
	a.success("Login Berhasil!", "Selamat datang, "+res.User.Name)
	a.Nav.Go(Landing(res.User))
	return nil
}

// Register creates a customer account and sends the user to the login page.
func (a *App) Register(ctx context.Context, name, email, password string) error {
	if _, err := a.API.Register(ctx, api.Registration{Name: name, Email: email, Password: password}); err != nil {
		a.Report(err)
		return err
	}
	a.success("Registrasi Berhasil!", "Silakan login dengan akun baru Anda")
	a.Nav.Go(RouteLogin)
	return nil
}

// Profile returns the signed-in identity, or redirects to login.
func (a *App) Profile() (session.Identity, error) {
	if err := a.guard(); err != nil {
		return session.Identity{}, err
	}
	id, _ := a.Session.Current()
	return id, nil
}

// Logout ends the session and opens the login page.
func (a *App) Logout() {
	if err := a.Session.Clear(); err != nil {
		a.Log.WithError(err).Warn("could not clear session")
	}
	a.Nav.Go(RouteLogin)
}
