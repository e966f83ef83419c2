package storefront

import (
	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/api"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a message shown to the user. Blocking notices need an explicit dismissal.
type Notice struct {
	Level    Level
	Title    string
	Message  string
	Blocking bool
}

const genericFailure = "Terjadi gangguan saat menghubungi server"

// Translate maps a failed call to what the user sees.
func Translate(err error) Notice {
	var e *api.Error
	if !errors.As(err, &e) {
		return Notice{Level: LevelError, Title: "Gagal", Message: genericFailure}
	}
	switch e.Kind {
	case api.KindUnauthorized:
		return Notice{Level: LevelInfo, Title: "Harus Login", Message: "Silakan login untuk melanjutkan"}
	case api.KindForbidden:
		msg := e.Message
		if msg == "" {
			msg = "Anda tidak memiliki akses"
		}
		return Notice{Level: LevelWarning, Title: "Akses Ditolak", Message: msg, Blocking: true}
	case api.KindValidation:
		msg := e.FirstField()
		if msg == "" {
			msg = e.Message
		}
		return Notice{Level: LevelError, Title: "Periksa Kembali", Message: msg}
	case api.KindNotFound:
		return Notice{Level: LevelError, Title: "Tidak Ditemukan", Message: e.Message}
	default:
		return Notice{Level: LevelError, Title: "Gagal", Message: genericFailure}
	}
}
