package source

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/domain"
)

// Dialect captures the per-driver differences the queries care about:
// the registered database/sql driver, DSN shape, placeholder syntax and how a
// calendar date is bound.
type Dialect struct {
	Name       string
	DriverName string
	DSN        string
	numbered   bool
	dateAsText bool
}

func NewDialect(cfg config.SourceConfig) (Dialect, error) {
	switch cfg.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.Timeout = cfg.Timeout
		mc.ReadTimeout = cfg.Timeout
		mc.WriteTimeout = cfg.Timeout
		mc.ParseTime = true
		mc.Loc = time.UTC
		return Dialect{Name: "mysql", DriverName: "mysql", DSN: mc.FormatDSN()}, nil

	case "postgres":
		q := url.Values{}
		q.Set("connect_timeout", strconv.Itoa(int(cfg.Timeout.Seconds())))
		q.Set("statement_timeout", strconv.FormatInt(cfg.Timeout.Milliseconds(), 10))
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     "/" + cfg.Name,
			RawQuery: q.Encode(),
		}
		return Dialect{Name: "postgres", DriverName: "pgx", DSN: u.String(), numbered: true}, nil

	case "sqlite":
		return Dialect{Name: "sqlite", DriverName: "sqlite", DSN: cfg.Name, dateAsText: true}, nil
	}

	return Dialect{}, fmt.Errorf("new dialect: unsupported driver %q", cfg.Driver)
}

// Rebind rewrites '?' placeholders to $1..$n for drivers that need it.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BindDate returns the query argument for a calendar date. SQLite stores
// dates as ISO text, so it gets the string form.
func (d Dialect) BindDate(t time.Time) any {
	if d.dateAsText {
		return t.Format(domain.DateLayout)
	}
	return t
}
