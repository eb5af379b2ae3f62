package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/platform/db"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// SQL-backed implementation of the DeliverySource port.
type SQLDeliverySource struct {
	DB      *sql.DB
	Dialect Dialect
	// Timeout bounds every query; zero means no per-query deadline.
	Timeout time.Duration
}

func NewSQLDeliverySource(db *sql.DB, dialect Dialect, timeout time.Duration) *SQLDeliverySource {
	return &SQLDeliverySource{DB: db, Dialect: dialect, Timeout: timeout}
}

// Return today's distinct (billing date, agent code) pairs in store order.
func (s *SQLDeliverySource) ListWorkUnits(ctx context.Context) ([]domain.WorkUnit, error) {
	if s.DB == nil {
		return nil, errors.New("list work units: DB is nil")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(workUnitsQuery))
	if err != nil {
		return nil, fmt.Errorf("list work units: query rdl_delivery_info_sap: %w", err)
	}
	defer rows.Close()

	units := make([]domain.WorkUnit, 0, 64)
	for rows.Next() {
		var rawDate any
		var code string
		if err := rows.Scan(&rawDate, &code); err != nil {
			return nil, fmt.Errorf("list work units: scan row: %w", err)
		}

		date, err := toDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("list work units: da_code=%q: %w", code, err)
		}
		units = append(units, domain.NewWorkUnit(date, code))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list work units: row iteration: %w", err)
	}

	return units, nil
}

// Run the delivery-info extraction join for one unit with both values bound
// as query parameters.
func (s *SQLDeliverySource) FetchDeliveryInfo(ctx context.Context, unit domain.WorkUnit) (*domain.ResultSet, error) {
	if s.DB == nil {
		return nil, errors.New("fetch delivery info: DB is nil")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(deliveryInfoQuery), s.Dialect.BindDate(unit.BillingDate), unit.AgentCode)
	if err != nil {
		return nil, fmt.Errorf("fetch delivery info %s: query: %w", unit, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("fetch delivery info %s: column types: %w", unit, err)
	}

	rs := &domain.ResultSet{Columns: make([]domain.Column, len(types))}
	for i, ct := range types {
		rs.Columns[i] = domain.Column{
			Name:         ct.Name(),
			DatabaseType: strings.ToUpper(ct.DatabaseTypeName()),
		}
	}

	for rows.Next() {
		vals := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("fetch delivery info %s: scan row: %w", unit, err)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch delivery info %s: row iteration: %w", unit, err)
	}

	return rs, nil
}

func (s *SQLDeliverySource) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *SQLDeliverySource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// SQLConnector opens one single-connection SQLDeliverySource per Connect call.
type SQLConnector struct {
	Dialect Dialect
	Timeout time.Duration
}

func NewSQLConnector(cfg config.SourceConfig) (*SQLConnector, error) {
	d, err := NewDialect(cfg)
	if err != nil {
		return nil, err
	}
	return &SQLConnector{Dialect: d, Timeout: cfg.Timeout}, nil
}

func (c *SQLConnector) Connect(ctx context.Context) (ports.DeliverySource, error) {
	src := NewSQLDeliverySource(nil, c.Dialect, c.Timeout)
	connectCtx, cancel := src.withTimeout(ctx)
	defer cancel()

	conn, err := db.Open(connectCtx, c.Dialect.DriverName, c.Dialect.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect source: %w", err)
	}
	src.DB = conn
	return src, nil
}

// toDate accepts the shapes drivers use for DATE columns: time.Time when the
// driver parses dates, ISO text otherwise.
func toDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return parseDatePrefix(string(x))
	case string:
		return parseDatePrefix(x)
	}
	return time.Time{}, fmt.Errorf("billing_date: unsupported type %T", v)
}

func parseDatePrefix(s string) (time.Time, error) {
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	return domain.ParseBillingDate(s)
}
