// Package codec converts extraction query results into the cache value format:
// a JSON array with one object per row, keyed by the query's column names.
//
// Drivers hand back a mix of Go types for the same SQL type (MySQL returns
// DECIMAL as []byte, pgx returns NUMERIC as a string, sqlite may already return
// float64), so conversion is driven by the column's database type first and
// the Go type second.
package codec

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
)

// DateTimeLayout matches the ISO-8601 rendering of naive datetimes.
const DateTimeLayout = "2006-01-02T15:04:05"

var ErrUnsupportedValue = errors.New("unsupported value")

// Normalize maps one column value to a JSON-encodable value.
// Dates become YYYY-MM-DD strings, decimals become float64 and text returned
// as bytes becomes a string. Anything else outside the scalar types a SQL
// driver can produce is rejected with ErrUnsupportedValue.
func Normalize(col domain.Column, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return formatTime(col, x), nil
	case []byte:
		if isDecimal(col) {
			return parseDecimal(col, string(x))
		}
		return string(x), nil
	case string:
		if isDecimal(col) {
			return parseDecimal(col, x)
		}
		return x, nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return x, nil
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return nil, fmt.Errorf("normalize column %q: %w", col.Name, err)
		}
		if _, again := dv.(driver.Valuer); again {
			return nil, fmt.Errorf("normalize column %q: %w: %T", col.Name, ErrUnsupportedValue, v)
		}
		return Normalize(col, dv)
	default:
		return nil, fmt.Errorf("normalize column %q: %w: %T", col.Name, ErrUnsupportedValue, v)
	}
}

// Encode serializes every row of rs as a JSON array of objects. Object fields
// keep SELECT-list order.
func Encode(rs *domain.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	if rs != nil {
		names := make([][]byte, len(rs.Columns))
		for i, name := range rs.ColumnNames() {
			b, err := json.Marshal(name)
			if err != nil {
				return nil, fmt.Errorf("encode: column name %q: %w", name, err)
			}
			names[i] = b
		}

		for ri, row := range rs.Rows {
			if len(row) != len(rs.Columns) {
				return nil, fmt.Errorf("encode: row %d has %d values for %d columns", ri, len(row), len(rs.Columns))
			}
			if ri > 0 {
				buf.WriteByte(',')
			}

			buf.WriteByte('{')
			for ci, raw := range row {
				v, err := Normalize(rs.Columns[ci], raw)
				if err != nil {
					return nil, fmt.Errorf("encode: row %d: %w", ri, err)
				}

				b, err := json.Marshal(v)
				if err != nil {
					return nil, fmt.Errorf("encode: row %d column %q: %w: %v", ri, rs.Columns[ci].Name, ErrUnsupportedValue, err)
				}

				if ci > 0 {
					buf.WriteByte(',')
				}
				buf.Write(names[ci])
				buf.WriteByte(':')
				buf.Write(b)
			}
			buf.WriteByte('}')
		}
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func formatTime(col domain.Column, t time.Time) string {
	if baseType(col) == "DATE" {
		return t.Format(domain.DateLayout)
	}
	// Only a declared DATE drops the clock; a time.Time from any other column
	// is a datetime, midnight included.
	return formatDateTime(t)
}

func formatDateTime(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format(DateTimeLayout + ".000000")
	}
	return t.Format(DateTimeLayout)
}

func isDecimal(col domain.Column) bool {
	switch baseType(col) {
	case "DECIMAL", "NUMERIC", "NEWDECIMAL":
		return true
	}
	return false
}

// baseType strips precision and scale, e.g. "decimal(12,2)" -> "DECIMAL".
func baseType(col domain.Column) string {
	t, _, _ := strings.Cut(col.DatabaseType, "(")
	return strings.ToUpper(strings.TrimSpace(t))
}

func parseDecimal(col domain.Column, s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("normalize column %q: %w: decimal %q: %v", col.Name, ErrUnsupportedValue, s, err)
	}
	return f, nil
}
