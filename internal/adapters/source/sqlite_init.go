package source

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// sourceTables is the subset of the ODMS schema read by the extraction query,
// in an order that satisfies the logical references between them.
var sourceTables = []string{
	"rdl_route_wise_depot",
	"rpl_customer",
	"rdl_customer_location",
	"rpl_material",
	"rdl_delivery_info_sap",
	"rpl_sales_info_sap",
	"rdl_delivery",
	"rdl_delivery_list",
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rdl_route_wise_depot (
		route_code TEXT PRIMARY KEY,
		route_name TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS rpl_customer (
		partner TEXT PRIMARY KEY,
		name1 TEXT,
		name2 TEXT,
		contact_person TEXT,
		mobile_no TEXT,
		street TEXT,
		street1 TEXT,
		street2 TEXT,
		upazilla TEXT,
		district TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS rdl_customer_location (
		customer_id TEXT PRIMARY KEY,
		latitude DECIMAL(10,7),
		longitude DECIMAL(10,7)
	);`,
	`CREATE TABLE IF NOT EXISTS rpl_material (
		matnr TEXT PRIMARY KEY,
		material_name TEXT,
		producer_company TEXT,
		brand_name TEXT,
		brand_description TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS rdl_delivery_info_sap (
		billing_doc_no TEXT PRIMARY KEY,
		billing_date DATE NOT NULL,
		route TEXT,
		da_code TEXT,
		da_name TEXT,
		vehicle_no TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS rpl_sales_info_sap (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		billing_doc_no TEXT NOT NULL,
		gate_pass_no TEXT,
		partner TEXT,
		matnr TEXT,
		batch TEXT,
		quantity INTEGER,
		net_val DECIMAL(12,2),
		tp DECIMAL(12,2),
		vat DECIMAL(12,2),
		billing_type TEXT,
		assigment TEXT,
		plant TEXT,
		team TEXT,
		created_on DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS rdl_delivery (
		id INTEGER PRIMARY KEY,
		billing_doc_no TEXT NOT NULL,
		billing_date DATE,
		partner TEXT,
		due_amount DECIMAL(12,2),
		delivery_status TEXT,
		cash_collection_status TEXT,
		return_status TEXT,
		net_val DECIMAL(12,2),
		cash_collection DECIMAL(12,2),
		return_amount DECIMAL(12,2),
		transport_type TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS rdl_delivery_list (
		id INTEGER PRIMARY KEY,
		delivery_id INTEGER NOT NULL,
		matnr TEXT,
		batch TEXT,
		delivery_quantity INTEGER,
		return_quantity INTEGER,
		return_net_val DECIMAL(12,2),
		delivery_net_val DECIMAL(12,2)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_info_date_da
	ON rdl_delivery_info_sap(billing_date, da_code);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_info_doc
	ON rpl_sales_info_sap(billing_doc_no);`,
}

var columnName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Initialize the SQLite source schema used for local runs and tests.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Seed maps table name to the rows to insert into it.
type Seed map[string][]map[string]any

// Populate the source tables from a JSON file shaped as
// {"<table>": [{"<column>": <value>, ...}, ...], ...}.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed source: read %q: %w", jsonPath, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		return fmt.Errorf("seed source: parse json: %w", err)
	}

	return SeedTables(ctx, db, seed)
}

// SeedTables inserts seed rows in dependency order inside one transaction.
func SeedTables(ctx context.Context, db *sql.DB, seed Seed) error {
	if db == nil {
		return errors.New("seed source: DB is nil")
	}

	known := make(map[string]struct{}, len(sourceTables))
	for _, t := range sourceTables {
		known[t] = struct{}{}
	}
	for table := range seed {
		if _, ok := known[table]; !ok {
			return fmt.Errorf("seed source: unknown table %q", table)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed source: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range sourceTables {
		for i, row := range seed[table] {
			if err := insertRow(ctx, tx, table, row); err != nil {
				return fmt.Errorf("seed source: %s row %d: %w", table, i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed source: commit tx: %w", err)
	}

	return nil
}

func insertRow(ctx context.Context, tx *sql.Tx, table string, row map[string]any) error {
	if len(row) == 0 {
		return errors.New("row has no columns")
	}

	cols := make([]string, 0, len(row))
	for c := range row {
		if !columnName.MatchString(c) {
			return fmt.Errorf("invalid column name %q", c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	for i, c := range cols {
		if n, ok := row[c].(json.Number); ok {
			args[i] = n.String()
			continue
		}
		args[i] = row[c]
	}

	q := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s);",
		table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}
