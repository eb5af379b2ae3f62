// Package testsupport builds seeded source and cache stores for tests.
package testsupport

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/najmulislamnajim/odms-cache/internal/adapters/cache"
	"github.com/najmulislamnajim/odms-cache/internal/adapters/source"
	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/platform/db"
)

// HistoricalDue is the due amount seeded per customer on a past billing date.
const HistoricalDue = 50.25

// RowsPerAgent is the number of extraction rows DeliverySeed yields per agent.
const RowsPerAgent = 2

// SQLiteSource creates a temp-file sqlite source store holding seed and
// returns a connector for it.
func SQLiteSource(t *testing.T, seed source.Seed) *source.SQLConnector {
	t.Helper()

	path := filepath.Join(t.TempDir(), "odms.db")
	cfg := config.SourceConfig{Driver: "sqlite", Name: path, Timeout: config.DefaultTimeout}

	conn, err := source.NewSQLConnector(cfg)
	if err != nil {
		t.Fatalf("sqlite connector: %v", err)
	}

	ctx := context.Background()
	handle, err := db.Open(ctx, conn.Dialect.DriverName, conn.Dialect.DSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer handle.Close()

	if err := source.InitSchema(ctx, handle); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if err := source.SeedTables(ctx, handle, seed); err != nil {
		t.Fatalf("seed tables: %v", err)
	}

	return conn
}

// Redis starts an in-memory Redis and returns it with a connector to it.
func Redis(t *testing.T) (*miniredis.Miniredis, *cache.RedisConnector) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port %q: %v", mr.Port(), err)
	}

	return mr, cache.NewRedisConnector(config.CacheConfig{Backend: "redis", Host: mr.Host(), Port: port})
}

// DeliverySeed builds source rows for each agent code billed on date
// (YYYY-MM-DD). Every agent gets one billing document with RowsPerAgent
// sales lines, one pending delivery, one delivered line item and a past
// delivery carrying HistoricalDue for the same customer.
func DeliverySeed(date string, agentCodes ...string) source.Seed {
	seed := source.Seed{
		"rdl_route_wise_depot": {{"route_code": "R1", "route_name": "Mirpur"}},
		"rpl_material": {
			{"matnr": "M1", "material_name": "Napa 500", "producer_company": "Beximco", "brand_name": "Napa", "brand_description": "Paracetamol"},
			{"matnr": "M2", "material_name": "Seclo 20", "producer_company": "Square", "brand_name": "Seclo", "brand_description": "Omeprazole"},
		},
	}
	AddAgents(seed, date, 0, agentCodes...)
	return seed
}

// AddAgents appends rows for more agents to seed. offset keeps generated
// ids unique when called more than once on the same seed.
func AddAgents(seed source.Seed, date string, offset int, agentCodes ...string) {
	for i, code := range agentCodes {
		n := offset + i + 1
		partner := "C-" + code
		doc := fmt.Sprintf("%s-%s", date, code)
		histDoc := "hist-" + code

		seed["rpl_customer"] = append(seed["rpl_customer"], map[string]any{
			"partner": partner, "name1": "Shop", "name2": code, "contact_person": "Owner " + code,
			"mobile_no": "0170000000" + strconv.Itoa(n%10), "street": "Road 1", "street1": "Block A",
			"street2": "Sec 2", "upazilla": "Mirpur", "district": "Dhaka",
		})
		seed["rdl_customer_location"] = append(seed["rdl_customer_location"], map[string]any{
			"customer_id": partner, "latitude": 23.8, "longitude": 90.36,
		})
		seed["rdl_delivery_info_sap"] = append(seed["rdl_delivery_info_sap"], map[string]any{
			"billing_doc_no": doc, "billing_date": date, "route": "R1",
			"da_code": code, "da_name": "Agent " + code, "vehicle_no": "DM-" + code,
		})
		seed["rpl_sales_info_sap"] = append(seed["rpl_sales_info_sap"],
			map[string]any{
				"billing_doc_no": doc, "gate_pass_no": "GP-" + code, "partner": partner, "matnr": "M1", "batch": "B1",
				"quantity": 10, "net_val": "123.40", "tp": "11.00", "vat": "1.34", "billing_type": "ZD01",
				"assigment": "A1", "plant": "P1", "team": "T1", "created_on": date + " 08:00:00",
			},
			map[string]any{
				"billing_doc_no": doc, "gate_pass_no": "GP-" + code, "partner": partner, "matnr": "M2", "batch": "B2",
				"quantity": 5, "net_val": "60.00", "tp": "12.00", "vat": "0.00", "billing_type": "ZD01",
				"assigment": "A1", "plant": "P1", "team": "T1", "created_on": date + " 08:00:00",
			},
		)
		seed["rdl_delivery"] = append(seed["rdl_delivery"],
			map[string]any{
				"id": n * 10, "billing_doc_no": doc, "billing_date": date, "partner": partner,
				"due_amount": "0", "return_status": nil, "net_val": "183.40", "transport_type": "van",
			},
			map[string]any{
				"id": n*10 + 1, "billing_doc_no": histDoc, "billing_date": "2000-01-01", "partner": partner,
				"due_amount": strconv.FormatFloat(HistoricalDue, 'f', 2, 64), "delivery_status": "Delivered",
				"cash_collection_status": "Collected",
			},
		)
		seed["rdl_delivery_list"] = append(seed["rdl_delivery_list"], map[string]any{
			"id": n * 100, "delivery_id": n * 10, "matnr": "M1", "batch": "B1",
			"delivery_quantity": 10, "return_quantity": 0, "return_net_val": "0", "delivery_net_val": "123.40",
		})
	}
}
