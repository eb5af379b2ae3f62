package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap/zaptest"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/testsupport"
)

func TestDispatchOneUnitPerWorker(t *testing.T) {
	conn := testsupport.SQLiteSource(t, testsupport.DeliverySeed("2024-03-05", "D001", "D002"))
	mr, cacheConn := testsupport.Redis(t)

	o := NewOrchestrator(conn, cacheConn, 2, zaptest.NewLogger(t), clockwork.NewRealClock())
	reports, err := o.Dispatch(context.Background(), units("D001", "D002"))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	for i, r := range reports {
		if r.Worker != i || len(r.Outcomes) != 1 {
			t.Fatalf("report %d = %+v, want one unit", i, r)
		}
		if r.Outcomes[0].Status != domain.StatusWritten {
			t.Fatalf("report %d status = %s (%v)", i, r.Outcomes[0].Status, r.Outcomes[0].Err)
		}
	}

	for _, key := range []string{"2024-03-05_D001_delivery-info", "2024-03-05_D002_delivery-info"} {
		raw, err := mr.Get(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}

		var records []map[string]any
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			t.Fatalf("%s is not a JSON array of objects: %v", key, err)
		}
		if len(records) != testsupport.RowsPerAgent {
			t.Fatalf("%s holds %d records, want %d", key, len(records), testsupport.RowsPerAgent)
		}
	}
	if n := len(mr.Keys()); n != 2 {
		t.Fatalf("cache holds %d keys, want 2", n)
	}
}

func TestDispatchIsIdempotent(t *testing.T) {
	conn := testsupport.SQLiteSource(t, testsupport.DeliverySeed("2024-03-05", "D001", "D002", "D003"))
	mr, cacheConn := testsupport.Redis(t)

	o := NewOrchestrator(conn, cacheConn, 2, zaptest.NewLogger(t), clockwork.NewRealClock())
	batch := units("D001", "D002", "D003")

	if _, err := o.Dispatch(context.Background(), batch); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	first := map[string]string{}
	for _, k := range mr.Keys() {
		first[k], _ = mr.Get(k)
	}

	if _, err := o.Dispatch(context.Background(), batch); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(mr.Keys()) != len(first) {
		t.Fatalf("keys = %d after rerun, want %d", len(mr.Keys()), len(first))
	}
	for k, v := range first {
		if got, _ := mr.Get(k); got != v {
			t.Fatalf("%s changed on rerun", k)
		}
	}
}

func TestDispatchCapsWorkersAtUnitCount(t *testing.T) {
	src := &fakeSourceConnector{}
	cache := newMemCache()

	o := NewOrchestrator(src, cache, 15, zaptest.NewLogger(t), clockwork.NewRealClock())
	reports, err := o.Dispatch(context.Background(), units("A", "B", "C", "D", "E"))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(reports) != 5 {
		t.Fatalf("reports = %d, want 5", len(reports))
	}
	if src.connects != 5 || cache.connects != 5 {
		t.Fatalf("connects source=%d cache=%d, want one per worker", src.connects, cache.connects)
	}
	if len(src.fetched) != 5 {
		t.Fatalf("fetched %d units, want 5", len(src.fetched))
	}
}

func TestRunPopulatesTodaysUnits(t *testing.T) {
	today := time.Now().UTC().Format(domain.DateLayout)
	seed := testsupport.DeliverySeed(today, "D001", "D002", "D003")
	testsupport.AddAgents(seed, "2024-03-05", 3, "OLD")

	conn := testsupport.SQLiteSource(t, seed)
	mr, cacheConn := testsupport.Redis(t)

	o := NewOrchestrator(conn, cacheConn, 2, zaptest.NewLogger(t), clockwork.NewRealClock())
	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.RunID == "" {
		t.Error("summary has no run id")
	}
	if summary.Workers != 2 || summary.Units != 3 || summary.Written != 3 || !summary.OK() {
		t.Fatalf("summary = %+v", summary)
	}
	for _, code := range []string{"D001", "D002", "D003"} {
		if !mr.Exists(today + "_" + code + "_delivery-info") {
			t.Errorf("missing entry for %s", code)
		}
	}
	if mr.Exists("2024-03-05_OLD_delivery-info") {
		t.Error("units from other days must not be populated")
	}
}

func TestRunReportsFailedUnits(t *testing.T) {
	batch := units("D001", "D003", "D004")
	src := &fakeSourceConnector{
		units: batch,
		results: map[string]*domain.ResultSet{
			"D001": sampleResult(batch[0]),
			"D004": sampleResult(batch[2]),
		},
		failures: map[string]error{"D003": errTransient},
	}
	cache := newMemCache()

	clock := clockwork.NewFakeClock()
	o := NewOrchestrator(src, cache, 1, zaptest.NewLogger(t), clock)
	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Written != 2 || summary.Failed != 1 || summary.OK() {
		t.Fatalf("summary = %+v", summary)
	}
	if f := summary.FailedUnits[0]; f.Unit.AgentCode != "D003" || f.Status != domain.StatusQueryFailed {
		t.Fatalf("failed unit = %+v", f)
	}
	if _, ok := cache.get("2024-03-05_D003_delivery-info"); ok {
		t.Fatal("failed unit produced a cache entry")
	}
}

func TestRunStopsWhenSourceUnavailable(t *testing.T) {
	src := &fakeSourceConnector{connectErr: errors.New("dial tcp: i/o timeout")}
	cache := newMemCache()

	o := NewOrchestrator(src, cache, 15, zaptest.NewLogger(t), clockwork.NewRealClock())
	summary, err := o.Run(context.Background())

	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if summary.Units != 0 || cache.connects != 0 {
		t.Fatalf("run continued after enumeration failure: %+v cache connects=%d", summary, cache.connects)
	}
}

func TestRunWithNoUnitsStartsNoWorkers(t *testing.T) {
	src := &fakeSourceConnector{}
	cache := newMemCache()

	o := NewOrchestrator(src, cache, 15, zaptest.NewLogger(t), clockwork.NewRealClock())
	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Workers != 0 || summary.Units != 0 {
		t.Fatalf("summary = %+v, want empty", summary)
	}
	if src.connects != 1 || cache.connects != 0 {
		t.Fatalf("connects source=%d cache=%d, want enumeration only", src.connects, cache.connects)
	}
}
