package acceptance

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

type ingestResult struct {
	Status           string `json:"status"`
	RecordsProcessed int    `json:"records_processed"`
	Error            string `json:"error,omitempty"`
}

type customerJSON struct {
	CustomerID     string   `json:"customer_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	DateOfBirth    *string  `json:"date_of_birth"`
	AccountBalance *float64 `json:"account_balance"`
	CreatedAt      *string  `json:"created_at"`
}

type listResult struct {
	Data       []customerJSON `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

func TestIngestProcessesAllPages(t *testing.T) {
	source := newUpstreamSource(t, testRecords(25))
	ts := NewTestServer(t, source.Server.URL, 10)
	defer ts.Close()

	w := ts.POST("/api/ingest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/ingest = %d, body %s", w.Code, w.Body.String())
	}

	var res ingestResult
	decodeJSON(t, w, &res)
	if res.Status != "success" || res.RecordsProcessed != 25 {
		t.Errorf("got %+v, want success with 25 records", res)
	}

	// 25 records at page size 10 is exactly three page fetches.
	if got := source.PagesRequested(); len(got) != 3 {
		t.Errorf("upstream saw pages %v, want [1 2 3]", got)
	}

	var count int
	if err := ts.DB.Get(&count, "SELECT count(*) FROM customers"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 25 {
		t.Errorf("store has %d rows, want 25", count)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	source := newUpstreamSource(t, testRecords(25))
	ts := NewTestServer(t, source.Server.URL, 10)
	defer ts.Close()

	var first, second ingestResult
	decodeJSON(t, ts.POST("/api/ingest", nil), &first)

	var afterFirst listResult
	decodeJSON(t, ts.GET("/api/customers?page=1&limit=100"), &afterFirst)

	decodeJSON(t, ts.POST("/api/ingest", nil), &second)

	var afterSecond listResult
	decodeJSON(t, ts.GET("/api/customers?page=1&limit=100"), &afterSecond)

	if first.RecordsProcessed != second.RecordsProcessed {
		t.Errorf("records_processed diverged between runs: %d then %d",
			first.RecordsProcessed, second.RecordsProcessed)
	}
	if afterSecond.Total != 25 {
		t.Errorf("second run changed row count: total %d, want 25", afterSecond.Total)
	}
	if spew.Sdump(afterFirst) != spew.Sdump(afterSecond) {
		t.Errorf("store state changed between identical runs:\nrun 1: %srun 2: %s",
			spew.Sdump(afterFirst), spew.Sdump(afterSecond))
	}
}

func TestIngestOverwritesOnReingest(t *testing.T) {
	source := newUpstreamSource(t, testRecords(5))
	ts := NewTestServer(t, source.Server.URL, 10)
	defer ts.Close()

	if w := ts.POST("/api/ingest", nil); w.Code != http.StatusOK {
		t.Fatalf("first ingest = %d, body %s", w.Code, w.Body.String())
	}

	// Same IDs, different field values.
	updated := testRecords(5)
	for i := range updated {
		updated[i].Email = fmt.Sprintf("changed%03d@example.com", i+1)
		updated[i].AccountBalance = floatptr(999.99)
	}
	source.SetRecords(updated)

	if w := ts.POST("/api/ingest", nil); w.Code != http.StatusOK {
		t.Fatalf("second ingest = %d, body %s", w.Code, w.Body.String())
	}

	var list listResult
	decodeJSON(t, ts.GET("/api/customers?page=1&limit=100"), &list)
	if list.Total != 5 {
		t.Fatalf("re-ingest produced duplicates: total %d, want 5", list.Total)
	}

	var got struct {
		Data customerJSON `json:"data"`
	}
	decodeJSON(t, ts.GET("/api/customers/CUST001"), &got)
	if got.Data.Email != "changed001@example.com" {
		t.Errorf("email = %q, want the second run's value", got.Data.Email)
	}
	if got.Data.AccountBalance == nil || *got.Data.AccountBalance != 999.99 {
		t.Errorf("account_balance = %v, want 999.99", got.Data.AccountBalance)
	}
}

func TestIngestPartialFailureKeepsEarlierPages(t *testing.T) {
	source := newUpstreamSource(t, testRecords(25))
	source.FailOnPage(2)
	ts := NewTestServer(t, source.Server.URL, 10)
	defer ts.Close()

	w := ts.POST("/api/ingest", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("POST /api/ingest = %d, want 500; body %s", w.Code, w.Body.String())
	}

	var res ingestResult
	decodeJSON(t, w, &res)
	if res.Status != "error" || res.RecordsProcessed != 10 {
		t.Errorf("got %+v, want error with page 1's 10 records", res)
	}

	// Page 1's records and only those made it into the store.
	var list listResult
	decodeJSON(t, ts.GET("/api/customers?page=1&limit=100"), &list)
	if list.Total != 10 {
		t.Errorf("store has %d rows, want 10", list.Total)
	}
	for i, c := range list.Data {
		want := fmt.Sprintf("CUST%03d", i+1)
		if c.CustomerID != want {
			t.Errorf("row %d is %s, want %s", i, c.CustomerID, want)
		}
	}
}

func TestIngestUpstreamDown(t *testing.T) {
	source := newUpstreamSource(t, testRecords(5))
	ts := NewTestServer(t, source.Server.URL, 10)
	defer ts.Close()

	source.Server.Close()

	w := ts.POST("/api/ingest", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("POST /api/ingest = %d, want 502; body %s", w.Code, w.Body.String())
	}

	var res ingestResult
	decodeJSON(t, w, &res)
	if res.RecordsProcessed != 0 {
		t.Errorf("records_processed = %d, want 0", res.RecordsProcessed)
	}

	var count int
	if err := ts.DB.Get(&count, "SELECT count(*) FROM customers"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("store was mutated: %d rows", count)
	}
}
