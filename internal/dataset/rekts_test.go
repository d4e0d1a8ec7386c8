package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testDeFiClient(handler http.HandlerFunc) (*DeFiClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewDeFiClient("test-key")
	c.BaseURL = srv.URL
	c.RateLimitDelay = 0
	return c, srv
}

func TestFetchPage(t *testing.T) {
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Variables["p"] != 2 || req.Variables["s"] != 50 {
			t.Errorf("unexpected variables: %v", req.Variables)
		}
		w.Write([]byte(`{
			"data": {
				"rekts": [{
					"projectName": "Sentiment",
					"date": "2023-04-04",
					"fundsLost": "1000000",
					"fundsReturned": "900000",
					"chaindIds": [42161],
					"category": "Lending",
					"issueType": "Reentrancy",
					"description": "Read-only reentrancy via Balancer"
				}]
			}
		}`))
	})
	defer srv.Close()

	rekts, err := c.FetchPage(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rekts) != 1 {
		t.Fatalf("expected 1 incident, got %d", len(rekts))
	}
	r := rekts[0]
	if r.ProjectName != "Sentiment" || r.IssueType != "Reentrancy" {
		t.Errorf("unexpected incident: %+v", r)
	}
	if len(r.ChainIDs) != 1 || r.ChainIDs[0] != 42161 {
		t.Errorf("unexpected chain ids: %v", r.ChainIDs)
	}
}

func TestFetchPage_RateLimited(t *testing.T) {
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := c.FetchPage(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchPage_Unauthorized(t *testing.T) {
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer srv.Close()

	_, err := c.FetchPage(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestFetchPage_GraphQLError(t *testing.T) {
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "complexity limit exceeded"}]}`))
	})
	defer srv.Close()

	_, err := c.FetchPage(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "complexity limit") {
		t.Errorf("expected graphql error, got %v", err)
	}
}

func TestCheckpointRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cp.json")

	// Missing file starts from page 1.
	cp, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if cp.NextPage != 1 || len(cp.Fetched) != 0 {
		t.Errorf("unexpected fresh checkpoint: %+v", cp)
	}

	cp.NextPage = 4
	cp.Fetched = []Rekt{{ProjectName: "Parity", Date: "2017-07-19"}}
	if err := SaveCheckpoint(path, cp); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NextPage != 4 || len(loaded.Fetched) != 1 {
		t.Errorf("checkpoint not restored: %+v", loaded)
	}
	if loaded.Fetched[0].ProjectName != "Parity" {
		t.Errorf("unexpected project: %s", loaded.Fetched[0].ProjectName)
	}
}

func TestExportRekts(t *testing.T) {
	pages := map[int]string{
		1: `{"data": {"rekts": [
			{"projectName": "Sentiment", "date": "2023-04-04", "fundsLost": "1000000", "chaindIds": [42161], "category": "Lending", "issueType": "Reentrancy"},
			{"projectName": "AnubisDAO", "date": "2021-10-29", "fundsLost": "60000000", "chaindIds": [1], "category": "DAO", "issueType": "Rugpull"}
		]}}`,
		2: `{"data": {"rekts": []}}`,
	}
	var calls []int
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		p := req.Variables["p"]
		calls = append(calls, p)
		w.Write([]byte(pages[p]))
	})
	defer srv.Close()

	dir := t.TempDir()
	if err := ExportRekts(context.Background(), c, dir, 0, nil); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("unexpected page sequence: %v", calls)
	}

	csvData, err := os.ReadFile(filepath.Join(dir, "rekts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(csvData)
	if !strings.Contains(text, "Sentiment") || !strings.Contains(text, "AnubisDAO") {
		t.Errorf("csv missing incidents:\n%s", text)
	}
	if !strings.HasPrefix(text, "project_name,date,funds_lost") {
		t.Errorf("csv missing header:\n%s", text)
	}

	var dumped []Rekt
	jsonData, err := os.ReadFile(filepath.Join(dir, "rekts.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(jsonData, &dumped); err != nil {
		t.Fatal(err)
	}
	if len(dumped) != 2 {
		t.Errorf("expected 2 incidents in dump, got %d", len(dumped))
	}

	if _, err := os.ReadFile(filepath.Join(dir, "fetch_metadata.json")); err != nil {
		t.Errorf("fetch_metadata.json not written: %v", err)
	}

	// Checkpoint is cleaned up after a complete export.
	if _, err := os.Stat(filepath.Join(dir, "rekts_checkpoint.json")); !os.IsNotExist(err) {
		t.Errorf("checkpoint should be removed after success")
	}
}

func TestExportRekts_MaxPagesKeepsCheckpoint(t *testing.T) {
	pages := map[int]string{
		1: `{"data": {"rekts": [{"projectName": "Sentiment", "date": "2023-04-04"}]}}`,
		2: `{"data": {"rekts": [{"projectName": "AnubisDAO", "date": "2021-10-29"}]}}`,
		3: `{"data": {"rekts": []}}`,
	}
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(pages[req.Variables["p"]]))
	})
	defer srv.Close()

	dir := t.TempDir()
	cpPath := filepath.Join(dir, "rekts_checkpoint.json")

	// A capped run is incomplete: the checkpoint must survive it.
	if err := ExportRekts(context.Background(), c, dir, 1, nil); err != nil {
		t.Fatal(err)
	}
	cp, err := LoadCheckpoint(cpPath)
	if err != nil {
		t.Fatal(err)
	}
	if cp.NextPage != 2 || len(cp.Fetched) != 1 {
		t.Fatalf("checkpoint lost after capped run: %+v", cp)
	}

	// The next uncapped run resumes at page 2 instead of restarting.
	if err := ExportRekts(context.Background(), c, dir, 0, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "rekts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "Sentiment") || !strings.Contains(text, "AnubisDAO") {
		t.Errorf("resumed export lost data:\n%s", text)
	}
	if strings.Count(text, "Sentiment") != 1 {
		t.Errorf("capped page re-fetched after resume:\n%s", text)
	}
	if _, err := os.Stat(cpPath); !os.IsNotExist(err) {
		t.Errorf("checkpoint should be removed after the complete run")
	}
}

func TestExportRekts_ResumeAfterRateLimit(t *testing.T) {
	call := 0
	c, srv := testDeFiClient(func(w http.ResponseWriter, r *http.Request) {
		call++
		var req graphqlRequest
		json.NewDecoder(r.Body).Decode(&req)
		switch {
		case req.Variables["p"] == 1:
			w.Write([]byte(`{"data": {"rekts": [{"projectName": "BeautyChain", "date": "2018-04-22"}]}}`))
		case call == 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(`{"data": {"rekts": []}}`))
		}
	})
	defer srv.Close()

	dir := t.TempDir()
	err := ExportRekts(context.Background(), c, dir, 0, nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	cp, err := LoadCheckpoint(filepath.Join(dir, "rekts_checkpoint.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cp.NextPage != 2 || len(cp.Fetched) != 1 {
		t.Fatalf("checkpoint not persisted correctly: %+v", cp)
	}

	// Second run resumes at page 2 and finishes.
	if err := ExportRekts(context.Background(), c, dir, 0, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "rekts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "BeautyChain") {
		t.Errorf("resumed export lost page 1 data:\n%s", string(data))
	}
}
