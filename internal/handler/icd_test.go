package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mindlog/mindlog/internal/icd"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository/memory"
	"github.com/mindlog/mindlog/internal/service"
)

type stubLookup struct {
	matches    []model.ConditionMatch
	categories json.RawMessage
	err        error
	queries    []string
}

func (s *stubLookup) Search(_ context.Context, query string) ([]model.ConditionMatch, error) {
	s.queries = append(s.queries, query)
	return s.matches, s.err
}

func (s *stubLookup) Categories(context.Context) (json.RawMessage, error) {
	return s.categories, s.err
}

func newConditionHandler(lookup ConditionLookup) *ConditionHandler {
	links := service.NewRecordService[*model.ConditionLink](memory.NewRecords[*model.ConditionLink](), 20, nil, discardLogger())
	return NewConditionHandler(lookup, links, discardLogger())
}

func TestConditionHandler_Search(t *testing.T) {
	lookup := &stubLookup{matches: []model.ConditionMatch{{Code: "6B00", Title: "Generalised anxiety disorder", CleanTitle: "Generalised anxiety disorder"}}}
	h := newConditionHandler(lookup)
	p := &model.Principal{UserID: "u-1", Username: "ann"}

	rec := httptest.NewRecorder()
	h.Search(rec, authedRequest(t, "/icd/search", url.Values{"query": {"anxiety"}}, p))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status  string                 `json:"status"`
		Count   int                    `json:"count"`
		Results []model.ConditionMatch `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Count != 1 || resp.Results[0].Code != "6B00" {
		t.Errorf("response = %+v", resp)
	}
}

func TestConditionHandler_SearchEmptyResults(t *testing.T) {
	h := newConditionHandler(&stubLookup{})
	p := &model.Principal{UserID: "u-1", Username: "ann"}

	rec := httptest.NewRecorder()
	h.Search(rec, authedRequest(t, "/icd/search", url.Values{"query": {"zzzz"}}, p))

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(resp["results"]) != "[]" || string(resp["count"]) != "0" {
		t.Errorf("response = %s", rec.Body.String())
	}
}

func TestConditionHandler_SearchMissingQuery(t *testing.T) {
	lookup := &stubLookup{}
	h := newConditionHandler(lookup)

	rec := httptest.NewRecorder()
	h.Search(rec, authedRequest(t, "/icd/search", url.Values{}, &model.Principal{UserID: "u-1"}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(lookup.queries) != 0 {
		t.Error("lookup called without a query")
	}
}

func TestConditionHandler_CategoriesPassThrough(t *testing.T) {
	raw := json.RawMessage(`{"@id":"http://id.who.int/icd/entity/334847586","child":["a","b"]}`)
	h := newConditionHandler(&stubLookup{categories: raw})

	rec := httptest.NewRecorder()
	h.Categories(rec, authedRequest(t, "/icd/categories", url.Values{}, &model.Principal{UserID: "u-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != string(raw) {
		t.Errorf("body = %s, want %s", rec.Body.String(), raw)
	}
}

func TestConditionHandler_CategoriesTimeout(t *testing.T) {
	h := newConditionHandler(&stubLookup{err: &icd.Error{Op: "categories", Kind: icd.ErrUpstreamTimeout, Err: context.DeadlineExceeded}})

	rec := httptest.NewRecorder()
	h.Categories(rec, authedRequest(t, "/icd/categories", url.Values{}, &model.Principal{UserID: "u-1"}))

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}
