// ABOUTME: REST handlers for the deals collection
// ABOUTME: Adds stage filtering and pipeline totals to the list endpoint
package web

import (
	"net/http"
	"strconv"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
	"github.com/harperreed/dealdesk/service"
)

type dealList struct {
	Deals      []models.Deal `json:"deals"`
	TotalValue float64       `json:"totalValue"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// dealRequest is the body of POST and PUT. A contactId of 0 clears the link.
type dealRequest struct {
	Name      *string  `json:"name"`
	Value     *float64 `json:"value"`
	Stage     *string  `json:"stage"`
	ContactID *int     `json:"contactId"`
	Tags      *string  `json:"tags"`
	Owner     *string  `json:"owner"`
}

func (req dealRequest) apply(in models.DealInput) models.DealInput {
	optional(&in.Name, req.Name)
	optional(&in.Tags, req.Tags)
	if req.Value != nil {
		in.Value = strconv.FormatFloat(*req.Value, 'f', -1, 64)
	}
	if req.Stage != nil {
		in.Stage = models.Stage(*req.Stage)
	}
	if req.ContactID != nil {
		in.ContactID = ""
		if *req.ContactID != 0 {
			in.ContactID = strconv.Itoa(*req.ContactID)
		}
	}
	if req.Owner != nil {
		in.Owner = models.StrPtr(*req.Owner)
	}
	return in
}

func (s *Server) listDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stage := models.Stage(q.Get("stage"))
	if stage != "" && !stage.Valid() {
		writeError(w, http.StatusBadRequest, "unknown stage "+strconv.Quote(string(stage)), nil)
		return
	}

	ctx, col := capture(r.Context())
	state := held(ctx, r, s.dealHook)
	if state.Err != "" {
		writeError(w, http.StatusBadGateway, state.Err, col.Messages())
		return
	}
	if state.Degraded {
		s.logger.Warn("deal list served degraded")
		w.Header().Set(DegradedHeader, "true")
	}
	deals := state.Items

	deals = query.FilterStage(query.FilterDeals(deals, q.Get("q")), stage)
	deals = query.SortDeals(deals, q.Get("sort"), query.ParseDirection(q.Get("dir")))

	writeJSON(w, http.StatusOK, dealList{
		Deals:      deals,
		TotalValue: query.TotalValue(deals),
		Warnings:   col.Messages(),
	})
}

func (s *Server) getDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, col := capture(r.Context())
	d, err := s.deals.GetByID(ctx, id)
	if service.Missing(d, err) {
		writeError(w, http.StatusNotFound, "deal not found", col.Messages())
		return
	}
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) createDeal(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := req.apply(models.DealInput{Stage: models.StageLead})

	ctx, col := capture(r.Context())
	if err := in.Validate(); err != nil {
		writeStoreError(w, err, col)
		return
	}
	d, err := s.dealHook.Add(ctx, in)
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dealRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, col := capture(r.Context())
	existing, err := s.deals.GetByID(ctx, id)
	if service.Missing(existing, err) {
		writeError(w, http.StatusNotFound, "deal not found", col.Messages())
		return
	}
	if err != nil {
		writeStoreError(w, err, col)
		return
	}

	in := req.apply(existing.Input())
	if err := in.Validate(); err != nil {
		writeStoreError(w, err, col)
		return
	}
	d, err := s.dealHook.Update(ctx, id, in)
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, col := capture(r.Context())
	deleted, err := s.dealHook.Delete(ctx, id)
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "deal not deleted", col.Messages())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
