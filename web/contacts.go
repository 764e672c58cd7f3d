// ABOUTME: REST handlers for the contacts collection
// ABOUTME: List with search and sort, single-record reads, and validated writes
package web

import (
	"net/http"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
	"github.com/harperreed/dealdesk/service"
)

type contactList struct {
	Contacts []models.Contact `json:"contacts"`
	Warnings []string         `json:"warnings,omitempty"`
}

// contactRequest is the body of POST and PUT. Omitted fields keep their
// current value on PUT.
type contactRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Tags    *string `json:"tags"`
	Owner   *string `json:"owner"`
}

func (req contactRequest) apply(in models.ContactInput) models.ContactInput {
	optional(&in.Name, req.Name)
	optional(&in.Company, req.Company)
	optional(&in.Email, req.Email)
	optional(&in.Phone, req.Phone)
	optional(&in.Tags, req.Tags)
	if req.Owner != nil {
		in.Owner = models.StrPtr(*req.Owner)
	}
	return in
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	ctx, col := capture(r.Context())
	state := held(ctx, r, s.contactHook)
	if state.Err != "" {
		writeError(w, http.StatusBadGateway, state.Err, col.Messages())
		return
	}
	if state.Degraded {
		s.logger.Warn("contact list served degraded")
		w.Header().Set(DegradedHeader, "true")
	}
	contacts := state.Items

	q := r.URL.Query()
	contacts = query.FilterContacts(contacts, q.Get("q"))
	contacts = query.SortContacts(contacts, q.Get("sort"), query.ParseDirection(q.Get("dir")))

	writeJSON(w, http.StatusOK, contactList{Contacts: contacts, Warnings: col.Messages()})
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, col := capture(r.Context())
	c, err := s.contacts.GetByID(ctx, id)
	if service.Missing(c, err) {
		writeError(w, http.StatusNotFound, "contact not found", col.Messages())
		return
	}
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := req.apply(models.ContactInput{})

	ctx, col := capture(r.Context())
	if err := in.Validate(); err != nil {
		writeStoreError(w, err, col)
		return
	}
	c, err := s.contactHook.Add(ctx, in)
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, col := capture(r.Context())
	existing, err := s.contacts.GetByID(ctx, id)
	if service.Missing(existing, err) {
		writeError(w, http.StatusNotFound, "contact not found", col.Messages())
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
	c, err := s.contactHook.Update(ctx, id, in)
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, col := capture(r.Context())
	deleted, err := s.contactHook.Delete(ctx, id)
	if err != nil {
		writeStoreError(w, err, col)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "contact not deleted", col.Messages())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
