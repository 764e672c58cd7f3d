// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact and Deal, their write inputs, and pipeline stages
package models

import (
	"strconv"
	"time"
)

type Contact struct {
	ID        int       `json:"Id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	Tags      string    `json:"tags"`
	Owner     *string   `json:"owner"`
}

type Deal struct {
	ID        int       `json:"Id"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Stage     Stage     `json:"stage"`
	ContactID *int      `json:"contactId"`
	CreatedAt time.Time `json:"createdAt"`
	Tags      string    `json:"tags"`
	Owner     *string   `json:"owner"`
}

// ContactInput carries the writable contact fields as submitted by a form,
// flag set, or API body.
type ContactInput struct {
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Tags    string  `json:"tags"`
	Owner   *string `json:"owner"`
}

// DealInput carries the writable deal fields. Value and ContactID stay as
// text until the service boundary coerces them.
type DealInput struct {
	Name      string  `json:"name"`
	Value     string  `json:"value"`
	Stage     Stage   `json:"stage"`
	ContactID string  `json:"contactId"`
	Tags      string  `json:"tags"`
	Owner     *string `json:"owner"`
}

// Input returns the writable fields of c.
func (c Contact) Input() ContactInput {
	return ContactInput{
		Name:    c.Name,
		Company: c.Company,
		Email:   c.Email,
		Phone:   c.Phone,
		Tags:    c.Tags,
		Owner:   c.Owner,
	}
}

// Input returns the writable fields of d in their submitted text form.
func (d Deal) Input() DealInput {
	in := DealInput{
		Name:  d.Name,
		Value: strconv.FormatFloat(d.Value, 'f', -1, 64),
		Stage: d.Stage,
		Tags:  d.Tags,
		Owner: d.Owner,
	}
	if d.ContactID != nil {
		in.ContactID = strconv.Itoa(*d.ContactID)
	}
	return in
}

// EntityID returns the contact's Id.
func (c Contact) EntityID() int { return c.ID }

// EntityID returns the deal's Id.
func (d Deal) EntityID() int { return d.ID }

type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed-won"
	StageClosedLost  Stage = "closed-lost"
)

// Stages lists every pipeline stage in pipeline order.
var Stages = []Stage{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// Valid reports whether s is one of the known pipeline stages.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the display label, e.g. "Closed Won".
func (s Stage) Label() string {
	switch s {
	case StageLead:
		return "Lead"
	case StageQualified:
		return "Qualified"
	case StageProposal:
		return "Proposal"
	case StageNegotiation:
		return "Negotiation"
	case StageClosedWon:
		return "Closed Won"
	case StageClosedLost:
		return "Closed Lost"
	}
	return string(s)
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}
