// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list_contacts, get_contact, create_contact, update_contact, and delete_contact tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/query"
	"github.com/harperreed/dealdesk/service"
)

type ContactHandlers struct {
	store service.ContactStore
}

func NewContactHandlers(store service.ContactStore) *ContactHandlers {
	return &ContactHandlers{store: store}
}

type ListContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive search over name, company, and email"`
	Sort  string `json:"sort,omitempty" jsonschema:"Sort field: name, company, email, or created"`
	Desc  bool   `json:"desc,omitempty" jsonschema:"Sort descending"`
}

type ListContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Warnings []string        `json:"warnings,omitempty"`
	Degraded bool            `json:"degraded,omitempty"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	ctx, col := capture(ctx)

	contacts, err := h.store.GetAll(ctx)
	out := ListContactsOutput{Degraded: err != nil}
	if err != nil && len(contacts) == 0 {
		out.Warnings = append(out.Warnings, err.Error())
	}

	dir := query.Asc
	if input.Desc {
		dir = query.Desc
	}
	contacts = query.SortContacts(query.FilterContacts(contacts, input.Query), input.Sort, dir)

	out.Contacts = make([]ContactOutput, 0, len(contacts))
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, contactToOutput(c))
	}
	out.Warnings = append(out.Warnings, col.Messages()...)
	return nil, out, nil
}

type GetContactInput struct {
	ID int `json:"id" jsonschema:"Contact Id"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	c, err := h.store.GetByID(ctx, input.ID)
	if service.Missing(c, err) {
		return nil, ContactOutput{}, fmt.Errorf("contact %d not found", input.ID)
	}
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}
	return nil, contactToOutput(*c), nil
}

type CreateContactInput struct {
	Name    string  `json:"name" jsonschema:"Contact name (required)"`
	Email   string  `json:"email" jsonschema:"Email address (required)"`
	Phone   string  `json:"phone" jsonschema:"Phone number (required)"`
	Company string  `json:"company,omitempty" jsonschema:"Company name"`
	Tags    string  `json:"tags,omitempty" jsonschema:"Comma separated tags"`
	Owner   *string `json:"owner,omitempty" jsonschema:"Owner reference"`
}

func (h *ContactHandlers) CreateContact(ctx context.Context, _ *mcp.CallToolRequest, input CreateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	in := models.ContactInput{
		Name:    input.Name,
		Company: input.Company,
		Email:   input.Email,
		Phone:   input.Phone,
		Tags:    input.Tags,
		Owner:   input.Owner,
	}
	if err := in.Validate(); err != nil {
		return nil, ContactOutput{}, err
	}

	ctx, col := capture(ctx)
	c, err := h.store.Create(ctx, in)
	if err != nil {
		return nil, ContactOutput{}, writeError("create contact", err, col)
	}
	return nil, contactToOutput(c), nil
}

type UpdateContactInput struct {
	ID      int     `json:"id" jsonschema:"Contact Id"`
	Name    *string `json:"name,omitempty" jsonschema:"New name"`
	Email   *string `json:"email,omitempty" jsonschema:"New email address"`
	Phone   *string `json:"phone,omitempty" jsonschema:"New phone number"`
	Company *string `json:"company,omitempty" jsonschema:"New company name"`
	Tags    *string `json:"tags,omitempty" jsonschema:"New tags"`
	Owner   *string `json:"owner,omitempty" jsonschema:"New owner reference"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	existing, err := h.store.GetByID(ctx, input.ID)
	if service.Missing(existing, err) {
		return nil, ContactOutput{}, fmt.Errorf("contact %d not found", input.ID)
	}
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	in := existing.Input()
	optional(&in.Name, input.Name)
	optional(&in.Email, input.Email)
	optional(&in.Phone, input.Phone)
	optional(&in.Company, input.Company)
	optional(&in.Tags, input.Tags)
	if input.Owner != nil {
		in.Owner = models.StrPtr(*input.Owner)
	}
	if err := in.Validate(); err != nil {
		return nil, ContactOutput{}, err
	}

	ctx, col := capture(ctx)
	c, err := h.store.Update(ctx, input.ID, in)
	if err != nil {
		return nil, ContactOutput{}, writeError("update contact", err, col)
	}
	return nil, contactToOutput(c), nil
}

type DeleteContactInput struct {
	ID int `json:"id" jsonschema:"Contact Id"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteOutput, error) {
	ctx, col := capture(ctx)
	ok, err := h.store.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, writeError("delete contact", err, col)
	}
	return nil, DeleteOutput{Deleted: ok, Warnings: col.Messages()}, nil
}
