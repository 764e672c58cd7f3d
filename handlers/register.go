// ABOUTME: MCP server construction and tool registration
// ABOUTME: Exposes contact, deal, and dashboard tools over one server
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/service"
)

// NewServer builds an MCP server with every dealdesk tool registered.
func NewServer(version string, contacts service.ContactStore, deals service.DealStore, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealdesk",
		Version: version,
	}, nil)

	contactHandlers := NewContactHandlers(contacts)
	dealHandlers := NewDealHandlers(deals)
	dashboardHandlers := NewDashboardHandlers(contacts, deals, logger)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts, optionally filtered by a search term and sorted",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get a single contact by Id",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_contact",
		Description: "Create a new contact with name, email, and phone",
	}, contactHandlers.CreateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact; omitted fields keep their current values",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact by Id",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals, optionally filtered by search term or stage and sorted",
	}, dealHandlers.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_deal",
		Description: "Get a single deal by Id",
	}, dealHandlers.GetDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal with a positive value and pipeline stage",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update an existing deal; omitted fields keep their current values",
	}, dealHandlers.UpdateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal by Id",
	}, dealHandlers.DeleteDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard_summary",
		Description: "Summarize contacts, deals, pipeline value by stage, and recent activity",
	}, dashboardHandlers.DashboardSummary)

	resources := NewResourceHandlers(contacts, deals)
	for _, r := range []*mcp.Resource{
		{URI: resourceScheme + "contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: resourceScheme + "deals", Name: "deals", Description: "All deals", MIMEType: "application/json"},
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Deal count and value per stage", MIMEType: "application/json"},
	} {
		server.AddResource(r, resources.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "contacts/{id}",
		Name:        "contact",
		Description: "One contact by Id",
		MIMEType:    "application/json",
	}, resources.ReadResource)
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "deals/{id}",
		Name:        "deal",
		Description: "One deal by Id",
		MIMEType:    "application/json",
	}, resources.ReadResource)

	return server
}
