// ABOUTME: REST handler for the dashboard summary
// ABOUTME: Loads both collections through fresh hooks and returns computed stats
package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/viz"
)

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	contacts := hook.NewContacts(s.contacts, s.logger)
	deals := hook.NewDeals(s.deals, s.logger)

	stats, err := viz.GenerateDashboardStats(r.Context(), contacts, deals)
	if err != nil {
		s.logger.Error("failed to build dashboard", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if contacts.Snapshot().Degraded || deals.Snapshot().Degraded {
		w.Header().Set(DegradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, stats)
}
