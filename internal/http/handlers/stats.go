package handlers

import (
	"net/http"

	"server/internal/sqlinline"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QStatsSummary)
	var totalUsers, premiumUsers, totalStories, created, failed, denials, last24 int64
	if err := row.Scan(&totalUsers, &premiumUsers, &totalStories, &created, &failed, &denials, &last24); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_users":      totalUsers,
		"premium_users":    premiumUsers,
		"total_stories":    totalStories,
		"stories_created":  created,
		"stories_failed":   failed,
		"quota_denials":    denials,
		"stories_last_24h": last24,
	})
}
