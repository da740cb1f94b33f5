package utils

import (
	"strings"

	"lppm-form-api/models"
)

var statusSynonyms = map[string][]string{
	models.StatusUnread: {
		"belum_dibaca",
		"belum dibaca",
		"unread",
		"baru",
	},
	models.StatusPending: {
		"pending",
		"diproses",
		"dibaca",
		"sedang_diproses",
		"in_review",
	},
	models.StatusApproved: {
		"approved",
		"disetujui",
		"selesai",
		"done",
	},
	models.StatusRejected: {
		"rejected",
		"ditolak",
	},
}

var statusLookup = func() map[string]string {
	lookup := make(map[string]string)
	for canonical, synonyms := range statusSynonyms {
		for _, s := range synonyms {
			lookup[normalizeStatusKey(s)] = canonical
		}
	}
	return lookup
}()

// CanonicalStatuses returns the review statuses in workflow order.
func CanonicalStatuses() []string {
	return []string{models.StatusUnread, models.StatusPending, models.StatusApproved, models.StatusRejected}
}

// NormalizeStatus maps raw (any accepted spelling) onto a canonical status.
func NormalizeStatus(raw string) (string, bool) {
	canonical, ok := statusLookup[normalizeStatusKey(raw)]
	return canonical, ok
}

func normalizeStatusKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}
