package calculator

import (
	"sort"

	"github.com/mmynk/splitopus/internal/models"
)

// LinkMap maps a linked account id to its master account id.
// Accounts without a link are absent.
type LinkMap map[string]string

// ResolveMaster returns the master of accountID, or accountID itself when it
// has no link. Exactly one lookup is performed.
func ResolveMaster(accountID string, links LinkMap) string {
	if master, ok := links[accountID]; ok {
		return master
	}
	return accountID
}

// BuildLinkMap collects the non-empty links of accounts.
func BuildLinkMap(accounts []models.Account) LinkMap {
	links := make(LinkMap)
	for _, a := range accounts {
		if a.LinkedTo != "" {
			links[a.ID] = a.LinkedTo
		}
	}
	return links
}

// Masters returns the distinct masters of members in ascending order.
func Masters(members []string, links LinkMap) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		master := ResolveMaster(m, links)
		if _, ok := seen[master]; ok {
			continue
		}
		seen[master] = struct{}{}
		out = append(out, master)
	}
	sort.Strings(out)
	return out
}
