// Package providers normalizes user-entered subscription names to
// canonical streaming provider identifiers and matches availability
// payloads against a user's subscriptions.
package providers

import (
	"math/rand"
	"strings"

	"github.com/streamwise/streamwise/internal/database/sqlc"
)

// Offer is a single streaming provider entry from an availability payload.
type Offer struct {
	ID   int
	Name string
}

// Resolve maps a user-entered service name to canonical provider ids.
// Lookup order: exact lowercase match, then substring containment in
// either direction against the table keys in sorted order, so the same
// name always resolves to the same ids. Unknown names resolve to nil,
// never an error.
func Resolve(serviceName string) []int {
	key := strings.ToLower(strings.TrimSpace(serviceName))
	if key == "" {
		return nil
	}

	if ids, ok := identityTable[key]; ok {
		return ids
	}

	for _, tableKey := range tableKeys {
		if strings.Contains(key, tableKey) || strings.Contains(tableKey, key) {
			return identityTable[tableKey]
		}
	}

	return nil
}

// ResolveAll returns the union of provider ids across the given
// subscriptions, for use as a discover-stage filter.
func ResolveAll(subs []*sqlc.Subscription) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, sub := range subs {
		for _, id := range Resolve(sub.ServiceName) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Match returns the first subscription whose resolved ids intersect the
// offer ids, else the first whose name fuzzy-matches an offer name.
// Subscriptions are checked in the order given; nil means no match.
func Match(offers []Offer, subs []*sqlc.Subscription) *sqlc.Subscription {
	for _, sub := range subs {
		if subscriptionMatches(sub, offers) {
			return sub
		}
	}
	return nil
}

// MatchShuffled is Match over a randomized subscription order, so that
// repeated calls distribute assignments across equally matching
// subscriptions instead of always favoring the first.
func MatchShuffled(offers []Offer, subs []*sqlc.Subscription) *sqlc.Subscription {
	shuffled := make([]*sqlc.Subscription, len(subs))
	copy(shuffled, subs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return Match(offers, shuffled)
}

// MatchAll returns every subscription matching the offers, in the order
// given. Callers that load-balance assignments pick among these.
func MatchAll(offers []Offer, subs []*sqlc.Subscription) []*sqlc.Subscription {
	var matched []*sqlc.Subscription
	for _, sub := range subs {
		if subscriptionMatches(sub, offers) {
			matched = append(matched, sub)
		}
	}
	return matched
}

func subscriptionMatches(sub *sqlc.Subscription, offers []Offer) bool {
	resolved := Resolve(sub.ServiceName)
	for _, offer := range offers {
		for _, id := range resolved {
			if id == offer.ID {
				return true
			}
		}
	}

	// Fall back to fuzzy name comparison against the payload's display
	// names for services missing from the identity table.
	subName := strings.ToLower(strings.TrimSpace(sub.ServiceName))
	if subName == "" {
		return false
	}
	for _, offer := range offers {
		offerName := strings.ToLower(offer.Name)
		if offerName == "" {
			continue
		}
		if strings.Contains(offerName, subName) || strings.Contains(subName, offerName) {
			return true
		}
	}
	return false
}

// AttributeService returns the display name of the first offer whose
// provider is present in the identity table, used to label explore
// candidates with the external service carrying them. Empty string
// means no recognized service.
func AttributeService(offers []Offer) string {
	for _, offer := range offers {
		for _, ids := range identityTable {
			for _, id := range ids {
				if id == offer.ID {
					return offer.Name
				}
			}
		}
	}
	return ""
}
