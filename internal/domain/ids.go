package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Namespaces for name-based ids derived from legacy short ids.
var idNamespaces = map[string]uuid.UUID{
	CollectionProducts:       uuid.MustParse("6f1d7c2e-4a8b-5e0f-9c31-2b7a5d8e4f10"),
	CollectionVouchers:       uuid.MustParse("0c8e2f4a-9b1d-5a7c-8e3f-6d2b4a1c9e07"),
	CollectionAffiliates:     uuid.MustParse("a3b5c7d9-e1f3-5a2b-9c4d-6e8f0a1b2c3d"),
	CollectionPaymentMethods: uuid.MustParse("5d4c3b2a-1f0e-5d9c-8b7a-6f5e4d3c2b1a"),
	CollectionOrders:         uuid.MustParse("9e8d7c6b-5a4f-5e3d-ac1b-0f9e8d7c6b5a"),
}

func NewID() string {
	return uuid.NewString()
}

// IsCanonicalID accepts only the 36-character hyphenated lowercase form.
func IsCanonicalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

// NormalizeID returns the canonical form of id and whether it differs from the input.
// Legacy ids map to a name-based UUID within the collection namespace, so the same
// legacy id always normalizes to the same canonical id.
func NormalizeID(collection, id string) (string, bool) {
	if IsCanonicalID(id) {
		return id, false
	}
	trimmed := strings.TrimSpace(id)
	if len(trimmed) == 36 {
		if u, err := uuid.Parse(trimmed); err == nil {
			return u.String(), true
		}
	}
	if trimmed == "" {
		return NewID(), true
	}
	ns, ok := idNamespaces[collection]
	if !ok {
		ns = uuid.NameSpaceOID
	}
	return uuid.NewSHA1(ns, []byte(trimmed)).String(), true
}
