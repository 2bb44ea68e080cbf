package kit

import (
	"fmt"

	"github.com/google/uuid"
)

// ComputeRoot derives a deterministic UUID v5 from a domain and business key.
//
// The UUID is derived from hash("storefront" + domain + businessKey)
// using the OID namespace.
func ComputeRoot(domain, businessKey string) uuid.UUID {
	seed := "storefront" + domain + businessKey
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// SessionRoot returns the session id for a client key. The same client
// key always maps to the same session, so a returning client finds its
// persisted state again. An empty key yields a fresh random session.
func SessionRoot(clientKey string) uuid.UUID {
	if clientKey == "" {
		return uuid.New()
	}
	return ComputeRoot("session", clientKey)
}

// ParseSessionID validates a session id received from a client.
func ParseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id %q: %w", raw, err)
	}
	return id, nil
}

// StorageKey returns the persisted-state key for a session.
func StorageKey(base string, session uuid.UUID) string {
	return base + ":" + session.String()
}
