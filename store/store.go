// store/store.go - Key-value storage abstraction
//
// Handlers depend on this interface only. The production implementation
// is DynamoDB (dynamo.go); tests use the in-memory variant (memory.go).
package store

import "context"

// Key identifies one item. Composite keys carry both attributes, e.g.
// {"sessionId": id, "roundNumber": 3}.
type Key map[string]any

// Store is the minimal primitive set the handlers need. Query and Scan
// unmarshal all matching items into out, which must be a pointer to a
// slice of structs.
type Store interface {
	// Get loads one item into out. Returns false when the key is absent.
	Get(ctx context.Context, table string, key Key, out any) (bool, error)

	// Put writes the full item, replacing any existing one.
	Put(ctx context.Context, table string, item any) error

	// Delete removes an item. Deleting a missing key is not an error.
	Delete(ctx context.Context, table string, key Key) error

	// Query returns all items whose attr equals value. When index is
	// non-empty the query runs against that secondary index; otherwise
	// attr must be the table's partition key.
	Query(ctx context.Context, table, index, attr string, value any, out any) error

	// Scan returns every item in the table.
	Scan(ctx context.Context, table string, out any) error

	// Update applies set as attribute assignments to an existing item.
	Update(ctx context.Context, table string, key Key, set map[string]any) error
}

// Secondary index names, shared by both implementations.
const (
	IndexUsername    = "UsernameIndex"
	IndexTenant      = "TenantIndex"
	IndexParticipant = "ParticipantIndex"
	IndexSession     = "SessionIndex"
	IndexSessionRnd  = "SessionRoundIndex"
)
