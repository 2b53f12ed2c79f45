package docgraph

import "github.com/google/uuid"

// newUUIDString backs UUIDIdentity's engine-assigned identity strategy.
func newUUIDString() string {
	return uuid.NewString()
}
