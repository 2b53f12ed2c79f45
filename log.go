package docgraph

import "go.uber.org/zap"

// NewProductionLogger builds the zap logger WithLogger typically receives
// outside of tests, matching the teacher's own preference for structured,
// leveled logging over the standard library's log package.
func NewProductionLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewDevelopmentLogger builds a human-readable logger suitable for the CLI
// and local debugging.
func NewDevelopmentLogger() (*zap.Logger, error) {
	return zap.NewDevelopment()
}
