package i

import "time"

// Tokenizer issues and verifies the bearer tokens of monitor operators.
type Tokenizer interface {
	// Generate signs claims into a token that expires after ttl.
	Generate(claims map[string]any, ttl time.Duration) (string, error)

	// Decode verifies token and returns its claims.
	Decode(token string) (map[string]any, error)
}
