package ids

import "github.com/google/uuid"

// Generator produces transaction ids and can be mocked for testing
type Generator interface {
	// NewID returns a fresh unique id
	NewID() string
}

// UUIDGenerator implements Generator with random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a random UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Valid reports whether id is a well-formed UUID
func Valid(id string) bool {
	return uuid.Validate(id) == nil
}
