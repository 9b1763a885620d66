package id

import "github.com/rs/xid"

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// XIDGenerator returns sortable 20 character ids, so ids created later
// compare greater within the same second.
type XIDGenerator struct{}

func NewXIDGenerator() *XIDGenerator {
	return &XIDGenerator{}
}

func (g *XIDGenerator) NewID() (string, error) {
	return xid.New().String(), nil
}
