package id

import (
	"testing"

	"github.com/rs/xid"
)

func TestXIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewXIDGenerator()
	seen := make(map[string]struct{}, 100)
	for range 100 {
		v, err := gen.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, err := xid.FromString(v); err != nil {
			t.Fatalf("id %q is not an xid: %v", v, err)
		}
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate id %q", v)
		}
		seen[v] = struct{}{}
	}
}
