package token

import "testing"

func TestLocationLess(t *testing.T) {
	a := Location{Line: 1, Column: 5}
	b := Location{Line: 1, Column: 10}
	c := Location{Line: 2, Column: 1}
	if !a.Less(b) {
		t.Fatalf("expected a < b")
	}
	if !b.Less(c) {
		t.Fatalf("expected b < c")
	}
	if c.Less(a) {
		t.Fatalf("expected c not < a")
	}
}

func TestBuiltinTypeSizeAndSign(t *testing.T) {
	cases := []struct {
		bt     BuiltinType
		size   uint64
		signed bool
	}{
		{TypeU8, 1, false},
		{TypeS8, 1, true},
		{TypeU16, 2, false},
		{TypeS16, 2, true},
		{TypeU24, 3, false},
		{TypeU32, 4, false},
		{TypeS32, 4, true},
		{TypeU48, 6, false},
		{TypeU64, 8, false},
		{TypeS64, 8, true},
		{TypeU96, 12, false},
		{TypeU128, 16, false},
		{TypeS128, 16, true},
		{TypeBool, 1, false},
		{TypeChar, 1, false},
		{TypeChar16, 2, false},
		{TypeFloat, 4, false},
		{TypeDouble, 8, false},
	}
	for _, c := range cases {
		if got := c.bt.Size(); got != c.size {
			t.Errorf("%v.Size() = %d, want %d", c.bt, got, c.size)
		}
		if got := c.bt.Signed(); got != c.signed {
			t.Errorf("%v.Signed() = %v, want %v", c.bt, got, c.signed)
		}
	}
}
