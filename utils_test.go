package orderdemo

import "testing"

func TestParseID(t *testing.T) {
	cases := map[string]struct {
		id int64
		ok bool
	}{
		"1":   {1, true},
		" 42": {42, true},
		"0":   {0, false},
		"-3":  {0, false},
		"abc": {0, false},
		"":    {0, false},
	}

	for in, want := range cases {
		id, err := ParseID(in)
		if want.ok && err != nil {
			t.Fatalf("ParseID(%q) failed: %v", in, err)
		}
		if !want.ok && err == nil {
			t.Fatalf("ParseID(%q) expected error, got %d", in, id)
		}
		if id != want.id {
			t.Fatalf("ParseID(%q) = %d, want %d", in, id, want.id)
		}
	}
}

func TestUserPath(t *testing.T) {
	if got := UserPath(7); got != "/api/users/7" {
		t.Fatalf("unexpected path %s", got)
	}
}
