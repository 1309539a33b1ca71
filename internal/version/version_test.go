package version

import "testing"

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want []int64
		rev  int64
		hash string
	}{
		{"1.8.0-1", []int64{1, 8, 0}, 1, ""},
		{"5.3.4", []int64{5, 3, 4}, 0, ""},
		{"1.0", []int64{1, 0}, 0, ""},
		{"2.0.5.2", []int64{2, 0, 5, 2}, 0, ""},
		{"1.8.0-1_deadbeef", []int64{1, 8, 0}, 1, "deadbeef"},
	}

	for _, c := range cases {
		v, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if len(v.components) != len(c.want) {
			t.Fatalf("Parse(%q) components = %v, want %v", c.in, v.components, c.want)
		}
		for i, want := range c.want {
			if v.components[i] != want {
				t.Errorf("Parse(%q) component %d = %d, want %d", c.in, i, v.components[i], want)
			}
		}
		if v.revision != c.rev {
			t.Errorf("Parse(%q) revision = %d, want %d", c.in, v.revision, c.rev)
		}
		if v.hash != c.hash {
			t.Errorf("Parse(%q) hash = %q, want %q", c.in, v.hash, c.hash)
		}
		if v.String() != c.in {
			t.Errorf("Parse(%q).String() = %q, want %q", c.in, v.String(), c.in)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1.x.0", "-1"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", in)
		}
	}
}

func TestTotalOrder(t *testing.T) {
	vs := []string{"1.0.0", "1.0.1", "1.1.0", "2.0.0", "1.0.0-1", "1.0.0-2"}
	for _, a := range vs {
		for _, b := range vs {
			for _, c := range vs {
				A, B, C := MustParse(a), MustParse(b), MustParse(c)
				lt, eq, gt := A.Less(B), A.Equal(B), B.Less(A)
				n := 0
				if lt {
					n++
				}
				if eq {
					n++
				}
				if gt {
					n++
				}
				if n != 1 {
					t.Fatalf("exactly one of A<B, A=B, A>B must hold for %s, %s", a, b)
				}
				if A.Less(B) && B.Less(C) && !A.Less(C) {
					t.Fatalf("transitivity violated: %s < %s < %s but not %s < %s", a, b, c, a, c)
				}
			}
		}
	}
}

func TestMissingTailTreatedAsZero(t *testing.T) {
	a := MustParse("1.0")
	b := MustParse("1.0.0")
	if !a.Equal(b) {
		t.Fatalf("1.0 and 1.0.0 should be equal, got %v vs %v", a, b)
	}
}

func TestHashIgnoredInOrdering(t *testing.T) {
	a := MustParse("1.8.0-1")
	b := MustParse("1.8.0-1_deadbeef")
	if !a.Equal(b) {
		t.Fatalf("hash suffix must not affect ordering: %v vs %v", a, b)
	}
}

func TestCanonicalKey(t *testing.T) {
	cases := map[string]string{
		"1.0":     "1.0.0-0",
		"1.0.0":   "1.0.0-0",
		"1":       "1.0.0-0",
		"2.0.5.2": "2.0.5.2-0",
		"1.8.0-1": "1.8.0-1",
		"1.8.0-2": "1.8.0-2",
	}
	for in, want := range cases {
		if got := MustParse(in).CanonicalKey(); got != want {
			t.Errorf("CanonicalKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalKeyRoundTripsThroughParse(t *testing.T) {
	for _, s := range []string{"1.8.0", "1.8.0-1", "1.0", "2.0.5.2-3"} {
		key := MustParse(s).CanonicalKey()
		reparsed, err := Parse(key)
		if err != nil {
			t.Fatalf("Parse(%q): %v", key, err)
		}
		if !reparsed.Equal(MustParse(s)) {
			t.Errorf("CanonicalKey round trip for %q: got %v, want equal to %v", s, reparsed, MustParse(s))
		}
	}
}

func TestIncrementLast(t *testing.T) {
	cases := []struct{ in, want string }{
		{"5.3", "5.4"},
		{"5.3.0", "5.4.0"},
		{"5.0.0", "6.0.0"},
	}
	for _, c := range cases {
		got := MustParse(c.in).IncrementLast().String()
		if got != c.want {
			t.Errorf("IncrementLast(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
