package axistime

import "testing"

func TestKeyInternalKeyDeterministic(t *testing.T) {
	k := Key{Primary: 7, Secondary: 11}
	if k.InternalKey() != k.InternalKey() {
		t.Fatal("expected repeated folding to agree")
	}
}

func TestKeyInternalKeyDistinguishesSecondary(t *testing.T) {
	a := Key{Primary: 7, Secondary: 11}
	b := Key{Primary: 7, Secondary: 12}
	if a.InternalKey() == b.InternalKey() {
		t.Fatal("expected different secondaries to fold to different internal keys")
	}
}

func TestKeyInternalKeyZeroSecondary(t *testing.T) {
	k := Key{Primary: 99, Secondary: 0}
	if k.InternalKey() != 99 {
		t.Fatalf("expected zero secondary to leave primary untouched, got %d", k.InternalKey())
	}
}

func TestMutationKindString(t *testing.T) {
	cases := map[MutationKind]string{
		MutationSet:      "Set",
		MutationAdd:      "Add",
		MutationMultiply: "Multiply",
		MutationDelete:   "Delete",
		MutationCustom:   "Custom",
		MutationKind(99): "Unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("MutationKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
