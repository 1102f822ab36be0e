package schema

import "testing"

func TestTraitSetTag(t *testing.T) {
	t.Parallel()

	ts := TraitSet{{Kind: TraitType, Tag: TagText}, {Kind: TraitCanBeNull}}
	if ts.Tag() != TagText {
		t.Fatalf("Tag() = %q, want %q", ts.Tag(), TagText)
	}
	if !ts.Has(TraitCanBeNull) || ts.Has(TraitMustNotInsert) {
		t.Fatalf("Has() wrong for %v", ts)
	}

	if tag := (TraitSet{{Kind: TraitCanBeNull}}).Tag(); tag != "" {
		t.Fatalf("Tag() without leading type trait = %q, want empty", tag)
	}
	if tag := TraitSet(nil).Tag(); tag.Valid() {
		t.Fatal("empty trait set must not have a valid tag")
	}
}

func TestTypeTagValid(t *testing.T) {
	t.Parallel()

	for _, tag := range []TypeTag{
		TagInteger, TagBigInteger, TagBoolean, TagFloatingPoint, TagText,
		TagBlob, TagDate, TagTimePoint, TagTimeOfDay,
	} {
		if !tag.Valid() {
			t.Errorf("%q should be valid", tag)
		}
	}
	for _, tag := range []TypeTag{"", "json", "INTEGER"} {
		if tag.Valid() {
			t.Errorf("%q should not be valid", tag)
		}
	}
}
