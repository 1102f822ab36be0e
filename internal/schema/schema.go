package schema

type TypeTag string

const (
	TagInteger       TypeTag = "integer"
	TagBigInteger    TypeTag = "bigint"
	TagBoolean       TypeTag = "boolean"
	TagFloatingPoint TypeTag = "floating_point"
	TagText          TypeTag = "text"
	TagBlob          TypeTag = "blob"
	TagDate          TypeTag = "date"
	TagTimePoint     TypeTag = "time_point"
	TagTimeOfDay     TypeTag = "time_of_day"
)

// Valid reports whether t is one of the known tags. The zero value is not.
func (t TypeTag) Valid() bool {
	switch t {
	case TagInteger, TagBigInteger, TagBoolean, TagFloatingPoint, TagText,
		TagBlob, TagDate, TagTimePoint, TagTimeOfDay:
		return true
	}
	return false
}

type TraitKind string

const (
	TraitType          TraitKind = "type"
	TraitCanBeNull     TraitKind = "can_be_null"
	TraitMustNotInsert TraitKind = "must_not_insert"
	TraitMustNotUpdate TraitKind = "must_not_update"
)

// Trait is a single entry of a column's trait list. Tag is set only for
// TraitType.
type Trait struct {
	Kind TraitKind
	Tag  TypeTag
}

// TraitSet is ordered; the type trait is always first.
type TraitSet []Trait

func (ts TraitSet) Tag() TypeTag {
	if len(ts) == 0 || ts[0].Kind != TraitType {
		return ""
	}
	return ts[0].Tag
}

func (ts TraitSet) Has(kind TraitKind) bool {
	for _, t := range ts {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

// Column is one row of the catalog, in declaration order.
type Column struct {
	ColumnID   int
	Name       string
	DataType   string
	ColumnType string
	IsNullable bool
	Extra      string
	MaxLength  int
	Precision  int
	Default    string
}

type ColumnDef struct {
	Column Column
	Traits TraitSet
}

type Table struct {
	Name    string
	Columns []ColumnDef
}
