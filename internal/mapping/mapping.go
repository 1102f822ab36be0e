package mapping

import (
	"errors"
	"fmt"
	"strings"

	"benritz/tosqlpp/internal/schema"
)

const autoIncrementMarker = "auto_increment"

var ErrNoColumns = errors.New("table has no columns")

// UnmappableTypeError is returned when a raw SQL type has no entry in the
// type table.
type UnmappableTypeError struct {
	Column   string
	DataType string
}

func (e *UnmappableTypeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("unmappable column type: %s", e.DataType)
	}
	return fmt.Sprintf("column %s: unmappable column type: %s", e.Column, e.DataType)
}

var typeTags = map[string]schema.TypeTag{
	"int":       schema.TagInteger,
	"bigint":    schema.TagBigInteger,
	"smallint":  schema.TagInteger,
	"tinyint":   schema.TagInteger,
	"mediumint": schema.TagInteger,
	"year":      schema.TagInteger,

	"decimal": schema.TagFloatingPoint,
	"numeric": schema.TagFloatingPoint,
	"float":   schema.TagFloatingPoint,
	"double":  schema.TagFloatingPoint,
	"real":    schema.TagFloatingPoint,

	// sqlpp11 has no enum or set types.
	"char":       schema.TagText,
	"varchar":    schema.TagText,
	"text":       schema.TagText,
	"tinytext":   schema.TagText,
	"mediumtext": schema.TagText,
	"longtext":   schema.TagText,
	"enum":       schema.TagText,
	"set":        schema.TagText,

	"date":      schema.TagDate,
	"datetime":  schema.TagTimePoint,
	"timestamp": schema.TagTimePoint,
	"time":      schema.TagTimeOfDay,

	"binary":     schema.TagBlob,
	"varbinary":  schema.TagBlob,
	"blob":       schema.TagBlob,
	"tinyblob":   schema.TagBlob,
	"mediumblob": schema.TagBlob,
	"longblob":   schema.TagBlob,
}

// MapType classifies a catalog DATA_TYPE. columnType is the full COLUMN_TYPE
// and only matters for tinyint(1), the conventional boolean column.
func MapType(dataType, columnType string) (schema.TypeTag, error) {
	if dataType == "tinyint" && columnType == "tinyint(1)" {
		return schema.TagBoolean, nil
	}
	tag, ok := typeTags[dataType]
	if !ok {
		return "", &UnmappableTypeError{DataType: dataType}
	}
	return tag, nil
}

// DeriveTraits builds the trait list for a column: type tag first, then
// can_be_null, then must_not_insert and must_not_update for auto-increment
// columns.
func DeriveTraits(col schema.Column) (schema.TraitSet, error) {
	tag, err := MapType(col.DataType, col.ColumnType)
	if err != nil {
		var ute *UnmappableTypeError
		if errors.As(err, &ute) {
			ute.Column = col.Name
		}
		return nil, err
	}

	traits := schema.TraitSet{{Kind: schema.TraitType, Tag: tag}}
	if col.IsNullable {
		traits = append(traits, schema.Trait{Kind: schema.TraitCanBeNull})
	}
	if strings.Contains(col.Extra, autoIncrementMarker) {
		traits = append(traits,
			schema.Trait{Kind: schema.TraitMustNotInsert},
			schema.Trait{Kind: schema.TraitMustNotUpdate},
		)
	}
	return traits, nil
}

// Describe maps every column of a table, keeping catalog order.
func Describe(name string, cols []schema.Column) (schema.Table, error) {
	if len(cols) == 0 {
		return schema.Table{}, fmt.Errorf("%s: %w", name, ErrNoColumns)
	}
	defs := make([]schema.ColumnDef, 0, len(cols))
	for _, c := range cols {
		traits, err := DeriveTraits(c)
		if err != nil {
			return schema.Table{}, fmt.Errorf("table %s: %w", name, err)
		}
		defs = append(defs, schema.ColumnDef{Column: c, Traits: traits})
	}
	return schema.Table{Name: name, Columns: defs}, nil
}
