package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"benritz/tosqlpp/internal/schema"
)

const defaultSchema = "public"

type Source struct {
	conn *pgx.Conn
}

func NewSource(ctx context.Context, url string) (*Source, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Source{conn: conn}, nil
}

func (s *Source) Close() error {
	return s.conn.Close(context.Background())
}

// toDataType maps a PostgreSQL type name onto the MySQL DATA_TYPE/COLUMN_TYPE
// pair the mapper understands. Unknown types pass through unchanged.
func toDataType(baseType string, maxLength, precision, scale int) (string, string) {
	raw := strings.ToLower(baseType)
	switch raw {
	case "bool", "boolean":
		return "tinyint", "tinyint(1)"
	case "smallint", "int2":
		return "smallint", "smallint"
	case "integer", "int", "int4":
		return "int", "int"
	case "bigint", "int8":
		return "bigint", "bigint"
	case "real", "float4":
		return "float", "float"
	case "double precision", "float8":
		return "double", "double"
	case "numeric", "decimal":
		if precision > 0 {
			return "decimal", fmt.Sprintf("decimal(%d,%d)", precision, scale)
		}
		return "decimal", "decimal"
	case "money":
		return "decimal", "decimal(19,4)"
	case "character varying", "varchar":
		if maxLength > 0 {
			return "varchar", fmt.Sprintf("varchar(%d)", maxLength)
		}
		return "text", "text"
	case "character", "char", "bpchar":
		if maxLength > 0 {
			return "char", fmt.Sprintf("char(%d)", maxLength)
		}
		return "char", "char"
	case "text", "citext", "uuid":
		return "text", "text"
	case "bytea":
		return "blob", "blob"
	case "date":
		return "date", "date"
	case "time", "time without time zone", "time with time zone", "timetz":
		return "time", "time"
	case "timestamp", "timestamp without time zone":
		return "datetime", "datetime"
	case "timestamptz", "timestamp with time zone":
		return "timestamp", "timestamp"
	}
	return raw, raw
}

func isAutoIncrement(isIdentity string, defaultValue *string) bool {
	if strings.EqualFold(isIdentity, "YES") {
		return true
	}
	return defaultValue != nil &&
		strings.HasPrefix(strings.ToLower(strings.TrimSpace(*defaultValue)), "nextval(")
}

// Columns reads information_schema.columns; an empty schemaName means public.
func (s *Source) Columns(ctx context.Context, schemaName, table string) ([]schema.Column, error) {
	if schemaName == "" {
		schemaName = defaultSchema
	}

	rows, err := s.conn.Query(ctx, `
SELECT
    column_name::text,
    ordinal_position::int,
    data_type::text,
    is_nullable::text,
    is_identity::text,
    character_maximum_length::int,
    numeric_precision::int,
    numeric_scale::int,
    column_default::text
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var (
			columnName, baseType, isNullable, isIdentity string
			columnID                                     int
			maxLength, precision, scale                  *int
			defaultValue                                 *string
		)

		if err := rows.Scan(
			&columnName,
			&columnID,
			&baseType,
			&isNullable,
			&isIdentity,
			&maxLength,
			&precision,
			&scale,
			&defaultValue,
		); err != nil {
			return nil, err
		}

		ml, prec, sc := deref(maxLength), deref(precision), deref(scale)
		dataType, columnType := toDataType(baseType, ml, prec, sc)

		col := schema.Column{
			ColumnID:   columnID,
			Name:       columnName,
			DataType:   dataType,
			ColumnType: columnType,
			IsNullable: strings.EqualFold(isNullable, "YES"),
			MaxLength:  ml,
			Precision:  prec,
		}
		if isAutoIncrement(isIdentity, defaultValue) {
			col.Extra = "auto_increment"
		} else if defaultValue != nil {
			col.Default = *defaultValue
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return columns, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
