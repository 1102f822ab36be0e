package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"benritz/tosqlpp/internal/schema"
)

const defaultSchema = "dbo"

type Source struct {
	db *sql.DB
}

func NewSource(ctx context.Context, url string) (*Source, error) {
	db, err := sql.Open("sqlserver", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Source{db: db}, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

// toDataType maps a SQL Server type onto the MySQL DATA_TYPE/COLUMN_TYPE pair.
// nvarchar lengths are reported in characters by INFORMATION_SCHEMA, so no
// halving is needed.
func toDataType(colType string, maxLength, precision, scale int) (string, string) {
	raw := strings.ToLower(colType)
	switch raw {
	case "bit":
		return "tinyint", "tinyint(1)"
	case "tinyint":
		return "tinyint", "tinyint unsigned"
	case "smallint", "int", "bigint", "real", "date", "time":
		return raw, raw
	case "float":
		return "double", "double"
	case "decimal", "numeric":
		return raw, fmt.Sprintf("%s(%d,%d)", raw, precision, scale)
	case "money", "smallmoney":
		return "decimal", "decimal(19,4)"
	case "char", "nchar":
		return "char", fmt.Sprintf("char(%d)", maxLength)
	case "varchar", "nvarchar":
		if maxLength == -1 {
			return "longtext", "longtext"
		}
		return "varchar", fmt.Sprintf("varchar(%d)", maxLength)
	case "text", "ntext", "xml", "uniqueidentifier":
		return "text", "text"
	case "datetime", "datetime2", "smalldatetime":
		return "datetime", "datetime"
	case "datetimeoffset":
		return "timestamp", "timestamp"
	case "binary":
		return "binary", fmt.Sprintf("binary(%d)", maxLength)
	case "varbinary":
		if maxLength == -1 {
			return "longblob", "longblob"
		}
		return "varbinary", fmt.Sprintf("varbinary(%d)", maxLength)
	case "image", "rowversion", "timestamp":
		return "blob", "blob"
	}
	return raw, raw
}

// Columns reads INFORMATION_SCHEMA.COLUMNS; an empty schemaName means dbo.
func (s *Source) Columns(ctx context.Context, schemaName, table string) ([]schema.Column, error) {
	if schemaName == "" {
		schemaName = defaultSchema
	}

	rows, err := s.db.QueryContext(ctx, `select
c.COLUMN_NAME,
c.ORDINAL_POSITION,
c.DATA_TYPE,
c.IS_NULLABLE,
isnull(columnproperty(object_id(quotename(c.TABLE_SCHEMA) + '.' + quotename(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity'), 0),
c.CHARACTER_MAXIMUM_LENGTH,
c.NUMERIC_PRECISION,
c.NUMERIC_SCALE,
c.COLUMN_DEFAULT
from INFORMATION_SCHEMA.COLUMNS c
where c.TABLE_SCHEMA = @p1 and c.TABLE_NAME = @p2
order by c.ORDINAL_POSITION asc`,
		schemaName, table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var columnName, colType, isNullable string
		var columnID, isIdentity int
		var maxLength, precision, scale sql.NullInt64
		var defaultValueOrNull sql.NullString

		if err := rows.Scan(
			&columnName,
			&columnID,
			&colType,
			&isNullable,
			&isIdentity,
			&maxLength,
			&precision,
			&scale,
			&defaultValueOrNull,
		); err != nil {
			return nil, err
		}

		ml, prec := int(maxLength.Int64), int(precision.Int64)
		dataType, columnType := toDataType(colType, ml, prec, int(scale.Int64))

		col := schema.Column{
			ColumnID:   columnID,
			Name:       columnName,
			DataType:   dataType,
			ColumnType: columnType,
			IsNullable: strings.EqualFold(isNullable, "YES"),
			MaxLength:  ml,
			Precision:  prec,
			Default:    defaultValueOrNull.String,
		}
		if isIdentity == 1 || isSequenceDefault(col.Default) {
			col.Extra = "auto_increment"
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return columns, nil
}

func isSequenceDefault(def string) bool {
	d := strings.ToLower(strings.Trim(strings.TrimSpace(def), "()"))
	return strings.HasPrefix(d, "next value for ")
}
