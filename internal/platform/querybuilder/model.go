package querybuilder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
)

// mapper resolves columns the same way sqlx scans rows back into models.
var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// InsertModel inserts every db-tagged top-level field of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	fields := mapper.TypeMap(value.Type())
	cols := make([]string, 0, len(fields.Index))
	vals := make([]any, 0, len(fields.Index))
	for _, fi := range fields.Index {
		if len(fi.Index) != 1 || fi.Name == "" || fi.Name == "-" {
			continue
		}
		if strings.TrimSpace(fi.Field.Tag.Get("db")) == "" {
			continue
		}
		cols = append(cols, fi.Name)
		vals = append(vals, value.Field(fi.Index[0]).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", value.Type())
	}
	return cols, vals, nil
}
