package cmdutil

import (
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// StructToRow converts a struct into a datastore row keyed by its `db`
// struct tags. Fields without a tag, or tagged `db:"-"`, are left out, as
// are unexported fields. Embedded structs contribute their own tagged
// fields. A nil pointer yields an empty row.
func StructToRow(value any) map[string]any {
	row := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return row
		}
		v = v.Elem()
	}
	appendTaggedFields(v, row)
	return row
}

func appendTaggedFields(v reflect.Value, row map[string]any) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			appendTaggedFields(v.Field(i), row)
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name == "" || name == "-" {
			continue
		}
		row[name] = columnValue(v.Field(i))
	}
}

// columnValue converts a field into something database/sql can bind.
// Times become RFC3339 UTC text, string slices a comma-separated list.
func columnValue(value reflect.Value) any {
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch {
	case value.Type() == timeType:
		return value.Interface().(time.Time).UTC().Format(time.RFC3339)
	case value.Kind() == reflect.Slice && value.Type().Elem().Kind() == reflect.String:
		items := make([]string, value.Len())
		for i := range items {
			items[i] = value.Index(i).String()
		}
		return strings.Join(items, ", ")
	}
	return value.Interface()
}
