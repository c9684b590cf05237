package document

import (
	"reflect"
	"strings"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
)

type structDocument struct {
	v reflect.Value
}

// FromStruct adapts a struct (or pointer to struct) to Document. Fields are
// matched by json tag first, then by Go field name; unexported fields are
// never visible. A nil pointer field reads as nil.
func FromStruct(v any) Document {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		panic("document: FromStruct expects a struct, got " + rv.Kind().String())
	}
	return structDocument{v: rv}
}

func (d structDocument) Get(field string) option.Option[any] {
	t := d.v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag != "" {
			name, _, _ := strings.Cut(tag, ",")
			if name == field {
				return option.Some(fieldValue(d.v.Field(i)))
			}
		}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Name == field {
			return option.Some(fieldValue(d.v.Field(i)))
		}
	}
	return option.Nothing[any]()
}

func fieldValue(f reflect.Value) any {
	if f.Kind() == reflect.Ptr || f.Kind() == reflect.Interface {
		if f.IsNil() {
			return nil
		}
		if f.Kind() == reflect.Ptr {
			return f.Elem().Interface()
		}
	}
	return f.Interface()
}
