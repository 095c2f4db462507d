package util

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
)

type strToMap struct {
	normalized map[string]string
}

// StrToMap flattens a (pointer to a) struct into sorted [path, value] rows. Nested structs and
// string keyed maps are expanded with dotted paths.
func StrToMap(path string, v interface{}) [][]string {
	m := strToMap{normalized: make(map[string]string)}
	m.split(path, reflect.ValueOf(v))

	return m.sort()
}

func (n *strToMap) sort() [][]string {
	var keyVals [][]string
	keys := make([]string, 0, len(n.normalized))
	for k := range n.normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		keyVals = append(keyVals, []string{k, n.normalized[k]})
	}
	return keyVals
}

func (n *strToMap) split(parent string, v reflect.Value) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct || v.IsZero() {
		return
	}

	types := v.Type()

	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanInterface() {
			continue
		}

		path := types.Field(i).Name
		if parent != `` {
			path = parent + `.` + path
		}

		switch {
		case f.Kind() == reflect.Interface && f.IsNil():
			n.normalized[path] = `<nil>`
		case f.Kind() == reflect.Interface:
			n.normalized[path] = fmt.Sprintf(`%T`, f.Interface())
		case f.Kind() == reflect.Map && f.Type().Key().Kind() == reflect.String:
			iter := f.MapRange()
			for iter.Next() {
				n.normalized[path+`.`+iter.Key().String()] = n.toString(iter.Value())
			}
		case f.Kind() == reflect.Ptr || f.Kind() == reflect.Struct:
			n.split(path, f)
		default:
			n.normalized[path] = n.toString(f)
		}
	}
}

func (n *strToMap) toString(value reflect.Value) string {
	switch value.Kind() {
	case reflect.Map, reflect.Array, reflect.Slice:
		return fmt.Sprintf(`%+v`, value)
	case reflect.Int, reflect.Int32, reflect.Int16, reflect.Int64:
		return fmt.Sprintf(`%d`, value.Int())
	case reflect.Bool:
		return fmt.Sprint(value.Bool())
	case reflect.Float64, reflect.Float32:
		return fmt.Sprint(value.Float())
	case reflect.Func:
		return runtime.FuncForPC(value.Pointer()).Name()
	default:
		return fmt.Sprint(value.Interface())
	}
}
