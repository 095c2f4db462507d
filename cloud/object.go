/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package cloud

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tryfix/errors"
)

// KeyType holds the class name an Object was created for.
const KeyType = `@type`

// Object is the generic property bag exchanged with the service. Values are strings, numbers,
// booleans, byte blobs, nested Objects or lists of those.
type Object map[string]interface{}

func ForClass(class string) Object {
	return Object{KeyType: class}
}

func (o Object) ClassName() string {
	c, _ := o[KeyType].(string)
	return c
}

func AddString(o Object, key, val string) {
	o[key] = val
}

func AddBool(o Object, key string, val bool) {
	o[key] = val
}

func AddLong(o Object, key string, val int64) {
	o[key] = val
}

func AddObject(o Object, key string, val Object) {
	o[key] = val
}

func AddList(o Object, key string, val []Object) {
	o[key] = val
}

func GetString(o Object, key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return ``, errors.Errorf(`missing required key [%s]`, key)
	}

	str, ok := v.(string)
	if !ok {
		return ``, errors.Errorf(`expected string under [%s], got [%T]`, key, v)
	}

	return str, nil
}

// GetBool returns false, false when the key is absent.
func GetBool(o Object, key string) (val bool, ok bool, err error) {
	v, ok := o[key]
	if !ok {
		return false, false, nil
	}

	switch b := v.(type) {
	case bool:
		return b, true, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, true, errors.WithPrevious(err, fmt.Sprintf(`invalid bool under [%s]`, key))
		}
		return parsed, true, nil
	}

	return false, true, errors.Errorf(`expected bool under [%s], got [%T]`, key, v)
}

// GetLong accepts every numeric shape a decoded bag can carry, including longs encoded as strings.
func GetLong(o Object, key string) (val int64, ok bool, err error) {
	v, ok := o[key]
	if !ok {
		return 0, false, nil
	}

	switch n := v.(type) {
	case int64:
		return n, true, nil
	case int:
		return int64(n), true, nil
	case int32:
		return int64(n), true, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, true, errors.Errorf(`non integral value [%v] under [%s]`, n, key)
		}
		return int64(n), true, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, true, errors.WithPrevious(err, fmt.Sprintf(`invalid long under [%s]`, key))
		}
		return i, true, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, true, errors.WithPrevious(err, fmt.Sprintf(`invalid long under [%s]`, key))
		}
		return i, true, nil
	}

	return 0, true, errors.Errorf(`expected long under [%s], got [%T]`, key, v)
}

func GetObject(o Object, key string) (Object, bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false, nil
	}

	switch obj := v.(type) {
	case Object:
		return obj, true, nil
	case map[string]interface{}:
		return obj, true, nil
	}

	return nil, true, errors.Errorf(`expected object under [%s], got [%T]`, key, v)
}
