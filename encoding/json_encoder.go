package encoding

import (
	"encoding/json"
	"reflect"

	"github.com/tryfix/errors"
)

// JsonEncoder encodes values of a single struct type. New must return a pointer to a fresh value
// of that type, Decode fills it.
type JsonEncoder struct {
	New func() interface{}
}

func NewJsonEncoder(newFunc func() interface{}) Builder {
	return func() Encoder {
		return &JsonEncoder{New: newFunc}
	}
}

func (e *JsonEncoder) Encode(data interface{}) ([]byte, error) {
	want := reflect.TypeOf(e.New())
	if reflect.TypeOf(data) != want {
		return nil, errors.Errorf(`invalid type [%v] expected [%v]`, reflect.TypeOf(data), want)
	}

	byt, err := json.Marshal(data)
	if err != nil {
		return nil, errors.WithPrevious(err, `json encode failed`)
	}

	return byt, nil
}

func (e *JsonEncoder) Decode(data []byte) (interface{}, error) {
	v := e.New()
	if err := json.Unmarshal(data, v); err != nil {
		return nil, errors.WithPrevious(err, `json decode failed`)
	}

	return v, nil
}
