package encoding

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tryfix/errors"
)

// Registry resolves encoders by the type tag a value is written under. The tag travels with
// every blob so Decode can pick the matching encoder.
type Registry struct {
	mu       *sync.RWMutex
	encoders map[string]Builder
}

type envelope struct {
	Type    string `json:"type"`
	Payload []byte `json:"payload"`
}

func NewRegistry() *Registry {
	return &Registry{
		mu:       new(sync.RWMutex),
		encoders: make(map[string]Builder),
	}
}

func (r *Registry) Register(tag string, builder Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tag == `` {
		return errors.New(`encoder tag cannot be empty`)
	}

	if _, ok := r.encoders[tag]; ok {
		return errors.Errorf(`encoder [%s] already registered`, tag)
	}

	r.encoders[tag] = builder

	return nil
}

func (r *Registry) Encoder(tag string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.encoders[tag]
	if !ok {
		return nil, errors.Errorf(`unknown encoder [%s]`, tag)
	}

	return b(), nil
}

func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.encoders))
	for tag := range r.encoders {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// Encode writes v with the encoder registered under tag and wraps the result in a self
// describing envelope.
func (r *Registry) Encode(tag string, v interface{}) ([]byte, error) {
	enc, err := r.Encoder(tag)
	if err != nil {
		return nil, err
	}

	payload, err := enc.Encode(v)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot encode [%s]`, tag))
	}

	byt, err := json.Marshal(envelope{Type: tag, Payload: payload})
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot encode envelope`)
	}

	return byt, nil
}

// Decode is the inverse of Encode. It returns the tag found in the envelope with the decoded value.
func (r *Registry) Decode(data []byte) (string, interface{}, error) {
	env := envelope{}
	if err := json.Unmarshal(data, &env); err != nil {
		return ``, nil, errors.WithPrevious(err, `malformed envelope`)
	}

	if env.Type == `` {
		return ``, nil, errors.New(`envelope type missing`)
	}

	enc, err := r.Encoder(env.Type)
	if err != nil {
		return env.Type, nil, err
	}

	v, err := enc.Decode(env.Payload)
	if err != nil {
		return env.Type, nil, errors.WithPrevious(err, fmt.Sprintf(`cannot decode [%s]`, env.Type))
	}

	return env.Type, v, nil
}
