package format

import (
	"encoding/base64"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/sourceformat/api"
	"github.com/tryfix/sourceformat/cloud"
	"github.com/tryfix/sourceformat/encoding"
	"github.com/tryfix/sourceformat/source"
)

const (
	// ClassName is written under cloud.KeyType of every spec this format produces.
	ClassName = `BasicSerializableSourceFormat`

	SerializedSourceKey = `serialized_source`
)

// Codec moves sources in and out of the opaque property bag.
type Codec struct {
	registry *encoding.Registry
	logger   log.Logger
}

func NewCodec(registry *encoding.Registry, logger log.Logger) *Codec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Codec{
		registry: registry,
		logger:   logger.NewLog(log.Prefixed(`source-codec`)),
	}
}

func (c *Codec) Registry() *encoding.Registry {
	return c.registry
}

// Serialize encodes src and attaches its metadata. Size estimation is best effort: a failing
// estimator leaves EstimatedSizeBytes unset.
func (c *Codec) Serialize(src source.Source, options *source.Options) (*api.Source, error) {
	options = options.Normalize()

	blob, err := c.registry.Encode(src.SourceType(), src)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot serialize source %s`, src))
	}

	spec := cloud.ForClass(ClassName)
	cloud.AddString(spec, SerializedSourceKey, base64.StdEncoding.EncodeToString(blob))

	sorted, err := src.ProducesSortedKeys(options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot determine key order of source %s`, src))
	}

	meta := &api.SourceMetadata{ProducesSortedKeys: sorted}

	size, err := src.EstimatedSizeBytes(options)
	if err != nil {
		c.logger.Warn(fmt.Sprintf(`Size estimation of the source %s failed due to %s`, src, err))
	} else {
		meta.EstimatedSizeBytes = &size
	}

	return &api.Source{
		Spec:     spec,
		Metadata: meta,
	}, nil
}

// Deserialize decodes the source under SerializedSourceKey and validates it.
func (c *Codec) Deserialize(spec cloud.Object) (source.Source, error) {
	encoded, err := cloud.GetString(spec, SerializedSourceKey)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot read serialized source`)
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.WithPrevious(err, `serialized source is not valid base64`)
	}

	tag, v, err := c.registry.Decode(blob)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot deserialize source`)
	}

	src, ok := v.(source.Source)
	if !ok {
		return nil, errors.Errorf(`decoded value of type [%s] is not a source, got [%T]`, tag, v)
	}

	if err := src.Validate(); err != nil {
		c.logger.Error(fmt.Sprintf(`Invalid source: %s due to %s`, src, err))
		return nil, err
	}

	return src, nil
}
