package api

import (
	"github.com/tryfix/sourceformat/cloud"
)

type Source struct {
	Spec                 cloud.Object    `json:"spec"`
	Metadata             *SourceMetadata `json:"metadata,omitempty"`
	DoesNotNeedSplitting bool            `json:"doesNotNeedSplitting,omitempty"`
}

type SourceMetadata struct {
	ProducesSortedKeys bool   `json:"producesSortedKeys"`
	EstimatedSizeBytes *int64 `json:"estimatedSizeBytes,omitempty"`
}

// ToObject returns the property bag form used when a source is embedded as a step input.
func (s *Source) ToObject() cloud.Object {
	obj := cloud.Object{}
	cloud.AddObject(obj, `spec`, s.Spec)
	if s.Metadata != nil {
		meta := cloud.Object{}
		cloud.AddBool(meta, `produces_sorted_keys`, s.Metadata.ProducesSortedKeys)
		if s.Metadata.EstimatedSizeBytes != nil {
			cloud.AddLong(meta, `estimated_size_bytes`, *s.Metadata.EstimatedSizeBytes)
		}
		cloud.AddObject(obj, `metadata`, meta)
	}

	if s.DoesNotNeedSplitting {
		cloud.AddBool(obj, `does_not_need_splitting`, true)
	}

	return obj
}
