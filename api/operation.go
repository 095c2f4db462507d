package api

import (
	"encoding/json"
)

type OperationKind int

const (
	OperationUnknown OperationKind = iota
	OperationGetMetadata
	OperationSplit
)

func (k OperationKind) String() string {
	switch k {
	case OperationGetMetadata:
		return `get_metadata`
	case OperationSplit:
		return `split`
	}

	return `unknown`
}

type SplitOutcome string

const SplitOutcomeSplittingHappened SplitOutcome = `SOURCE_SPLIT_OUTCOME_SPLITTING_HAPPENED`

type DerivationMode string

const DerivationModeIndependent DerivationMode = `SOURCE_DERIVATION_MODE_INDEPENDENT`

type GetMetadataRequest struct {
	Source *Source `json:"source"`
}

type GetMetadataResponse struct {
	Metadata *SourceMetadata `json:"metadata"`
}

type SplitOptions struct {
	DesiredShardSizeBytes *int64 `json:"desiredShardSizeBytes,omitempty"`
}

type SplitRequest struct {
	Source  *Source       `json:"source"`
	Options *SplitOptions `json:"options,omitempty"`
}

type SplitShard struct {
	DerivationMode DerivationMode `json:"derivationMode"`
	Source         *Source        `json:"source"`
}

type SplitResponse struct {
	Outcome SplitOutcome  `json:"outcome"`
	Shards  []*SplitShard `json:"shards"`
}

// OperationRequest carries exactly one operation. Kind decides which payload is read.
type OperationRequest struct {
	Kind        OperationKind
	GetMetadata *GetMetadataRequest
	Split       *SplitRequest
}

func NewGetMetadataRequest(src *Source) *OperationRequest {
	return &OperationRequest{
		Kind:        OperationGetMetadata,
		GetMetadata: &GetMetadataRequest{Source: src},
	}
}

func NewSplitRequest(src *Source, desiredShardSizeBytes *int64) *OperationRequest {
	req := &SplitRequest{Source: src}
	if desiredShardSizeBytes != nil {
		req.Options = &SplitOptions{DesiredShardSizeBytes: desiredShardSizeBytes}
	}

	return &OperationRequest{
		Kind:  OperationSplit,
		Split: req,
	}
}

type wireRequest struct {
	GetMetadata *GetMetadataRequest `json:"getMetadata,omitempty"`
	Split       *SplitRequest       `json:"split,omitempty"`
}

func (r *OperationRequest) MarshalJSON() ([]byte, error) {
	w := wireRequest{}
	switch r.Kind {
	case OperationGetMetadata:
		w.GetMetadata = r.GetMetadata
	case OperationSplit:
		w.Split = r.Split
	}

	return json.Marshal(w)
}

// UnmarshalJSON derives Kind from the populated field. A request with both or neither
// field set is left as OperationUnknown.
func (r *OperationRequest) UnmarshalJSON(data []byte) error {
	w := wireRequest{}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	r.GetMetadata = w.GetMetadata
	r.Split = w.Split
	r.Kind = OperationUnknown

	switch {
	case w.GetMetadata != nil && w.Split == nil:
		r.Kind = OperationGetMetadata
	case w.Split != nil && w.GetMetadata == nil:
		r.Kind = OperationSplit
	}

	return nil
}

type OperationResponse struct {
	Kind        OperationKind        `json:"-"`
	GetMetadata *GetMetadataResponse `json:"getMetadata,omitempty"`
	Split       *SplitResponse       `json:"split,omitempty"`
}
