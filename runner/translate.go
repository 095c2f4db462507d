package runner

import (
	"github.com/tryfix/sourceformat/cloud"
	"github.com/tryfix/sourceformat/format"
	"github.com/tryfix/sourceformat/source"
)

const (
	StepKindParallelRead = `ParallelRead`

	PropertyUserName        = `user_name`
	PropertyFormat          = `format`
	PropertySourceStepInput = `source_step_input`
	PropertyOutputInfo      = `output_info`

	CustomSourceFormat = `custom_source`
)

type Step struct {
	Kind       string
	Name       string
	Properties cloud.Object
}

// TranslateRead turns a read of src into a ParallelRead step carrying the encoded source.
func TranslateRead(stepName string, src source.Source, options *source.Options, codec *format.Codec) (*Step, error) {
	encoded, err := codec.Serialize(src, options)
	if err != nil {
		return nil, err
	}

	props := cloud.Object{}
	cloud.AddString(props, PropertyUserName, stepName)
	cloud.AddString(props, PropertyFormat, CustomSourceFormat)
	cloud.AddObject(props, PropertySourceStepInput, encoded.ToObject())

	output := cloud.Object{}
	cloud.AddString(output, PropertyUserName, stepName+`.out`)
	cloud.AddList(props, PropertyOutputInfo, []cloud.Object{output})

	return &Step{
		Kind:       StepKindParallelRead,
		Name:       stepName,
		Properties: props,
	}, nil
}
