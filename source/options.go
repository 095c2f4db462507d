package source

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/sourceformat/util"
)

// Options are the pipeline options handed to every Source call.
type Options struct {
	JobName         string
	Logger          log.Logger
	MetricsReporter metrics.Reporter
	// Values carries source specific settings keyed by name.
	Values map[string]string
}

func NewOptions() *Options {
	opts := new(Options)
	opts.parse()

	return opts
}

func (o *Options) parse() {
	if o.Logger == nil {
		o.Logger = log.NewNoopLogger()
	}

	if o.MetricsReporter == nil {
		o.MetricsReporter = metrics.NoopReporter()
	}

	if o.Values == nil {
		o.Values = make(map[string]string)
	}
}

// Normalize fills unset fields with defaults and returns the receiver. A nil receiver yields
// fresh default options.
func (o *Options) Normalize() *Options {
	if o == nil {
		return NewOptions()
	}
	o.parse()

	return o
}

func (o *Options) Value(key string) (string, bool) {
	v, ok := o.Values[key]
	return v, ok
}

func (o *Options) String() string {
	data := util.StrToMap(`options`, o)

	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Option", "Value"})

	for _, v := range data {
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})
		table.Append(v)
	}
	table.Render()

	return out.String()
}
