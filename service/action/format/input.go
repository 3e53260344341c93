package format

import (
	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/runtime/execution"
)

// ParseInput configures parse functions
type ParseInput struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	binding
}

// Init applies defaults and binds codecs
func (i *ParseInput) Init(env *extension.Environment) error {
	if i.Source == "" {
		i.Source = execution.NamespacePayload
	}
	if i.Target == "" {
		i.Target = execution.NamespaceDocument
	}
	return i.bind(env, i.Target)
}

// SerializeInput configures serialize functions
type SerializeInput struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Format string `json:"format,omitempty"`
	Strict bool   `json:"strict,omitempty"`
	binding
}

// Init applies defaults and binds codecs with the package ordering table
func (i *SerializeInput) Init(env *extension.Environment) error {
	if i.Source == "" {
		i.Source = execution.NamespaceDocument
	}
	if i.Target == "" {
		i.Target = execution.OutputPath
	}
	switch model.Format(i.Format) {
	case "", model.FormatMT, model.FormatMX:
	default:
		return types.NewError(types.KindConfig, "unsupported format: %v", i.Format)
	}
	return i.bind(env, i.Target)
}
