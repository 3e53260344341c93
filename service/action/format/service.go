package format

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/runtime/execution"
)

// Name of the function group as used by workflows.
const Name = "format"

// Service implements wire format parse and serialize functions
type Service struct{}

// New creates a format function group
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	parseInput := reflect.TypeOf(&ParseInput{})
	serializeInput := reflect.TypeOf(&SerializeInput{})
	output := reflect.TypeOf(&execution.Context{})
	return []types.Signature{
		{Name: "parse-source", Description: "Parses text with the codec of the request source format.", Input: parseInput, Output: output},
		{Name: "parse-target", Description: "Parses text with the codec of the request target format.", Input: parseInput, Output: output},
		{Name: "parse-mt", Description: "Parses MT text.", Input: parseInput, Output: output},
		{Name: "parse-mx", Description: "Parses MX markup.", Input: parseInput, Output: output},
		{Name: "serialize", Description: "Renders a structured document in the request target format.", Input: serializeInput, Output: output},
		{Name: "serialize-mt", Description: "Renders a structured document as MT text.", Input: serializeInput, Output: output},
		{Name: "serialize-mx", Description: "Renders a structured document as MX markup.", Input: serializeInput, Output: output},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "parse-source":
		return s.parse(func(d model.Direction) model.Format { return d.Source() }), nil
	case "parse-target":
		return s.parse(func(d model.Direction) model.Format { return d.Target() }), nil
	case "parse-mt":
		return s.parse(fixed(model.FormatMT)), nil
	case "parse-mx":
		return s.parse(fixed(model.FormatMX)), nil
	case "serialize":
		return s.serialize(func(d model.Direction) model.Format { return d.Target() }), nil
	case "serialize-mt":
		return s.serialize(fixed(model.FormatMT)), nil
	case "serialize-mx":
		return s.serialize(fixed(model.FormatMX)), nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

type formatFn func(direction model.Direction) model.Format

func fixed(format model.Format) formatFn {
	return func(model.Direction) model.Format { return format }
}

func (s *Service) parse(formatOf formatFn) types.Executable {
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*ParseInput)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		ec, ok := out.(*execution.Context)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		aCodec, err := input.codec(formatOf(ec.Direction))
		if err != nil {
			return err
		}
		text := ec.Get(input.Source)
		if text.Kind() != value.KindString {
			return types.NewError(types.KindParse, "%v: expected text, but had %v", input.Source, text.Kind())
		}
		doc, err := aCodec.Parse([]byte(text.Str()))
		if err != nil {
			return err
		}
		ec.SetPath(input.target, doc.Root)
		if doc.Namespaces.Len() > 0 {
			ec.SetPath(namespacesPath, doc.Namespaces)
		}
		return nil
	}
}

func (s *Service) serialize(formatOf formatFn) types.Executable {
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*SerializeInput)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		ec, ok := out.(*execution.Context)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		format := model.Format(input.Format)
		if format == "" {
			format = formatOf(ec.Direction)
		}
		aCodec, err := input.codec(format)
		if err != nil {
			return err
		}
		data, err := aCodec.Serialize(ec.Get(input.Source),
			codec.WithStrict(input.Strict),
			codec.WithOrdering(input.ordering),
			codec.WithNamespaces(namespacesPath.Get(ec.Scope())))
		if err != nil {
			return err
		}
		ec.SetPath(input.target, value.String(string(data)))
		return nil
	}
}

var namespacesPath = value.MustPath("metadata.namespaces")

// binding holds load-time resolved resources
type binding struct {
	codecs   codec.Set
	ordering codec.Ordering
	target   value.Path
}

func (b *binding) bind(env *extension.Environment, target string) error {
	if env != nil {
		b.codecs = env.Codecs
		b.ordering = env.Ordering
	}
	var err error
	b.target, err = execution.ParseTarget(target)
	return err
}

func (b *binding) codec(format model.Format) (codec.Codec, error) {
	if format == "" {
		return nil, types.NewError(types.KindConfig, "format was not resolved, direction unknown")
	}
	ret, err := b.codecs.Lookup(format)
	if err != nil {
		return nil, types.WrapError(types.KindConfig, err, "codec lookup")
	}
	return ret, nil
}
