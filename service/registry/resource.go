package registry

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

// Resource formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
	FormatMT   = "mt"
	FormatMX   = "mx"
)

// FormatOf guesses a resource format from its extension
func FormatOf(URL string) string {
	switch strings.ToLower(path.Ext(URL)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".fin", ".mt":
		return FormatMT
	case ".xml":
		return FormatMX
	default:
		return FormatText
	}
}

// loadResources reads every reference table declared by the package; tasks only
// ever see the decoded values held by the snapshot
func (l *Loader) loadResources(ctx context.Context, snapshot *Snapshot, packageURL string) error {
	names := make([]string, 0, len(snapshot.Package.Resources))
	for name := range snapshot.Package.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	tables := value.NewMap()
	for _, name := range names {
		res := snapshot.Package.Resources[name]
		URL := l.meta.Resolve(packageURL, res.Path)
		table, err := l.loadResource(ctx, URL, res.Format)
		if err != nil {
			return configError(err, "resource %v %v", name, URL)
		}
		tables.Put(name, table)
	}
	snapshot.Resources = tables
	return nil
}

func (l *Loader) loadResource(ctx context.Context, URL, format string) (value.Value, error) {
	if format == "" {
		format = FormatOf(URL)
	}
	switch format {
	case FormatJSON, FormatYAML:
		return l.meta.Load(ctx, URL)
	case FormatText, FormatMT, FormatMX:
	default:
		return value.Null(), types.NewError(types.KindConfig, "unsupported format %v", format)
	}
	data, err := l.meta.Download(ctx, URL)
	if err != nil {
		return value.Null(), err
	}
	if format == FormatText {
		return value.String(string(data)), nil
	}
	parser, err := l.codecs.Lookup(model.Format(format))
	if err != nil {
		return value.Null(), err
	}
	doc, err := parser.Parse(data)
	if err != nil {
		return value.Null(), types.WrapError(types.KindConfig, err, "%v resource", format)
	}
	return doc.Root, nil
}
