package extension

import (
	"reflect"
	"strings"

	"github.com/viant/x"
)

// Types is a registry of function input types
type Types struct {
	x.Registry
	aliases map[string]string
}

// Register adds a data type to the registry, the type is also addressable by
// its short package qualified name (e.g. transform.MapInput)
func (t *Types) Register(dataType *x.Type) {
	if dataType == nil || dataType.Type == nil {
		return
	}
	rType := dataType.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	if pkgPath := rType.PkgPath(); pkgPath != "" {
		short := pkgPath
		if idx := strings.LastIndex(pkgPath, "/"); idx != -1 {
			short = pkgPath[idx+1:]
		}
		t.aliases[short+"."+rType.Name()] = pkgPath + "." + rType.Name()
	}
	t.Registry.Register(dataType)
}

// Lookup returns a data type by full or short name; `[]` prefix yields a slice type
func (t *Types) Lookup(dataType string) *x.Type {
	typeModifier := ""
	if idx := strings.LastIndex(dataType, "]"); idx != -1 {
		typeModifier = dataType[:idx+1]
		dataType = dataType[idx+1:]
	}
	if full, ok := t.aliases[dataType]; ok {
		dataType = full
	}
	ret := t.Registry.Lookup(dataType)
	if ret == nil {
		return nil
	}
	switch strings.TrimSpace(typeModifier) {
	case "[]":
		return x.NewType(reflect.SliceOf(ret.Type))
	case "map[string]":
		return x.NewType(reflect.MapOf(reflect.TypeOf(""), ret.Type))
	}
	return ret
}

// NameOf returns the short registry name of a type
func NameOf(rType reflect.Type) string {
	if rType == nil {
		return ""
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	pkgPath := rType.PkgPath()
	if idx := strings.LastIndex(pkgPath, "/"); idx != -1 {
		pkgPath = pkgPath[idx+1:]
	}
	if pkgPath == "" {
		return rType.Name()
	}
	return pkgPath + "." + rType.Name()
}

// NewTypes creates a new types registry
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{
		Registry: *x.NewRegistry(options...),
		aliases:  map[string]string{},
	}
}
