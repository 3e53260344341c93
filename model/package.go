package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/reframe/model/value"
)

type (
	// Package is a transformation package descriptor
	Package struct {
		ID              string             `json:"id" yaml:"id"`
		Name            string             `json:"name,omitempty" yaml:"name,omitempty"`
		Version         string             `json:"version,omitempty" yaml:"version,omitempty"`
		EngineVersion   string             `json:"engine_version,omitempty" yaml:"engine_version,omitempty"`
		RequiredPlugins []string           `json:"required_plugins,omitempty" yaml:"required_plugins,omitempty"`
		Workflows       map[Kind]*Resource `json:"workflows,omitempty" yaml:"workflows,omitempty"`
		Scenarios       *Resource          `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
		Variants        *Resource          `json:"variants,omitempty" yaml:"variants,omitempty"`
		Ordering        *Resource          `json:"ordering,omitempty" yaml:"ordering,omitempty"`
		// Resources are reference tables read once per load and shared read-only by tasks
		Resources map[string]*Resource `json:"resources,omitempty" yaml:"resources,omitempty"`
		Source          *Source            `json:"source,omitempty" yaml:"source,omitempty"`
	}

	// Resource points to a package relative file
	Resource struct {
		Path string `json:"path" yaml:"path"`
		// Format is json, yaml, text, mt or mx; empty derives it from the path extension
		Format string `json:"format,omitempty" yaml:"format,omitempty"`
	}

	// IndexEntry is a single registry index line
	IndexEntry struct {
		Path        string    `json:"path" yaml:"path"`
		Direction   Direction `json:"direction" yaml:"direction"`
		MessageType string    `json:"message_type" yaml:"message_type"`
		Priority    int       `json:"priority,omitempty" yaml:"priority,omitempty"`
	}

	// VariantTable classifies one message family
	VariantTable struct {
		Direction   Direction      `json:"direction" yaml:"direction"`
		MessageType string         `json:"message_type" yaml:"message_type"`
		Rules       []*VariantRule `json:"rules" yaml:"rules"`
		Default     string         `json:"default,omitempty" yaml:"default,omitempty"`
	}

	// VariantRule assigns variant when condition holds
	VariantRule struct {
		Condition value.Value `json:"condition" yaml:"condition"`
		Variant   string      `json:"variant" yaml:"variant"`
	}

	// Scenario is a regression fixture
	Scenario struct {
		Name           string    `json:"name" yaml:"name"`
		Direction      Direction `json:"direction" yaml:"direction"`
		Input          string    `json:"input" yaml:"input"`
		ExpectedOutput string    `json:"expected_output" yaml:"expected_output"`
		Variant        string    `json:"variant,omitempty" yaml:"variant,omitempty"`
	}
)

// DecodePackage builds a descriptor from a decoded document
func DecodePackage(doc value.Value) (*Package, error) {
	if doc.Kind() != value.KindMapping {
		return nil, fmt.Errorf("invalid package descriptor: expected mapping, but had %v", doc.Kind())
	}
	ret := &Package{
		ID:            doc.Field("id").String(),
		Name:          doc.Field("name").String(),
		Version:       doc.Field("version").String(),
		EngineVersion: doc.Field("engine_version").String(),
		Workflows:     map[Kind]*Resource{},
		Scenarios:     resource(doc.Field("scenarios")),
		Variants:      resource(doc.Field("variants")),
		Ordering:      resource(doc.Field("ordering")),
	}
	for _, item := range doc.Field("required_plugins").Items() {
		ret.RequiredPlugins = append(ret.RequiredPlugins, item.String())
	}
	workflows := doc.Field("workflows")
	for _, kind := range Kinds {
		if res := resource(workflows.Field(string(kind))); res != nil {
			ret.Workflows[kind] = res
		}
	}
	if ret.ID == "" {
		return nil, fmt.Errorf("invalid package descriptor: id was empty")
	}
	if resources := doc.Field("resources"); !resources.IsNull() {
		if resources.Kind() != value.KindMapping {
			return nil, fmt.Errorf("invalid package descriptor: resources: expected mapping, but had %v", resources.Kind())
		}
		ret.Resources = map[string]*Resource{}
		var err error
		resources.Mapping().Range(func(name string, item value.Value) bool {
			res := resource(item)
			if res == nil {
				err = fmt.Errorf("invalid package descriptor: resource %v: path was empty", name)
				return false
			}
			ret.Resources[name] = res
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func resource(doc value.Value) *Resource {
	switch doc.Kind() {
	case value.KindString:
		return &Resource{Path: doc.Str()}
	case value.KindMapping:
		if p := doc.Field("path").String(); p != "" {
			return &Resource{Path: p, Format: doc.Field("format").String()}
		}
	}
	return nil
}

// CheckEngine verifies engine version major and required plugins
func (p *Package) CheckEngine(engineVersion string, plugins []string) error {
	if p.EngineVersion != "" {
		want, err := major(p.EngineVersion)
		if err != nil {
			return fmt.Errorf("package %v: invalid engine_version %q: %w", p.ID, p.EngineVersion, err)
		}
		have, err := major(engineVersion)
		if err != nil {
			return fmt.Errorf("invalid engine version %q: %w", engineVersion, err)
		}
		if want != have {
			return fmt.Errorf("package %v requires engine %v, but had %v", p.ID, p.EngineVersion, engineVersion)
		}
	}
	provided := map[string]bool{}
	for _, plugin := range plugins {
		provided[plugin] = true
	}
	for _, plugin := range p.RequiredPlugins {
		if !provided[plugin] {
			return fmt.Errorf("package %v requires unsupported plugin: %v", p.ID, plugin)
		}
	}
	return nil
}

func major(version string) (int, error) {
	version = strings.TrimSpace(version)
	for _, prefix := range []string{">=", "^", "~", "="} {
		version = strings.TrimPrefix(version, prefix)
	}
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if idx := strings.IndexByte(version, '.'); idx != -1 {
		version = version[:idx]
	}
	return strconv.Atoi(version)
}

// DecodeIndex decodes registry index entries
func DecodeIndex(doc value.Value) ([]*IndexEntry, error) {
	items := doc.Items()
	if doc.Kind() == value.KindMapping {
		items = doc.Field("workflows").Items()
	}
	var ret []*IndexEntry
	for i, item := range items {
		entry := &IndexEntry{
			Path:        item.Field("path").String(),
			Direction:   Direction(item.Field("direction").String()),
			MessageType: item.Field("message_type").String(),
		}
		if p := item.Field("priority"); !p.IsNull() {
			d, ok := value.AsNumber(p)
			if !ok {
				return nil, fmt.Errorf("index[%d]: invalid priority %v", i, p.String())
			}
			entry.Priority = int(d.IntPart())
		}
		if entry.Path == "" || entry.MessageType == "" {
			return nil, fmt.Errorf("index[%d]: path and message_type are required", i)
		}
		if _, err := ParseDirection(string(entry.Direction)); err != nil || entry.Direction == DirectionAuto {
			return nil, fmt.Errorf("index[%d]: invalid direction %q", i, entry.Direction)
		}
		ret = append(ret, entry)
	}
	return ret, nil
}

// DecodeVariantTables decodes variant tables
func DecodeVariantTables(doc value.Value) ([]*VariantTable, error) {
	var ret []*VariantTable
	for i, item := range doc.Items() {
		table := &VariantTable{
			Direction:   Direction(item.Field("direction").String()),
			MessageType: item.Field("message_type").String(),
			Default:     item.Field("default").String(),
		}
		if table.MessageType == "" {
			return nil, fmt.Errorf("variants[%d]: message_type was empty", i)
		}
		switch table.Direction {
		case "", DirectionMTToMX, DirectionMXToMT:
		default:
			return nil, fmt.Errorf("variants[%d]: invalid direction %q", i, table.Direction)
		}
		for _, rule := range item.Field("rules").Items() {
			table.Rules = append(table.Rules, &VariantRule{Condition: rule.Field("condition"), Variant: rule.Field("variant").String()})
		}
		ret = append(ret, table)
	}
	return ret, nil
}

// DecodeScenarios decodes scenario fixtures
func DecodeScenarios(doc value.Value) ([]*Scenario, error) {
	items := doc.Items()
	if doc.Kind() == value.KindMapping {
		items = doc.Field("scenarios").Items()
	}
	var ret []*Scenario
	for i, item := range items {
		scenario := &Scenario{
			Name:           item.Field("name").String(),
			Direction:      Direction(item.Field("direction").String()),
			Input:          item.Field("input").String(),
			ExpectedOutput: item.Field("expected_output").String(),
			Variant:        item.Field("variant").String(),
		}
		if scenario.Name == "" {
			return nil, fmt.Errorf("scenarios[%d]: name was empty", i)
		}
		ret = append(ret, scenario)
	}
	return ret, nil
}

// Key identifies a registry bucket
type Key struct {
	Kind      Kind
	Direction Direction
	Family    string
}

func (k Key) String() string {
	return string(k.Kind) + "/" + string(k.Direction) + "/" + k.Family
}
