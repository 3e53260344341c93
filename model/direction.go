package model

import "fmt"

// Direction names a conversion direction
type Direction string

const (
	DirectionMTToMX Direction = "mt-to-mx"
	DirectionMXToMT Direction = "mx-to-mt"
	DirectionAuto   Direction = "auto"
)

// Format identifies a wire format
type Format string

const (
	FormatMT Format = "mt"
	FormatMX Format = "mx"
)

// Kind is a workflow registry kind
type Kind string

const (
	KindTransform Kind = "transform"
	KindGenerate  Kind = "generate"
	KindValidate  Kind = "validate"
)

// Kinds lists registry kinds in load order
var Kinds = []Kind{KindTransform, KindGenerate, KindValidate}

// ParseDirection parses a direction name, empty means auto
func ParseDirection(text string) (Direction, error) {
	switch d := Direction(text); d {
	case DirectionMTToMX, DirectionMXToMT, DirectionAuto:
		return d, nil
	case "":
		return DirectionAuto, nil
	}
	return "", fmt.Errorf("unsupported direction: %v", text)
}

// Source returns source format
func (d Direction) Source() Format {
	switch d {
	case DirectionMTToMX:
		return FormatMT
	case DirectionMXToMT:
		return FormatMX
	}
	return ""
}

// Target returns target format
func (d Direction) Target() Format {
	switch d {
	case DirectionMTToMX:
		return FormatMX
	case DirectionMXToMT:
		return FormatMT
	}
	return ""
}

// From returns the direction converting from the supplied format
func From(format Format) Direction {
	switch format {
	case FormatMT:
		return DirectionMTToMX
	case FormatMX:
		return DirectionMXToMT
	}
	return DirectionAuto
}

// DetectFormat guesses the input format from its first significant character
func DetectFormat(data []byte) (Format, bool) {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			continue
		case '{':
			return FormatMT, true
		case '<':
			return FormatMX, true
		}
		return "", false
	}
	return "", false
}
