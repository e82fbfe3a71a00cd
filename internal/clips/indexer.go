package clips

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

// Index is a parsed clip index expression: one of Instant, Range, Strided or
// Multi.
type Index interface {
	fmt.Stringer
	isIndex()
}

// Instant selects the single frame at T.
type Instant struct {
	T float64
}

// Range selects the subclip [Lo, Hi).
type Range struct {
	Lo, Hi Bound
}

// Strided selects [Lo, Hi) played at |Step| times normal speed, backwards
// from Hi when Step is negative.
type Strided struct {
	Lo, Hi Bound
	Step   float64
}

// Multi concatenates independently resolved parts in order.
type Multi struct {
	Parts []Index
}

func (Instant) isIndex() {}
func (Range) isIndex()   {}
func (Strided) isIndex() {}
func (Multi) isIndex()   {}

func (i Instant) String() string { return strconv.FormatFloat(i.T, 'g', -1, 64) }
func (r Range) String() string   { return r.Lo.String() + ":" + r.Hi.String() }
func (s Strided) String() string {
	return s.Lo.String() + ":" + s.Hi.String() + ":" + strconv.FormatFloat(s.Step, 'g', -1, 64)
}

func (m Multi) String() string {
	parts := make([]string, len(m.Parts))
	for i, p := range m.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Selection is the result of indexing a clip: a frame for an Instant, a clip
// for everything else.
type Selection struct {
	Frame frame.Frame
	Clip  *Clip
}

// IsFrame reports whether the selection holds a single frame.
func (s Selection) IsFrame() bool { return s.Clip == nil }

// Select resolves idx against c.
func Select(c *Clip, idx Index) (Selection, error) {
	if in, ok := idx.(Instant); ok {
		f, err := c.GetFrame(in.T)
		if err != nil {
			return Selection{}, err
		}
		return Selection{Frame: f}, nil
	}

	out, err := resolveClip(c, idx)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Clip: out}, nil
}

func resolveClip(c *Clip, idx Index) (*Clip, error) {
	switch v := idx.(type) {
	case Range:
		return Apply(c, Window(v.Lo, v.Hi))
	case Strided:
		if v.Step == 0 || math.IsNaN(v.Step) {
			return nil, &ParameterError{Op: "index", Name: "step", Value: v.Step, Reason: "must be non-zero"}
		}
		dir := Forward
		if v.Step < 0 {
			dir = Reverse
		}
		return Apply(c, Transform{Start: v.Lo, End: v.Hi, Rate: math.Abs(v.Step), Direction: dir})
	case Multi:
		if len(v.Parts) == 0 {
			return nil, &ParameterError{Op: "index", Name: "ranges", Value: 0, Reason: "need at least one range"}
		}
		parts := make([]*Clip, len(v.Parts))
		for i, p := range v.Parts {
			part, err := resolveClip(c, p)
			if err != nil {
				return nil, fmt.Errorf("range %d (%s): %w", i, p, err)
			}
			parts[i] = part
		}
		return Concat(parts...)
	default:
		return nil, &TypeError{Value: idx}
	}
}

// Index resolves a Go value used as an index: a number or numeric string is a
// time lookup, a slice expression string or an Index value is resolved as is.
func (c *Clip) Index(v any) (Selection, error) {
	idx, err := ToIndex(v)
	if err != nil {
		return Selection{}, err
	}
	return Select(c, idx)
}

// Slice resolves a slice expression such as "0:1", "::-2" or "0:1, 2:3.2".
func (c *Clip) Slice(expr string) (*Clip, error) {
	idx, err := ParseIndex(expr)
	if err != nil {
		return nil, err
	}
	return resolveClip(c, idx)
}

// ToIndex converts numbers, strings and Index values to an Index. Named types
// with a numeric or string underlying type are accepted too.
func ToIndex(v any) (Index, error) {
	switch x := v.(type) {
	case Index:
		return x, nil
	case string:
		return ParseIndex(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Instant{T: float64(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Instant{T: float64(rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return Instant{T: rv.Float()}, nil
	case reflect.String:
		return ParseIndex(rv.String())
	default:
		return nil, &TypeError{Value: v}
	}
}

// ParseIndex parses the index syntax:
//
//	0.2            a time
//	[a:b]          a subclip, either bound may be omitted
//	[a:b:s]        a subclip played at speed s, backwards if s < 0
//	[a:b, c:d]     a concatenation of ranges
//
// Brackets are optional.
func ParseIndex(expr string) (Index, error) {
	s := strings.TrimSpace(expr)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, &TypeError{Value: expr}
	}

	fields := strings.Split(s, ",")
	if len(fields) == 1 {
		return parseTerm(s, expr)
	}

	m := Multi{Parts: make([]Index, 0, len(fields))}
	for _, f := range fields {
		part, err := parseTerm(strings.TrimSpace(f), expr)
		if err != nil {
			return nil, err
		}
		if _, ok := part.(Instant); ok {
			return nil, &TypeError{Value: expr}
		}
		m.Parts = append(m.Parts, part)
	}
	return m, nil
}

func parseTerm(s, expr string) (Index, error) {
	if !strings.Contains(s, ":") {
		t, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &TypeError{Value: expr}
		}
		return Instant{T: t}, nil
	}

	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return nil, &ParameterError{Op: "parse index", Name: "slice", Value: s, Reason: "too many fields"}
	}

	lo, err := parseBound(fields[0], s)
	if err != nil {
		return nil, err
	}
	hi, err := parseBound(fields[1], s)
	if err != nil {
		return nil, err
	}
	if len(fields) == 2 {
		return Range{Lo: lo, Hi: hi}, nil
	}

	step, err := parseBound(fields[2], s)
	if err != nil {
		return nil, err
	}
	stepValue, ok := step.Value()
	if !ok || stepValue == 1 {
		return Range{Lo: lo, Hi: hi}, nil
	}
	return Strided{Lo: lo, Hi: hi, Step: stepValue}, nil
}

func parseBound(field, slice string) (Bound, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Open, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return Open, &ParameterError{Op: "parse index", Name: "bound", Value: field, Reason: fmt.Sprintf("in %q is not a number", slice)}
	}
	return At(v), nil
}
