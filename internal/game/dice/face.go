// Package dice provides weighted discrete-outcome dice and the randomness
// sources they sample from.
package dice

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// FaceKind distinguishes numeric faces from string faces.
type FaceKind uint8

const (
	// Numeric faces carry a float64 value.
	Numeric FaceKind = iota
	// Text faces carry a string value.
	Text
)

// String returns "numeric" or "text".
func (k FaceKind) String() string {
	if k == Text {
		return "text"
	}
	return "numeric"
}

// Face is a single labeled outcome of a die. Faces are comparable and may be
// used as map keys.
//
// Invariant: exactly one of num or str is meaningful, selected by kind.
type Face struct {
	kind FaceKind
	num  float64
	str  string
}

// Num returns a numeric face. Negative zero is stored as zero so that equal
// faces also render and tally alike.
func Num(v float64) Face {
	if v == 0 {
		v = 0
	}
	return Face{kind: Numeric, num: v}
}

// Str returns a string face.
func Str(s string) Face {
	return Face{kind: Text, str: s}
}

// Kind reports whether f is numeric or text.
func (f Face) Kind() FaceKind { return f.kind }

// Float returns the numeric value of f and whether f is numeric.
func (f Face) Float() (float64, bool) {
	return f.num, f.kind == Numeric
}

// Text returns the string value of f and whether f is a text face.
func (f Face) Text() (string, bool) {
	return f.str, f.kind == Text
}

// String renders f. Integral numeric faces render without a fractional part.
func (f Face) String() string {
	if f.kind == Text {
		return f.str
	}
	return strconv.FormatFloat(f.num, 'f', -1, 64)
}

// Compare orders numeric faces before text faces, then by value.
//
// Postcondition: returns -1, 0 or +1.
func (f Face) Compare(o Face) int {
	if f.kind != o.kind {
		return cmp.Compare(f.kind, o.kind)
	}
	if f.kind == Text {
		return cmp.Compare(f.str, o.str)
	}
	return cmp.Compare(f.num, o.num)
}

// maxExactInt is the largest magnitude below which every integer has an exact
// float64 representation.
const maxExactInt = 1 << 53

// ParseFace converts a scalar Go value into a Face. Integer, unsigned, float
// and string kinds are accepted; an existing Face is returned unchanged.
//
// Postcondition: returns a Face, an error wrapping simerr.ErrType for an
// unsupported kind, or simerr.ErrValue for NaN or an integer beyond +/-2^53.
func ParseFace(v any) (Face, error) {
	if f, ok := v.(Face); ok {
		return f, nil
	}
	if v == nil {
		return Face{}, fmt.Errorf("%w: face value must not be nil", simerr.ErrType)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > maxExactInt || n < -maxExactInt {
			return Face{}, fmt.Errorf("%w: integer face %d is not exactly representable", simerr.ErrValue, n)
		}
		return Num(float64(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > maxExactInt {
			return Face{}, fmt.Errorf("%w: integer face %d is not exactly representable", simerr.ErrValue, n)
		}
		return Num(float64(n)), nil
	case reflect.Float32, reflect.Float64:
		x := rv.Float()
		if math.IsNaN(x) {
			return Face{}, fmt.Errorf("%w: face value must not be NaN", simerr.ErrValue)
		}
		return Num(x), nil
	case reflect.String:
		return Str(rv.String()), nil
	default:
		return Face{}, fmt.Errorf("%w: unsupported face value %v of type %T", simerr.ErrType, v, v)
	}
}

// ParseFaces converts a slice or array of scalar values into faces.
//
// Precondition: values must be a slice or array; anything else fails with
// simerr.ErrType.
// Postcondition: len(result) equals the length of values.
func ParseFaces(values any) ([]Face, error) {
	if faces, ok := values.([]Face); ok {
		out := make([]Face, len(faces))
		copy(out, faces)
		return out, nil
	}
	if values == nil {
		return nil, fmt.Errorf("%w: faces must be a slice or array, got nil", simerr.ErrType)
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: faces must be a slice or array, got %T", simerr.ErrType, values)
	}
	out := make([]Face, rv.Len())
	for i := range out {
		f, err := ParseFace(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// Key joins faces with commas, e.g. "1,2,6".
func Key(faces []Face) string {
	buf := make([]byte, 0, len(faces)*2)
	for i, f := range faces {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, f.String()...)
	}
	return string(buf)
}

// CompareSeq orders face sequences lexicographically using Face.Compare; a
// shorter sequence that is a prefix of a longer one sorts first.
func CompareSeq(a, b []Face) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
