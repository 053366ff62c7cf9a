package dice

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// Die is a set of unique faces with a mutable weight per face. Rolling draws
// faces with probability weight(face) / sum(weights).
//
// Invariant: faces is non-empty, duplicate-free and of a single FaceKind; every
// face has exactly one weight, every weight is finite and > 0, and so is their
// sum.
type Die struct {
	faces   []Face
	index   map[Face]int
	weights []float64
	src     Source
}

// Option configures a Die.
type Option func(*Die)

// WithSource makes the die draw from src instead of the process-wide Source.
func WithSource(src Source) Option {
	return func(d *Die) {
		if src != nil {
			d.src = src
		}
	}
}

// New creates a die over faces with every weight set to 1.
//
// Precondition: faces must be non-empty, unique and all of one FaceKind.
// Postcondition: returns a Die, or an error wrapping simerr.ErrValue.
func New(faces []Face, opts ...Option) (*Die, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: a die needs at least one face", simerr.ErrValue)
	}
	d := &Die{
		faces:   make([]Face, len(faces)),
		index:   make(map[Face]int, len(faces)),
		weights: make([]float64, len(faces)),
		src:     DefaultSource(),
	}
	copy(d.faces, faces)
	kind := faces[0].Kind()
	for i, f := range d.faces {
		if f.Kind() != kind {
			return nil, fmt.Errorf("%w: face %q is %s but face %q is %s",
				simerr.ErrValue, f, f.Kind(), faces[0], kind)
		}
		if v, ok := f.Float(); ok && math.IsNaN(v) {
			return nil, fmt.Errorf("%w: face %d is NaN", simerr.ErrValue, i)
		}
		if _, dup := d.index[f]; dup {
			return nil, fmt.Errorf("%w: duplicate face %q", simerr.ErrValue, f)
		}
		d.index[f] = i
		d.weights[i] = 1
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// FromValues creates a die from a slice or array of scalar values such as
// []int or []string.
//
// Postcondition: fails with simerr.ErrType if values is not a slice or array
// of supported scalars, and with simerr.ErrValue on duplicates.
func FromValues(values any, opts ...Option) (*Die, error) {
	faces, err := ParseFaces(values)
	if err != nil {
		return nil, err
	}
	return New(faces, opts...)
}

// Len returns the number of faces.
func (d *Die) Len() int { return len(d.faces) }

// Faces returns a copy of the ordered face set.
func (d *Die) Faces() []Face {
	out := make([]Face, len(d.faces))
	copy(out, d.faces)
	return out
}

// Contains reports whether f is one of the die's faces.
func (d *Die) Contains(f Face) bool {
	_, ok := d.index[f]
	return ok
}

// Weight returns the current weight of f.
func (d *Die) Weight(f Face) (float64, error) {
	i, ok := d.index[f]
	if !ok {
		return 0, fmt.Errorf("%w: face %q is not on this die", simerr.ErrLookup, f)
	}
	return d.weights[i], nil
}

// SetWeight replaces the weight of face.
//
// Postcondition: on success only face's weight changed; on error (ErrLookup for
// an unknown face, ErrValue for a weight that is not finite and > 0 or that
// would make the sum of weights overflow) nothing changed.
func (d *Die) SetWeight(face Face, weight float64) error {
	i, ok := d.index[face]
	if !ok {
		return fmt.Errorf("%w: face %q is not on this die", simerr.ErrLookup, face)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return fmt.Errorf("%w: weight for face %q must be a finite number > 0, got %v",
			simerr.ErrValue, face, weight)
	}
	total := weight
	for j, w := range d.weights {
		if j != i {
			total += w
		}
	}
	if math.IsInf(total, 0) {
		return fmt.Errorf("%w: weight %v for face %q overflows the total weight",
			simerr.ErrValue, weight, face)
	}
	d.weights[i] = weight
	return nil
}

// SetWeightValue is SetWeight for loosely typed input: integers, floats and
// numeric strings such as "3" or "2.5" are coerced to float64.
//
// Postcondition: fails with ErrLookup for an unknown face, ErrType for a
// non-numeric weight, ErrValue for a non-positive weight; nothing changes on
// failure.
func (d *Die) SetWeightValue(face Face, weight any) error {
	if !d.Contains(face) {
		return fmt.Errorf("%w: face %q is not on this die", simerr.ErrLookup, face)
	}
	w, err := coerceWeight(weight)
	if err != nil {
		return err
	}
	return d.SetWeight(face, w)
}

func coerceWeight(v any) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: weight must not be nil", simerr.ErrType)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		w, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: weight %q is not numeric", simerr.ErrType, rv.String())
		}
		return w, nil
	default:
		return 0, fmt.Errorf("%w: weight %v of type %T is not numeric", simerr.ErrType, v, v)
	}
}

// Roll draws n faces independently, with replacement, in draw order.
//
// Postcondition: len(result) == max(n, 0); every element is one of the die's
// faces. n <= 0 yields an empty slice.
func (d *Die) Roll(n int) []Face {
	if n <= 0 {
		return []Face{}
	}
	cum := make([]float64, len(d.weights))
	var total float64
	for i, w := range d.weights {
		total += w
		cum[i] = total
	}
	out := make([]Face, n)
	last := len(cum) - 1
	for k := range out {
		target := d.src.Float64() * total
		i := sort.Search(len(cum), func(j int) bool { return cum[j] > target })
		if i > last {
			i = last
		}
		out[k] = d.faces[i]
	}
	return out
}

// State returns a copy of the face → weight table. Mutating the copy does not
// affect the die.
func (d *Die) State() map[Face]float64 {
	out := make(map[Face]float64, len(d.faces))
	for i, f := range d.faces {
		out[f] = d.weights[i]
	}
	return out
}
