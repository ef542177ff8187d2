package specfile

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Sentinel errors wrapped by Store.Match and Resolve.
var (
	ErrUnknownName = errors.New("unknown parameter name")
	ErrType        = errors.New("value has wrong type")
	ErrRange       = errors.New("value out of range")
	ErrMissing     = errors.New("required parameter not set")
	ErrConflict    = errors.New("conflicting parameters")
)

// Entry is the state of one parameter within a run-block.
type Entry struct {
	Param Param
	Raw   string
	Set   bool
	Line  int

	Int   int
	Float float64
	Str   string
	Code  int
}

// Store holds every table parameter for one run-block.
type Store struct {
	entries map[string]*Entry
}

// NewStore returns a store with every table parameter unset and defaults
// applied to the typed values.
func NewStore() *Store {
	s := &Store{entries: make(map[string]*Entry, len(Table))}
	for _, p := range Table {
		e := &Entry{Param: p}
		if p.Default != "" {
			if err := e.assign(p.Default); err != nil {
				panic("specfile: bad default for " + p.Name)
			}
		}
		s.entries[p.Name] = e
	}
	return s
}

// Match validates value against the table entry for name and records it.
// line is kept for later diagnostics.
func (s *Store) Match(name, value string, line int) error {
	e, ok := s.entries[name]
	if !ok {
		return errors.Wrapf(ErrUnknownName, "%q", name)
	}
	if err := e.assign(value); err != nil {
		return err
	}
	e.Raw = value
	e.Set = true
	e.Line = line
	return nil
}

func (e *Entry) assign(value string) error {
	p := e.Param
	switch p.Kind {
	case Int:
		v, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(ErrType, "%s wants an integer, got %q", p.Name, value)
		}
		if float64(v) < p.Min || float64(v) > p.Max {
			return errors.Wrapf(ErrRange, "%s = %d, legal range is %s", p.Name, v, rangeString(p))
		}
		e.Int = v
	case Float:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrapf(ErrType, "%s wants a float, got %q", p.Name, value)
		}
		if math.IsNaN(v) || v < p.Min || v > p.Max {
			return errors.Wrapf(ErrRange, "%s = %g, legal range is %s", p.Name, v, rangeString(p))
		}
		e.Float = v
	case Filename:
		e.Str = value
	case Switch:
		for code, legal := range p.Values {
			if legal == value {
				e.Str = value
				e.Code = code
				return nil
			}
		}
		return errors.Wrapf(ErrRange, "%s = %q, legal values are %v", p.Name, value, p.Values)
	}
	return nil
}

func rangeString(p Param) string {
	lo := strconv.FormatFloat(p.Min, 'g', -1, 64)
	if p.Min > 0 && p.Min < 1e-300 {
		lo = "(0"
	} else {
		lo = "[" + lo
	}
	hi := "inf)"
	if p.Max < inf {
		hi = strconv.FormatFloat(p.Max, 'g', -1, 64) + "]"
	}
	return lo + "," + hi
}

// Entry returns the entry for name, or nil.
func (s *Store) Entry(name string) *Entry {
	return s.entries[name]
}

// IsSet reports whether the run-block set name.
func (s *Store) IsSet(name string) bool {
	e := s.entries[name]
	return e != nil && e.Set
}

// Int returns the integer value of name (its default when unset).
func (s *Store) Int(name string) int {
	return s.entries[name].Int
}

// Float returns the float value of name.
func (s *Store) Float(name string) float64 {
	return s.entries[name].Float
}

// String returns the filename or switch value of name.
func (s *Store) String(name string) string {
	return s.entries[name].Str
}

// Bool returns a true/false switch as a bool.
func (s *Store) Bool(name string) bool {
	return s.entries[name].Str == "true"
}

// Len returns the number of parameters set.
func (s *Store) Len() int {
	n := 0
	for _, e := range s.entries {
		if e.Set {
			n++
		}
	}
	return n
}
