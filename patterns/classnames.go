package patterns

import (
	"github.com/pkg/errors"

	"github.com/fpclass/mlp/utils"
)

// MaxShortName is the longest allowed short class name.
const MaxShortName = 2

// ErrClassMismatch marks a class file that omits or adds a class.
var ErrClassMismatch = errors.New("class file does not match the class list")

// ReadClassMap reads a long-name to short-name mapping file: one
// "long short" pair per line, in any order.
func ReadClassMap(path string) (map[string]string, error) {
	lines, err := utils.LoadLines(path)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(lines))
	shorts := make(map[string]string, len(lines))
	for _, l := range lines {
		if len(l.Fields) != 2 {
			return nil, errors.Errorf("%s:%d: want \"long short\", got %d fields", path, l.Num, len(l.Fields))
		}
		long, short := l.Fields[0], l.Fields[1]
		if len(short) > MaxShortName {
			return nil, errors.Errorf("%s:%d: short name %q longer than %d characters", path, l.Num, short, MaxShortName)
		}
		if _, dup := m[long]; dup {
			return nil, errors.Errorf("%s:%d: long name %q appears twice", path, l.Num, long)
		}
		if other, dup := shorts[short]; dup {
			return nil, errors.Errorf("%s:%d: short name %q already used by %q", path, l.Num, short, other)
		}
		m[long] = short
		shorts[short] = long
	}
	return m, nil
}

// ShortNames maps each long class name to its short name, preserving order.
// Every long name must be mapped and every mapping used.
func ShortNames(long []string, m map[string]string) ([]string, error) {
	out := make([]string, len(long))
	for i, l := range long {
		s, ok := m[l]
		if !ok {
			return nil, errors.Wrapf(ErrClassMismatch, "no short name for class %q", l)
		}
		out[i] = s
	}
	if len(m) != len(long) {
		used := make(map[string]bool, len(long))
		for _, l := range long {
			used[l] = true
		}
		for l := range m {
			if !used[l] {
				return nil, errors.Wrapf(ErrClassMismatch, "mapping for unknown class %q", l)
			}
		}
	}
	return out, nil
}

// PadShort left-pads a one-character short name with a blank so all short
// names compare as two characters.
func PadShort(s string) string {
	if len(s) == 1 {
		return " " + s
	}
	return s
}
