package utils

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Line is one non-blank line of a text file split into fields.
type Line struct {
	Num    int
	Fields []string
}

// LoadLines reads path and returns its non-blank lines split on whitespace.
func LoadLines(path string) ([]Line, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()

	var out []Line
	scanner := bufio.NewScanner(file)
	n := 0
	for scanner.Scan() {
		n++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		out = append(out, Line{Num: n, Fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return out, nil
}

// LoadFloats reads one float per non-blank line, taking the last field of
// each line.
func LoadFloats(path string) ([]float64, error) {
	lines, err := LoadLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(lines))
	for i, l := range lines {
		v, err := strconv.ParseFloat(l.Fields[len(l.Fields)-1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, l.Num)
		}
		out[i] = v
	}
	return out, nil
}
