// Package patterns reads and writes pattern sets: feature vectors with their
// target vectors and the long names of the output classes.
package patterns

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3/log"
	"gonum.org/v1/gonum/mat"
)

const classNameLen = 32

// ErrHeaderMismatch is returned when a file's dimensions disagree with the
// run configuration.
var ErrHeaderMismatch = errors.New("pattern file dimensions do not match configuration")

// Set is a pattern set. Feats and Targets are row-major, one row per
// pattern. Class holds the index of the largest target of each pattern.
type Set struct {
	Npats, Nfeats, Nouts int

	ClassNames []string
	Feats      []float64
	Targets    []float64
	Class      []int
}

// Shape is the set of dimensions a run expects.
type Shape struct {
	Npats, Nfeats, Nouts int
}

// NewSet allocates an empty set of the given shape.
func NewSet(s Shape) *Set {
	return &Set{
		Npats:      s.Npats,
		Nfeats:     s.Nfeats,
		Nouts:      s.Nouts,
		ClassNames: make([]string, s.Nouts),
		Feats:      make([]float64, s.Npats*s.Nfeats),
		Targets:    make([]float64, s.Npats*s.Nouts),
		Class:      make([]int, s.Npats),
	}
}

// Feature returns the feature vector of pattern i, sharing storage.
func (s *Set) Feature(i int) []float64 {
	return s.Feats[i*s.Nfeats : (i+1)*s.Nfeats]
}

// Target returns the target vector of pattern i, sharing storage.
func (s *Set) Target(i int) []float64 {
	return s.Targets[i*s.Nouts : (i+1)*s.Nouts]
}

// FeatureMatrix returns an npats x nfeats view of the features.
func (s *Set) FeatureMatrix() *mat.Dense {
	return mat.NewDense(s.Npats, s.Nfeats, s.Feats)
}

// ClassCounts returns the number of patterns in each class.
func (s *Set) ClassCounts() []int {
	counts := make([]int, s.Nouts)
	for _, c := range s.Class {
		counts[c]++
	}
	return counts
}

// SetClasses derives Class from the target vectors.
func (s *Set) SetClasses() {
	for i := 0; i < s.Npats; i++ {
		t := s.Target(i)
		best := 0
		for k := range t {
			if t[k] > t[best] {
				best = k
			}
		}
		s.Class[i] = best
	}
}

// Load reads the first want.Npats patterns from path. format is "ascii" or
// "binary".
func Load(path, format string, want Shape) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening patterns file %s", path)
	}
	defer f.Close()

	var set *Set
	switch format {
	case "ascii":
		set, err = ReadASCII(bufio.NewReader(f), want)
	case "binary":
		set, err = ReadBinary(bufio.NewReader(f), binary.BigEndian, want)
	default:
		return nil, errors.Errorf("unknown patterns file format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading patterns file %s", path)
	}
	log.Lvlf3("loaded %d patterns of %d features from %s", set.Npats, set.Nfeats, path)
	return set, nil
}

func checkHeader(npats, nfeats, nouts int, want Shape) error {
	if nfeats != want.Nfeats || nouts != want.Nouts {
		return errors.Wrapf(ErrHeaderMismatch, "file has %d features and %d outputs, want %d and %d",
			nfeats, nouts, want.Nfeats, want.Nouts)
	}
	if npats < want.Npats {
		return errors.Wrapf(ErrShortFile, "file declares %d patterns, want %d", npats, want.Npats)
	}
	return nil
}

// ReadBinary reads the record-framed form.
func ReadBinary(r io.Reader, order binary.ByteOrder, want Shape) (*Set, error) {
	rr := NewRecordReader(r, order)
	head, err := rr.ReadInt32s(6)
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	if err := checkHeader(int(head[0]), int(head[1]), int(head[2]), want); err != nil {
		return nil, err
	}

	set := NewSet(want)
	names, err := rr.ReadRecord()
	if err != nil {
		return nil, errors.Wrap(err, "class names")
	}
	if len(names) != classNameLen*want.Nouts {
		return nil, errors.Errorf("class name record has %d bytes, want %d", len(names), classNameLen*want.Nouts)
	}
	for k := range set.ClassNames {
		field := names[k*classNameLen : (k+1)*classNameLen]
		set.ClassNames[k] = strings.TrimSpace(string(bytes.TrimRight(field, "\x00")))
	}

	for i := 0; i < want.Npats; i++ {
		if err := rr.ReadFloat32s(set.Feature(i)); err != nil {
			return nil, errors.Wrapf(shortIfEOF(err), "features of pattern %d", i)
		}
		if err := rr.ReadFloat32s(set.Target(i)); err != nil {
			return nil, errors.Wrapf(shortIfEOF(err), "targets of pattern %d", i)
		}
	}
	set.SetClasses()
	return set, nil
}

func shortIfEOF(err error) error {
	if err == io.EOF {
		return ErrShortFile
	}
	return err
}

// WriteBinary writes set in the record-framed form.
func WriteBinary(w io.Writer, order binary.ByteOrder, set *Set) error {
	rw := NewRecordWriter(w, order)
	if err := rw.WriteInt32s(int32(set.Npats), int32(set.Nfeats), int32(set.Nouts), 0, 0, 0); err != nil {
		return err
	}
	names := make([]byte, classNameLen*set.Nouts)
	for k, n := range set.ClassNames {
		field := names[k*classNameLen : (k+1)*classNameLen]
		for j := range field {
			field[j] = ' '
		}
		copy(field, n)
	}
	if err := rw.WriteRecord(names); err != nil {
		return err
	}
	for i := 0; i < set.Npats; i++ {
		if err := rw.WriteFloat32s(set.Feature(i)); err != nil {
			return err
		}
		if err := rw.WriteFloat32s(set.Target(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadASCII reads the whitespace-separated form: npats nfeats nouts, the
// nouts class names, then per pattern nfeats features and nouts targets.
func ReadASCII(r io.Reader, want Shape) (*Set, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.Wrapf(ErrShortFile, "reading %s", what)
		}
		return sc.Text(), nil
	}
	nextInt := func(what string) (int, error) {
		tok, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(tok)
		return v, errors.Wrapf(err, "parsing %s", what)
	}

	var dims [3]int
	for i, what := range []string{"npats", "nfeats", "nouts"} {
		v, err := nextInt(what)
		if err != nil {
			return nil, err
		}
		dims[i] = v
	}
	if err := checkHeader(dims[0], dims[1], dims[2], want); err != nil {
		return nil, err
	}

	set := NewSet(want)
	for k := range set.ClassNames {
		name, err := next("class names")
		if err != nil {
			return nil, err
		}
		set.ClassNames[k] = name
	}

	read := func(dst []float64, what string, i int) error {
		for k := range dst {
			tok, err := next(fmt.Sprintf("%s of pattern %d", what, i))
			if err != nil {
				return err
			}
			if dst[k], err = strconv.ParseFloat(tok, 64); err != nil {
				return errors.Wrapf(err, "%s of pattern %d", what, i)
			}
		}
		return nil
	}
	for i := 0; i < want.Npats; i++ {
		if err := read(set.Feature(i), "features", i); err != nil {
			return nil, err
		}
		if err := read(set.Target(i), "targets", i); err != nil {
			return nil, err
		}
	}
	set.SetClasses()
	return set, nil
}

// WriteASCII writes set in the form ReadASCII reads, one pattern per line.
func WriteASCII(w io.Writer, set *Set) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", set.Npats, set.Nfeats, set.Nouts)
	fmt.Fprintln(bw, strings.Join(set.ClassNames, " "))
	for i := 0; i < set.Npats; i++ {
		for _, v := range set.Feature(i) {
			fmt.Fprintf(bw, "%s ", strconv.FormatFloat(v, 'g', -1, 64))
		}
		for k, v := range set.Target(i) {
			sep := " "
			if k == set.Nouts-1 {
				sep = "\n"
			}
			fmt.Fprintf(bw, "%s%s", strconv.FormatFloat(v, 'g', -1, 64), sep)
		}
	}
	return bw.Flush()
}

// Save writes set to path in the given format.
func Save(path, format string, set *Set) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating patterns file %s", path)
	}
	bw := bufio.NewWriter(f)
	switch format {
	case "ascii":
		err = WriteASCII(bw, set)
	case "binary":
		err = WriteBinary(bw, binary.BigEndian, set)
	default:
		err = errors.Errorf("unknown patterns file format %q", format)
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing patterns file %s", path)
}
