package patterns

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func sampleSet() *Set {
	s := NewSet(Shape{Npats: 3, Nfeats: 2, Nouts: 2})
	s.ClassNames = []string{"whorl", "arch"}
	copy(s.Feats, []float64{0.5, -1.25, 2, 0.125, -0.75, 3})
	copy(s.Targets, []float64{1, 0, 0, 1, 1, 0})
	s.SetClasses()
	return s
}

func TestRecordRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		var buf bytes.Buffer
		rw := NewRecordWriter(&buf, order)
		require.NoError(t, rw.WriteInt32s(24, -3, 7))
		require.NoError(t, rw.WriteRecord([]byte("abc")))

		rr := NewRecordReader(&buf, order)
		vals, err := rr.ReadInt32s(3)
		require.NoError(t, err)
		require.Equal(t, []int32{24, -3, 7}, vals)
		data, err := rr.ReadRecord()
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), data)
		_, err = rr.ReadRecord()
		require.Equal(t, io.EOF, err)
	}
}

func TestRecordTrailerMismatch(t *testing.T) {
	raw := []byte{0, 0, 0, 2, 'h', 'i', 0, 0, 0, 3}
	_, err := NewRecordReader(bytes.NewReader(raw), nil).ReadRecord()
	require.Equal(t, ErrRecordMismatch, errors.Cause(err))

	_, err = NewRecordReader(bytes.NewReader(raw[:5]), nil).ReadRecord()
	require.Equal(t, ErrShortFile, errors.Cause(err))
}

func TestBinaryLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, binary.BigEndian, sampleSet()))
	raw := buf.Bytes()
	// header record: length 24, npats, nfeats, nouts, three zeros, length 24
	require.Equal(t, uint32(24), binary.BigEndian.Uint32(raw[0:]))
	require.Equal(t, uint32(3), binary.BigEndian.Uint32(raw[4:]))
	require.Equal(t, uint32(2), binary.BigEndian.Uint32(raw[8:]))
	require.Equal(t, uint32(2), binary.BigEndian.Uint32(raw[12:]))
	require.Equal(t, uint32(24), binary.BigEndian.Uint32(raw[28:]))
	require.Equal(t, uint32(64), binary.BigEndian.Uint32(raw[32:]))
	require.Equal(t, 32+8+64+3*(8+8+8+8), len(raw))
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := sampleSet()
	require.NoError(t, WriteBinary(&buf, binary.LittleEndian, want))
	got, err := ReadBinary(&buf, binary.LittleEndian, Shape{Npats: 3, Nfeats: 2, Nouts: 2})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestASCIIRoundTripAndSubset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteASCII(&buf, sampleSet()))
	got, err := ReadASCII(bytes.NewReader(buf.Bytes()), Shape{Npats: 2, Nfeats: 2, Nouts: 2})
	require.NoError(t, err)
	require.Equal(t, 2, got.Npats)
	require.Equal(t, []int{0, 1}, got.Class)
	require.Equal(t, []string{"whorl", "arch"}, got.ClassNames)
	require.Equal(t, []int{1, 1}, got.ClassCounts())
}

func TestLoadChecksDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.bin")
	require.NoError(t, Save(path, "binary", sampleSet()))

	_, err := Load(path, "binary", Shape{Npats: 4, Nfeats: 2, Nouts: 2})
	require.Equal(t, ErrShortFile, errors.Cause(err))

	_, err = Load(path, "binary", Shape{Npats: 3, Nfeats: 5, Nouts: 2})
	require.Equal(t, ErrHeaderMismatch, errors.Cause(err))

	set, err := Load(path, "binary", Shape{Npats: 3, Nfeats: 2, Nouts: 2})
	require.NoError(t, err)
	require.Equal(t, sampleSet(), set)

	_, err = Load(filepath.Join(dir, "nope"), "binary", Shape{})
	require.Error(t, err)
}

func TestTruncatedBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, binary.BigEndian, sampleSet()))
	raw := buf.Bytes()
	_, err := ReadBinary(bytes.NewReader(raw[:len(raw)-16]), binary.BigEndian, Shape{Npats: 3, Nfeats: 2, Nouts: 2})
	require.Equal(t, ErrShortFile, errors.Cause(err))
}

func TestClassMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcn_scn")
	require.NoError(t, os.WriteFile(path, []byte("arch A\nwhorl W\n"), 0644))
	m, err := ReadClassMap(path)
	require.NoError(t, err)

	short, err := ShortNames([]string{"whorl", "arch"}, m)
	require.NoError(t, err)
	require.Equal(t, []string{"W", "A"}, short)

	_, err = ShortNames([]string{"whorl"}, m)
	require.Equal(t, ErrClassMismatch, errors.Cause(err))
	_, err = ShortNames([]string{"whorl", "arch", "loop"}, m)
	require.Equal(t, ErrClassMismatch, errors.Cause(err))

	require.NoError(t, os.WriteFile(path, []byte("arch ABC\n"), 0644))
	_, err = ReadClassMap(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("arch A\nwhorl A\n"), 0644))
	_, err = ReadClassMap(path)
	require.Error(t, err)
}

func TestPadShort(t *testing.T) {
	require.Equal(t, " A", PadShort("A"))
	require.Equal(t, "LL", PadShort("LL"))
}
