package patterns

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxRecord bounds the size of a single record so a corrupt length field
// cannot trigger a huge allocation.
const MaxRecord = 1 << 30

var (
	ErrRecordMismatch = errors.New("record trailer does not match header")
	ErrShortFile      = errors.New("file has fewer records than declared")
)

// RecordReader reads Fortran-style records: a 4-byte length, the data, and
// the same length again.
type RecordReader struct {
	r     io.Reader
	order binary.ByteOrder
	n     int
}

// NewRecordReader returns a reader using order for the length fields and
// numeric payloads. Files are big-endian on disk by convention.
func NewRecordReader(r io.Reader, order binary.ByteOrder) *RecordReader {
	if order == nil {
		order = binary.BigEndian
	}
	return &RecordReader{r: r, order: order}
}

// ReadRecord returns the payload of the next record. io.EOF is returned
// unwrapped only when no byte of a new record could be read.
func (rr *RecordReader) ReadRecord() ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(rr.r, head[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(ErrShortFile, "record %d header: %v", rr.n, err)
	}
	size := rr.order.Uint32(head[:])
	if size > MaxRecord {
		return nil, errors.Errorf("record %d claims %d bytes", rr.n, size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(rr.r, data); err != nil {
		return nil, errors.Wrapf(ErrShortFile, "record %d body: %v", rr.n, err)
	}
	var tail [4]byte
	if _, err := io.ReadFull(rr.r, tail[:]); err != nil {
		return nil, errors.Wrapf(ErrShortFile, "record %d trailer: %v", rr.n, err)
	}
	if t := rr.order.Uint32(tail[:]); t != size {
		return nil, errors.Wrapf(ErrRecordMismatch, "record %d: header %d, trailer %d", rr.n, size, t)
	}
	rr.n++
	return data, nil
}

// ReadInt32s reads a record that must hold exactly n int32 values.
func (rr *RecordReader) ReadInt32s(n int) ([]int32, error) {
	data, err := rr.ReadRecord()
	if err != nil {
		return nil, err
	}
	if len(data) != 4*n {
		return nil, errors.Errorf("record %d: want %d bytes, got %d", rr.n-1, 4*n, len(data))
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(rr.order.Uint32(data[4*i:]))
	}
	return out, nil
}

// ReadFloat32s reads a record of exactly n float32 values into dst as float64.
func (rr *RecordReader) ReadFloat32s(dst []float64) error {
	data, err := rr.ReadRecord()
	if err != nil {
		return err
	}
	if len(data) != 4*len(dst) {
		return errors.Errorf("record %d: want %d bytes, got %d", rr.n-1, 4*len(dst), len(data))
	}
	for i := range dst {
		dst[i] = float64(math.Float32frombits(rr.order.Uint32(data[4*i:])))
	}
	return nil
}

// RecordWriter writes Fortran-style records.
type RecordWriter struct {
	w     io.Writer
	order binary.ByteOrder
}

// NewRecordWriter returns a writer using order (big-endian when nil).
func NewRecordWriter(w io.Writer, order binary.ByteOrder) *RecordWriter {
	if order == nil {
		order = binary.BigEndian
	}
	return &RecordWriter{w: w, order: order}
}

// WriteRecord frames data with its length on both sides.
func (rw *RecordWriter) WriteRecord(data []byte) error {
	var size [4]byte
	rw.order.PutUint32(size[:], uint32(len(data)))
	if _, err := rw.w.Write(size[:]); err != nil {
		return err
	}
	if _, err := rw.w.Write(data); err != nil {
		return err
	}
	_, err := rw.w.Write(size[:])
	return err
}

// WriteInt32s writes vals as one record.
func (rw *RecordWriter) WriteInt32s(vals ...int32) error {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		rw.order.PutUint32(data[4*i:], uint32(v))
	}
	return rw.WriteRecord(data)
}

// WriteFloat32s writes vals, narrowed to float32, as one record.
func (rw *RecordWriter) WriteFloat32s(vals []float64) error {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		rw.order.PutUint32(data[4*i:], math.Float32bits(float32(v)))
	}
	return rw.WriteRecord(data)
}
