// Package network holds the two-layer perceptron: its weight buffer, the
// forward pass and the weighted error/gradient evaluator.
package network

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fpclass/mlp/activation"
)

// ErrTopology marks weights or patterns whose shape disagrees with the
// network.
var ErrTopology = errors.New("topology mismatch")

// Uniform is a source of uniform draws.
type Uniform interface {
	Range(a, b float64) float64
}

// Topology is the number of inputs, hidden nodes and outputs.
type Topology struct {
	Ninps, Nhids, Nouts int
}

// NumWeights is the length of the weight buffer, biases included.
func (t Topology) NumWeights() int {
	return t.Nhids*(t.Ninps+1) + t.Nouts*(t.Nhids+1)
}

// offsets of the four segments in the buffer: W1, b1, W2, b2.
func (t Topology) offsets() (b1, w2, b2 int) {
	b1 = t.Nhids * t.Ninps
	w2 = b1 + t.Nhids
	b2 = w2 + t.Nouts*t.Nhids
	return
}

// Network is a fully connected ninps-nhids-nouts perceptron. All weights
// live in W; W1 (nhids×ninps), b1, W2 (nouts×nhids) and b2 are views into
// it, in that order.
type Network struct {
	Topology
	Hidden, Output activation.Func
	W              []float64

	w1, w2 *mat.Dense
	b1, b2 []float64
}

// New returns a network with all weights zero.
func New(top Topology, hidden, output activation.Func) *Network {
	n := &Network{Topology: top, Hidden: hidden, Output: output}
	n.bind(make([]float64, top.NumWeights()))
	return n
}

func (n *Network) bind(w []float64) {
	ob1, ow2, ob2 := n.offsets()
	n.W = w
	n.w1 = mat.NewDense(n.Nhids, n.Ninps, w[:ob1])
	n.b1 = w[ob1:ow2]
	n.w2 = mat.NewDense(n.Nouts, n.Nhids, w[ow2:ob2])
	n.b2 = w[ob2:]
}

// SetWeights copies w into the buffer.
func (n *Network) SetWeights(w []float64) error {
	if len(w) != len(n.W) {
		return errors.Wrapf(ErrTopology, "%d weights, want %d", len(w), len(n.W))
	}
	copy(n.W, w)
	return nil
}

// Order lists buffer indices node by node: each hidden node's input weights
// then its bias, then each output node's weights then its bias.
func (n *Network) Order() []int {
	ob1, ow2, ob2 := n.offsets()
	order := make([]int, 0, len(n.W))
	for h := 0; h < n.Nhids; h++ {
		for i := 0; i < n.Ninps; i++ {
			order = append(order, h*n.Ninps+i)
		}
		order = append(order, ob1+h)
	}
	for o := 0; o < n.Nouts; o++ {
		for h := 0; h < n.Nhids; h++ {
			order = append(order, ow2+o*n.Nhids+h)
		}
		order = append(order, ob2+o)
	}
	return order
}

// Init draws every weight uniformly from (-1,1)/sqrt(fan-in), visiting them
// in Order.
func (n *Network) Init(rng Uniform) {
	ob1, _, _ := n.offsets()
	s1 := 1 / math.Sqrt(float64(n.Ninps))
	s2 := 1 / math.Sqrt(float64(n.Nhids))
	for _, i := range n.Order() {
		scale := s2
		if i < ob1+n.Nhids {
			scale = s1
		}
		n.W[i] = scale * rng.Range(-1, 1)
	}
}

// Forward computes the output activations of one pattern into out and
// returns it. out is allocated when nil.
func (n *Network) Forward(x, out []float64) []float64 {
	if out == nil {
		out = make([]float64, n.Nouts)
	}
	hid := make([]float64, n.Nhids)
	for h := range hid {
		z := n.b1[h]
		for i, v := range n.w1.RawRowView(h) {
			z += v * x[i]
		}
		hid[h] = n.Hidden.Eval(z)
	}
	for o := range out {
		z := n.b2[o]
		for h, v := range n.w2.RawRowView(o) {
			z += v * hid[h]
		}
		out[o] = n.Output.Eval(z)
	}
	return out
}

// ForwardBatch computes the output activations of every row of x.
func (n *Network) ForwardBatch(x *mat.Dense) *mat.Dense {
	npats, _ := x.Dims()
	hid := mat.NewDense(npats, n.Nhids, nil)
	hid.Mul(x, n.w1.T())
	addBias(hid, n.b1)
	hid.Apply(n.Hidden.ToApply(), hid)

	out := mat.NewDense(npats, n.Nouts, nil)
	out.Mul(hid, n.w2.T())
	addBias(out, n.b2)
	out.Apply(n.Output.ToApply(), out)
	return out
}

// addBias adds b[j] to every element of column j of m.
func addBias(m *mat.Dense, b []float64) {
	m.Apply(func(i, j int, v float64) float64 {
		return v + b[j]
	}, m)
}

// RMS returns ||v||/sqrt(len(v)).
func RMS(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return mat.Norm(mat.NewVecDense(len(v), v), 2) / math.Sqrt(float64(len(v)))
}
