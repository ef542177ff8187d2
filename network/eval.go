package network

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fpclass/mlp/errfunc"
)

// Evaluator computes the pattern-weighted training error of a network and
// its gradient with respect to the weight buffer.
type Evaluator struct {
	Net *Network
	Err errfunc.Func
	// RegFac scales the L2 penalty ½·RegFac·Σw²/nw.
	RegFac float64

	feats   *mat.Dense
	class   []int
	targets []float64
	weights []float64
}

// NewEvaluator binds a network to its training data. feats is npats×ninps.
// Exactly one of class (classifier) and targets (fitter, row-major
// npats×nouts) is non-nil. weights holds one weight per pattern.
func NewEvaluator(net *Network, ef errfunc.Func, regfac float64, feats *mat.Dense, class []int, targets, weights []float64) (*Evaluator, error) {
	npats, ninps := feats.Dims()
	if ninps != net.Ninps {
		return nil, errors.Wrapf(ErrTopology, "%d features, network has %d inputs", ninps, net.Ninps)
	}
	if len(weights) != npats {
		return nil, errors.Wrapf(ErrTopology, "%d pattern weights for %d patterns", len(weights), npats)
	}
	if class == nil && len(targets) != npats*net.Nouts {
		return nil, errors.Wrapf(ErrTopology, "%d targets for %d patterns of %d outputs", len(targets), npats, net.Nouts)
	}
	if class != nil && len(class) != npats {
		return nil, errors.Wrapf(ErrTopology, "%d class labels for %d patterns", len(class), npats)
	}
	return &Evaluator{Net: net, Err: ef, RegFac: regfac, feats: feats, class: class, targets: targets, weights: weights}, nil
}

// Npats is the number of training patterns.
func (e *Evaluator) Npats() int {
	return len(e.weights)
}

// Weights returns the per-pattern weights.
func (e *Evaluator) Weights() []float64 {
	return e.weights
}

// Class returns the class labels, nil for fitters.
func (e *Evaluator) Class() []int {
	return e.class
}

// Outputs runs the current weights forward over every pattern and returns
// the row-major activations.
func (e *Evaluator) Outputs() []float64 {
	return e.Net.ForwardBatch(e.feats).RawMatrix().Data
}

// ErrGrad loads w into the network, and returns the total error. When grad
// is non-nil the gradient is written into it.
func (e *Evaluator) ErrGrad(w, grad []float64) float64 {
	net := e.Net
	if &w[0] != &net.W[0] {
		copy(net.W, w)
	}
	npats, _ := e.feats.Dims()

	// forward, keeping activation derivatives
	hid := mat.NewDense(npats, net.Nhids, nil)
	dhid := mat.NewDense(npats, net.Nhids, nil)
	hid.Mul(e.feats, net.w1.T())
	hid.Apply(func(i, j int, v float64) float64 {
		a, d := net.Hidden.EvalDeriv(v + net.b1[j])
		dhid.Set(i, j, d)
		return a
	}, hid)

	out := mat.NewDense(npats, net.Nouts, nil)
	dout := mat.NewDense(npats, net.Nouts, nil)
	out.Mul(hid, net.w2.T())
	out.Apply(func(i, j int, v float64) float64 {
		a, d := net.Output.EvalDeriv(v + net.b2[j])
		dout.Set(i, j, d)
		return a
	}, out)

	// output error and deltas
	delta2 := mat.NewDense(npats, net.Nouts, nil)
	g := make([]float64, net.Nouts)
	total := 0.
	for p := 0; p < npats; p++ {
		acs := out.RawRowView(p)
		var ep float64
		if e.class != nil {
			ep = e.Err.Class(acs, e.class[p], g)
		} else {
			ep = e.Err.Target(acs, e.targets[p*net.Nouts:(p+1)*net.Nouts], g)
		}
		total += e.weights[p] * ep
		row := delta2.RawRowView(p)
		for o := range row {
			row[o] = e.weights[p] * g[o] * dout.At(p, o)
		}
	}

	nw := float64(len(net.W))
	total += e.penalty(net.W)
	if grad == nil {
		return total
	}

	// backward into views of grad
	ob1, ow2, ob2 := net.offsets()
	gw1 := mat.NewDense(net.Nhids, net.Ninps, grad[:ob1])
	gw2 := mat.NewDense(net.Nouts, net.Nhids, grad[ow2:ob2])
	gw2.Mul(delta2.T(), hid)
	colSums(grad[ob2:], delta2)

	delta1 := mat.NewDense(npats, net.Nhids, nil)
	delta1.Mul(delta2, net.w2)
	delta1.MulElem(delta1, dhid)
	gw1.Mul(delta1.T(), e.feats)
	colSums(grad[ob1:ow2], delta1)

	if e.RegFac > 0 {
		for i, v := range net.W {
			grad[i] += e.RegFac * v / nw
		}
	}
	return total
}

func colSums(dst []float64, m *mat.Dense) {
	r, _ := m.Dims()
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < r; i++ {
		for j, v := range m.RawRowView(i) {
			dst[j] += v
		}
	}
}

func (e *Evaluator) penalty(w []float64) float64 {
	if e.RegFac <= 0 {
		return 0
	}
	ss := 0.
	for _, v := range w {
		ss += v * v
	}
	return 0.5 * e.RegFac * ss / float64(len(w))
}

// RMSErr converts the total error at w into the RMS error per output,
// sqrt(2E/nouts), with the regularization penalty removed from E.
func (e *Evaluator) RMSErr(w []float64, total float64) float64 {
	data := total - e.penalty(w)
	if data < 0 {
		data = 0
	}
	return math.Sqrt(2 * data / float64(e.Net.Nouts))
}
