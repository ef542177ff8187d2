package network

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3/log"

	"github.com/fpclass/mlp/activation"
	"github.com/fpclass/mlp/utils"
)

const weightsMagic = "mlp-weights"

// Save writes the topology, the activation functions and every weight to
// path. Weights are printed with the shortest representation that parses
// back to the same float64.
func (n *Network) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating weights file %s", path)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\n%d %d %d\n%s %s\n", weightsMagic, n.Ninps, n.Nhids, n.Nouts, n.Hidden, n.Output)
	for _, v := range n.W {
		w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing weights file %s", path)
	}
	return errors.Wrapf(f.Close(), "closing weights file %s", path)
}

// Load reads a weights file written by Save.
func Load(path string) (*Network, error) {
	lines, err := utils.LoadLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) < 3 || len(lines[0].Fields) != 1 || lines[0].Fields[0] != weightsMagic {
		return nil, errors.Errorf("%s: not a weights file", path)
	}
	if len(lines[1].Fields) != 3 || len(lines[2].Fields) != 2 {
		return nil, errors.Errorf("%s: bad weights header", path)
	}
	var dims [3]int
	for i, s := range lines[1].Fields {
		if dims[i], err = strconv.Atoi(s); err != nil || dims[i] < 1 {
			return nil, errors.Errorf("%s:%d: bad dimension %q", path, lines[1].Num, s)
		}
	}
	hidden, err := activation.Parse(lines[2].Fields[0])
	if err != nil {
		return nil, errors.Wrapf(err, "%s:%d", path, lines[2].Num)
	}
	output, err := activation.Parse(lines[2].Fields[1])
	if err != nil {
		return nil, errors.Wrapf(err, "%s:%d", path, lines[2].Num)
	}

	n := New(Topology{Ninps: dims[0], Nhids: dims[1], Nouts: dims[2]}, hidden, output)
	body := lines[3:]
	if len(body) != len(n.W) {
		return nil, errors.Wrapf(ErrTopology, "%s: %d weights, want %d", path, len(body), len(n.W))
	}
	for i, l := range body {
		if n.W[i], err = strconv.ParseFloat(l.Fields[0], 64); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, l.Num)
		}
	}
	log.Lvlf3("loaded %d weights from %s", len(n.W), path)
	return n, nil
}

// Check returns ErrTopology when n does not have the given shape.
func (n *Network) Check(top Topology) error {
	if n.Topology != top {
		return errors.Wrapf(ErrTopology, "weights are %d-%d-%d, run wants %d-%d-%d",
			n.Ninps, n.Nhids, n.Nouts, top.Ninps, top.Nhids, top.Nouts)
	}
	return nil
}
