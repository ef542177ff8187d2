// Package driver runs the blocks of a specfile: it loads the data, sets up
// the priors and the network, trains or tests, and reports.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3/log"

	"github.com/fpclass/mlp/errfunc"
	"github.com/fpclass/mlp/network"
	"github.com/fpclass/mlp/optimize"
	"github.com/fpclass/mlp/patterns"
	"github.com/fpclass/mlp/priors"
	"github.com/fpclass/mlp/prune"
	"github.com/fpclass/mlp/report"
	"github.com/fpclass/mlp/specfile"
	"github.com/fpclass/mlp/uni"
	"github.com/fpclass/mlp/utils"
)

// Options are the settings that do not come from the specfile.
type Options struct {
	// Stderr is the second side of the report sink; nil means os.Stderr.
	Stderr io.Writer
	// SummaryDir, when set, receives a TOML summary per run.
	SummaryDir string
	// PlotDir, when set, receives a histogram of the final weights per run.
	PlotDir string
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

// run holds what one block needs while it executes.
type run struct {
	id    string
	cfg   *specfile.Config
	sink  *report.Sink
	set   *patterns.Set
	short []string
	class []int
	wts   []float64
	net   *network.Network
	eval  *network.Evaluator

	// rng draws the initial weights and then the pruning decisions.
	rng *uni.Stream
}

// Run executes one run-block. Configuration and data errors are returned
// before any training starts.
func Run(block *specfile.Block, opts Options) (*report.Outcome, error) {
	if !block.OK() {
		return nil, block.Err()
	}
	r := &run{id: uuid.New().String(), cfg: block.Config, rng: uni.New(block.Config.Seed)}
	cfg := r.cfg
	log.Lvlf1("run %d (%s): %s %s", block.Index, r.id, cfg.Purpose, cfg.Mode)

	sink, err := report.Open(cfg.LongOutfile, opts.stderr())
	if err != nil {
		return nil, err
	}
	defer sink.Close()
	r.sink = sink
	report.WriteParams(sink, r.id, block)

	if err := r.load(); err != nil {
		return nil, err
	}

	o := report.Outcome{RunID: r.id, Block: block.Index}
	if cfg.Training() {
		r.train(&o)
		if err := r.net.Save(cfg.WtsOutfile); err != nil {
			return nil, err
		}
		sink.Printf("Weights written to %s\n", cfg.WtsOutfile)
	} else {
		w := r.net.W
		o.RMSError = r.eval.RMSErr(w, r.eval.ErrGrad(w, nil))
		o.StopReason = "test"
	}
	r.finalReport(&o)

	if cfg.ShortOutfile != "" {
		if err := report.AppendShort(cfg.ShortOutfile, cfg, o); err != nil {
			return nil, err
		}
	}
	if opts.SummaryDir != "" {
		path, err := report.WriteSummary(opts.SummaryDir, cfg, o)
		if err != nil {
			return nil, err
		}
		log.Lvl2("run summary written to", path)
	}
	if opts.PlotDir != "" {
		path := filepath.Join(opts.PlotDir, r.id+".png")
		if err := utils.WeightsHistogram(r.net.W, fmt.Sprintf("run %d weights", block.Index), path); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// load reads the patterns, class names, priors and weights.
func (r *run) load() error {
	cfg := r.cfg
	set, err := patterns.Load(cfg.Patsfile, cfg.PatsfileFormat,
		patterns.Shape{Npats: cfg.Npats, Nfeats: cfg.Ninps, Nouts: cfg.Nouts})
	if err != nil {
		return err
	}
	r.set = set

	src := priors.Source{
		Mode:           cfg.Priors,
		Npats:          cfg.Npats,
		ClassWtsFile:   cfg.ClassWtsInfile,
		PatternWtsFile: cfg.PatternWtsInfile,
	}
	if cfg.Classifier() {
		m, err := patterns.ReadClassMap(cfg.LcnScnInfile)
		if err != nil {
			return err
		}
		if r.short, err = patterns.ShortNames(set.ClassNames, m); err != nil {
			return errors.Wrapf(err, "matching %s against %s", cfg.LcnScnInfile, cfg.Patsfile)
		}
		r.class = set.Class
		src.Class, src.Short = r.class, r.short
		for c, n := range set.ClassCounts() {
			if n == 0 {
				log.Warnf("class %q has no patterns", r.short[c])
			}
		}
	}
	if r.wts, err = priors.FinalPatternWeights(r.sink, src); err != nil {
		return err
	}

	if err := r.loadNetwork(); err != nil {
		return err
	}

	ef := cfg.Err
	if ef == nil {
		ef = errfunc.MSE{}
	}
	var targets []float64
	if !cfg.Classifier() {
		targets = set.Targets
	}
	r.eval, err = network.NewEvaluator(r.net, ef, cfg.RegFac, set.FeatureMatrix(), r.class, targets, r.wts)
	return err
}

func (r *run) loadNetwork() error {
	cfg := r.cfg
	top := network.Topology{Ninps: cfg.Ninps, Nhids: cfg.Nhids, Nouts: cfg.Nouts}
	if cfg.WtsInfile == "" {
		r.net = network.New(top, cfg.Hidden, cfg.Output)
		r.net.Init(r.rng)
		r.sink.Printf("Initial weights drawn with seed %d\n", cfg.Seed)
		return nil
	}
	net, err := network.Load(cfg.WtsInfile)
	if err != nil {
		return err
	}
	if err := net.Check(top); err != nil {
		return errors.Wrapf(err, "weights file %s", cfg.WtsInfile)
	}
	if cfg.HasActivations && (net.Hidden != cfg.Hidden || net.Output != cfg.Output) {
		log.Warnf("%s uses %s/%s activations, specfile says %s/%s; using the weights file",
			cfg.WtsInfile, net.Hidden, net.Output, cfg.Hidden, cfg.Output)
	}
	r.net = net
	r.sink.Printf("Initial weights read from %s\n", cfg.WtsInfile)
	return nil
}

func (r *run) train(o *report.Outcome) {
	cfg := r.cfg
	mode, _ := prune.ParseMode(cfg.Boltzmann)
	t := &optimize.Trainer{
		Settings: optimize.Settings{
			NiterMax:        cfg.NiterMax,
			Egoal:           cfg.Egoal,
			Gwgoal:          cfg.Gwgoal,
			LbfgsMem:        cfg.LbfgsMem,
			LbfgsGtol:       cfg.LbfgsGtol,
			ScgEarlystopPct: cfg.ScgEarlystopPct,
			Oklvl:           cfg.Oklvl,
			Prune:           mode,
			Temperature:     cfg.Temperature,
		},
		Eval:    r.eval,
		Monitor: optimize.NewMonitor(cfg.Nfreq, cfg.Errdel, cfg.Nokdel, cfg.Pruning()),
		Rng:     r.rng,
		Out:     r.sink,
	}
	r.sink.Printf("Training: kmin %d\n", t.Monitor.Kmin())
	res := t.Run()
	r.sink.Printf("Stopped after %d iterations, code %d: %s\n", res.Iterations, res.Stop, res.Stop)
	if res.Pruned > 0 {
		r.sink.Printf("Pruned %d weights in total\n", res.Pruned)
	}
	o.Iterations = res.Iterations
	o.StopCode = int(res.Stop)
	o.StopReason = res.Stop.String()
	o.RMSError = res.RMSErr
	o.MinClass = res.MinClassRight
}

// finalReport writes the tally, the correct-vs-rejected table, the
// confusion matrix and the activations as the configuration asks.
func (r *run) finalReport(o *report.Outcome) {
	cfg := r.cfg
	acs := r.eval.Outputs()
	r.sink.Printf("RMS error %.6f\n", o.RMSError)
	if cfg.ShowAcsTimes1000 {
		report.WriteActivations(r.sink, acs, cfg.Nouts, r.class, r.short)
	}
	if !cfg.Classifier() {
		return
	}
	tally := report.TallyOutputs(acs, cfg.Nouts, r.class, r.wts, cfg.Oklvl)
	tally.WriteSummary(r.sink, r.short)
	o.Right, o.Wrong, o.Unknown = tally.RightPct(), tally.WrongPct(), tally.UnknownPct()
	o.MinClass = tally.MinClassRightPct()
	log.Lvlf2("unweighted accuracy %.2f%%", utils.ComputeAccuracy(utils.ClassifyRows(acs, cfg.Nouts), r.class))
	if cfg.DoCvr {
		cvr := report.NewCVR()
		cvr.AddOutputs(acs, cfg.Nouts, r.class, r.wts)
		cvr.Write(r.sink)
	}
	if cfg.DoConfuse {
		report.Confuse(acs, cfg.Nouts, r.class, r.wts).Write(r.sink, r.short)
	}
}
