package specfile

import (
	"github.com/fpclass/mlp/activation"
	"github.com/fpclass/mlp/errfunc"
	"github.com/pkg/errors"
)

// Switch values used by the driver.
const (
	PurposeClassifier = "classifier"
	PurposeFitter     = "fitter"
	ModeTrain         = "train"
	ModeTest          = "test"
	NoPrune           = "no_prune"
	AbsPrune          = "abs_prune"
	SquarePrune       = "square_prune"
	PriorsAllSame     = "allsame"
	PriorsClass       = "class"
	PriorsPattern     = "pattern"
	PriorsBoth        = "both"
	FormatASCII       = "ascii"
	FormatBinary      = "binary"
)

// Config is the typed, validated configuration of one run-block.
type Config struct {
	Purpose string  `toml:"purpose"`
	Mode    string  `toml:"train_or_test"`
	ErrFunc string  `toml:"errfunc"`
	Alpha   float64 `toml:"alpha"`
	RegFac  float64 `toml:"regfac"`

	AcfuncHids string `toml:"acfunc_hids"`
	AcfuncOuts string `toml:"acfunc_outs"`

	Ninps int `toml:"ninps"`
	Nhids int `toml:"nhids"`
	Nouts int `toml:"nouts"`
	Npats int `toml:"npats"`
	Seed  int `toml:"seed"`

	NiterMax int     `toml:"niter_max"`
	Egoal    float64 `toml:"egoal"`
	Gwgoal   float64 `toml:"gwgoal"`
	Errdel   float64 `toml:"errdel"`
	Nfreq    int     `toml:"nfreq"`
	Nokdel   float64 `toml:"nokdel"`
	Oklvl    float64 `toml:"oklvl"`

	Boltzmann   string  `toml:"boltzmann"`
	Temperature float64 `toml:"temperature"`

	Priors           string `toml:"priors"`
	ClassWtsInfile   string `toml:"class_wts_infile"`
	PatternWtsInfile string `toml:"pattern_wts_infile"`
	LcnScnInfile     string `toml:"lcn_scn_infile"`
	Patsfile         string `toml:"patsfile"`
	PatsfileFormat   string `toml:"patsfile_ascii_or_binary"`
	WtsInfile        string `toml:"wts_infile"`
	WtsOutfile       string `toml:"wts_outfile"`
	ShortOutfile     string `toml:"short_outfile"`
	LongOutfile      string `toml:"long_outfile"`

	LbfgsMem        int     `toml:"lbfgs_mem"`
	LbfgsGtol       float64 `toml:"lbfgs_gtol"`
	ScgEarlystopPct float64 `toml:"scg_earlystop_pct"`

	DoConfuse        bool `toml:"do_confuse"`
	DoCvr            bool `toml:"do_cvr"`
	ShowAcsTimes1000 bool `toml:"show_acs_times_1000"`

	// HasActivations is false when the activation functions are to be taken
	// from the weights file.
	HasActivations bool            `toml:"-"`
	Hidden         activation.Func `toml:"-"`
	Output         activation.Func `toml:"-"`
	Err            errfunc.Func    `toml:"-"`
}

// Classifier reports whether the run trains or tests a classifier.
func (c *Config) Classifier() bool { return c.Purpose == PurposeClassifier }

// Training reports whether the run trains weights.
func (c *Config) Training() bool { return c.Mode == ModeTrain }

// Pruning reports whether Boltzmann pruning is active.
func (c *Config) Pruning() bool { return c.Boltzmann != NoPrune && c.Temperature > 0 }

// Resolve checks that every parameter required by the purpose/mode
// combination is set and returns the typed configuration. All problems are
// returned, not just the first.
func Resolve(s *Store) (*Config, []error) {
	var errs []error
	need := func(name, why string) {
		if !s.IsSet(name) {
			errs = append(errs, errors.Wrapf(ErrMissing, "%s (%s)", name, why))
		}
	}

	need("purpose", "always")
	need("train_or_test", "always")
	if len(errs) > 0 {
		return nil, errs
	}

	c := &Config{
		Purpose: s.String("purpose"),
		Mode:    s.String("train_or_test"),
		ErrFunc: s.String("errfunc"),
		Alpha:   s.Float("alpha"),
		RegFac:  s.Float("regfac"),

		AcfuncHids: s.String("acfunc_hids"),
		AcfuncOuts: s.String("acfunc_outs"),

		Ninps: s.Int("ninps"),
		Nhids: s.Int("nhids"),
		Nouts: s.Int("nouts"),
		Npats: s.Int("npats"),
		Seed:  s.Int("seed"),

		NiterMax: s.Int("niter_max"),
		Egoal:    s.Float("egoal"),
		Gwgoal:   s.Float("gwgoal"),
		Errdel:   s.Float("errdel"),
		Nfreq:    s.Int("nfreq"),
		Nokdel:   s.Float("nokdel"),
		Oklvl:    s.Float("oklvl"),

		Boltzmann:   s.String("boltzmann"),
		Temperature: s.Float("temperature"),

		Priors:           s.String("priors"),
		ClassWtsInfile:   s.String("class_wts_infile"),
		PatternWtsInfile: s.String("pattern_wts_infile"),
		LcnScnInfile:     s.String("lcn_scn_infile"),
		Patsfile:         s.String("patsfile"),
		PatsfileFormat:   s.String("patsfile_ascii_or_binary"),
		WtsInfile:        s.String("wts_infile"),
		WtsOutfile:       s.String("wts_outfile"),
		ShortOutfile:     s.String("short_outfile"),
		LongOutfile:      s.String("long_outfile"),

		LbfgsMem:        s.Int("lbfgs_mem"),
		LbfgsGtol:       s.Float("lbfgs_gtol"),
		ScgEarlystopPct: s.Float("scg_earlystop_pct"),

		DoConfuse:        s.Bool("do_confuse"),
		DoCvr:            s.Bool("do_cvr"),
		ShowAcsTimes1000: s.Bool("show_acs_times_1000"),
	}

	for _, name := range []string{"ninps", "nhids", "nouts", "npats", "patsfile", "patsfile_ascii_or_binary"} {
		need(name, "always")
	}

	if c.Classifier() {
		need("lcn_scn_infile", "purpose classifier")
		need("oklvl", "purpose classifier")
	}

	if c.Training() {
		why := "train_or_test train"
		for _, name := range []string{"errfunc", "niter_max", "egoal", "gwgoal", "errdel", "nfreq", "wts_outfile"} {
			need(name, why)
		}
		if c.Classifier() {
			need("priors", "purpose classifier, train_or_test train")
			need("nokdel", "purpose classifier, train_or_test train")
		}
		if !s.IsSet("wts_infile") {
			need("seed", "training without wts_infile")
			need("acfunc_hids", "training without wts_infile")
			need("acfunc_outs", "training without wts_infile")
		}
		if c.ErrFunc == "type_1" {
			need("alpha", "errfunc type_1")
		}
		if c.Boltzmann != NoPrune {
			need("temperature", "boltzmann "+c.Boltzmann)
		}
	} else {
		need("wts_infile", "train_or_test test")
	}

	switch c.Priors {
	case PriorsClass:
		need("class_wts_infile", "priors class")
	case PriorsPattern:
		need("pattern_wts_infile", "priors pattern")
	case PriorsBoth:
		need("class_wts_infile", "priors both")
		need("pattern_wts_infile", "priors both")
	}

	if !c.Classifier() {
		if c.Training() && s.IsSet("errfunc") && c.ErrFunc != "mse" {
			errs = append(errs, errors.Wrapf(ErrConflict, "purpose fitter requires errfunc mse, got %s", c.ErrFunc))
		}
		if c.Priors == PriorsClass || c.Priors == PriorsBoth {
			errs = append(errs, errors.Wrapf(ErrConflict, "purpose fitter cannot use priors %s", c.Priors))
		}
	}

	if s.IsSet("acfunc_hids") && s.IsSet("acfunc_outs") {
		c.HasActivations = true
		c.Hidden, _ = activation.Parse(c.AcfuncHids)
		c.Output, _ = activation.Parse(c.AcfuncOuts)
	}

	if s.IsSet("errfunc") && (c.ErrFunc != "type_1" || s.IsSet("alpha")) {
		f, err := errfunc.Parse(c.ErrFunc, c.Alpha)
		if err != nil {
			errs = append(errs, err)
		}
		c.Err = f
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}
