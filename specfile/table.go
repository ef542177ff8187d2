package specfile

import "math"

// Kind is the value type of a parameter.
type Kind int

const (
	Int Kind = iota
	Float
	Filename
	Switch
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "integer"
	case Float:
		return "float"
	case Filename:
		return "filename"
	case Switch:
		return "switch"
	}
	return "unknown"
}

// Param describes one legal specfile parameter. Min and Max bound Int and
// Float values; Values lists the legal switch values, whose code is their
// index.
type Param struct {
	Name    string
	Kind    Kind
	Min     float64
	Max     float64
	Values  []string
	Default string
}

func intParam(name string, min, max float64) Param {
	return Param{Name: name, Kind: Int, Min: min, Max: max}
}

func floatParam(name string, min, max float64) Param {
	return Param{Name: name, Kind: Float, Min: min, Max: max}
}

func fileParam(name string) Param {
	return Param{Name: name, Kind: Filename}
}

func switchParam(name string, values ...string) Param {
	return Param{Name: name, Kind: Switch, Values: values}
}

func (p Param) withDefault(v string) Param {
	p.Default = v
	return p
}

var inf = math.Inf(1)

// Table is the closed set of parameters a specfile may set.
var Table = []Param{
	switchParam("purpose", "classifier", "fitter"),
	switchParam("train_or_test", "train", "test"),
	switchParam("errfunc", "mse", "type_1", "pos_sum"),
	floatParam("alpha", math.SmallestNonzeroFloat64, inf),
	floatParam("regfac", 0, inf).withDefault("0"),
	switchParam("acfunc_hids", "sinusoid", "sigmoid", "linear"),
	switchParam("acfunc_outs", "sinusoid", "sigmoid", "linear"),
	intParam("ninps", 1, inf),
	intParam("nhids", 1, inf),
	intParam("nouts", 1, inf),
	intParam("npats", 1, inf),
	intParam("seed", 1, inf),
	intParam("niter_max", 0, inf),
	floatParam("egoal", 0, inf),
	floatParam("gwgoal", 0, inf),
	floatParam("errdel", 0, inf),
	intParam("nfreq", 1, inf),
	floatParam("nokdel", 0, inf),
	floatParam("oklvl", 0, 1),
	switchParam("boltzmann", "no_prune", "abs_prune", "square_prune").withDefault("no_prune"),
	floatParam("temperature", 0, inf),
	switchParam("priors", "allsame", "class", "pattern", "both").withDefault("allsame"),
	fileParam("class_wts_infile"),
	fileParam("pattern_wts_infile"),
	fileParam("lcn_scn_infile"),
	fileParam("patsfile"),
	switchParam("patsfile_ascii_or_binary", "ascii", "binary"),
	fileParam("wts_infile"),
	fileParam("wts_outfile"),
	fileParam("short_outfile"),
	fileParam("long_outfile"),
	intParam("lbfgs_mem", 1, 100).withDefault("5"),
	floatParam("lbfgs_gtol", 0, inf).withDefault("1e-6"),
	floatParam("scg_earlystop_pct", 0, 100).withDefault("60"),
	switchParam("do_confuse", "true", "false").withDefault("true"),
	switchParam("do_cvr", "true", "false").withDefault("true"),
	switchParam("show_acs_times_1000", "true", "false").withDefault("false"),
}

var index = func() map[string]int {
	m := make(map[string]int, len(Table))
	for i, p := range Table {
		m[p.Name] = i
	}
	return m
}()

// Lookup returns the table entry for name.
func Lookup(name string) (Param, bool) {
	i, ok := index[name]
	if !ok {
		return Param{}, false
	}
	return Table[i], true
}
