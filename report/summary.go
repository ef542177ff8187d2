package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpclass/mlp/specfile"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Outcome is the result of one run as recorded in the short outfile and the
// run summary.
type Outcome struct {
	RunID      string  `toml:"run_id"`
	Block      int     `toml:"block"`
	Iterations int     `toml:"iterations"`
	StopCode   int     `toml:"stop_code"`
	StopReason string  `toml:"stop_reason"`
	RMSError   float64 `toml:"rms_error"`
	Right      float64 `toml:"right_pct"`
	Wrong      float64 `toml:"wrong_pct"`
	Unknown    float64 `toml:"unknown_pct"`
	MinClass   float64 `toml:"min_class_right_pct"`
}

// Summary is the TOML document written per run.
type Summary struct {
	Outcome Outcome         `toml:"outcome"`
	Config  specfile.Config `toml:"config"`
}

// ShortLine formats the one-line run summary.
func ShortLine(cfg *specfile.Config, o Outcome) string {
	return fmt.Sprintf("%s %s iter %d stop %d rms %.6f right %.2f wrong %.2f unknown %.2f\n",
		cfg.Purpose, cfg.Mode, o.Iterations, o.StopCode, o.RMSError, o.Right, o.Wrong, o.Unknown)
}

// AppendShort appends the one-line summary of a run to path.
func AppendShort(path string, cfg *specfile.Config, o Outcome) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening short outfile %s", path)
	}
	defer f.Close()
	if _, err := f.WriteString(ShortLine(cfg, o)); err != nil {
		return errors.Wrapf(err, "writing short outfile %s", path)
	}
	return nil
}

// WriteSummary marshals the run summary to dir/<run id>.toml and returns
// the file path.
func WriteSummary(dir string, cfg *specfile.Config, o Outcome) (string, error) {
	b, err := toml.Marshal(Summary{Outcome: o, Config: *cfg})
	if err != nil {
		return "", errors.Wrap(err, "encoding run summary")
	}
	path := filepath.Join(dir, o.RunID+".toml")
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", errors.Wrapf(err, "writing run summary %s", path)
	}
	return path, nil
}
