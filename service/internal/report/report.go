// internal/report/report.go
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	engine "github.com/jason-s-yu/templesim/engine"
	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Columns is the CSV header, in row order.
var Columns = []string{
	"mechanic",
	"incursions_per_map",
	"skip_after_alpha",
	"skip_after_gamma",
	"skip_after_beta",
	"skip_last_if_level0",
	"switch_if_level0",
	"total_alpha",
	"total_gamma",
	"total_both",
	"only_alpha",
	"only_gamma",
	"total_any",
	"summed_epochs",
}

var printer = message.NewPrinter(language.English)

// Header is the banner printed before a mechanic's sweep.
func Header(mechanic uint8, trials int, seed uint64) string {
	return printer.Sprintf("mechanic=%d trials=%d", mechanic, trials) + " seed=" + strconv.FormatUint(seed, 10)
}

// RulesList renders a rule set as a bracketed list:
// [mechanic, incursions, alpha, gamma, beta, skip_last, switch].
func RulesList(r engine.RuleSet) string {
	return fmt.Sprintf("[%d, %d, %s, %s, %s, %s, %s]",
		r.Mechanic, r.IncursionsPerMap,
		pyBool(r.SkipAfterAlpha), pyBool(r.SkipAfterGamma), pyBool(r.SkipAfterBeta),
		pyBool(r.SkipLastIfLevel0), pyBool(r.SwitchIfLevel0))
}

// Summary is the two-line console report of one row.
func Summary(row experiment.Row) string {
	t := row.Tally
	return fmt.Sprintf("%s\n"+
		"Alpha:%05.2f%% / "+
		"Gamma: %05.2f%% / "+
		"Both: %05.2f%% / "+
		"Only Alpha: %05.2f%% / "+
		"Only Gamma: %05.2f%% / "+
		"Any: %05.2f%% / "+
		"Avg maps: %.2f",
		RulesList(row.Rules),
		t.Percent(t.TotalAlpha),
		t.Percent(t.TotalGamma),
		t.Percent(t.TotalBoth),
		t.Percent(t.OnlyAlpha),
		t.Percent(t.OnlyGamma),
		t.Percent(t.TotalAny),
		t.AvgEpochs())
}

// Record converts a row to its CSV fields.
func Record(row experiment.Row) []string {
	r, t := row.Rules, row.Tally
	return []string{
		strconv.Itoa(int(r.Mechanic)),
		strconv.Itoa(int(r.IncursionsPerMap)),
		pyBool(r.SkipAfterAlpha),
		pyBool(r.SkipAfterGamma),
		pyBool(r.SkipAfterBeta),
		pyBool(r.SkipLastIfLevel0),
		pyBool(r.SwitchIfLevel0),
		strconv.Itoa(t.TotalAlpha),
		strconv.Itoa(t.TotalGamma),
		strconv.Itoa(t.TotalBoth),
		strconv.Itoa(t.OnlyAlpha),
		strconv.Itoa(t.OnlyGamma),
		strconv.Itoa(t.TotalAny),
		strconv.Itoa(t.Epochs),
	}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []experiment.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(Record(row)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// FileName is the CSV file name of one mechanic.
func FileName(mechanic uint8) string {
	return fmt.Sprintf("temple_simulation_mechanic_%d.csv", mechanic)
}

// SaveCSV writes rows to FileName(mechanic) under dir, creating dir if
// needed, and returns the path written.
func SaveCSV(dir string, mechanic uint8, rows []experiment.Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(mechanic))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// pyBool spells booleans the way pandas writes them.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
