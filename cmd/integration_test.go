package cmd

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tipsight/internal/dataset"
	"github.com/KaramelBytes/tipsight/internal/render"
	"github.com/KaramelBytes/tipsight/internal/stats"
)

var fixtureRows = []string{
	"total_bill,tip,sex,smoker,day,time,size",
	"16.99,1.01,Female,No,Sun,Dinner,2",
	"10.34,1.66,Male,No,Sun,Dinner,3",
	"21.01,3.50,Male,No,Sun,Dinner,3",
	"23.68,3.31,Male,Yes,Sat,Dinner,2",
	"24.59,3.61,Female,No,Sun,Dinner,4",
	"25.29,4.71,Male,No,Sat,Dinner,4",
	"8.77,2.00,Male,Yes,Thur,Lunch,2",
	"26.88,3.12,Male,No,Fri,Dinner,4",
	"15.04,1.96,Female,Yes,Thur,Lunch,2",
	"14.78,3.23,Male,No,Fri,Lunch,2",
}

func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tips.csv")
	if err := os.WriteFile(path, []byte(strings.Join(fixtureRows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// execCmd executes the root command with args, resetting sticky flag state
// that persists Changed across invocations.
func execCmd(t *testing.T, args ...string) error {
	t.Helper()
	for _, name := range []string{"output-dir", "config", "debug"} {
		if fl := rootCmd.PersistentFlags().Lookup(name); fl != nil {
			fl.Changed = false
		}
	}
	if fl := statsCmd.Flags().Lookup("format"); fl != nil {
		_ = fl.Value.Set("text")
		fl.Changed = false
	}
	if fl := statsCmd.Flags().Lookup("output"); fl != nil {
		_ = fl.Value.Set("")
		fl.Changed = false
	}
	if fl := chartsCmd.Flags().Lookup("only"); fl != nil {
		fl.Changed = false
	}
	statsFormat = "text"
	statsOutput = ""
	chartsOnly = nil
	flagOutputDir = ""
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCLI_RunProducesCharts(t *testing.T) {
	csvPath := writeFixtureCSV(t)
	outDir := filepath.Join(t.TempDir(), "out")
	if err := execCmd(t, "run", csvPath, "--output-dir", outDir); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range render.Names() {
		info, err := os.Stat(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("artifact %s is empty", name)
		}
	}
}

func TestCLI_StatsYAML(t *testing.T) {
	csvPath := writeFixtureCSV(t)
	outFile := filepath.Join(t.TempDir(), "summary.yaml")
	if err := execCmd(t, "stats", csvPath, "--format", "yaml", "--output", outFile); err != nil {
		t.Fatalf("stats: %v", err)
	}
	b, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum stats.Summary
	if err := yaml.Unmarshal(b, &sum); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if sum.Rows != 10 {
		t.Fatalf("rows = %d, want 10", sum.Rows)
	}
	if math.Abs(sum.Tip.Mean-2.811) > 1e-6 {
		t.Fatalf("mean tip = %f", sum.Tip.Mean)
	}
}

func TestCLI_ChartsOnly(t *testing.T) {
	csvPath := writeFixtureCSV(t)
	outDir := filepath.Join(t.TempDir(), "out")
	if err := execCmd(t, "charts", csvPath, "--output-dir", outDir, "--only", "tip_rate_by_day.png"); err != nil {
		t.Fatalf("charts: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "tip_rate_by_day.png")); err != nil {
		t.Fatalf("missing artifact: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "bill_vs_tip_scatter.png")); !os.IsNotExist(err) {
		t.Fatalf("unexpected scatter artifact (err=%v)", err)
	}
}

func TestCLI_MissingFileFails(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	err := execCmd(t, "run", filepath.Join(t.TempDir(), "absent.csv"), "--output-dir", outDir)
	if err == nil {
		t.Fatal("expected run to fail for missing input")
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Fatalf("output dir should not exist after failed load (err=%v)", statErr)
	}
}

func TestCLI_HeaderOnlyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.csv")
	if err := os.WriteFile(path, []byte(fixtureRows[0]+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	err := execCmd(t, "run", path, "--output-dir", filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "no data rows") {
		t.Fatalf("error = %v, want no data rows", err)
	}
}

// TestReferenceDataset pins the aggregate values of the bundled 244-row
// dataset.
func TestReferenceDataset(t *testing.T) {
	tab, err := dataset.Load(filepath.Join("..", "data", "tips.csv"))
	if err != nil {
		t.Fatalf("load reference dataset: %v", err)
	}
	if tab.Len() != 244 {
		t.Fatalf("rows = %d, want 244", tab.Len())
	}
	sum, err := stats.Summarize(tab)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if math.Abs(sum.Tip.Mean-2.998) > 0.005 {
		t.Fatalf("mean tip = %f, want ≈2.998", sum.Tip.Mean)
	}
	if math.Abs(sum.TotalBill.Mean-19.79) > 0.01 {
		t.Fatalf("mean total_bill = %f, want ≈19.79", sum.TotalBill.Mean)
	}
}
