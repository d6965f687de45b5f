package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/tipsight/internal/dataset"
	"github.com/KaramelBytes/tipsight/internal/stats"
)

func fixtureTable() *dataset.Table {
	return &dataset.Table{
		Source: "tips.csv",
		Records: []dataset.Record{
			{TotalBill: 16.99, Tip: 1.01, Sex: dataset.Female, Smoker: dataset.SmokerNo, Day: dataset.Sun, Meal: dataset.Dinner, Size: 2},
			{TotalBill: 10.34, Tip: 1.66, Sex: dataset.Male, Smoker: dataset.SmokerNo, Day: dataset.Sun, Meal: dataset.Dinner, Size: 3},
			{TotalBill: 21.01, Tip: 3.50, Sex: dataset.Male, Smoker: dataset.SmokerNo, Day: dataset.Sun, Meal: dataset.Dinner, Size: 3},
			{TotalBill: 23.68, Tip: 3.31, Sex: dataset.Male, Smoker: dataset.SmokerYes, Day: dataset.Sat, Meal: dataset.Dinner, Size: 2},
			{TotalBill: 24.59, Tip: 3.61, Sex: dataset.Female, Smoker: dataset.SmokerNo, Day: dataset.Sun, Meal: dataset.Dinner, Size: 4},
			{TotalBill: 25.29, Tip: 4.71, Sex: dataset.Male, Smoker: dataset.SmokerNo, Day: dataset.Sat, Meal: dataset.Dinner, Size: 4},
			{TotalBill: 8.77, Tip: 2.00, Sex: dataset.Male, Smoker: dataset.SmokerYes, Day: dataset.Thur, Meal: dataset.Lunch, Size: 2},
			{TotalBill: 26.88, Tip: 3.12, Sex: dataset.Male, Smoker: dataset.SmokerNo, Day: dataset.Fri, Meal: dataset.Dinner, Size: 4},
			{TotalBill: 15.04, Tip: 1.96, Sex: dataset.Female, Smoker: dataset.SmokerYes, Day: dataset.Thur, Meal: dataset.Lunch, Size: 2},
			{TotalBill: 14.78, Tip: 3.23, Sex: dataset.Male, Smoker: dataset.SmokerNo, Day: dataset.Fri, Meal: dataset.Lunch, Size: 2},
		},
	}
}

func TestRenderAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	arts, err := Render(fixtureTable(), dir, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != len(Names()) {
		t.Fatalf("artifacts = %d, want %d", len(arts), len(Names()))
	}
	for i, name := range Names() {
		if arts[i].Name != name {
			t.Fatalf("artifact[%d] = %q, want %q", i, arts[i].Name, name)
		}
		info, err := os.Stat(arts[i].Path)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	tab := fixtureTable()
	dirA, dirB := t.TempDir(), t.TempDir()
	if _, err := Render(tab, dirA, DefaultOptions(), nil); err != nil {
		t.Fatalf("first render: %v", err)
	}
	if _, err := Render(tab, dirB, DefaultOptions(), nil); err != nil {
		t.Fatalf("second render: %v", err)
	}
	for _, name := range Names() {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%s differs between identical runs", name)
		}
	}
}

func TestRenderOnlySubset(t *testing.T) {
	dir := t.TempDir()
	arts, err := Render(fixtureTable(), dir, DefaultOptions(), []string{"tip_rate_by_day.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != 1 || arts[0].Name != "tip_rate_by_day.png" {
		t.Fatalf("artifacts = %#v", arts)
	}
	if _, err := os.Stat(filepath.Join(dir, "bill_vs_tip_scatter.png")); !os.IsNotExist(err) {
		t.Fatalf("unexpected scatter artifact (err=%v)", err)
	}
}

func TestRenderUnknownChart(t *testing.T) {
	_, err := Render(fixtureTable(), t.TempDir(), DefaultOptions(), []string{"nope.png"})
	if err == nil {
		t.Fatal("expected error for unknown chart name")
	}
}

func TestRenderNoData(t *testing.T) {
	_, err := Render(&dataset.Table{Source: "empty.csv"}, t.TempDir(), DefaultOptions(), nil)
	if !errors.Is(err, stats.ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
}

func TestRenderUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.MkdirAll(dir, 0o555); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Render(fixtureTable(), filepath.Join(dir, "out"), DefaultOptions(), nil); err == nil {
		t.Fatal("expected error for unwritable output dir")
	}
}
