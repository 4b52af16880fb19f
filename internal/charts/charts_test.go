package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderBarChart(t *testing.T) {
	data := []DataPoint{
		{Label: "DARK", Value: 12},
		{Label: "LIGHT", Value: 8},
	}
	config := DefaultChartConfig()
	config.Title = "Attribute Distribution"

	path := filepath.Join(t.TempDir(), "attributes.html")
	if err := RenderBarChart(data, config, path); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	html, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, want := range []string{"Attribute Distribution", "DARK", "LIGHT"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("expected rendered chart to contain %q", want)
		}
	}
}

func TestRenderPieChart(t *testing.T) {
	data := []DataPoint{
		{Label: "Monster", Value: 25},
		{Label: "Spell", Value: 10},
		{Label: "Trap", Value: 5},
	}

	path := filepath.Join(t.TempDir(), "types.html")
	if err := RenderPieChart(data, DefaultChartConfig(), path); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	html, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(html), "Monster") {
		t.Error("expected rendered chart to contain series data")
	}
}

func TestRenderBarChartBadPath(t *testing.T) {
	err := RenderBarChart(nil, DefaultChartConfig(), "/does/not/exist/chart.html")
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}
