package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fitglue/musclemap/pkg/musclemap"
)

func TestReadRecords_NoSource(t *testing.T) {
	records, err := readRecords("", "", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records != nil {
		t.Errorf("expected nil records without a source, got %v", records)
	}
}

func TestReadRecords_Errors(t *testing.T) {
	if _, err := readRecords(filepath.Join(t.TempDir(), "missing.json"), "", "UTC"); err == nil {
		t.Error("expected error for a missing Garmin file")
	}
	if _, err := readRecords("", "*.fit", "Mars/Olympus"); err == nil {
		t.Error("expected error for an unknown time zone")
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := &musclemap.Result{HeatMap: []byte("png")}

	heatMap, radial, err := writeOutputs(dir, res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data, err := os.ReadFile(heatMap); err != nil || string(data) != "png" {
		t.Errorf("heat map not written: %v", err)
	}
	if _, err := os.Stat(radial); err != nil {
		t.Errorf("radial chart not written: %v", err)
	}
}

func TestWriteOutputs_ReturnsError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := writeOutputs(filepath.Join(file, "sub"), &musclemap.Result{}); err == nil {
		t.Error("expected error when the output directory cannot be created")
	}
}
