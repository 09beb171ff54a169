package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/langchou/teslog/internal/models"
)

func TestAnalyzeEmptyRows(t *testing.T) {
	if got := Analyze(nil, models.DefaultAnalysisSettings(), models.FileInfo{}, "v"); got != nil {
		t.Fatal("expected nil result for empty rows")
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 40, 1000.0, 80),
		drivingRow(2, 60, 1002.5, 77.5),
		drivingRow(3, 55, 1005.0, 75),
		idleRow(4),
		chargingRow(5, 11, 75),
		chargingRow(6, 11, 80),
		idleRow(7),
	}
	fileInfo := models.FileInfo{Name: "log.csv", SizeMb: 1.5, Rows: len(rows)}

	result := Analyze(rows, models.DefaultAnalysisSettings(), fileInfo, "VIN1-Car")
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Summary.TotalTrips != 1 || result.Summary.TotalChargingSessions != 1 {
		t.Fatalf("unexpected summary %+v", result.Summary)
	}
	if result.Summary.TotalDistanceKm != 5.0 {
		t.Fatalf("expected distance 5.0, got %v", result.Summary.TotalDistanceKm)
	}
	if result.CarInfo.ID != "VIN1-Car" {
		t.Fatalf("unexpected car id %q", result.CarInfo.ID)
	}
	if !result.DateRange.Start.Equal(testBase) || !result.DateRange.End.Equal(testBase.Add(7*time.Minute)) {
		t.Fatalf("unexpected date range %+v", result.DateRange)
	}
	if !reflect.DeepEqual(result.UniqueMonths, []string{"2024-05"}) {
		t.Fatalf("unexpected months %v", result.UniqueMonths)
	}
	if result.FileInfo != fileInfo {
		t.Fatalf("expected file info carried through, got %+v", result.FileInfo)
	}
}

func TestAnalyzeVehicles(t *testing.T) {
	byVehicle := map[string][]models.Row{
		"VIN2-Two": {
			idleRow(0),
			drivingRow(1, 40, 2000.0, 90),
			drivingRow(2, 40, 2002.0, 89),
			idleRow(3),
		},
		"VIN1-One": {
			idleRow(0),
			drivingRow(1, 40, 1000.0, 80),
			drivingRow(2, 40, 1001.0, 79),
			idleRow(3),
		},
	}
	fileInfo := models.FileInfo{Name: "batch", SizeMb: 2, Rows: 8}

	results := AnalyzeVehicles(byVehicle, models.DefaultAnalysisSettings(), fileInfo)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// 车辆键升序，结果顺序确定
	if results[0].CarInfo.ID != "VIN1-One" || results[1].CarInfo.ID != "VIN2-Two" {
		t.Fatalf("unexpected vehicle order %s, %s", results[0].CarInfo.ID, results[1].CarInfo.ID)
	}
	if results[0].FileInfo.Name != "batch - VIN1-One" {
		t.Fatalf("unexpected per-vehicle file name %q", results[0].FileInfo.Name)
	}
	if results[0].FileInfo.Rows != 4 {
		t.Fatalf("expected per-vehicle row count 4, got %d", results[0].FileInfo.Rows)
	}
}
