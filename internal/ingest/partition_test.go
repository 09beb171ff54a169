package ingest

import (
	"testing"

	"github.com/langchou/teslog/internal/models"
)

func TestVehicleKey(t *testing.T) {
	cases := []struct {
		name string
		row  models.Row
		want string
	}{
		{"full identity", models.Row{VIN: "VIN1", VehicleName: "Car"}, "VIN1-Car"},
		{"display name fallback", models.Row{VIN: "VIN1", DisplayName: "Display"}, "VIN1-Display"},
		{"vehicle name wins over display", models.Row{VIN: "VIN1", VehicleName: "Car", DisplayName: "Display"}, "VIN1-Car"},
		{"missing vin", models.Row{VehicleName: "Car"}, "unknown_vin-Car"},
		{"missing everything", models.Row{}, "unknown_vin-Unknown Vehicle"},
	}
	for _, c := range cases {
		if got := VehicleKey(c.row); got != c.want {
			t.Fatalf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestPartitionByVehicle(t *testing.T) {
	rows := []models.Row{
		{VIN: "VIN1", VehicleName: "One", Timestamp: 300},
		{VIN: "VIN2", VehicleName: "Two", Timestamp: 100},
		{VIN: "VIN1", VehicleName: "One", Timestamp: 100},
		{VIN: "VIN1", VehicleName: "One", Timestamp: 200},
	}

	byVehicle := PartitionByVehicle(rows)
	if len(byVehicle) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(byVehicle))
	}

	one := byVehicle["VIN1-One"]
	if len(one) != 3 {
		t.Fatalf("expected 3 rows for VIN1, got %d", len(one))
	}
	// 每组按时间升序
	for i := 1; i < len(one); i++ {
		if one[i-1].Timestamp > one[i].Timestamp {
			t.Fatal("expected rows sorted by timestamp within each vehicle")
		}
	}
	if len(byVehicle["VIN2-Two"]) != 1 {
		t.Fatalf("unexpected rows for VIN2: %d", len(byVehicle["VIN2-Two"]))
	}
}

func TestSortRowsStable(t *testing.T) {
	rows := []models.Row{
		{Timestamp: 100, SpeedKph: 1},
		{Timestamp: 100, SpeedKph: 2},
		{Timestamp: 50, SpeedKph: 3},
	}
	SortRows(rows)
	if rows[0].Timestamp != 50 {
		t.Fatalf("expected earliest row first, got %d", rows[0].Timestamp)
	}
	// 相同时间戳保持原有相对顺序
	if rows[1].SpeedKph != 1 || rows[2].SpeedKph != 2 {
		t.Fatal("expected stable ordering for equal timestamps")
	}
}
