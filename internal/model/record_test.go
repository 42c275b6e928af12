package model

import (
	"testing"
)

func TestFieldsValuesAlignment(t *testing.T) {
	r := DeviceRecord{
		ComputerName:    "MSI",
		OperatingSystem: "Windows",
		ProcessorModel:  "Intel(R) Core(TM) i7-14650HX",
		MACAddress:      "34-5A-60-22-18-B2",
		IPAddress:       "192.168.1.102",
		SystemTime:      "19:01:19",
		ActivePorts:     "135, 445, 5040",
		InternetSpeed:   "download: 87.23 Mb/s, upload: 11.05 Mb/s",
	}

	fields := Fields()
	values := r.Values()

	if len(fields) != len(values) {
		t.Fatalf("Fields() has %d entries, Values() has %d", len(fields), len(values))
	}

	for i, col := range fields {
		got, ok := r.ValueByColumn(col)
		if !ok {
			t.Errorf("ValueByColumn(%q) reported unknown column", col)
			continue
		}
		if got != values[i] {
			t.Errorf("column %q: ValueByColumn returned %q, Values()[%d] is %q", col, got, i, values[i])
		}
	}
}

func TestValueByColumnUnknown(t *testing.T) {
	var r DeviceRecord
	if _, ok := r.ValueByColumn("serial_number"); ok {
		t.Error("expected unknown column to report ok=false")
	}
}

func TestFromRow(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		row    []string
		want   DeviceRecord
	}{
		{
			name:   "canonical order",
			header: Fields(),
			row:    []string{"MSI", "Windows", "i7", "34-5A-60-22-18-B2", "192.168.1.102", "19:01:19", "135", "download: 1.00 Mb/s, upload: 1.00 Mb/s"},
			want: DeviceRecord{
				ComputerName:    "MSI",
				OperatingSystem: "Windows",
				ProcessorModel:  "i7",
				MACAddress:      "34-5A-60-22-18-B2",
				IPAddress:       "192.168.1.102",
				SystemTime:      "19:01:19",
				ActivePorts:     "135",
				InternetSpeed:   "download: 1.00 Mb/s, upload: 1.00 Mb/s",
			},
		},
		{
			name:   "reordered header",
			header: []string{"mac_address", "computer_name", "ip_address"},
			row:    []string{"AA:BB:CC:DD:EE:FF", "office-01", "10.0.0.7"},
			want: DeviceRecord{
				ComputerName: "office-01",
				MACAddress:   "AA:BB:CC:DD:EE:FF",
				IPAddress:    "10.0.0.7",
			},
		},
		{
			name:   "unknown columns skipped",
			header: []string{"serial_number", "mac_address"},
			row:    []string{"SN-0001", "AA:BB:CC:DD:EE:FF"},
			want: DeviceRecord{
				MACAddress: "AA:BB:CC:DD:EE:FF",
			},
		},
		{
			name:   "short row tolerated",
			header: Fields(),
			row:    []string{"laptop-9", "Linux"},
			want: DeviceRecord{
				ComputerName:    "laptop-9",
				OperatingSystem: "Linux",
			},
		},
		{
			name:   "empty row",
			header: Fields(),
			row:    nil,
			want:   DeviceRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRow(tt.header, tt.row)
			if got != tt.want {
				t.Errorf("FromRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
