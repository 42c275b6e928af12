package model

// Column names of a catalogued device snapshot, in canonical order.
const (
	ColumnComputerName    = "computer_name"
	ColumnOperatingSystem = "operating_system"
	ColumnProcessorModel  = "processor_model"
	ColumnMACAddress      = "mac_address"
	ColumnIPAddress       = "ip_address"
	ColumnSystemTime      = "system_time"
	ColumnActivePorts     = "active_ports"
	ColumnInternetSpeed   = "internet_speed"
)

// DeviceRecord is a single snapshot of the machine the collector runs on.
// Every value is kept as a string: the store is a flat CSV file and the
// probes already render human-readable text.
type DeviceRecord struct {
	ComputerName    string `json:"computer_name"`
	OperatingSystem string `json:"operating_system"`
	ProcessorModel  string `json:"processor_model"`
	MACAddress      string `json:"mac_address"`
	IPAddress       string `json:"ip_address"`
	SystemTime      string `json:"system_time"`
	ActivePorts     string `json:"active_ports"`
	InternetSpeed   string `json:"internet_speed"`
}

// Fields returns the column names in canonical order. A store created by
// this program writes its header row in exactly this order.
func Fields() []string {
	return []string{
		ColumnComputerName,
		ColumnOperatingSystem,
		ColumnProcessorModel,
		ColumnMACAddress,
		ColumnIPAddress,
		ColumnSystemTime,
		ColumnActivePorts,
		ColumnInternetSpeed,
	}
}

// Values returns the record's values in canonical column order, matching
// Fields.
func (r DeviceRecord) Values() []string {
	return []string{
		r.ComputerName,
		r.OperatingSystem,
		r.ProcessorModel,
		r.MACAddress,
		r.IPAddress,
		r.SystemTime,
		r.ActivePorts,
		r.InternetSpeed,
	}
}

// ValueByColumn returns the field value for a column name. The second
// return is false for column names the record does not carry.
func (r DeviceRecord) ValueByColumn(name string) (string, bool) {
	switch name {
	case ColumnComputerName:
		return r.ComputerName, true
	case ColumnOperatingSystem:
		return r.OperatingSystem, true
	case ColumnProcessorModel:
		return r.ProcessorModel, true
	case ColumnMACAddress:
		return r.MACAddress, true
	case ColumnIPAddress:
		return r.IPAddress, true
	case ColumnSystemTime:
		return r.SystemTime, true
	case ColumnActivePorts:
		return r.ActivePorts, true
	case ColumnInternetSpeed:
		return r.InternetSpeed, true
	}
	return "", false
}

// FromRow builds a record from a CSV row, using the header to map columns
// to fields. Columns the header does not name stay zero, unknown header
// columns are skipped, and short rows are tolerated. Stores written by
// other tools may order their columns differently; this is the only place
// that mapping happens.
func FromRow(header, row []string) DeviceRecord {
	var r DeviceRecord
	for i, col := range header {
		if i >= len(row) {
			break
		}
		switch col {
		case ColumnComputerName:
			r.ComputerName = row[i]
		case ColumnOperatingSystem:
			r.OperatingSystem = row[i]
		case ColumnProcessorModel:
			r.ProcessorModel = row[i]
		case ColumnMACAddress:
			r.MACAddress = row[i]
		case ColumnIPAddress:
			r.IPAddress = row[i]
		case ColumnSystemTime:
			r.SystemTime = row[i]
		case ColumnActivePorts:
			r.ActivePorts = row[i]
		case ColumnInternetSpeed:
			r.InternetSpeed = row[i]
		}
	}
	return r
}
