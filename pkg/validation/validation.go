package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"device-catalog/internal/model"
)

// MAC address validation constants
const (
	MACAddressLength = 17 // XX:XX:XX:XX:XX:XX or XX-XX-XX-XX-XX-XX
)

// Six hex octets with a consistent separator, either colons or hyphens.
// Case is not constrained: the value is stored exactly as the hardware
// probe rendered it, so validation must accept every rendering it refuses
// to rewrite.
var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$|^([0-9A-Fa-f]{2}-){5}[0-9A-Fa-f]{2}$`)

// ValidateMAC checks that a MAC address is syntactically valid. The input
// is never normalized; records keep the probe's exact rendering.
func ValidateMAC(mac string) error {
	if len(mac) != MACAddressLength || !macRegex.MatchString(mac) {
		return fmt.Errorf("invalid MAC address format: %s", mac)
	}
	return nil
}

// ValidateIP validates an IP address format (IPv4 or IPv6)
func ValidateIP(ip string) error {
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address format: %s", ip)
	}
	return nil
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateRecord validates the fields a store operation depends on. The
// MAC address is the store key and must be present and well formed; the
// IP address only has to parse when set. Other fields are stored as the
// probes produced them.
func ValidateRecord(record model.DeviceRecord) []string {
	var errors []string

	if err := ValidateRequired(model.ColumnMACAddress, record.MACAddress); err != nil {
		errors = append(errors, err.Error())
	} else if err := ValidateMAC(record.MACAddress); err != nil {
		errors = append(errors, err.Error())
	}

	if record.IPAddress != "" {
		if err := ValidateIP(record.IPAddress); err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
