package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-catalog/internal/model"
	"device-catalog/internal/probe"
	"device-catalog/internal/repository"
	apperrors "device-catalog/pkg/errors"
)

const sampleStore = "computer_name,operating_system,processor_model,mac_address,ip_address,system_time,active_ports,internet_speed\n" +
	"MSI,Windows,Intel(R) Core(TM) i7-14650HX,34-5A-60-22-18-B2,192.168.1.102,19:01:19,\"135, 445, 5040\",\"download: 82.44 Mb/s, upload: 28.00 Mb/s\"\n"

func writeSampleStore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "devices.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleStore), 0o644))
	return path
}

func TestResolveStorePath_FlagWins(t *testing.T) {
	out := &bytes.Buffer{}

	path, err := resolveStorePath("devices.csv", strings.NewReader(""), out)
	require.NoError(t, err)
	assert.Equal(t, "devices.csv", path)
	assert.Empty(t, out.String(), "no prompt when the flag is set")
}

func TestResolveStorePath_PromptsUntilAnswered(t *testing.T) {
	out := &bytes.Buffer{}
	in := strings.NewReader("\n   \ndevices.csv\n")

	path, err := resolveStorePath("", in, out)
	require.NoError(t, err)
	assert.Equal(t, "devices.csv", path)
	assert.Equal(t, 3, strings.Count(out.String(), "Please enter the csv file path:"))
}

func TestResolveStorePath_EOF(t *testing.T) {
	_, err := resolveStorePath("", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no store path provided")
}

func TestStoreFailure(t *testing.T) {
	record := model.DeviceRecord{MACAddress: "34-5A-60-22-18-B2"}

	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{"duplicate", fmt.Errorf("%w: 34-5A-60-22-18-B2", repository.ErrDuplicateMAC), apperrors.ErrorCodeDuplicateRecord},
		{"permission", fmt.Errorf("%w: /etc/devices.csv", repository.ErrPermissionDenied), apperrors.ErrorCodePermissionDenied},
		{"not found", repository.ErrRecordNotFound, apperrors.ErrorCodeRecordNotFound},
		{"invalid", fmt.Errorf("%w: mac address is required", repository.ErrInvalidRecord), apperrors.ErrorCodeInvalidRecord},
		{"unclassified", errors.New("disk on fire"), apperrors.ErrorCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeFailure("/etc/devices.csv", record, tt.err)
			assert.Equal(t, tt.want, apperrors.CodeOf(err))
		})
	}
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  *apperrors.AppError
		want string
	}{
		{
			name: "duplicate",
			err:  apperrors.DuplicateRecordError("34-5A-60-22-18-B2"),
			want: "This machine has already been catalogued",
		},
		{
			name: "unsupported platform",
			err:  apperrors.UnsupportedPlatformError("Darwin"),
			want: "This program only supports Linux and Windows.",
		},
		{
			name: "permission denied",
			err:  apperrors.PermissionDeniedError("/etc/devices.csv", os.ErrPermission),
			want: "You do not have the permission to read or write this file: /etc/devices.csv",
		},
		{
			name: "probe unavailable",
			err:  apperrors.ProbeUnavailableError("mac_address", probe.ErrNoMatchingInterface),
			want: "Could not catalogue this machine: probe 'mac_address' could not produce a value",
		},
		{
			name: "probe timeout",
			err:  apperrors.ProbeTimeoutError("internet_speed", context.DeadlineExceeded),
			want: "Could not catalogue this machine: probe 'internet_speed' overran its deadline",
		},
		{
			name: "invalid record",
			err:  apperrors.InvalidRecordError("mac address is required"),
			want: "mac address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureReason(tt.err))
		})
	}
}

func TestPrintRecords(t *testing.T) {
	out := &bytes.Buffer{}
	records := []model.DeviceRecord{
		{
			ComputerName:    "MSI",
			OperatingSystem: "Windows",
			ProcessorModel:  "Intel(R) Core(TM) i7-14650HX",
			MACAddress:      "34-5A-60-22-18-B2",
			IPAddress:       "192.168.1.102",
			SystemTime:      "19:01:19",
			ActivePorts:     "135, 445, 5040",
			InternetSpeed:   "download: 82.44 Mb/s, upload: 28.00 Mb/s",
		},
	}

	require.NoError(t, printRecords(out, records))

	assert.Contains(t, out.String(), "computer_name")
	assert.Contains(t, out.String(), "mac_address")
	assert.Contains(t, out.String(), "MSI")
	assert.Contains(t, out.String(), "34-5A-60-22-18-B2")
}

func TestPrintRecords_Empty(t *testing.T) {
	out := &bytes.Buffer{}

	require.NoError(t, printRecords(out, nil))
	assert.Equal(t, "<empty>\n", out.String())
}

func TestListCommand_PrintsStore(t *testing.T) {
	path := writeSampleStore(t)

	out := &bytes.Buffer{}
	app := newApp(strings.NewReader(""), out)

	err := app.Run(context.Background(), []string{"catalog", "list", "--store", path})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "MSI")
	assert.Contains(t, out.String(), "34-5A-60-22-18-B2")
	assert.Contains(t, out.String(), "download: 82.44 Mb/s, upload: 28.00 Mb/s")
}

func TestListCommand_PromptsForStore(t *testing.T) {
	path := writeSampleStore(t)
	t.Setenv("CATALOG_STORE", "")

	out := &bytes.Buffer{}
	app := newApp(strings.NewReader(path+"\n"), out)

	err := app.Run(context.Background(), []string{"catalog", "list"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Please enter the csv file path:")
	assert.Contains(t, out.String(), "MSI")
}

func TestListCommand_MissingStore(t *testing.T) {
	out := &bytes.Buffer{}
	app := newApp(strings.NewReader(""), out)

	err := app.Run(context.Background(), []string{
		"catalog", "list", "--store", filepath.Join(t.TempDir(), "absent.csv"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCodeUnknown, apperrors.CodeOf(err))
}

func TestCatalogCommand_NoStorePath(t *testing.T) {
	t.Setenv("CATALOG_STORE", "")

	out := &bytes.Buffer{}
	app := newApp(strings.NewReader(""), out)

	err := app.Run(context.Background(), []string{"catalog"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no store path provided")
	assert.Contains(t, out.String(), "Please enter the csv file path:")
}
