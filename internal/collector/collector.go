package collector

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"device-catalog/internal/model"
	"device-catalog/internal/probe"
	apperrors "device-catalog/pkg/errors"
)

// Probe labels used in logs and failure details. They match the store
// column fed by each probe so log lines join against store rows.
const (
	probeHostname        = "computer_name"
	probeOperatingSystem = "operating_system"
	probeProcessor       = "processor_model"
	probeHardwareAddr    = "mac_address"
	probeIPAddress       = "ip_address"
	probeSystemTime      = "system_time"
	probeActivePorts     = "active_ports"
	probeThroughput      = "internet_speed"
)

// SnapshotCollector assembles a full device record from the host
// probes. Probes run sequentially in a fixed order because later
// readings depend on earlier ones.
type SnapshotCollector struct {
	prober probe.Prober
	log    zerolog.Logger
}

// NewSnapshotCollector creates a new snapshot collector
func NewSnapshotCollector(prober probe.Prober, log zerolog.Logger) *SnapshotCollector {
	return &SnapshotCollector{
		prober: prober,
		log:    log.With().Str("component", "collector").Logger(),
	}
}

// Collect runs every probe once and returns the assembled record. A
// single probe failure aborts the run: partial records never reach the
// store. Each run carries a fresh run id in its log context and in any
// returned failure.
func (c *SnapshotCollector) Collect(ctx context.Context) (*model.DeviceRecord, error) {
	runID := uuid.New().String()
	log := c.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	log.Info().Msg("Collecting device snapshot")

	hostname, err := timeProbe(log, probeHostname, func() (string, error) {
		return c.prober.Hostname()
	})
	if err != nil {
		return nil, c.classify(probeHostname, "", runID, err)
	}

	log.Info().Str("probe", probeOperatingSystem).Msg("Probing")
	osName := c.prober.OperatingSystemName()
	log.Debug().Str("probe", probeOperatingSystem).Str("value", osName).Msg("Probe completed")

	processor, err := timeProbe(log, probeProcessor, func() (string, error) {
		return c.prober.ProcessorModel(ctx, osName)
	})
	if err != nil {
		return nil, c.classify(probeProcessor, osName, runID, err)
	}

	mac, err := timeProbe(log, probeHardwareAddr, func() (string, error) {
		return c.prober.HardwareAddress(ctx)
	})
	if err != nil {
		return nil, c.classify(probeHardwareAddr, osName, runID, err)
	}

	ip, err := timeProbe(log, probeIPAddress, func() (string, error) {
		return c.prober.LocalIPAddress(ctx, hostname)
	})
	if err != nil {
		return nil, c.classify(probeIPAddress, osName, runID, err)
	}

	log.Info().Str("probe", probeSystemTime).Msg("Probing")
	clock := c.prober.LocalTimeOfDay()
	log.Debug().Str("probe", probeSystemTime).Str("value", clock).Msg("Probe completed")

	ports, err := timeProbe(log, probeActivePorts, func() (string, error) {
		return c.prober.ListeningPorts(ctx)
	})
	if err != nil {
		return nil, c.classify(probeActivePorts, osName, runID, err)
	}

	throughput, err := timeProbe(log, probeThroughput, func() (string, error) {
		return c.prober.Throughput(ctx)
	})
	if err != nil {
		return nil, c.classify(probeThroughput, osName, runID, err)
	}

	record := &model.DeviceRecord{
		ComputerName:    hostname,
		OperatingSystem: osName,
		ProcessorModel:  processor,
		MACAddress:      mac,
		IPAddress:       ip,
		SystemTime:      clock,
		ActivePorts:     ports,
		InternetSpeed:   throughput,
	}

	log.Info().
		Str("mac_address", record.MACAddress).
		Str("ip_address", record.IPAddress).
		Dur("duration", time.Since(start)).
		Msg("Device snapshot collected")

	return record, nil
}

// timeProbe announces one probe, runs it and logs the outcome with the
// elapsed time.
func timeProbe(log zerolog.Logger, name string, fn func() (string, error)) (string, error) {
	log.Info().Str("probe", name).Msg("Probing")
	start := time.Now()
	value, err := fn()
	duration := time.Since(start)
	if err != nil {
		log.Warn().Err(err).Str("probe", name).Dur("duration", duration).Msg("Probe failed")
		return "", err
	}
	log.Debug().Str("probe", name).Dur("duration", duration).Msg("Probe completed")
	return value, nil
}

// classify maps a raw probe error onto the failure taxonomy the
// command layer reports from.
func (c *SnapshotCollector) classify(probeName, osName, runID string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, probe.ErrUnsupportedPlatform):
		appErr = apperrors.UnsupportedPlatformError(osName)
	case errors.Is(err, context.DeadlineExceeded):
		appErr = apperrors.ProbeTimeoutError(probeName, err)
	default:
		appErr = apperrors.ProbeUnavailableError(probeName, err)
	}
	return appErr.WithRunID(runID)
}
