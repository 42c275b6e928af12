package probe

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Platform labels as reported by OperatingSystemName. These two are the
// platforms the processor probe has a strategy for.
const (
	osWindows = "Windows"
	osLinux   = "Linux"
)

const currentGOOS = runtime.GOOS

const procCPUInfoPath = "/proc/cpuinfo"

// OperatingSystemName reports the running platform as a human-readable
// label ("Windows", "Linux", "Darwin", ...).
func (p *systemProber) OperatingSystemName() string {
	switch p.goos {
	case "windows":
		return osWindows
	case "linux":
		return osLinux
	case "darwin":
		return "Darwin"
	default:
		if p.goos == "" {
			return ""
		}
		return strings.ToUpper(p.goos[:1]) + p.goos[1:]
	}
}

// ProcessorModel resolves the processor's marketing name. The strategy
// depends on the platform label: Windows asks the CPU info API, Linux
// reads the model name row of /proc/cpuinfo. Any other platform is
// unsupported.
func (p *systemProber) ProcessorModel(ctx context.Context, osName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	switch osName {
	case osWindows:
		return p.processorFromCPUInfo(ctx)
	case osLinux:
		return p.processorFromProcfs()
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, osName)
	}
}

func (p *systemProber) processorFromCPUInfo(ctx context.Context) (string, error) {
	stats, err := p.cpuInfo(ctx)
	if err != nil {
		return "", fmt.Errorf("reading cpu info: %w", err)
	}

	for _, stat := range stats {
		if stat.ModelName != "" {
			return stat.ModelName, nil
		}
	}

	return "", ErrNoProcessorInfo
}

func (p *systemProber) processorFromProcfs() (string, error) {
	data, err := p.readFile(procCPUInfoPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", procCPUInfoPath, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		if _, value, found := strings.Cut(line, ":"); found {
			return strings.TrimSpace(value), nil
		}
	}

	return "", ErrNoProcessorInfo
}

// Hostname reports the machine's host name.
func (p *systemProber) Hostname() (string, error) {
	name, err := p.hostname()
	if err != nil {
		return "", fmt.Errorf("reading hostname: %w", err)
	}
	return name, nil
}

// LocalTimeOfDay renders the current wall-clock time, HH:MM:SS by
// default.
func (p *systemProber) LocalTimeOfDay() string {
	return p.now().Format(p.cfg.TimeFormat)
}
