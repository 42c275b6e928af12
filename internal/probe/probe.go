// Package probe reads the machine facts a catalogue snapshot is built
// from. Every reading comes through the Prober interface so the
// collector can run against deterministic fakes in tests.
package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	gnet "github.com/shirou/gopsutil/v3/net"

	"device-catalog/internal/config"
)

// Probe failure sentinels. The collector classifies these into the
// user-facing failure taxonomy; tests assert on them with errors.Is.
var (
	ErrUnsupportedPlatform  = errors.New("unsupported operating system")
	ErrNoMatchingInterface  = errors.New("no network interface matches a known prefix")
	ErrEmptyHardwareAddress = errors.New("interface has no hardware address")
	ErrNoAddressFound       = errors.New("no address resolved for hostname")
	ErrNoProcessorInfo      = errors.New("no processor information available")
)

// Prober reads one machine fact per method. Methods that can block on
// the OS or the network take a context and honor its deadline.
type Prober interface {
	OperatingSystemName() string
	ProcessorModel(ctx context.Context, osName string) (string, error)
	HardwareAddress(ctx context.Context) (string, error)
	Hostname() (string, error)
	LocalIPAddress(ctx context.Context, hostname string) (string, error)
	LocalTimeOfDay() string
	ListeningPorts(ctx context.Context) (string, error)
	Throughput(ctx context.Context) (string, error)
}

// systemProber implements Prober against the running machine. The
// function fields default to the real OS calls and are swapped out in
// tests.
type systemProber struct {
	cfg config.CollectorConfig
	log zerolog.Logger

	goos        string
	hostname    func() (string, error)
	now         func() time.Time
	readFile    func(name string) ([]byte, error)
	cpuInfo     func(ctx context.Context) ([]cpu.InfoStat, error)
	interfaces  func(ctx context.Context) (gnet.InterfaceStatList, error)
	connections func(ctx context.Context, kind string) ([]gnet.ConnectionStat, error)
	lookupIP    func(ctx context.Context, network, host string) ([]net.IP, error)
	speedtest   func(ctx context.Context, serverIDs []int) (download, upload float64, err error)
}

// NewSystemProber returns a Prober that reads from the running machine.
func NewSystemProber(cfg config.CollectorConfig, log zerolog.Logger) Prober {
	p := &systemProber{
		cfg:         cfg,
		log:         log.With().Str("component", "probe").Logger(),
		goos:        currentGOOS,
		hostname:    os.Hostname,
		now:         time.Now,
		readFile:    os.ReadFile,
		cpuInfo:     cpu.InfoWithContext,
		interfaces:  gnet.InterfacesWithContext,
		connections: gnet.ConnectionsWithContext,
		lookupIP: func(ctx context.Context, network, host string) ([]net.IP, error) {
			return net.DefaultResolver.LookupIP(ctx, network, host)
		},
	}
	p.speedtest = p.runSpeedtest
	return p
}

var _ Prober = (*systemProber)(nil)
