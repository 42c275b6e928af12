package probe

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// listenState is the gopsutil rendering of a listening TCP socket.
const listenState = "LISTEN"

// HardwareAddress returns the MAC address of the machine's primary
// network interface: the first interface, in system order, whose
// lowercased name starts with one of the configured prefixes and which
// actually carries a hardware address. Loopback devices match the "l"
// prefix but have no address, so the scan skips them. The address is
// returned exactly as rendered; it becomes the store key and is never
// rewritten.
func (p *systemProber) HardwareAddress(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	ifaces, err := p.interfaces(ctx)
	if err != nil {
		return "", fmt.Errorf("listing network interfaces: %w", err)
	}

	matched := false
	for _, iface := range ifaces {
		if !matchesPrefix(iface.Name, p.cfg.MACPrefixes) {
			continue
		}
		matched = true
		if iface.HardwareAddr == "" {
			continue
		}
		p.log.Debug().
			Str("interface", iface.Name).
			Str("mac_address", iface.HardwareAddr).
			Msg("Selected primary interface")
		return iface.HardwareAddr, nil
	}

	if matched {
		return "", ErrEmptyHardwareAddress
	}

	return "", ErrNoMatchingInterface
}

func matchesPrefix(name string, prefixes []string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range prefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// LocalIPAddress resolves the machine's own hostname and returns the
// first IPv4 address, falling back to whatever resolved first.
func (p *systemProber) LocalIPAddress(ctx context.Context, hostname string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	addrs, err := p.lookupIP(ctx, "ip", hostname)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", hostname, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoAddressFound, hostname)
	}

	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4.String(), nil
		}
	}

	return addrs[0].String(), nil
}

// ListeningPorts lists the local ports with a socket in LISTEN state,
// de-duplicated and sorted, joined with ", ". A machine listening on
// nothing yields an empty string, not an error.
func (p *systemProber) ListeningPorts(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	conns, err := p.connections(ctx, "inet")
	if err != nil {
		return "", fmt.Errorf("listing connections: %w", err)
	}

	seen := make(map[uint32]struct{}, len(conns))
	ports := make([]int, 0, len(conns))
	for _, conn := range conns {
		if conn.Status != listenState {
			continue
		}
		if _, dup := seen[conn.Laddr.Port]; dup {
			continue
		}
		seen[conn.Laddr.Port] = struct{}{}
		ports = append(ports, int(conn.Laddr.Port))
	}

	sort.Ints(ports)

	rendered := make([]string, len(ports))
	for i, port := range ports {
		rendered[i] = strconv.Itoa(port)
	}

	return strings.Join(rendered, ", "), nil
}
