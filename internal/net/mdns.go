package net

import (
	"fmt"
	"net"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_inkboard._tcp"

// Advertise announces a hosted board on the LAN until the returned server is
// shut down.
func Advertise(name string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if name == "" {
		name = host
	}

	service, err := mdns.NewMDNSService(
		name,
		serviceType,
		"", // .local
		"", // OS hostname
		port,
		[]net.IP{firstIPv4()},
		[]string{"InkBoard"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logger().Info("[NET] advertising board", "name", name, "port", port)
	return server, nil
}

// Browse looks for hosted boards for up to timeout and returns their
// host:port addresses.
func Browse(timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []string)
	go func() {
		var found []string
		for e := range entries {
			if addr, ok := entryAddr(e); ok && !slices.Contains(found, addr) {
				found = append(found, addr)
			}
		}
		done <- found
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	found := <-done
	if err != nil {
		return found, fmt.Errorf("browse %s: %w", serviceType, err)
	}
	logger().Debug("[NET] browse finished", "found", len(found))
	return found, nil
}

func entryAddr(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	return fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port), true
}

func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}
