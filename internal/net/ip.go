package net

import (
	"net"
)

// OutgoingIP is the address peers on the LAN can reach the host at. The
// route to a public address picks the interface; no packet is sent. Offline
// machines fall back to the first interface with an IPv4 address.
func OutgoingIP() string {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		ip := firstIPv4()
		if ip.IsLoopback() {
			logger().Warn("[NET] no LAN address found, share link uses loopback", "err", err)
		}
		return ip.String()
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.IsUnspecified() {
		return firstIPv4().String()
	}
	return addr.IP.String()
}
