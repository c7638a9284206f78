package httputil

import (
	"fmt"
	"net"
)

var blockedIPClasses = []struct {
	label string
	match func(net.IP) bool
}{
	{"private IP", net.IP.IsPrivate},
	{"loopback IP", net.IP.IsLoopback},
	{"link-local IP", net.IP.IsLinkLocalUnicast},
	{"link-local multicast", net.IP.IsLinkLocalMulticast},
	{"multicast IP", net.IP.IsMulticast},
	{"unspecified IP", net.IP.IsUnspecified},
}

// ValidateIP rejects redirect targets outside the public unicast range.
// host is echoed in the error for diagnostics.
func ValidateIP(ip net.IP, host string) error {
	for _, c := range blockedIPClasses {
		if c.match(ip) {
			return fmt.Errorf("refusing redirect to %s: %s (%s)", c.label, host, ip)
		}
	}
	return nil
}
