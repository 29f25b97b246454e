package ca

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// ipv4LiteralRE matches four dot-separated decimal octets. Anything matching
// this pattern is treated as an IP address entry; everything else is a DNS
// name. Hostnames like "10.0.0.example" do not match and stay DNS.
var ipv4LiteralRE = regexp.MustCompile(`^[0-9]{1,3}(\.[0-9]{1,3}){3}$`)

// NormalizeSANs classifies each subject-alternative-name entry as a DNS name
// or an IPv4 address, preserving input order within each class. When entries
// is empty, commonName is injected as the sole DNS entry, since modern
// validators reject certificates without any SAN.
func NormalizeSANs(commonName string, entries []string) (dnsNames []string, ips []net.IP, err error) {
	if len(entries) == 0 {
		return []string{commonName}, nil, nil
	}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, nil, fmt.Errorf("%w: empty subject alternative name", ErrInvalidParameter)
		}
		if ipv4LiteralRE.MatchString(entry) {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, nil, fmt.Errorf("%w: %q is not a valid IPv4 address", ErrInvalidParameter, entry)
			}
			ips = append(ips, ip)
			continue
		}
		dnsNames = append(dnsNames, entry)
	}
	return dnsNames, ips, nil
}
