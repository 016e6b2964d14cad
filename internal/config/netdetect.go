package config

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// DetectBindIP picks the bind address when none was given on the command
// line: the single non-loopback IPv4 address when unambiguous, otherwise an
// interactive choice read from in.
func DetectBindIP(in io.Reader, out io.Writer) (string, error) {
	candidates, err := localIPv4Addresses()
	if err != nil {
		return "", fmt.Errorf("enumerating interfaces: %w", err)
	}

	switch len(candidates) {
	case 0:
		return "0.0.0.0", nil
	case 1:
		return candidates[0], nil
	}

	fmt.Fprintln(out, "multiple network interfaces found:")
	for i, ip := range candidates {
		fmt.Fprintf(out, "  [%d] %s\n", i, ip)
	}
	fmt.Fprint(out, "select bind address: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading interface choice: %w", err)
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 0 || choice >= len(candidates) {
		return "", fmt.Errorf("invalid interface choice %q", strings.TrimSpace(line))
	}
	return candidates[choice], nil
}

func localIPv4Addresses() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}

	var ips []string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			ips = append(ips, ip4.String())
		}
	}
	return ips, nil
}
