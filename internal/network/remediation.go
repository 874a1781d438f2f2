package network

import (
	"fmt"
	"net"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// aliasInstructions renders copy-pasteable commands that alias the missing
// addresses onto the loopback interface, one command per address.
func (a *Allocator) aliasInstructions(addrs []net.IP, mask net.IPMask) string {
	var b strings.Builder
	b.WriteString("Set up the missing address aliases with:\n")
	for _, addr := range addrs {
		b.WriteString("  ")
		b.WriteString(aliasCommand(a.goos, addr, mask))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func aliasCommand(goos string, addr net.IP, mask net.IPMask) string {
	if goos == "darwin" {
		netmask := net.IP(mask).String()
		return shellquote.Join("sudo", "ifconfig", "lo0", "alias", addr.String(), netmask)
	}

	ones, _ := mask.Size()
	cidr := fmt.Sprintf("%s/%d", addr, ones)
	return shellquote.Join("sudo", "ip", "addr", "add", cidr, "dev", "lo")
}
