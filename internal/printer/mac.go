package printer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMAC is returned for printer identifiers that are not a
// 12-digit hexadecimal hardware address.
var ErrInvalidMAC = errors.New("invalid MAC address format")

// FormatMAC normalizes a printer's Bluetooth address to AA:BB:CC:DD:EE:FF.
// Colons and dashes in the input are ignored.
func FormatMAC(mac string) (string, error) {
	mac = strings.TrimSpace(mac)
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, "-", "")
	mac = strings.ToUpper(mac)

	if len(mac) != 12 || strings.IndexFunc(mac, notHex) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}

	pairs := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		pairs = append(pairs, mac[i:i+2])
	}
	return strings.Join(pairs, ":"), nil
}

func notHex(r rune) bool {
	return !strings.ContainsRune("0123456789ABCDEF", r)
}
