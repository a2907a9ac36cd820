package espnow

import (
	"ledremote-go/errcode"
	"ledremote-go/x/conv"
)

// AddrLen is the link-layer address width.
const AddrLen = 6

// Addr is a 6-byte ESP-NOW peer address.
type Addr [AddrLen]byte

// Broadcast targets every listening receiver in range.
var Broadcast = Addr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// IsBroadcast reports whether a is the all-ones broadcast address.
func (a Addr) IsBroadcast() bool { return a == Broadcast }

// String formats a as "AA:BB:CC:DD:EE:FF" without the fmt package.
func (a Addr) String() string {
	buf := make([]byte, 0, AddrLen*3-1)
	for i, b := range a {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = conv.ByteHex(buf, b)
	}
	return string(buf)
}

// ParseAddr parses "aa:bb:cc:dd:ee:ff" (case-insensitive, ':' or '-'
// separated). The literal "broadcast" maps to the broadcast address.
func ParseAddr(s string) (Addr, error) {
	var a Addr
	if s == "broadcast" {
		return Broadcast, nil
	}
	if len(s) != AddrLen*3-1 {
		return a, errcode.InvalidAddr
	}
	for i := 0; i < AddrLen; i++ {
		p := i * 3
		hi, ok1 := conv.HexNibble(s[p])
		lo, ok2 := conv.HexNibble(s[p+1])
		if !ok1 || !ok2 {
			return Addr{}, errcode.InvalidAddr
		}
		a[i] = hi<<4 | lo
		if i < AddrLen-1 && s[p+2] != ':' && s[p+2] != '-' {
			return Addr{}, errcode.InvalidAddr
		}
	}
	return a, nil
}
