package textual

import (
	"strings"

	"bletext/internal/event"
	"bletext/internal/rewrite"
)

// GAP role constants as reported by the driver
const (
	RoleCentral = rewrite.PrefixRole + "CENTRAL"
	RolePeriph  = rewrite.PrefixRole + "PERIPH"
)

// PeerAddress formats the event's peer as "<role> <ADDRESS>". The role is
// the peer's, so it is the inverse of the event's own role: a central
// talks to a peripheral and vice versa. Unknown roles leave the label
// empty; an event without peer address yields "".
func PeerAddress(ev *event.Object) string {
	peer, ok := ev.Object(event.KeyPeerAddr)
	if !ok {
		return ""
	}
	address, ok := peer.String(event.KeyAddress)
	if !ok {
		return ""
	}

	role, _ := ev.String(event.KeyRole)
	return peerRole(role) + " " + strings.ToUpper(address)
}

func peerRole(role string) string {
	switch role {
	case RoleCentral:
		return "peripheral"
	case RolePeriph:
		return "central"
	}
	return ""
}
