package offsync

import (
	"crypto/rand"
	"encoding/hex"
)

// cycleID generates a short identifier correlating the log lines of one
// dispatch cycle.
func cycleID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "cycle-unknown"
	}
	return "cycle-" + hex.EncodeToString(buf[:])
}
