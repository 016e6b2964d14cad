// Package data holds static payloads replayed verbatim on the wire.
package data

import "encoding/binary"

// unlockLedgerSize is the exact byte count the client expects between the
// cosmetics and loadout frames at login.
const unlockLedgerSize = 770

// UnlockLedger is the item-unlock ledger sent once per login. Its internal
// structure is not decoded; the client only accepts this exact byte layout:
// a u16 entry count followed by fixed 6-byte entries marking every item id
// in the base range as unlocked.
var UnlockLedger = buildUnlockLedger()

func buildUnlockLedger() []byte {
	const entrySize = 6
	const entryCount = (unlockLedgerSize - 2) / entrySize

	buf := make([]byte, unlockLedgerSize)
	binary.LittleEndian.PutUint16(buf[0:], uint16(entryCount))

	for i := 0; i < entryCount; i++ {
		off := 2 + i*entrySize
		binary.LittleEndian.PutUint32(buf[off:], uint32(i+1)) // item id
		buf[off+4] = 1                                        // unlocked
		buf[off+5] = 0                                        // reserved
	}
	return buf
}
