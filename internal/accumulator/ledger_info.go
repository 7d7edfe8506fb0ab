package accumulator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/levensti/diem/internal/address"
)

// LedgerInfo is the minimal anchor a proof verifies against: the version
// and transaction-accumulator root a signed ledger commitment attests to,
// plus its timestamp. Modeled on the teacher's LedgerHeader
// (internal/core/ledger/header), trimmed to the fields a transaction proof
// actually needs — consensus metadata like close flags and close-time
// resolution belong to the executor/consensus boundary, out of scope here.
type LedgerInfo struct {
	Version                    address.Version
	TransactionAccumulatorHash address.HashValue
	TimestampUsecs             uint64
	Epoch                      uint64
}

// ErrTooShort is returned when a LedgerInfo encoding is truncated.
var ErrTooShort = errors.New("accumulator: ledger info encoding too short")

// encodedSize is the fixed wire size: version + hash + timestamp + epoch,
// all big-endian/fixed-width so byte order matches field declaration order.
const encodedSize = 8 + address.HashSize + 8 + 8

// Encode serializes the ledger info for hashing/signing purposes.
func (li LedgerInfo) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, encodedSize))
	binary.Write(buf, binary.BigEndian, li.Version)
	buf.Write(li.TransactionAccumulatorHash[:])
	binary.Write(buf, binary.BigEndian, li.TimestampUsecs)
	binary.Write(buf, binary.BigEndian, li.Epoch)
	return buf.Bytes()
}

// DecodeLedgerInfo parses the Encode wire form.
func DecodeLedgerInfo(data []byte) (LedgerInfo, error) {
	if len(data) < encodedSize {
		return LedgerInfo{}, ErrTooShort
	}
	r := bytes.NewReader(data)
	var li LedgerInfo
	binary.Read(r, binary.BigEndian, &li.Version)
	io.ReadFull(r, li.TransactionAccumulatorHash[:])
	binary.Read(r, binary.BigEndian, &li.TimestampUsecs)
	binary.Read(r, binary.BigEndian, &li.Epoch)
	return li, nil
}
