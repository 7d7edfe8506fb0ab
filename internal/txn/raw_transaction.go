package txn

import (
	"encoding/binary"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
)

// RawTransaction is the unsigned transaction body: everything a signature
// commits to.
type RawTransaction struct {
	Sender                  address.Address
	SequenceNumber          uint64
	Payload                 Payload
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	GasCurrencyCode         string
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

// MaxExpirationTimestamp is the sentinel expiration used by write-set
// transactions, which are never subject to the admission-time expiry check.
const MaxExpirationTimestamp = ^uint64(0)

// Encode produces the canonical binary representation used both as the
// signing message input and as the on-disk/wire transaction encoding (§6.3).
func (t RawTransaction) Encode() []byte {
	var buf []byte
	buf = append(buf, t.Sender[:]...)
	buf = appendUint64(buf, t.SequenceNumber)
	buf = t.Payload.encodeInto(buf)
	buf = appendUint64(buf, t.MaxGasAmount)
	buf = appendUint64(buf, t.GasUnitPrice)
	buf = appendBytes(buf, []byte(t.GasCurrencyCode))
	buf = appendUint64(buf, t.ExpirationTimestampSecs)
	buf = append(buf, t.ChainID)
	return buf
}

// Hash computes the domain-separated signing digest of this RawTransaction.
func (t RawTransaction) Hash() address.HashValue {
	return crypto.HashWithPrefix(protocol.HashPrefixRawTransaction, t.Encode())
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBytes(buf []byte, data []byte) []byte {
	buf = append(buf, address.PutUvarint(uint64(len(data)))...)
	return append(buf, data...)
}

func (p Payload) encodeInto(buf []byte) []byte {
	buf = append(buf, byte(p.Kind))
	switch p.Kind {
	case PayloadWriteSet:
		buf = p.WriteSet.encodeInto(buf)
	case PayloadScript:
		buf = p.Script.encodeInto(buf)
	case PayloadModule:
		buf = appendBytes(buf, p.Module.Code)
	case PayloadScriptFunction:
		buf = p.ScriptFunction.encodeInto(buf)
	}
	return buf
}

func (w WriteSetPayload) encodeInto(buf []byte) []byte {
	buf = append(buf, byte(w.Kind))
	switch w.Kind {
	case WriteSetDirect:
		buf = appendBytes(buf, w.Direct.WriteOps)
		buf = appendBytes(buf, w.Direct.Events)
	case WriteSetScript:
		buf = append(buf, w.ExecuteAs[:]...)
		buf = w.ScriptCode.encodeInto(buf)
	}
	return buf
}

func (s Script) encodeInto(buf []byte) []byte {
	buf = appendBytes(buf, s.Code)
	buf = append(buf, address.PutUvarint(uint64(len(s.TypeArgs)))...)
	for _, ta := range s.TypeArgs {
		buf = appendBytes(buf, ta)
	}
	buf = append(buf, address.PutUvarint(uint64(len(s.Args)))...)
	for _, a := range s.Args {
		buf = appendBytes(buf, a)
	}
	return buf
}

func (f ScriptFunction) encodeInto(buf []byte) []byte {
	buf = append(buf, f.Module.Address[:]...)
	buf = appendBytes(buf, []byte(f.Module.Name))
	buf = appendBytes(buf, []byte(f.Function))
	buf = append(buf, address.PutUvarint(uint64(len(f.TypeArgs)))...)
	for _, ta := range f.TypeArgs {
		buf = appendBytes(buf, ta)
	}
	buf = append(buf, address.PutUvarint(uint64(len(f.Args)))...)
	for _, a := range f.Args {
		buf = appendBytes(buf, a)
	}
	return buf
}
