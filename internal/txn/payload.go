// Package txn implements the signed-transaction data model: raw
// transactions, their payload variants, authenticators, and the distinction
// between a signed and a signature-checked transaction.
package txn

import "github.com/levensti/diem/internal/address"

// PayloadKind tags which Payload variant is present.
type PayloadKind uint8

const (
	PayloadWriteSet PayloadKind = iota
	PayloadScript
	PayloadModule
	PayloadScriptFunction
)

// WriteSetPayloadKind tags which WriteSetPayload variant is present.
type WriteSetPayloadKind uint8

const (
	// WriteSetDirect applies a ChangeSet directly and triggers
	// reconfiguration by default.
	WriteSetDirect WriteSetPayloadKind = iota
	// WriteSetScript runs a script as execute_as and does not trigger
	// reconfiguration by default.
	WriteSetScript
)

// ChangeSet is an opaque bundle of state writes and events applied by a
// direct write-set payload. The VM/executor (out of scope here) interprets
// its contents; the core only needs to move it around and hash it.
type ChangeSet struct {
	WriteOps []byte
	Events   []byte
}

// WriteSetPayload is either a direct ChangeSet or a script executed as a
// designated account.
type WriteSetPayload struct {
	Kind       WriteSetPayloadKind
	Direct     ChangeSet
	ExecuteAs  address.Address
	ScriptCode Script
}

// TypeTag identifies a Move type argument. The core treats it as an opaque,
// hashable token; type-checking belongs to the VM.
type TypeTag []byte

// Script is executable script bytecode with its type and value arguments.
type Script struct {
	Code     []byte
	TypeArgs []TypeTag
	Args     [][]byte
}

// ModuleID identifies a published Move module by its publishing address and
// module name.
type ModuleID struct {
	Address address.Address
	Name    string
}

// ScriptFunction invokes an already-published module's function by name.
type ScriptFunction struct {
	Module   ModuleID
	Function string
	TypeArgs []TypeTag
	Args     [][]byte
}

// Module is a publish-module payload.
type Module struct {
	Code []byte
}

// Payload is the tagged union of everything a RawTransaction can carry.
type Payload struct {
	Kind           PayloadKind
	WriteSet       WriteSetPayload
	Script         Script
	Module         Module
	ScriptFunction ScriptFunction
}

// TriggersReconfiguration reports whether this payload, if it is a write
// set, applies directly (reconfiguring by default) versus running as a
// script (which does not).
func (p Payload) TriggersReconfiguration() bool {
	return p.Kind == PayloadWriteSet && p.WriteSet.Kind == WriteSetDirect
}
