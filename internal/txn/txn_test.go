package txn

import (
	"strings"
	"testing"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
)

func seed(b byte) []byte {
	out := make([]byte, crypto.SeedSize)
	for i := range out {
		out[i] = b
	}
	return out
}

func mustAddress(t *testing.T, s string) address.Address {
	t.Helper()
	a, err := address.Parse(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func sampleRawTxn(t *testing.T, sender address.Address) RawTransaction {
	t.Helper()
	return RawTransaction{
		Sender:         sender,
		SequenceNumber: 1,
		Payload: Payload{
			Kind: PayloadScriptFunction,
			ScriptFunction: ScriptFunction{
				Module:   ModuleID{Address: sender, Name: "coin"},
				Function: "transfer",
				Args:     [][]byte{{1, 2, 3}},
			},
		},
		MaxGasAmount:            1000,
		GasUnitPrice:            1,
		GasCurrencyCode:         "XUS",
		ExpirationTimestampSecs: 99999999,
		ChainID:                 4,
	}
}

func TestCheckSignatureEd25519Succeeds(t *testing.T) {
	sender := mustAddress(t, "0x1")
	pub, priv, err := crypto.GenerateEd25519Keypair(seed(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := sampleRawTxn(t, sender)
	hash := raw.Hash()
	sig := crypto.SignEd25519(priv, hash[:])

	signed := SignedTransaction{
		RawTxn: raw,
		Authenticator: Authenticator{
			Kind:       AuthEd25519,
			Ed25519PK:  pub,
			Ed25519Sig: sig,
		},
	}
	if _, err := CheckSignature(signed); err != nil {
		t.Errorf("expected signature check to pass: %v", err)
	}
}

func TestCheckSignatureEd25519RejectsWrongKey(t *testing.T) {
	sender := mustAddress(t, "0x1")
	_, priv, _ := crypto.GenerateEd25519Keypair(seed(1))
	wrongPub, _, _ := crypto.GenerateEd25519Keypair(seed(2))
	raw := sampleRawTxn(t, sender)
	hash := raw.Hash()
	sig := crypto.SignEd25519(priv, hash[:])

	signed := SignedTransaction{
		RawTxn: raw,
		Authenticator: Authenticator{
			Kind:       AuthEd25519,
			Ed25519PK:  wrongPub,
			Ed25519Sig: sig,
		},
	}
	if _, err := CheckSignature(signed); err == nil {
		t.Errorf("expected signature check to fail")
	}
}

func TestCheckSignatureMultiAgentSucceeds(t *testing.T) {
	sender := mustAddress(t, "0x1")
	secondary := mustAddress(t, "0x2")
	senderPub, senderPriv, _ := crypto.GenerateEd25519Keypair(seed(1))
	secPub, secPriv, _ := crypto.GenerateEd25519Keypair(seed(2))

	raw := sampleRawTxn(t, sender)
	msg := buildMultiAgentMessage(raw, []address.Address{secondary})

	signed := SignedTransaction{
		RawTxn: raw,
		Authenticator: Authenticator{
			Kind: AuthMultiAgent,
			Sender: AccountAuthenticator{
				Kind:       AuthEd25519,
				Ed25519PK:  senderPub,
				Ed25519Sig: crypto.SignEd25519(senderPriv, msg),
			},
			SecondaryAddresses: []address.Address{secondary},
			SecondaryAuthenticators: []AccountAuthenticator{
				{Kind: AuthEd25519, Ed25519PK: secPub, Ed25519Sig: crypto.SignEd25519(secPriv, msg)},
			},
		},
	}
	if _, err := CheckSignature(signed); err != nil {
		t.Errorf("expected multi-agent signature check to pass: %v", err)
	}
}

func TestCheckSignatureMultiAgentRejectsDuplicateSigner(t *testing.T) {
	sender := mustAddress(t, "0x1")
	raw := sampleRawTxn(t, sender)
	signed := SignedTransaction{
		RawTxn: raw,
		Authenticator: Authenticator{
			Kind:               AuthMultiAgent,
			SecondaryAddresses: []address.Address{sender}, // collides with sender
			SecondaryAuthenticators: []AccountAuthenticator{
				{Kind: AuthEd25519},
			},
		},
	}
	_, err := CheckSignature(signed)
	if err == nil || !strings.Contains(err.Error(), "duplicate signer") {
		t.Errorf("expected duplicate signer error, got %v", err)
	}
}

func TestCheckSignatureMultiAgentRejectsLengthMismatch(t *testing.T) {
	sender := mustAddress(t, "0x1")
	secondary := mustAddress(t, "0x2")
	raw := sampleRawTxn(t, sender)
	signed := SignedTransaction{
		RawTxn: raw,
		Authenticator: Authenticator{
			Kind:                    AuthMultiAgent,
			SecondaryAddresses:      []address.Address{secondary},
			SecondaryAuthenticators: nil,
		},
	}
	if _, err := CheckSignature(signed); err != ErrSecondaryLengthMismatch {
		t.Errorf("got %v, want ErrSecondaryLengthMismatch", err)
	}
}

func TestRawTransactionEncodeIsDeterministic(t *testing.T) {
	sender := mustAddress(t, "0x1")
	raw := sampleRawTxn(t, sender)
	a := raw.Encode()
	b := raw.Encode()
	if string(a) != string(b) {
		t.Errorf("expected deterministic encoding")
	}
}

func TestWriteSetPayloadReconfiguration(t *testing.T) {
	direct := Payload{Kind: PayloadWriteSet, WriteSet: WriteSetPayload{Kind: WriteSetDirect}}
	if !direct.TriggersReconfiguration() {
		t.Errorf("expected direct write set to trigger reconfiguration")
	}
	scripted := Payload{Kind: PayloadWriteSet, WriteSet: WriteSetPayload{Kind: WriteSetScript}}
	if scripted.TriggersReconfiguration() {
		t.Errorf("expected scripted write set to not trigger reconfiguration")
	}
}
