package instruction

import (
	"encoding/json"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
)

// Signature binds a signer key to its signature over the message
type Signature struct {
	Key       solana.PublicKey `json:"key"`
	Signature solana.Signature `json:"signature"`
}

// Transaction is a signed instruction. ID doubles as the replay
// protection key.
type Transaction struct {
	ID          string      `json:"id"`
	Instruction Instruction `json:"instruction"`
	Signatures  []Signature `json:"signatures"`
}

// message is what every signer signs
type message struct {
	ID   string
	Type string
	Body []byte
}

// NewTransaction wraps ix in an unsigned transaction
func NewTransaction(id string, ix Instruction) *Transaction {
	return &Transaction{ID: id, Instruction: ix}
}

// Message returns the bytes signers sign: the Borsh encoding of the id, the
// instruction type and the instruction's JSON body
func (t *Transaction) Message() ([]byte, error) {
	typ, err := t.Instruction.Type()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(t.Instruction)
	if err != nil {
		return nil, err
	}
	return bin.MarshalBorsh(message{ID: t.ID, Type: string(typ), Body: body})
}

// Sign adds a signature for each key
func (t *Transaction) Sign(keys ...solana.PrivateKey) error {
	msg, err := t.Message()
	if err != nil {
		return err
	}
	for _, key := range keys {
		sig, err := key.Sign(msg)
		if err != nil {
			return fmt.Errorf("sign with %s: %w", key.PublicKey(), err)
		}
		t.Signatures = append(t.Signatures, Signature{Key: key.PublicKey(), Signature: sig})
	}
	return nil
}

// Verify checks every required signer has a valid signature over the
// message. Extra signatures must be valid too.
func (t *Transaction) Verify() error {
	required, err := t.Instruction.Signers()
	if err != nil {
		return err
	}
	msg, err := t.Message()
	if err != nil {
		return err
	}

	signed := make(map[solana.PublicKey]bool, len(t.Signatures))
	for _, sig := range t.Signatures {
		if !sig.Key.Verify(msg, sig.Signature) {
			return fmt.Errorf("%w: %s", model.ErrInvalidSignature, sig.Key)
		}
		signed[sig.Key] = true
	}
	for _, key := range required {
		if !signed[key] {
			return fmt.Errorf("%w: %s", model.ErrMissingSignature, key)
		}
	}
	return nil
}

// Signed reports whether key signed the transaction. Only meaningful after
// Verify succeeded.
func (t *Transaction) Signed(key solana.PublicKey) bool {
	for _, sig := range t.Signatures {
		if sig.Key.Equals(key) {
			return true
		}
	}
	return false
}
