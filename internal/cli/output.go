package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metaloot/registry/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// outputFor creates the Output for a running command
func outputFor(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	switch o.format {
	case "json":
		o.printJSON(data)
	case "yaml":
		o.printYAML(data)
	default:
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	errData := map[string]any{
		"error": map[string]string{
			"message": err.Error(),
		},
	}
	switch o.format {
	case "json":
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	case "yaml":
		_ = yaml.NewEncoder(o.errOut).Encode(errData)
	default:
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// printYAML goes through JSON first so the yaml keys follow the json tags
func (o *Output) printYAML(data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		o.PrintError(err)
		return
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		o.PrintError(err)
		return
	}
	enc := yaml.NewEncoder(o.out)
	enc.SetIndent(2)
	_ = enc.Encode(doc)
	_ = enc.Close()
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Receipt:
		o.printReceipt(v)
	case Created:
		o.printReceipt(v.Receipt)
		o.printKeypair(v.Keypair)
	case Keypair:
		o.printKeypair(v)
	case response.Studio:
		o.printStudio(v)
	case response.Player:
		o.printPlayer(v)
	case response.Custody:
		o.printCustody(v)
	case response.Account:
		o.printAccount(v)
	case response.Derived:
		o.printDerived(v)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Receipt response type (matches the API)
type Receipt struct {
	ID          string            `json:"id"`
	Instruction string            `json:"instruction"`
	Addresses   map[string]string `json:"addresses,omitempty"`
	ProcessedAt time.Time         `json:"processedAt"`
}

// Keypair is a locally generated key
type Keypair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// Created is the receipt of an instruction that created an account at a
// freshly generated key
type Created struct {
	Receipt Receipt `json:"receipt"`
	Keypair Keypair `json:"keypair"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}

func (o *Output) printReceipt(r Receipt) {
	o.printf("Transaction: %s\n", r.ID)
	o.printf("Instruction: %s\n", r.Instruction)
	names := make([]string, 0, len(r.Addresses))
	for name := range r.Addresses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.printf("  %s: %s\n", name, r.Addresses[name])
	}
}

func (o *Output) printKeypair(k Keypair) {
	o.printf("Public key: %s\n", k.PublicKey)
	o.printf("Private key: %s\n", k.PrivateKey)
}

func (o *Output) printStudio(s response.Studio) {
	o.printf("Studio: %s (%s)\n", s.Name, s.Symbol)
	o.printf("Address: %s\n", s.Address)
	o.printf("Seed: %s\n", s.Seed)
	o.printf("Authority: %s\n", s.Authority)
	o.printf("Native token: %s\n", s.NativeToken)
	if s.URI != "" {
		o.printf("URI: %s\n", s.URI)
	}
	if len(s.NFTCollection) > 0 {
		o.printf("Collections: %s\n", strings.Join(s.NFTCollection, ", "))
	}
}

func (o *Output) printPlayer(p response.Player) {
	o.printf("Player: %s\n", p.Username)
	o.printf("Address: %s\n", p.Address)
	o.printf("Seed: %s\n", p.Seed)
	o.printf("Authority: %s\n", p.Authority)
	if p.URI != "" {
		o.printf("URI: %s\n", p.URI)
	}
	o.printf("Created: %s\n", p.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printCustody(c response.Custody) {
	o.printf("Custody: %s\n", c.Address)
	o.printf("Mint: %s\n", c.Mint)
	o.printf("Balance: %d\n", c.Amount)
}

func (o *Output) printAccount(a response.Account) {
	o.printf("Account: %s (%s)\n", a.Address, a.Kind)
	o.printf("Owner: %s\n", a.Owner)
	o.printf("Lamports: %d\n", a.Lamports)
	if a.Token != nil {
		o.printf("Mint: %s\n", a.Token.Mint)
		o.printf("Token owner: %s\n", a.Token.Owner)
		o.printf("Balance: %d\n", a.Token.Amount)
	}
	if a.Mint != nil {
		o.printf("Mint authority: %s\n", a.Mint.MintAuthority)
		o.printf("Supply: %d\n", a.Mint.Supply)
		o.printf("Decimals: %d\n", a.Mint.Decimals)
	}
}

func (o *Output) printDerived(d response.Derived) {
	o.printf("Address: %s\n", d.Address)
	o.printf("Nonce: %d\n", d.Nonce)
}
