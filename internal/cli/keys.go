package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/api/response"
)

// parseKey parses a base58 public key given for the named flag or argument
func parseKey(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return key, nil
}

// keyOrDefault parses value, or returns def when value is empty
func keyOrDefault(name, value string, def solana.PublicKey) (solana.PublicKey, error) {
	if value == "" {
		return def, nil
	}
	return parseKey(name, value)
}

// newOrGivenKey parses a base58 private key, or generates one when none is
// given. generated reports whether the key is new.
func newOrGivenKey(name, value string) (key solana.PrivateKey, generated bool, err error) {
	if value == "" {
		key, err = solana.NewRandomPrivateKey()
		return key, true, err
	}
	key, err = solana.PrivateKeyFromBase58(value)
	if err != nil {
		return nil, false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return key, false, nil
}

func keypairOf(key solana.PrivateKey) Keypair {
	return Keypair{PublicKey: key.PublicKey().String(), PrivateKey: key.String()}
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new ed25519 keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := solana.NewRandomPrivateKey()
			if err != nil {
				return err
			}
			outputFor(cmd).Print(keypairOf(key))
			return nil
		},
	}
}

func newDeriveCmd() *cobra.Command {
	var program string

	cmd := &cobra.Command{
		Use:   "derive <registry|player|token> <seed>",
		Short: "Derive a record address locally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := address.Tag(args[0])
			switch tag {
			case address.TagRegistry, address.TagPlayer, address.TagToken:
			default:
				return fmt.Errorf("unknown tag %q (want registry, player or token)", args[0])
			}
			seed, err := parseKey("seed", args[1])
			if err != nil {
				return err
			}
			programID, err := keyOrDefault("program", program, address.DefaultProgramID)
			if err != nil {
				return err
			}

			deriver := address.New(programID)
			derived, err := deriver.Derive(tag, seed)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(response.DerivedFromModel(tag, seed, programID, derived))
			return nil
		},
	}

	cmd.Flags().StringVar(&program, "program", "", "Program id (default: the registry program)")

	return cmd
}
