package cli

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/instruction"
	"github.com/metaloot/registry/internal/services/system"
)

func newAirdropCmd() *cobra.Command {
	var (
		to       string
		lamports uint64
	)

	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Credit lamports to a wallet from the faucet",
		RunE: func(cmd *cobra.Command, args []string) error {
			var def solana.PublicKey
			if cfg.Key != "" {
				signer, err := cfg.Signer()
				if err != nil {
					return err
				}
				def = signer.PublicKey()
			}
			recipient, err := keyOrDefault("to", to, def)
			if err != nil {
				return err
			}
			if recipient.IsZero() {
				return errors.New("--to is required when no signing key is set")
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				Airdrop: &instruction.Airdrop{To: recipient, Lamports: lamports},
			})
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient wallet (default: the signing key)")
	cmd.Flags().Uint64Var(&lamports, "lamports", system.LamportsPerSOL, "Lamports to credit")

	return cmd
}

func newStudioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studio",
		Short: "Studio registry commands",
	}

	cmd.AddCommand(newStudioCreateCmd())
	cmd.AddCommand(newStudioUpdateCmd())
	cmd.AddCommand(newStudioGetCmd())

	return cmd
}

// studioFlags are the metadata flags shared by studio create and update
type studioFlags struct {
	name        string
	symbol      string
	uri         string
	nativeToken string
	collections []string
}

func (f *studioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Studio name (required)")
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "Studio symbol (required)")
	cmd.Flags().StringVar(&f.uri, "uri", "", "Metadata URI")
	cmd.Flags().StringVar(&f.nativeToken, "native-token", "", "Native token mint")
	cmd.Flags().StringSliceVar(&f.collections, "collection", nil, "NFT collection key (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")
}

func (f *studioFlags) metadata() (instruction.StudioMetadata, error) {
	md := instruction.StudioMetadata{Name: f.name, Symbol: f.symbol, URI: f.uri}
	if f.nativeToken != "" {
		key, err := parseKey("native-token", f.nativeToken)
		if err != nil {
			return md, err
		}
		md.NativeToken = key
	}
	for _, c := range f.collections {
		key, err := parseKey("collection", c)
		if err != nil {
			return md, err
		}
		md.NFTCollection = append(md.NFTCollection, key)
	}
	return md, nil
}

func newStudioCreateCmd() *cobra.Command {
	var (
		flags     studioFlags
		seed      string
		authority string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a studio",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			md, err := flags.metadata()
			if err != nil {
				return err
			}
			auth, err := keyOrDefault("authority", authority, signer.PublicKey())
			if err != nil {
				return err
			}

			seedKey, created, err := seedOrNew(seed)
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				CreateStudio: &instruction.CreateStudio{
					Payer:          signer.PublicKey(),
					Seed:           seedKey,
					Authority:      auth,
					StudioMetadata: md,
				},
			}, signer)
			if err != nil {
				return err
			}
			printCreated(cmd, receipt, created)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&seed, "seed", "", "Seed key (default: a new random key)")
	cmd.Flags().StringVar(&authority, "authority", "", "Studio authority (default: the signing key)")

	return cmd
}

func newStudioUpdateCmd() *cobra.Command {
	var (
		flags studioFlags
		seed  string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a studio's metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			seedKey, err := parseKey("seed", seed)
			if err != nil {
				return err
			}
			md, err := flags.metadata()
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				UpdateStudio: &instruction.UpdateStudio{
					Authority:      signer.PublicKey(),
					Seed:           seedKey,
					StudioMetadata: md,
				},
			}, signer)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&seed, "seed", "", "Studio seed key (required)")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func newStudioGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <seed>",
		Short: "Show a studio record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseKey("seed", args[0])
			if err != nil {
				return err
			}

			var result response.Studio
			if err := client.Get(cmd.Context(), "/api/v1/studios/"+seed.String(), &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player account commands",
	}

	cmd.AddCommand(newPlayerCreateCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerGetCmd())

	return cmd
}

func newPlayerCreateCmd() *cobra.Command {
	var seed, username, uri string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			seedKey, created, err := seedOrNew(seed)
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				CreatePlayer: &instruction.CreatePlayer{
					Payer:    signer.PublicKey(),
					Seed:     seedKey,
					Username: username,
					URI:      uri,
				},
			}, signer)
			if err != nil {
				return err
			}
			printCreated(cmd, receipt, created)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "Seed key (default: a new random key)")
	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&uri, "uri", "", "Profile URI")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newPlayerUpdateCmd() *cobra.Command {
	var seed, username, uri, newAuthority string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the given fields of a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			seedKey, err := parseKey("seed", seed)
			if err != nil {
				return err
			}

			update := &instruction.UpdatePlayer{Authority: signer.PublicKey(), Seed: seedKey}
			if cmd.Flags().Changed("username") {
				update.Username = &username
			}
			if cmd.Flags().Changed("uri") {
				update.URI = &uri
			}
			if cmd.Flags().Changed("new-authority") {
				key, err := parseKey("new-authority", newAuthority)
				if err != nil {
					return err
				}
				update.NewAuthority = &key
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{UpdatePlayer: update}, signer)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "Player seed key (required)")
	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&uri, "uri", "", "New profile URI")
	cmd.Flags().StringVar(&newAuthority, "new-authority", "", "Key that takes over the player")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <seed>",
		Short: "Show a player record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseKey("seed", args[0])
			if err != nil {
				return err
			}

			var result response.Player
			if err := client.Get(cmd.Context(), "/api/v1/players/"+seed.String(), &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

// seedOrNew parses seed, or generates a fresh seed key when it is empty
func seedOrNew(seed string) (solana.PublicKey, *solana.PrivateKey, error) {
	if seed != "" {
		key, err := parseKey("seed", seed)
		return key, nil, err
	}
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("generate seed: %w", err)
	}
	return key.PublicKey(), &key, nil
}

// printCreated prints the receipt, together with the generated key if any
func printCreated(cmd *cobra.Command, receipt Receipt, generated *solana.PrivateKey) {
	out := outputFor(cmd)
	if generated == nil {
		out.Print(receipt)
		return
	}
	out.Print(Created{Receipt: receipt, Keypair: keypairOf(*generated)})
}
