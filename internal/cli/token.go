package cli

import (
	"github.com/spf13/cobra"

	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/instruction"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token ledger commands",
	}

	cmd.AddCommand(newTokenCreateMintCmd())
	cmd.AddCommand(newTokenCreateAccountCmd())
	cmd.AddCommand(newTokenMintToCmd())
	cmd.AddCommand(newTokenTransferCmd())
	cmd.AddCommand(newTokenBalanceCmd())

	return cmd
}

func newTokenCreateMintCmd() *cobra.Command {
	var (
		mintKey, authority string
		decimals           uint8
	)

	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "Create a token mint",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			mint, generated, err := newOrGivenKey("mint-key", mintKey)
			if err != nil {
				return err
			}
			auth, err := keyOrDefault("mint-authority", authority, signer.PublicKey())
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				CreateMint: &instruction.CreateMint{
					Payer:         signer.PublicKey(),
					Mint:          mint.PublicKey(),
					MintAuthority: auth,
					Decimals:      decimals,
				},
			}, signer, mint)
			if err != nil {
				return err
			}
			if !generated {
				outputFor(cmd).Print(receipt)
				return nil
			}
			printCreated(cmd, receipt, &mint)
			return nil
		},
	}

	cmd.Flags().StringVar(&mintKey, "mint-key", "", "Base58 private key of the mint (default: a new random key)")
	cmd.Flags().StringVar(&authority, "mint-authority", "", "Mint authority (default: the signing key)")
	cmd.Flags().Uint8Var(&decimals, "decimals", 0, "Decimal places")

	return cmd
}

func newTokenCreateAccountCmd() *cobra.Command {
	var accountKey, mint, owner string

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a token account",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			mintKey, err := parseKey("mint", mint)
			if err != nil {
				return err
			}
			ownerKey, err := keyOrDefault("owner", owner, signer.PublicKey())
			if err != nil {
				return err
			}
			account, generated, err := newOrGivenKey("account-key", accountKey)
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				CreateTokenAccount: &instruction.CreateTokenAccount{
					Payer:   signer.PublicKey(),
					Address: account.PublicKey(),
					Mint:    mintKey,
					Owner:   ownerKey,
				},
			}, signer, account)
			if err != nil {
				return err
			}
			if !generated {
				outputFor(cmd).Print(receipt)
				return nil
			}
			printCreated(cmd, receipt, &account)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountKey, "account-key", "", "Base58 private key of the account (default: a new random key)")
	cmd.Flags().StringVar(&mint, "mint", "", "Token mint (required)")
	cmd.Flags().StringVar(&owner, "owner", "", "Account owner (default: the signing key)")
	_ = cmd.MarkFlagRequired("mint")

	return cmd
}

func newTokenMintToCmd() *cobra.Command {
	var (
		mint, to string
		amount   uint64
	)

	cmd := &cobra.Command{
		Use:   "mint-to",
		Short: "Issue tokens into a token account",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			mintKey, err := parseKey("mint", mint)
			if err != nil {
				return err
			}
			dest, err := parseKey("to", to)
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				MintTo: &instruction.MintTo{
					MintAuthority: signer.PublicKey(),
					Mint:          mintKey,
					Destination:   dest,
					Amount:        amount,
				},
			}, signer)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "Token mint (required)")
	cmd.Flags().StringVar(&to, "to", "", "Destination token account (required)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount in base units (required)")
	for _, name := range []string{"mint", "to", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newTokenTransferCmd() *cobra.Command {
	var (
		from, to string
		amount   uint64
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move tokens between token accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			fromKey, err := parseKey("from", from)
			if err != nil {
				return err
			}
			toKey, err := parseKey("to", to)
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), instruction.Instruction{
				TokenTransfer: &instruction.TokenTransfer{
					Owner:  signer.PublicKey(),
					From:   fromKey,
					To:     toKey,
					Amount: amount,
				},
			}, signer)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source token account (required)")
	cmd.Flags().StringVar(&to, "to", "", "Destination token account (required)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount in base units (required)")
	for _, name := range []string{"from", "to", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newTokenBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show a ledger account and its token balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseKey("account", args[0])
			if err != nil {
				return err
			}

			var result response.Account
			if err := client.Get(cmd.Context(), "/api/v1/accounts/"+addr.String(), &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}
