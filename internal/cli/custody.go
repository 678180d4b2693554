package cli

import (
	"github.com/spf13/cobra"

	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/instruction"
)

func newCustodyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custody",
		Short: "Custody account commands",
	}

	cmd.AddCommand(newCustodyInitCmd("init", "Open a player's custody account", false))
	cmd.AddCommand(newCustodyInitCmd("init-studio", "Open a studio's custody account", true))
	cmd.AddCommand(newCustodyBalanceCmd())

	return cmd
}

func newCustodyInitCmd(use, short string, studio bool) *cobra.Command {
	var mint, seed string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := cfg.Signer()
			if err != nil {
				return err
			}
			mintKey, err := parseKey("mint", mint)
			if err != nil {
				return err
			}
			seedKey, err := parseKey("seed", seed)
			if err != nil {
				return err
			}

			req := &instruction.InitializeCustody{Payer: signer.PublicKey(), Mint: mintKey, Seed: seedKey}
			var ix instruction.Instruction
			if studio {
				ix.InitializeStudioCustody = req
			} else {
				ix.InitializeCustody = req
			}

			receipt, err := client.Submit(cmd.Context(), ix, signer)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "Token mint (required)")
	cmd.Flags().StringVar(&seed, "seed", "", "Record seed key (required)")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func newCustodyBalanceCmd() *cobra.Command {
	var (
		mint, seed string
		studio     bool
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a record's custody balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			mintKey, err := parseKey("mint", mint)
			if err != nil {
				return err
			}
			seedKey, err := parseKey("seed", seed)
			if err != nil {
				return err
			}

			path := "/api/v1/custody/" + mintKey.String() + "/" + seedKey.String()
			if studio {
				path = "/api/v1/studios/" + seedKey.String() + "/custody/" + mintKey.String()
			}

			var result response.Custody
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "Token mint (required)")
	cmd.Flags().StringVar(&seed, "seed", "", "Record seed key (required)")
	cmd.Flags().BoolVar(&studio, "studio", false, "The seed belongs to a studio")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}
