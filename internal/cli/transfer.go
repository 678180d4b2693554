package cli

import (
	"github.com/spf13/cobra"

	"github.com/metaloot/registry/internal/instruction"
)

func newTransferCmd() *cobra.Command {
	return newMoveCmd("transfer", "Move tokens between player custody accounts", func(t *instruction.Transfer) instruction.Instruction {
		return instruction.Instruction{Transfer: t}
	})
}

func newRewardCmd() *cobra.Command {
	return newMoveCmd("reward", "Pay tokens from a studio's custody to a player", func(t *instruction.Transfer) instruction.Instruction {
		return instruction.Instruction{Reward: t}
	})
}

// newMoveCmd builds the transfer and reward commands, which share their
// arguments and differ only in the instruction variant
func newMoveCmd(use, short string, wrap func(*instruction.Transfer) instruction.Instruction) *cobra.Command {
	var (
		mint, from, to string
		amount         uint64
	)

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
			fromKey, err := parseKey("from", from)
			if err != nil {
				return err
			}
			toKey, err := parseKey("to", to)
			if err != nil {
				return err
			}

			receipt, err := client.Submit(cmd.Context(), wrap(&instruction.Transfer{
				Authority:     signer.PublicKey(),
				Mint:          mintKey,
				SenderSeed:    fromKey,
				RecipientSeed: toKey,
				Amount:        amount,
			}), signer)
			if err != nil {
				return err
			}
			outputFor(cmd).Print(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "Token mint (required)")
	cmd.Flags().StringVar(&from, "from", "", "Sender seed key (required)")
	cmd.Flags().StringVar(&to, "to", "", "Recipient seed key (required)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount in base units (required)")
	for _, name := range []string{"mint", "from", "to", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
