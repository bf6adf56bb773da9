package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/ledger"
)

var jsonOutput bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle [ledger.json]",
		Short: "Compute balances and suggested transfers for a ledger file",
		Long: `Reads a ledger of members, expenses and settlements as JSON from the
given file, or from stdin when the file is omitted or "-", and prints every
member's net balance followed by the transfers that settle the group.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			var in io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			file, err := parseLedgerFile(in)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			plan := computePlan(file)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			return writeTable(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

type plan struct {
	Balances   []planBalance   `json:"balances"`
	Transfers  []planTransfer  `json:"transfers"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

type planBalance struct {
	Member string          `json:"member"`
	Amount decimal.Decimal `json:"amount"`
	Spent  decimal.Decimal `json:"spent"`
}

type planTransfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func computePlan(f *ledgerFile) *plan {
	members, expenses, settlements := f.ledgerInput()

	net := ledger.ComputeNetBalances(members, expenses, settlements)
	spent := ledger.SpentByMember(members, expenses)

	p := &plan{
		Balances:   make([]planBalance, 0, len(net)),
		Transfers:  []planTransfer{},
		TotalSpent: ledger.RoundCents(ledger.TotalSpent(expenses)),
	}
	for i, b := range net.Rounded() {
		p.Balances = append(p.Balances, planBalance{
			Member: string(b.Member),
			Amount: b.Amount,
			Spent:  ledger.RoundCents(spent[i].Amount),
		})
	}
	for _, t := range ledger.Simplify(net) {
		p.Transfers = append(p.Transfers, planTransfer{From: string(t.From), To: string(t.To), Amount: t.Amount})
	}
	return p
}

func writeJSON(w io.Writer, p *plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func writeTable(w io.Writer, p *plan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MEMBER\tSPENT\tBALANCE\t")
	for _, b := range p.Balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", b.Member, b.Spent.StringFixed(2), b.Amount.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t\t\n", p.TotalSpent.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(p.Transfers) == 0 {
		_, err := fmt.Fprintln(w, "All settled up.")
		return err
	}
	for _, t := range p.Transfers {
		if _, err := fmt.Fprintf(w, "%s pays %s %s\n", t.From, t.To, t.Amount.StringFixed(2)); err != nil {
			return err
		}
	}
	return nil
}
