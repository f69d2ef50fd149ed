package odds

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/turtlerace/pkg/cmd/util"
	"github.com/mpapenbr/turtlerace/pkg/config"
	"github.com/mpapenbr/turtlerace/pkg/model"
)

func NewOddsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odds",
		Short: "shows the odds table with the implied probabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.SetupLogger(); err != nil {
				return err
			}
			odds, err := config.LoadOdds(config.OddsFile)
			if err != nil {
				return err
			}
			return writeOdds(cmd.OutOrStdout(), odds)
		},
	}
	return cmd
}

var decimal100 = decimal.NewFromInt(100)

func writeOdds(out io.Writer, odds *model.OddsTable) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "color\todds\timplied probability")
	for _, e := range odds.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n",
			e.Color,
			model.FormatMultiplier(e.Multiplier),
			model.ImpliedProbability(e.Multiplier).Mul(decimal100).StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\noverround: %s%%\n",
		odds.Overround().Mul(decimal100).StringFixed(2))
	return err
}
