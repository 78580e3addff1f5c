package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/cli"
	"bastion-hq/palisade/pkg/intake/types"
)

var rulesFlags struct {
	format string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the allocation rule chain",
	Long: `List the allocation rule chain in evaluation order.

Rules are tested top to bottom and the first match wins, so position is
authoritative: a selection matching rule 1 never reaches rule 3.

Examples:
  palisade rules
  palisade rules --format json
  palisade rules --format csv > rules.csv`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesFlags.format, "format", "f", "text", "output format (text, json, csv)")
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rulesFlags.format)
	if err != nil {
		return err
	}

	listing := ruleListing{types.NewRulesResponse(allocation.DefaultRuleChain())}
	return cli.NewFormatter(format).FormatTo(os.Stdout, listing)
}

// ruleListing adapts the rules payload for the CLI formatters.
type ruleListing struct {
	*types.RulesResponse
}

func (l ruleListing) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule chain (%d rules, first match wins):\n", l.Count)
	for _, r := range l.Rules {
		fmt.Fprintf(&b, "\n  %d. %-22s %3d controls  LOE %-5s  %s", r.Position, r.ID, r.ControlCount, r.LOELevel, r.Reason)
	}
	return b.String()
}

func (l ruleListing) CSVHeader() []string {
	return []string{"position", "id", "control_count", "loe_level", "reason"}
}

func (l ruleListing) CSVRows() [][]string {
	rows := make([][]string, len(l.Rules))
	for i, r := range l.Rules {
		rows[i] = []string{
			strconv.Itoa(r.Position),
			r.ID,
			strconv.Itoa(r.ControlCount),
			r.LOELevel,
			r.Reason,
		}
	}
	return rows
}
