package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/cli"
)

var evaluateFlags struct {
	cui                  bool
	cdiDFARS             bool
	itar                 bool
	ear                  bool
	ear99Plus            bool
	publicData           bool
	pilot                bool
	competitionSensitive bool
	proprietary          bool
	pii                  bool
	scope                string
	trace                bool
	format               string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a classification selection against the rule chain",
	Long: `Evaluate a classification selection against the rule chain and print the
resulting control allocation. No server is required; evaluation runs
in-process with the same rules the intake server applies.

Examples:
  # CUI always takes the full control set
  palisade evaluate --cui

  # Export-controlled data on an external system
  palisade evaluate --itar --scope external

  # Proprietary data on an internal system, showing each rule visited
  palisade evaluate --proprietary --scope internal --trace

  # Machine-readable output
  palisade evaluate --public-data --format json`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	f := evaluateCmd.Flags()
	f.BoolVar(&evaluateFlags.cui, "cui", false, "selection contains Controlled Unclassified Information")
	f.BoolVar(&evaluateFlags.cdiDFARS, "cdi-dfars", false, "selection contains Covered Defense Information (DFARS 252.204-7012)")
	f.BoolVar(&evaluateFlags.itar, "itar", false, "selection is subject to ITAR")
	f.BoolVar(&evaluateFlags.ear, "ear", false, "selection is subject to EAR")
	f.BoolVar(&evaluateFlags.ear99Plus, "ear99-plus", false, "selection contains EAR99 data requiring elevated handling")
	f.BoolVar(&evaluateFlags.publicData, "public-data", false, "selection is approved for public release")
	f.BoolVar(&evaluateFlags.pilot, "pilot", false, "system is a short-duration pilot under an authority to connect")
	f.BoolVar(&evaluateFlags.competitionSensitive, "competition-sensitive", false, "selection contains competition-sensitive data")
	f.BoolVar(&evaluateFlags.proprietary, "proprietary", false, "selection contains proprietary data")
	f.BoolVar(&evaluateFlags.pii, "pii", false, "selection contains personally identifiable information")
	f.StringVar(&evaluateFlags.scope, "scope", "", "system hosting scope (internal, external, or unset)")
	f.BoolVar(&evaluateFlags.trace, "trace", false, "show every rule visited before the match")
	f.StringVarP(&evaluateFlags.format, "format", "f", "text", "output format (text, json)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(evaluateFlags.format)
	if err != nil {
		return err
	}

	scope, err := allocation.ParseSystemScope(evaluateFlags.scope)
	if err != nil {
		return fmt.Errorf("invalid --scope: %w", err)
	}

	sel := allocation.ClassificationSelection{
		CUI:                  evaluateFlags.cui,
		CDIDFARS:             evaluateFlags.cdiDFARS,
		ITAR:                 evaluateFlags.itar,
		EAR:                  evaluateFlags.ear,
		EAR99Plus:            evaluateFlags.ear99Plus,
		PublicData:           evaluateFlags.publicData,
		PilotShortDuration:   evaluateFlags.pilot,
		CompetitionSensitive: evaluateFlags.competitionSensitive,
		Proprietary:          evaluateFlags.proprietary,
		PII:                  evaluateFlags.pii,
		SystemScope:          scope,
	}

	evaluator := allocation.NewEvaluator()

	report := evaluationReport{}
	if evaluateFlags.trace {
		result, trace, err := evaluator.EvaluateWithTrace(sel)
		if err != nil {
			return cli.NewCommandError("evaluate", err)
		}
		report.Result = result
		report.Trace = &trace
	} else {
		result, err := evaluator.Evaluate(sel)
		if err != nil {
			return cli.NewCommandError("evaluate", err)
		}
		report.Result = result
	}

	return cli.NewFormatter(format).FormatTo(os.Stdout, report)
}

// evaluationReport is the evaluate command's printable result.
type evaluationReport struct {
	Result allocation.Result           `json:"result"`
	Trace  *allocation.EvaluationTrace `json:"trace,omitempty"`
}

func (r evaluationReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Control Count: %d\n", r.Result.ControlCount)
	fmt.Fprintf(&b, "LOE Level:     %s\n", r.Result.LOELevel)
	fmt.Fprintf(&b, "Rule:          %s\n", r.Result.RuleID)
	fmt.Fprintf(&b, "Reason:        %s", r.Result.Reason)

	if r.Trace != nil {
		b.WriteString("\n\nRules visited:")
		for i, step := range r.Trace.Steps {
			marker := "-"
			if step.Matched {
				marker = "✓"
			}
			fmt.Fprintf(&b, "\n  %d. %s %-22s %s", i+1, marker, step.RuleID, step.Description)
		}
	}
	return b.String()
}
