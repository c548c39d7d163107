package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logx"
	"github.com/trickstertwo/xscope/logxconcern"
	"github.com/trickstertwo/xscope/logxconcern/provider"
)

// Diagnosis describes how logging resolution is wired in this process.
type Diagnosis struct {
	Selector        string
	Preferred       string
	BridgeInstalled bool
	DefaultConcern  string
	Repository      string
	Selectors       []string
	AppenderTypes   []string
}

// Diagnose collects the current state. It commits the logx selector if
// nothing did so yet.
func Diagnose(ctx context.Context) Diagnosis {
	sel := logx.Selector()
	d := Diagnosis{
		Selector:        logx.SelectorName(),
		Preferred:       logx.PreferredSelector(),
		BridgeInstalled: provider.Installed() && logxconcern.Installed(),
		Selectors:       logx.Selectors(),
		AppenderTypes:   logx.AppenderTypes(),
	}
	c := xscope.ConcernFrom(ctx)
	d.DefaultConcern = xscope.TypeName(c)
	if rc, ok := c.(logxconcern.RepositoryConcern); ok {
		d.Repository = rc.Repository().Name()
	} else {
		d.Repository = sel.DefaultRepository().Name()
	}
	return d
}

func newDiagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diag",
		Short: "Report the committed selector, bridge installation, and default concern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := Diagnose(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "selector:         %s\n", d.Selector)
			fmt.Fprintf(out, "preferred:        %s\n", d.Preferred)
			fmt.Fprintf(out, "bridge installed: %t\n", d.BridgeInstalled)
			fmt.Fprintf(out, "default concern:  %s\n", d.DefaultConcern)
			fmt.Fprintf(out, "repository:       %s\n", d.Repository)
			fmt.Fprintf(out, "selectors:        %s\n", strings.Join(d.Selectors, ", "))
			fmt.Fprintf(out, "appender types:   %s\n", strings.Join(d.AppenderTypes, ", "))
			if !d.BridgeInstalled {
				xscope.Named(cmd.Context(), "xscope/cli").Warn().
					Str("selector", d.Selector).
					Msg("logx committed before the bridge provider initialized; legacy loggers ignore scoped concerns")
			}
			return nil
		},
	}
}
