package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trickstertwo/xscope/logx"
	"github.com/trickstertwo/xscope/logxconcern"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Apply configuration documents to fresh concerns and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := validateFile(out, path); err != nil {
					fmt.Fprintf(out, "%s: FAIL %v\n", path, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d configuration(s) invalid", failed, len(args))
			}
			return nil
		},
	}
}

// validateFile configures an isolated concern from path, prints its appenders
// and logger levels, then resets it so any opened files are closed.
func validateFile(out io.Writer, path string) error {
	c := logxconcern.New(filepath.Base(path))
	defer func() { _ = c.Reset() }()
	if err := c.ConfigureFile(path); err != nil {
		return err
	}
	repo := c.Repository()
	fmt.Fprintf(out, "%s: ok\n", path)
	fmt.Fprintf(out, "  appenders: %s\n", strings.Join(repo.AppenderNames(), ", "))
	for _, name := range repo.LoggerNames() {
		fmt.Fprintf(out, "  %s\n", describeLogger(repo.Logger(name)))
	}
	return nil
}

func describeLogger(l *logx.Logger) string {
	level := "inherit"
	if lv, ok := l.Level(); ok {
		level = lv.String()
	}
	var names []string
	for _, a := range l.Appenders() {
		names = append(names, a.Name())
	}
	s := fmt.Sprintf("%s level=%s effective=%s", l.Name(), level, l.EffectiveLevel())
	if len(names) > 0 {
		s += " appenders=" + strings.Join(names, ",")
	}
	if !l.Additive() {
		s += " additive=false"
	}
	return s
}
