package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// requireFlags prints usage and fails when any named string flag is empty.
func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || strings.TrimSpace(f.Value.String()) == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))
}
