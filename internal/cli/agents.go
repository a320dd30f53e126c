package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newAgentsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "agents <group-id>",
		Short: "List the agents of a group in join order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(v)
			if err != nil {
				return err
			}
			defer st.Close()

			agents, err := st.AllAgents(cmd.Context(), args[0], v.GetString(keyUser))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KEY\tNAME\tMODEL\tGLOBAL\tLOCAL\tELIGIBLE")
			for _, a := range agents {
				_, _ = fmt.Fprintf(w, "@%s\t%s\t%s\t%s\t%s\t%s\n",
					a.Key, a.DisplayName, orDefault(a.Model, DefaultModelID),
					onOff(a.Enabled), onOff(a.LocalEnabled), yesNo(a.Eligible()))
			}
			return w.Flush()
		},
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
