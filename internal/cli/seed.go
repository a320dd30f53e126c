package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/agentgroup/store"
)

func newSeedCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load agents and groups from a YAML file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := store.LoadSeed(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(v)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := seed.Apply(cmd.Context(), st); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d agents and %d groups into %s\n",
				len(seed.Agents), len(seed.Groups), v.GetString(keyDB))
			return err
		},
	}
}
