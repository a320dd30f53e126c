package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/agentgroup"
	"github.com/hupe1980/agentgroup/core"
)

func newAskCmd(v *viper.Viper) *cobra.Command {
	var (
		asJSON  bool
		city    string
		country string
	)

	cmd := &cobra.Command{
		Use:   "ask <group-id> <message...>",
		Short: "Send a message to every eligible agent of a group",
		Long:  "ask orchestrates one message across the group's agents. Address specific agents with @key tags; untagged messages go to all eligible agents within the tier budget.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := args[0]
			if !agentgroup.ShouldOrchestrate(groupID) {
				return fmt.Errorf("group id must not be empty")
			}
			message := strings.Join(args[1:], " ")

			a, err := wireApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(cmd.Context()) }()

			req := core.ExecutionRequest{
				GroupID:     groupID,
				UserID:      a.userID,
				Messages:    []core.Content{core.NewTextContent(core.RoleUser, message)},
				UserMessage: message,
				Tier:        a.tier,
				Hints:       core.RequestHints{City: city, Country: country},
			}

			text, result := a.group.Ask(cmd.Context(), req)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the structured result as JSON")
	cmd.Flags().StringVar(&city, "city", "", "caller city folded into synthesized prompts")
	cmd.Flags().StringVar(&country, "country", "", "caller country folded into synthesized prompts")

	return cmd
}
