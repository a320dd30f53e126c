// Package cli implements the agentgroup command line interface.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/agentgroup/core"
)

// Configuration keys. Nested keys map to AGENTGROUP_* environment variables
// with dots replaced by underscores (openai.api_key -> AGENTGROUP_OPENAI_API_KEY).
const (
	keyDB             = "db"
	keyLogLevel       = "log_level"
	keyLogFormat      = "log_format"
	keyTier           = "tier"
	keyUser           = "user"
	keyBudgetFile     = "budget_file"
	keyMock           = "mock"
	keyCacheDB        = "cache.db"
	keyCacheDisabled  = "cache.disabled"
	keyOpenAIKey      = "openai.api_key"
	keyOpenAIBaseURL  = "openai.base_url"
	keyAnthropicKey   = "anthropic.api_key"
	keyAnthropicURL   = "anthropic.base_url"
	keyRatePerMinute  = "rate_limit.per_minute"
	keyRateBurst      = "rate_limit.burst"
	keyBreakerFails   = "breaker.max_failures"
	keyTracingEnabled = "tracing.enabled"
	keyTracingExport  = "tracing.exporter"
)

const envPrefix = "AGENTGROUP"

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := newViper()

	var cfgFile string
	rootCmd := &cobra.Command{
		Use:           "agentgroup",
		Short:         "Ask a group of AI agents at once",
		Long:          "agentgroup sends one message to every eligible agent of a group, runs them concurrently within a token budget and prints the merged reply.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("db", "agentgroup.db", "SQLite database holding agents and groups")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("tier", string(core.TierFree), "caller tier: free, premium or enterprise")
	flags.String("user", "", "requesting user id (empty disables the owner check)")
	flags.Bool("mock", false, "answer with a local mock model instead of a provider")

	_ = v.BindPFlag(keyDB, flags.Lookup("db"))
	_ = v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(keyTier, flags.Lookup("tier"))
	_ = v.BindPFlag(keyUser, flags.Lookup("user"))
	_ = v.BindPFlag(keyMock, flags.Lookup("mock"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newAskCmd(v),
		newAgentsCmd(v),
		newSeedCmd(v),
	)

	return rootCmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyRatePerMinute, 60.0)
	v.SetDefault(keyRateBurst, 5)
	v.SetDefault(keyBreakerFails, 5)
	v.SetDefault(keyTracingExport, "stdout")

	// Provider SDK variables are honored as well.
	_ = v.BindEnv(keyOpenAIKey, envPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv(keyAnthropicKey, envPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	return v
}

