package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RegisterFlags adds the config backed flags to cmd. Flags left unset fall back to
// the config file, then the OCW_ environment variables, then the defaults.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "config file path (default ./config.toml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	flags.IntP("workers", "w", 0, "number of listings processed at once")
	flags.IntP("threads", "t", 0, "number of resources of a listing processed at once")
	flags.Int("retry", 0, "attempts per request")
	flags.Int("timeout", 0, "timeout of each request in seconds")
	flags.String("user-agent", "", "User-Agent header")
	flags.String("proxy", "", "proxy URL (http, https, socks5, socks5h)")

	flags.String("flag", "", "text an anchor must contain to be a resource link")
	flags.String("match-kind", "", "how --flag is matched: substring, regexp or selector")
	flags.Bool("unique-links", false, "drop repeated resource links of a listing")
	flags.String("multi-asset", "", "what to do with resource pages linking several PDFs: overwrite or suffix")
	flags.Bool("fail-fast", false, "abort the run on the first error")

	flags.StringP("dest", "d", "", "parent directory of the course tree (default ~/Downloads/MIT_OCW)")
	flags.StringP("storage", "s", "", "name of a configured storage to save into")

	flags.String("db-path", "", "download history database path")
	flags.Bool("no-history", false, "do not record downloads in the history database")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	viper.BindPFlag("log.level", flags.Lookup("log-level"))

	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("threads", flags.Lookup("threads"))
	viper.BindPFlag("retry", flags.Lookup("retry"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
	viper.BindPFlag("user_agent", flags.Lookup("user-agent"))
	viper.BindPFlag("proxy", flags.Lookup("proxy"))

	viper.BindPFlag("flag", flags.Lookup("flag"))
	viper.BindPFlag("match_kind", flags.Lookup("match-kind"))
	viper.BindPFlag("unique_links", flags.Lookup("unique-links"))
	viper.BindPFlag("multi_asset", flags.Lookup("multi-asset"))
	viper.BindPFlag("fail_fast", flags.Lookup("fail-fast"))

	viper.BindPFlag("dest", flags.Lookup("dest"))
	viper.BindPFlag("storage", flags.Lookup("storage"))

	viper.BindPFlag("db.path", flags.Lookup("db-path"))
}

func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}

// HistoryDisabled reports whether --no-history was given.
func HistoryDisabled(cmd *cobra.Command) bool {
	disabled, _ := cmd.Flags().GetBool("no-history")
	return disabled || !C().DB.Enable
}
