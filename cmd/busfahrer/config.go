package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DoyleJ11/busfahrer-client/internal/config"
)

// bindEnv lets BUSFAHRER_<FLAG> override the defaults of every flag in fs
// that was not set on the command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd() *cobra.Command {
	cfg, err := config.Load()
	cobra.CheckErr(err)

	v := viper.New()
	v.SetEnvPrefix("BUSFAHRER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "busfahrer",
		Short:   "Headless client for Busfahrer Extreme.",
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "base url of the REST api (env: BUSFAHRER_API_URL)")
	pf.StringVar(&cfg.WSURL, "ws-url", cfg.WSURL, "websocket endpoint (env: BUSFAHRER_WS_URL)")
	pf.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "delay before a lost socket is re-dialed (env: BUSFAHRER_RECONNECT_DELAY)")
	pf.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "timeout of a single REST call (env: BUSFAHRER_REQUEST_TIMEOUT)")
	pf.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "timeout of a websocket dial (env: BUSFAHRER_DIAL_TIMEOUT)")
	pf.StringVar(&cfg.SessionCookie, "session-cookie", cfg.SessionCookie, "name of the session cookie (env: BUSFAHRER_SESSION_COOKIE)")
	pf.StringVar(&cfg.SessionToken, "session-token", cfg.SessionToken, "session cookie value (env: BUSFAHRER_SESSION_TOKEN)")
	pf.StringVar(&cfg.JournalDSN, "journal-dsn", cfg.JournalDSN, "postgres dsn for the push journal, empty disables it (env: BUSFAHRER_JOURNAL_DSN)")
	pf.IntVar(&cfg.JournalBuffer, "journal-buffer", cfg.JournalBuffer, "journal entries buffered before dropping (env: BUSFAHRER_JOURNAL_BUFFER)")
	pf.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error (env: BUSFAHRER_LOG_LEVEL)")
	pf.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "console or json (env: BUSFAHRER_LOG_FORMAT)")
	bindEnv(v, pf)

	cmd.AddCommand(newWatchCmd(cfg), newReplayCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("busfahrer v{{.Version}}\n")
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}
