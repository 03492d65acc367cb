package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080"

var opts struct {
	apiURL     string
	cookieFile string
	redisAddr  string
	profile    string
	format     string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "account-cli",
	Short: "Manage your account from the terminal",
	Long: `account-cli talks to the account dashboard API: sign in, show the
account, edit the profile and upload an avatar.

The signed-in user is cached for the session, in memory or in Redis when
--redis (or REDIS_ADDR) is set.

Use "account-cli [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadEnv)

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.apiURL, "api", "", "API base URL (default $ACCOUNT_API_URL or "+defaultAPIURL+")")
	f.StringVar(&opts.cookieFile, "cookies", "", "session cookie file (default in the user config dir)")
	f.StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared session cache (default $REDIS_ADDR)")
	f.StringVar(&opts.profile, "profile", "default", "session cache key, for keeping several sign-ins apart")
	f.StringVarP(&opts.format, "format", "o", "table", "output format: table or json")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and cache activity")
}

// loadEnv fills flags that were not given from .env and the environment.
func loadEnv() {
	_ = godotenv.Load()
	if opts.apiURL == "" {
		opts.apiURL = os.Getenv("ACCOUNT_API_URL")
	}
	if opts.apiURL == "" {
		opts.apiURL = defaultAPIURL
	}
	if opts.redisAddr == "" {
		opts.redisAddr = os.Getenv("REDIS_ADDR")
	}
}
