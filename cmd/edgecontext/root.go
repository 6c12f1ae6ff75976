package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	LogLevelKey  = "log.level"
	LogFormatKey = "log.format"

	SecretsFileKey = "keys.secrets"
	SecretNameKey  = "keys.secret_name"
	AlgorithmKey   = "keys.algorithm"
	JWKSURLKey     = "keys.jwks_url"
	IssuerURLKey   = "keys.issuer_url"
	RedisAddrKey   = "keys.redis_addr"
)

// app is the state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	logger     zerolog.Logger
	stdin      io.Reader
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zerolog.Nop(),
		stdin:  stdin,
	}

	cmd := &cobra.Command{
		Use:   "edgecontext",
		Short: "Build and inspect edge request headers",
		Long: `edgecontext encodes the identity of a request (authentication token, loid
cookie and session id) into the header services pass to each other, and
decodes such headers back, validating the token against the verification keys.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, configErr := a.initConfig()

			logger, err := newLogger(stderr, a.v.GetString(LogLevelKey), a.v.GetString(LogFormatKey))
			if err != nil {
				return err
			}
			a.logger = logger

			if configErr != nil { // handle error after logging is initialized
				return configErr
			}
			if configPath != "" {
				a.logger.Debug().Msgf("using config file: %s", configPath)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "",
		"Configuration file (default is .edgecontext.yaml in the current or home directory)")

	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	_ = a.v.BindPFlag(LogLevelKey, flags.Lookup("log-level"))

	flags.String("log-format", "console", "Log format (console, json)")
	_ = a.v.BindPFlag(LogFormatKey, flags.Lookup("log-format"))

	a.v.SetEnvPrefix("EDGECONTEXT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	a.v.AutomaticEnv()

	cmd.AddCommand(newEncodeCmd(a), newInspectCmd(a))
	return cmd
}

func (a *app) initConfig() (string, error) {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".edgecontext")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
		return "", nil
	}

	return a.v.ConfigFileUsed(), nil
}

// readArg returns arg, or the trimmed contents of stdin when arg is "-".
func (a *app) readArg(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}

	a.logger.Debug().Msg("reading from stdin")
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
