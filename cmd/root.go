// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/clawlogin/internal/config"
	"github.com/xkilldash9x/clawlogin/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// NewRootCommand builds a fresh command tree. Running it without a
// subcommand performs the login.
func NewRootCommand() *cobra.Command {
	var cfgFile, envFile string

	rootCmd := &cobra.Command{
		Use:           "clawlogin",
		Short:         "Keeps a ClawCloud Run account signed in through GitHub OAuth.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}

			v := viper.New()
			config.SetDefaults(v)
			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.Initialize(config.NewDefaultConfig().Logger, zapcore.AddSync(cmd.ErrOrStderr()))
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.Initialize(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
			observability.Redact(cfg.Login.Password, cfg.Login.TOTPSecret, cfg.Login.Session, cfg.Secrets.Token)
			observability.GetLogger().Debug("Starting clawlogin", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
		RunE: runLogin,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command tree and flushes the logger.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	observability.Sync()
	return err
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// initializeConfig reads the optional config file and enables CLAWLOGIN_*
// environment overrides for every key.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CLAWLOGIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// configFromContext returns the configuration stored by PersistentPreRunE.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
