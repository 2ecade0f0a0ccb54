package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const envPrefix = "VOIDSIM"

// app carries state shared by every subcommand once the root has loaded it.
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "voidsim",
		Short:         "Headless debris-collection orbit simulation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./voidsim.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.String("log-level", "", "log level override (debug, info, warn, error)")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(newRunCmd(a), newSweepCmd(a), newConfigCmd(a))
	return root
}

// initialize loads the dotenv file, the config file and the environment, in
// increasing precedence, then builds the logger the config asks for.
func (a *app) initialize() error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	config.SetDefaults(a.v)
	if a.cfgFile != "" {
		if _, err := os.Stat(a.cfgFile); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("voidsim")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// normalization warnings go to a console logger until the real one exists
	bootstrap := log.New(log.Options{Level: log.LevelWarn, Encoding: "console"})
	cfg, err := config.Load(a.v, bootstrap)
	_ = bootstrap.Sync()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = log.New(cfg.Log.Options())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("Config loaded", log.String("file", used))
	}
	return nil
}
