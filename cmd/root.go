package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/duffleit/quill/internal/config"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "quill - a Jekyll-style blog generator",
	Long: `quill turns a directory of Markdown posts with front matter into a
static blog: post pages, paginated index pages, and your stylesheet,
composed through the layouts you define.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		return initConfig()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./quill.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initLogger() error {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	var err error
	logger, err = zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}

func initConfig() error {
	v := viper.New()

	defaults := config.Defaults()
	v.SetDefault("siteTitle", defaults.SiteTitle)
	v.SetDefault("baseURL", defaults.BaseURL)
	v.SetDefault("contentDir", defaults.ContentDir)
	v.SetDefault("layoutsDir", defaults.LayoutsDir)
	v.SetDefault("staticDir", defaults.StaticDir)
	v.SetDefault("outputDir", defaults.OutputDir)
	v.SetDefault("pageSize", defaults.PageSize)
	v.SetDefault("relatedMax", defaults.RelatedMax)
	v.SetDefault("sanitize", defaults.Sanitize)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("quill")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("QUILL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				return fmt.Errorf("config file %s not found: %w", cfgFile, err)
			}
			logger.Debug("no config file found, using defaults")
		} else {
			return fmt.Errorf("read config file: %w", err)
		}
	} else {
		logger.Info("using config file", zap.String("file", v.ConfigFileUsed()))
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
