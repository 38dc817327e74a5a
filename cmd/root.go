/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/xmlmessage/internal/config"
	"github.com/valpere/xmlmessage/internal/logging"
)

var version = "0.1.0"

var (
	configFile string
	envFile    string

	v      = viper.New()
	cfg    *config.Config
	logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "xmlmsg",
	Short: "Format XML-tagged localized messages into UI node trees",
	Long: `A CLI for localized messages that carry XML tags, such as

  Hey check out my <blog-link href="https://my-blog.fr">blog</blog-link>, {name}!

Messages live in a SQLite catalog and in go-i18n message files. "format"
resolves a message, substitutes values without ever parsing them as markup,
and prints the resulting node tree. "catalog" manages and checks messages.

Settings come from xmlmsg.toml (or .yaml/.json), XMLMSG_* environment
variables and an optional .env file.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, config.Options{ConfigFile: configFile, EnvFile: envFile})
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(cfg.LoggingConfig())
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./xmlmsg.toml)")
	flags.StringVar(&envFile, "env-file", "", "Environment file (default ./.env)")
	flags.String("db", "xmlmsg.db", "Message catalog database path")
	flags.String("messages-dir", "", "Directory of go-i18n message files to load")
	flags.StringSlice("locale", nil, "Preferred locales, most preferred first")
	flags.String("default-locale", "en", "Fallback locale")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")

	for key, flag := range map[string]string{
		"db":             "db",
		"messages_dir":   "messages-dir",
		"locales":        "locale",
		"default_locale": "default-locale",
		"log.level":      "log-level",
		"log.format":     "log-format",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}
