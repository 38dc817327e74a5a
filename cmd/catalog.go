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
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/xmlmessage/internal/catalog"
	"github.com/valpere/xmlmessage/internal/detector"
	"github.com/valpere/xmlmessage/internal/markdown"
	"github.com/valpere/xmlmessage/internal/orchestrator"
	"github.com/valpere/xmlmessage/internal/store"
	"github.com/valpere/xmlmessage/internal/validator"
	"github.com/valpere/xmlmessage/pkg/markup"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the message catalog",
	Long:  `Add, list, import, check and delete messages in the SQLite message catalog.`,
}

var (
	catalogAddDescription string
	catalogAddForms       = map[string]*string{}
	catalogMarkdown       bool
)

var catalogAddCmd = &cobra.Command{
	Use:   "add <id> <text>",
	Short: "Add or update a message",
	Long: `Add a message for the primary configured locale. <text> is the "other"
plural form; --one, --few and friends set the remaining CLDR forms.

Example:
  xmlmsg catalog add blog 'Regarde mon <blog-link>blog</blog-link>, {name} !' --locale fr`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := store.Message{
			ID:          args[0],
			Locale:      primaryLocale(),
			Description: catalogAddDescription,
			Other:       args[1],
			Zero:        *catalogAddForms["zero"],
			One:         *catalogAddForms["one"],
			Two:         *catalogAddForms["two"],
			Few:         *catalogAddForms["few"],
			Many:        *catalogAddForms["many"],
		}
		if catalogMarkdown {
			if err := convertMarkdown(&m); err != nil {
				return err
			}
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Put(context.Background(), m); err != nil {
			return fmt.Errorf("failed to add message: %w", err)
		}
		fmt.Printf("Added: [%s] %s\n", m.Locale, m.ID)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages",
	Long:  `List messages, narrowed to the primary locale when --locale is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		var locale string
		if len(cfg.Locales) > 0 {
			locale = cfg.Locales[0]
		}
		msgs, err := db.List(context.Background(), locale)
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}

		if len(msgs) == 0 {
			fmt.Println("Catalog is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LOCALE\tID\tPLURAL\tUPDATED\tTEXT")
		for _, m := range msgs {
			snippet := []rune(markdown.StripTags(m.Other))
			if len(snippet) > 40 {
				snippet = append(snippet[:37], []rune("...")...)
			}
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n",
				m.Locale, m.ID, m.Plural(), m.UpdatedAt.Format("2006-01-02 15:04"), string(snippet))
		}
		return w.Flush()
	},
}

var catalogDeleteAll bool

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a message",
	Long:  `Delete a message in the primary locale, or in every locale with --all-locales.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		locale := primaryLocale()
		if catalogDeleteAll {
			locale = ""
		}
		n, err := db.Delete(context.Background(), args[0], locale)
		if err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}
		fmt.Printf("Deleted %d entries for %s.\n", n, args[0])
		return nil
	},
}

var catalogClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Clear(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
		fmt.Printf("Cleared %d messages from the catalog.\n", n)
		return nil
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total entries:   %d\n", stats.TotalEntries)
		fmt.Printf("Message ids:     %d\n", stats.DistinctIDs)
		fmt.Printf("Locales:         %d\n", stats.Locales)
		fmt.Printf("Plural entries:  %d\n", stats.PluralEntries)
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import go-i18n message files",
	Long: `Import go-i18n message files (TOML or JSON) into the catalog. The locale
comes from the file name, e.g. active.fr.toml.

Example:
  xmlmsg catalog import locales/active.en.toml locales/active.fr.toml --markdown`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		total := 0
		for _, path := range args {
			mf, err := catalog.ReadFile(path)
			if err != nil {
				return err
			}
			for _, msg := range mf.Messages {
				m := catalog.FromI18n(mf.Tag.String(), msg)
				if catalogMarkdown {
					if err := convertMarkdown(&m); err != nil {
						return fmt.Errorf("%s: %s: %w", path, m.ID, err)
					}
				}
				if err := db.Put(ctx, m); err != nil {
					return fmt.Errorf("%s: %s: %w", path, m.ID, err)
				}
			}
			logger.Info("imported message file", "path", path, "locale", mf.Tag.String(), "messages", len(mf.Messages))
			total += len(mf.Messages)
		}
		fmt.Printf("Imported %d messages from %d files.\n", total, len(args))
		return nil
	},
}

var catalogCheckSkipLanguage bool

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check stored messages",
	Long: `Check that every stored message is valid ICU, is well-formed XML once its
arguments are substituted, and is written in the language of its locale.
Texts shorter than check.min_detect_length runes skip the language check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		msgs, err := db.List(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}

		parser, err := markup.DefaultProvider().Parser()
		if err != nil {
			return err
		}
		var det *detector.Detector
		if !catalogCheckSkipLanguage {
			locales, err := db.Locales(ctx)
			if err != nil {
				return err
			}
			det = detector.NewFor(locales...)
		}
		v := validator.New(parser, det, validator.Config{
			MinDetectLength: cfg.Check.MinDetectLength,
			MinConfidence:   cfg.Check.MinConfidence,
		})

		o := orchestrator.New(func(ctx context.Context, m store.Message) ([]validator.Problem, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return v.Check(m), nil
		}, orchestrator.OrchestratorConfig{
			Concurrency: cfg.Check.Concurrency,
			Timeout:     cfg.Check.Timeout,
		})
		result := o.Execute(ctx, msgs)

		count := 0
		for _, res := range result.Results {
			if res.Err != nil {
				m := msgs[res.Index]
				fmt.Fprintf(os.Stderr, "%s/%s: check failed: %v\n", m.Locale, m.ID, res.Err)
				count++
				continue
			}
			for _, p := range res.Value {
				fmt.Println(p.Error())
				count++
			}
		}

		if count > 0 {
			return fmt.Errorf("%d problems in %d messages", count, len(msgs))
		}
		fmt.Printf("Checked %d messages: no problems.\n", len(msgs))
		return nil
	},
}

// convertMarkdown rewrites every form of m from inline Markdown to XML.
func convertMarkdown(m *store.Message) error {
	for _, form := range []*string{&m.Zero, &m.One, &m.Two, &m.Few, &m.Many, &m.Other} {
		if strings.TrimSpace(*form) == "" {
			continue
		}
		converted, err := markdown.ToXML(*form)
		if err != nil {
			return err
		}
		*form = converted
	}
	return nil
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogAddCmd.Flags().StringVar(&catalogAddDescription, "description", "", "Message description")
	for _, form := range []string{"zero", "one", "two", "few", "many"} {
		catalogAddForms[form] = catalogAddCmd.Flags().String(form, "", fmt.Sprintf("%q plural form", form))
	}
	catalogAddCmd.Flags().BoolVar(&catalogMarkdown, "markdown", false, "Convert inline Markdown to XML tags")
	catalogImportCmd.Flags().BoolVar(&catalogMarkdown, "markdown", false, "Convert inline Markdown to XML tags")
	catalogDeleteCmd.Flags().BoolVar(&catalogDeleteAll, "all-locales", false, "Delete the message in every locale")
	catalogCheckCmd.Flags().BoolVar(&catalogCheckSkipLanguage, "skip-language", false, "Skip the language check")

	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDeleteCmd)
	catalogCmd.AddCommand(catalogClearCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
}
