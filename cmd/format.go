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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/xmlmessage/internal/catalog"
	"github.com/valpere/xmlmessage/internal/markdown"
	"github.com/valpere/xmlmessage/pkg/ui"
	"github.com/valpere/xmlmessage/pkg/xmlmsg"
)

const inlineMessageID = "inline"

var (
	formatMessage     string
	formatDescription string
	formatCount       string
	formatValues      []string
	formatTags        []string
	formatTagProps    []string
	formatOutput      string
	formatMarkdown    bool
)

var formatCmd = &cobra.Command{
	Use:   "format [message-id]",
	Short: "Format a message into a node tree",
	Long: `Resolve a message from the catalog (or --message) for the configured
locales, substitute values and print the resulting node tree.

Values never reach the XML parser: markup inside a value stays text.

Examples:
  xmlmsg format blog --locale fr -v name=Ann --tag blog-link=a --tag-prop blog-link.href=https://my-blog.fr
  xmlmsg format -m 'This text should be <italic>italic</italic>' --tag italic=em -o outline
  xmlmsg format items --count 3 -v count=3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && formatMessage == "" {
			return fmt.Errorf("a message id or --message is required")
		}
		if formatOutput != "json" && formatOutput != "outline" {
			return fmt.Errorf("unknown output %q: want json or outline", formatOutput)
		}

		d := xmlmsg.Descriptor{ID: inlineMessageID, Description: formatDescription}
		if len(args) == 1 {
			d.ID = args[0]
		}
		if formatMessage != "" {
			text := formatMessage
			if formatMarkdown {
				converted, err := markdown.ToXML(text)
				if err != nil {
					return err
				}
				text = converted
			}
			d.DefaultMessage = text
		}
		if formatCount != "" {
			d.PluralCount = parseScalar(formatCount)
		}

		values, err := parseValues(formatValues)
		if err != nil {
			return err
		}
		tags, err := parseTags(formatTags, formatTagProps)
		if err != nil {
			return err
		}

		ctx := context.Background()
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		engine, err := buildEngine(ctx, db)
		if err != nil {
			return err
		}

		el, err := buildFormatter(engine).Format(xmlmsg.Request{Descriptor: d, Tags: tags, Values: values})
		if err != nil {
			if errors.Is(err, catalog.ErrMessageNotFound) {
				if similar, _ := db.Similar(ctx, d.ID, 0.6, 3); len(similar) > 0 {
					return fmt.Errorf("%w; did you mean %s?", err, strings.Join(similar, ", "))
				}
			}
			return err
		}

		if formatOutput == "outline" {
			return ui.WriteOutline(os.Stdout, el)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(el)
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&formatMessage, "message", "m", "", "Message text, used when the id is not in the catalog")
	formatCmd.Flags().StringVar(&formatDescription, "description", "", "Message description")
	formatCmd.Flags().StringVar(&formatCount, "count", "", "Plural count")
	formatCmd.Flags().StringArrayVarP(&formatValues, "value", "v", nil, "Value as name=value (repeatable)")
	formatCmd.Flags().StringArrayVarP(&formatTags, "tag", "t", nil, "Tag mapping as name=kind (repeatable)")
	formatCmd.Flags().StringArrayVar(&formatTagProps, "tag-prop", nil, "Default prop for a mapped tag as name.prop=value (repeatable)")
	formatCmd.Flags().StringVarP(&formatOutput, "output", "o", "json", "Output: json or outline")
	formatCmd.Flags().BoolVar(&formatMarkdown, "markdown", false, "Treat --message as inline Markdown")
}
