package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2hooks/internal/pipeline"
)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags [document]",
		Short: "List the tags of an OpenAPI/Swagger document",
		Long:  "List the distinct tags of a document, sorted, with the number of operations in each.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			if len(args) == 1 {
				input = args[0]
			}
			input = strings.TrimSpace(input)
			if input == "" {
				return newUsageError("tags: a document is required (argument or --input)")
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}

			tags, err := pipeline.ListTags(cmd.Context(), input, newLogger(os.Stderr, verbose))
			if err != nil {
				return mapRunError(err, "")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tOPERATIONS")
			for _, t := range tags {
				fmt.Fprintf(w, "%s\t%d\n", t.Tag, t.Operations)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("input", "", "Path to the Swagger/OpenAPI document")
	return cmd
}
