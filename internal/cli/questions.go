package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prepdeck/internal/csvio"
	"prepdeck/internal/link"
	"prepdeck/internal/model"
	"prepdeck/internal/render"
	"prepdeck/internal/view"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		search string
		tags   []string
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions through the search, tag and sort pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			mode := a.DefaultSort
			if sortBy != "" {
				if mode, err = view.ParseSortMode(sortBy); err != nil {
					return err
				}
			}
			items := view.Apply(a.Store, a.Store.List(), view.Filter{Search: search, Tags: tags, Sort: mode})
			out := cmd.OutOrStdout()
			for _, q := range items {
				line := fmt.Sprintf("%s\t%s\t%s", q.ID, badge(a.Store, q), q.Title)
				if len(q.Tags) > 0 {
					line += "\t[" + strings.Join(q.Tags, ", ") + "]"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive title substring")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Only questions carrying this tag (repeatable; all must match)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "answersFirst|newest|oldest|lastUpdated (default from config)")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one question with its rendered answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			q, ok := a.Store.Get(args[0])
			if !ok {
				return &model.NotFoundError{ID: args[0]}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, q.Title)
			if len(q.Tags) > 0 {
				fmt.Fprintln(out, "tags: "+strings.Join(q.Tags, ", "))
			}
			if title, linked := link.Title(a.Store, q); linked {
				fmt.Fprintln(out, "shared with: "+title)
			}
			fmt.Fprintln(out)
			content := link.Content(a.Store, q)
			if strings.TrimSpace(content) == "" {
				fmt.Fprintln(out, "No answer has been provided for this question yet.")
				return nil
			}
			fmt.Fprintln(out, render.New("").Markdown(content, width))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width of the rendered answer")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every question to CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Store.Len() == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No questions to export.")
				return nil
			}
			if outPath == "-" {
				return csvio.Export(cmd.OutOrStdout(), a.Store, a.Store.List())
			}
			if outPath == "" {
				outPath = csvio.FileName(time.Now())
			}
			if err := writeFile(outPath, func(w io.Writer) error {
				return csvio.Export(w, a.Store, a.Store.List())
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d questions to %s\n", a.Store.Len(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "Output file; - writes to stdout (default: interview-questions-<timestamp>.csv)")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import questions from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			batch, err := csvio.Import(f, csvio.ImportOptions{})
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			added, err := a.Store.Append(batch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d questions.\n", len(added))
			return nil
		},
	}
}

func newClearCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear all data without --yes")
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data has been cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing all data")
	return cmd
}

func badge(l link.Lookup, q model.Question) string {
	switch {
	case !link.HasAnswer(l, q):
		return "no-answer"
	case q.IsLinked():
		return "shared"
	default:
		return "answered"
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
