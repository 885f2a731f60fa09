package main

import (
	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/errors"
	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/codewriter"
)

func checkCmd(global *globalOptions) *cobra.Command {
	var generated string

	cmd := &cobra.Command{
		Use:   "check <files...>",
		Short: "Verify that files can be regenerated safely",
		Long: `Check that every file carries exactly one intact "End of generated
code" comment block.

With --generated, a single file is also compared against freshly
generated code; the check fails with K501 when the file is out of date.
Nothing is written.

Examples:
  keepblock check ui/*.py
  keepblock check ui/dialog.py --generated build/dialog.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, global, args, generated)
		},
	}

	cmd.Flags().StringVarP(&generated, "generated", "g", "", "Compare against this generated code (one file only)")
	cmd.Flags().StringP("lang", "l", "", "Target language (default: from the file extension)")

	return cmd
}

func runCheck(cmd *cobra.Command, global *globalOptions, keys []string, generated string) error {
	if generated != "" && len(keys) != 1 {
		return errors.Newf(errors.CategoryCLI, "--generated needs exactly one file, got %d", len(keys))
	}

	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}

	failed := 0
	var lang boundary.Language
	for _, key := range keys {
		var err error
		if lang, err = checkOne(cmd, e, key); err != nil {
			errorMsg(e.errOut, "%s", e.classify(err, key).FormatCompact())
			failed++
			continue
		}
		if generated == "" {
			success(e.out, "%s", key)
		}
	}
	if failed > 0 {
		return errors.Newf(errors.CategoryCLI, "%d of %d files failed the check", failed, len(keys))
	}
	if generated == "" {
		return nil
	}

	key := keys[0]
	code, err := readInput(cmd, generated)
	if err != nil {
		return e.classify(err, "")
	}
	res, err := e.writer(true).Write(cmd.Context(), codewriter.Request{Key: key, Lang: lang, Generated: code})
	if err != nil {
		return e.classify(err, key)
	}
	if res.Status == codewriter.Needed {
		return errors.New("K501").
			WithDetail(key + " does not match the generated code.").
			WithSuggestion("Run 'keepblock merge " + key + "' to update it")
	}
	success(e.out, "%s is up to date", key)
	return nil
}

// checkOne reads key and verifies its marker. It returns the language
// the file was checked as.
func checkOne(cmd *cobra.Command, e *env, key string) (boundary.Language, error) {
	lang, err := e.language(cmd, key)
	if err != nil {
		return boundary.Unknown, err
	}
	text, err := e.read(cmd.Context(), key)
	if err != nil {
		return lang, err
	}
	_, err = boundary.Split(lang, text)
	return lang, err
}
