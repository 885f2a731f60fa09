package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/pkg/boundary"
)

func splitCmd(global *globalOptions) *cobra.Command {
	var preserved bool

	cmd := &cobra.Command{
		Use:   "split <artifact>",
		Short: "Print the generated or the preserved region of a file",
		Long: `Print the region above the "End of generated code" comment block, or
with --preserved the user code below it, byte for byte.

Examples:
  keepblock split ui/dialog.py > generated.py
  keepblock split ui/dialog.py --preserved`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, global, args[0], preserved)
		},
	}

	cmd.Flags().BoolVarP(&preserved, "preserved", "p", false, "Print the preserved region")
	cmd.Flags().StringP("lang", "l", "", "Target language (default: from the file extension)")

	return cmd
}

func runSplit(cmd *cobra.Command, global *globalOptions, key string, preserved bool) error {
	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}
	lang, err := e.language(cmd, key)
	if err != nil {
		return e.classify(err, key)
	}
	text, err := e.read(cmd.Context(), key)
	if err != nil {
		return e.classify(err, key)
	}
	art, err := boundary.Split(lang, text)
	if err != nil {
		return e.classify(err, key)
	}

	if preserved {
		fmt.Fprint(e.out, art.Preserved)
	} else {
		fmt.Fprint(e.out, art.Generated)
	}
	return nil
}
