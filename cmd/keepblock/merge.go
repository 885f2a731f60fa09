package main

import (
	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/pkg/codewriter"
)

type mergeOptions struct {
	generated string
	seed      string
	dryRun    bool
}

func mergeCmd(global *globalOptions) *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge <target>",
		Short: "Merge freshly generated code into a file",
		Long: `Replace the generated region of target and keep everything below the
"End of generated code" comment block.

The generated code is read from --generated, or from stdin. If target
does not exist yet it is created with the comment block and --seed as
its preserved region. Target is a key in the configured store; for the
file store it is a path relative to store.root.

Examples:
  keepblock merge ui/dialog.py --generated build/dialog.py
  generator | keepblock merge ui/dialog.rb --seed $'\nend\n'
  keepblock merge src/form_base.cpp --generated out.cpp --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.generated, "generated", "g", "", "File with the generated code (default: stdin)")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "Preserved region for a new file")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Report what would change without writing")
	cmd.Flags().StringP("lang", "l", "", "Target language (default: from the file extension)")
	cmd.Flags().Bool("create-dirs", false, "Create missing output folders")
	cmd.Flags().Bool("backup", true, "Snapshot user code before overwriting it")

	return cmd
}

func runMerge(cmd *cobra.Command, global *globalOptions, opts *mergeOptions, target string) error {
	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}
	defer e.flushMetrics()

	lang, err := e.language(cmd, target)
	if err != nil {
		return e.classify(err, target)
	}
	generated, err := readInput(cmd, opts.generated)
	if err != nil {
		return e.classify(err, "")
	}

	res, err := e.writer(opts.dryRun).Write(cmd.Context(), codewriter.Request{
		Key:       target,
		Lang:      lang,
		Generated: generated,
		Seed:      opts.seed,
	})
	if err != nil {
		return e.classify(err, target)
	}
	report(e, res)
	return nil
}

// report prints one result.
func report(e *env, res codewriter.Result) {
	switch res.Status {
	case codewriter.Current:
		info(e.out, "%s is up to date", res.Key)
	case codewriter.Needed:
		warn(e.out, "%s would be updated", res.Key)
	case codewriter.Edited:
		success(e.out, "Updated %s (%d bytes of user code kept)", res.Key, res.PreservedBytes)
	default:
		success(e.out, "Wrote %s", res.Key)
	}
	if res.Backup != "" {
		info(e.out, "Previous version saved to %s", res.Backup)
	}
}
