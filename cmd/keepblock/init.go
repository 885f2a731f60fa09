package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/config"
	"github.com/keepblock/keepblock/internal/errors"
	"github.com/keepblock/keepblock/pkg/boundary"
)

func initCmd() *cobra.Command {
	var (
		lang  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a keepblock.yaml with default settings",
		Long: `Write a keepblock.yaml with the default settings into dir (default: the
current directory).

Examples:
  keepblock init
  keepblock init ui --lang ruby`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, lang, force)
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "python", "Default target language")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing keepblock.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, dir, lang string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryConfig, "%s already exists in %s", config.ConfigFileName, dir).
			WithSuggestion("Pass --force to overwrite it")
	}
	parsed, err := boundary.ParseLanguage(lang)
	if err != nil {
		return errors.Classify(err, "")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("K202").Wrap(err)
	}

	cfg := config.New()
	cfg.Language = parsed.String()
	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Created %s", path)
	return nil
}
