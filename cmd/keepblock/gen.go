package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/errors"
	"github.com/keepblock/keepblock/pkg/codewriter"
	"github.com/keepblock/keepblock/pkg/emit"
	"github.com/keepblock/keepblock/pkg/form"
)

func genCmd(global *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "gen [forms...]",
		Short: "Generate code from form definitions",
		Long: `Generate a Python or Ruby class for each form definition.

Without arguments the forms listed in keepblock.yaml are generated.
Handlers you already wrote below the comment block get no stub; the
stub list only names handlers that are still missing.

Examples:
  keepblock gen
  keepblock gen forms/wizard.yaml --lang ruby
  keepblock gen --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, global, args, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without writing")
	cmd.Flags().StringP("lang", "l", "", "Target language: python or ruby (default from keepblock.yaml)")
	cmd.Flags().StringP("output", "o", "", "Output directory (default from keepblock.yaml)")
	cmd.Flags().Bool("create-dirs", false, "Create missing output folders")
	cmd.Flags().Int("workers", 0, "Concurrent writes (default from keepblock.yaml)")
	cmd.Flags().Bool("backup", true, "Snapshot user code before overwriting it")

	return cmd
}

func runGen(cmd *cobra.Command, global *globalOptions, paths []string, dryRun bool) error {
	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}
	defer e.flushMetrics()

	g, err := newGenerator(e, dryRun)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		if paths, err = e.cfg.FormPaths(); err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return errors.New("K402").
			WithDetail("No form definitions match " + fmt.Sprint(e.cfg.Forms) + ".").
			WithSuggestion("Pass form files or set forms in keepblock.yaml")
	}

	results, err := g.run(cmd.Context(), paths)
	for _, res := range results {
		if res.Err == nil {
			report(e, res)
		}
	}
	return err
}

// generator turns form definitions into artifacts.
type generator struct {
	env     *env
	emitter emit.Emitter
	writer  *codewriter.Writer
}

func newGenerator(e *env, dryRun bool) (*generator, error) {
	emitter, err := emit.For(e.cfg.Lang())
	if err != nil {
		return nil, errors.New("K104").
			WithDetail("gen supports python and ruby, not " + e.cfg.Language + ".").
			WithSuggestion("Pass --lang python or --lang ruby").
			Wrap(err)
	}
	return &generator{env: e, emitter: emitter, writer: e.writer(dryRun)}, nil
}

// run generates every form in paths. Forms that fail to load come first
// in the results; failures are printed and the returned error counts them.
func (g *generator) run(ctx context.Context, paths []string) ([]codewriter.Result, error) {
	var (
		reqs    []codewriter.Request
		results []codewriter.Result
		failed  int
	)
	for _, path := range paths {
		req, err := g.request(ctx, path)
		if err != nil {
			errorMsg(g.env.errOut, "%s", err.FormatCompact())
			results = append(results, codewriter.Result{Key: path, Err: err})
			failed++
			continue
		}
		reqs = append(reqs, req)
	}

	written, _ := g.writer.WriteAll(ctx, reqs, g.env.cfg.Workers)
	for _, res := range written {
		if res.Err != nil {
			errorMsg(g.env.errOut, "%s", g.env.classify(res.Err, res.Key).FormatCompact())
			failed++
		}
	}
	results = append(results, written...)
	if failed > 0 {
		return results, errors.Newf(errors.CategoryCLI, "%d of %d forms failed to generate", failed, len(paths))
	}
	return results, nil
}

// request loads the form at path and emits its generated region, leaving
// out stubs for handlers the previous artifact already defines.
func (g *generator) request(ctx context.Context, path string) (codewriter.Request, *errors.Error) {
	root, err := form.Load(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return codewriter.Request{}, errors.New("K402").WithDetail(path).Wrap(err)
		}
		return codewriter.Request{}, errors.Classify(err, path)
	}

	lang := g.emitter.Language()
	key := g.env.cfg.ArtifactKey(g.emitter.FileName(root))
	previous, err := g.env.read(ctx, key)
	if err != nil && !isNotExist(err) {
		return codewriter.Request{}, g.env.classify(err, key)
	}

	return codewriter.Request{
		Key:       key,
		Lang:      lang,
		Generated: g.emitter.Generate(root, emit.ExistingHandlers(lang, previous)),
		Seed:      g.emitter.Seed(root),
	}, nil
}
