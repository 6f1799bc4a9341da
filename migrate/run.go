package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"destyle/adapter"
	"destyle/common"
	"destyle/config"
	"destyle/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("migrate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	// destination is optional: without it outputs land next to their sources
	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite = cmd.Bool("overwrite")
	switch {
	case cmd.Bool("diff"):
		env.Mode = common.OutputModeDiff
	case cmd.Bool("dry-run"):
		env.Mode = common.OutputModeDryRun
	default:
		env.Mode = common.OutputModeWrite
	}

	theme := adapter.NewTheme(env.Cfg.Migrate.Theme.Prefix, log)
	if path := env.Cfg.Migrate.Theme.TokensPath; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to read theme tokens from %q: %w", path, err)
		}
		if err := theme.LoadTokens(data); err != nil {
			return err
		}
	}
	for _, h := range env.Cfg.Migrate.Theme.Helpers {
		theme.AllowHelper(h)
	}

	var cache *Cache
	if path := env.Cfg.Migrate.Output.CachePath; path != "" && !cmd.Bool("force") {
		if cache, err = OpenCache(path, log); err != nil {
			return err
		}
		defer cache.Close()
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("mode", env.Mode))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, theme, cache, log)
}

// process handles the core migration logic independently of CLI framework. A
// single file is processed directly, a directory is walked collecting sources
// in natural order.
func process(ctx context.Context, src, dst string, theme *adapter.Theme, cache *Cache, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	runID := uuid.NewString()
	summary := make(map[string]int)

	if fi.Mode().IsRegular() {
		if !hasSourceExtension(src, env.Cfg.Migrate.Source.Extensions) {
			return fmt.Errorf("input was not recognized as a source file (%s)", src)
		}
		if err := processFile(ctx, src, filepath.Base(src), dst, runID, theme, cache, summary, log); err != nil {
			log.Error("Unable to process file", zap.String("file", src), zap.Error(err))
		}
		logSummary(log, summary)
		return nil
	}
	if !fi.Mode().IsDir() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	files, err := collectSources(ctx, src, env.Cfg.Migrate.Source, log)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Debug("Nothing to process", zap.String("dir", src))
		return nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, src), string(filepath.Separator))
		if err := processFile(ctx, path, rel, dst, runID, theme, cache, summary, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	logSummary(log, summary)
	return nil
}

// collectSources walks the tree and returns matching files in natural sort
// order so runs are deterministic regardless of filesystem ordering.
func collectSources(ctx context.Context, dir string, conf config.SourceConfig, log *zap.Logger) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			if path != dir && conf.Skipped(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if hasSourceExtension(path, conf.Extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return natural.Less(files[i], files[j]) })
	return files, nil
}

func hasSourceExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// processFile migrates a single source file. "rel" is the path relative to
// the walked root, used for mirrored output and report entry names.
func processFile(ctx context.Context, path, rel, dst, runID string, theme *adapter.Theme, cache *Cache, summary map[string]int, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Migration starting", zap.String("from", rel))
	defer func(start time.Time) {
		// if multiple files are being processed we do not want one bad input
		// to stop the run
		if r := recover(); r != nil {
			log.Error("Migration ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("migration panic: %v", r)
		} else {
			log.Info("Migration completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hash := Hash(data)
	if cache.Unchanged(path, hash) {
		log.Debug("Source unchanged since last run, skipping", zap.String("file", rel))
		return nil
	}

	scanRes := Scan(string(data), log)
	if len(scanRes.Occurrences) == 0 {
		log.Debug("No styled-component constructs found", zap.String("file", rel))
		return nil
	}

	res := NewPipeline(theme, log).Lower(path, scanRes)
	for _, w := range res.Warnings {
		summary[w.Category]++
	}

	emitter, err := NewEmitter()
	if err != nil {
		return err
	}
	out, err := emitter.Emit(res)
	if err != nil {
		return err
	}

	outputName, err = buildOutputPath(path, rel, dst, env)
	if err != nil {
		return err
	}

	if env.Rpt != nil {
		env.Rpt.StoreData(slug.Make(rel)+"-source", data)
		env.Rpt.StoreData(slug.Make(rel)+"-lowered", out)
	}

	switch env.Mode {
	case common.OutputModeDryRun:
		log.Info("Would write output",
			zap.String("to", outputName),
			zap.Int("components", len(res.Components)),
			zap.Int("bailed", res.Bailed),
			zap.Int("warnings", len(res.Warnings)))
		return nil
	case common.OutputModeDiff:
		printDiff(rel, outputName, data, out)
		return nil
	}

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(outputName, out, 0644); err != nil {
		return err
	}

	if err := cache.Record(path, hash, runID, len(res.Warnings)); err != nil {
		log.Warn("Unable to update cache", zap.String("file", rel), zap.Error(err))
	}
	return nil
}

// buildOutputPath expands the configured name template for the source file
// and roots it either next to the source or under the mirrored destination.
func buildOutputPath(path, rel, dst string, env *state.LocalEnv) (string, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	tmpl, err := template.New("name").Funcs(sprig.FuncMap()).Parse(env.Cfg.Migrate.Output.OutputNameTemplate)
	if err != nil {
		return "", fmt.Errorf("unable to parse output name template: %w", err)
	}
	var sb strings.Builder
	err = tmpl.Execute(&sb, struct {
		Name   string
		Suffix string
	}{Name: name, Suffix: env.Cfg.Migrate.Output.Suffix})
	if err != nil {
		return "", fmt.Errorf("unable to expand output name template: %w", err)
	}

	if dst == "" {
		return filepath.Join(filepath.Dir(path), sb.String()), nil
	}
	return filepath.Join(dst, filepath.Dir(rel), sb.String()), nil
}

// printDiff shows source and lowered output side by side. Not a real unified
// diff, migration replaces template literals wholesale so per-line deltas are
// not meaningful.
func printDiff(rel, outputName string, before, after []byte) {
	fmt.Printf("--- %s\n+++ %s\n", rel, outputName)
	for _, line := range strings.Split(strings.TrimRight(string(before), "\n"), "\n") {
		fmt.Printf("-%s\n", line)
	}
	for _, line := range strings.Split(strings.TrimRight(string(after), "\n"), "\n") {
		fmt.Printf("+%s\n", line)
	}
	fmt.Println()
}

func logSummary(log *zap.Logger, summary map[string]int) {
	if len(summary) == 0 {
		return
	}
	categories := make([]string, 0, len(summary))
	for c := range summary {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	fields := make([]zap.Field, 0, len(categories))
	for _, c := range categories {
		fields = append(fields, zap.Int(c, summary[c]))
	}
	log.Warn("Migration finished with warnings", fields...)
}
