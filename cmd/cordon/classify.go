package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/cordon/internal/archive"
	"github.com/Veraticus/cordon/internal/classification"
	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/config"
	"github.com/Veraticus/cordon/internal/model"
	"github.com/Veraticus/cordon/internal/ocr"
	"github.com/Veraticus/cordon/internal/pipeline"
)

type classifyOptions struct {
	day        string
	zipPath    string
	noProgress bool
}

func classifyCmd() *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify [images...]",
		Short: "Classify label images into a day's counters",
		Long: `Classify recognizes the text of each label image, trying four rotations,
and files it under the zone of the first known locality found.

Labels without a known locality go to the pending queue; resolve them later
with 'cordon pending resolve'. Images can be given directly or as a zip
archive with --zip. Ctrl-C stops after the current image and keeps what was
already classified.`,
		Example: `  cordon classify --day lunes fotos/*.jpg
  cordon classify --zip entregas.zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.day, "day", "d", "", "day bucket (Lunes..Viernes, default today)")
	cmd.Flags().StringVarP(&opts.zipPath, "zip", "z", "", "zip archive of label images")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string, opts classifyOptions) error {
	day, err := parseDayFlag(opts.day)
	if err != nil {
		return err
	}

	paths := append([]string(nil), args...)
	if opts.zipPath != "" {
		extractor := archive.NewExtractor(config.ExpandPath(viper.GetString(config.KeyArchiveWorkDir)))
		extracted, err := extractor.Extract(config.ExpandPath(opts.zipPath))
		if err != nil {
			if errors.Is(err, common.ErrEmptyArchive) {
				return common.NewUserError("the archive has no .jpg, .jpeg or .png files", err)
			}
			return err
		}
		slog.Info("Extracted archive", "archive", opts.zipPath, "images", len(extracted))
		paths = append(paths, extracted...)
	}
	if len(paths) == 0 {
		return common.NewUserError("nothing to classify", errors.New("pass image paths or --zip"))
	}

	recognizer := newRecognizer()
	if err := recognizer.Available(); err != nil {
		return common.NewUserError("tesseract is required to classify images", err)
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	var progress *cli.Progress
	pipelineOpts := pipeline.Options{Logger: slog.Default()}
	if !opts.noProgress {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(paths), fmt.Sprintf("Classifying %s labels...", day))
		pipelineOpts.Progress = func(done, _ int, _ string, _ pipeline.Outcome) {
			progress.Set(done)
		}
	}

	processor := pipeline.NewProcessor(ws.ledger, classification.NewClassifier(ws.dir), recognizer, pipelineOpts)
	result, err := processor.ProcessBatch(ctx, day, paths)
	if progress != nil && err == nil {
		progress.Finish()
	}
	if result != nil {
		printBatchResult(cmd.OutOrStdout(), ws.dir, result)
	}

	if err != nil {
		if handler.WasInterrupted() && errors.Is(err, context.Canceled) {
			printLine(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Stopped after %d of %d images.", result.Processed, result.Total)))
			return nil
		}
		return err
	}
	return nil
}

func newRecognizer() *ocr.Tesseract {
	return ocr.NewTesseract(
		config.ExpandPath(viper.GetString(config.KeyOCRBinary)),
		viper.GetString(config.KeyOCRLang),
		viper.GetInt(config.KeyOCRPSM),
		slog.Default(),
	)
}

func printBatchResult(w io.Writer, dir *model.Directory, result *pipeline.BatchResult) {
	var b strings.Builder

	fmt.Fprintf(&b, "Classified: %d of %d\n", result.Classified, result.Total)
	for _, zone := range dir.Names() {
		if n := result.Zones[zone]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", zone, n)
		}
	}
	if len(result.Pending) > 0 {
		fmt.Fprintf(&b, "%s Pending: %d (see 'cordon pending list')\n", cli.PendingIcon, len(result.Pending))
	}
	if len(result.Failures) > 0 {
		fmt.Fprintf(&b, "%s Failed: %d\n", cli.ErrorIcon, len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(&b, "  %s: %v\n", f.Source, f.Err)
		}
	}

	title := fmt.Sprintf("%s %s · batch %s", cli.PackageIcon, result.Day, shortID(result.ID))
	printLine(w, cli.RenderBox(title, strings.TrimRight(b.String(), "\n")))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
