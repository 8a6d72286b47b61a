package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/cuts/internal/caption"
	"github.com/ivlev/cuts/internal/engine"
	"github.com/ivlev/cuts/internal/plan"
	"github.com/ivlev/cuts/internal/system"
	"github.com/ivlev/cuts/internal/textutil"
	"github.com/ivlev/cuts/internal/video"
)

const defaultOutputDir = "output"

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var output, transition, zoomMode string
	var workers int
	var planOnly, noBGM, slate, stats bool

	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Render a mock video of the storyboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := ctx.loadProject(out, args[0])
			if err != nil {
				return err
			}

			rc := ctx.config.Render
			flags := cmd.Flags()
			if flags.Changed("transition") {
				rc.TransitionType = transition
			}
			if flags.Changed("zoom-mode") {
				rc.ZoomMode = zoomMode
			}
			if flags.Changed("workers") {
				rc.Workers = workers
			}
			if flags.Changed("slate") {
				rc.Slate = slate
			}
			if flags.Changed("stats") {
				rc.ShowStats = stats
			}

			if planOnly {
				if output == "" {
					output = filepath.Join(defaultOutputDir, textutil.DownloadName(p.Header.Title, "storyboard", p.Header.Version, "yaml"))
				}
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return err
				}
				pl := plan.FromProject(p, rc)
				if err := plan.Write(pl, output); err != nil {
					return err
				}
				successf(out, "Plan saved: %s (%d slides)", output, len(pl.Slides))
				return nil
			}

			ffmpeg := ctx.config.Preview.FFmpeg
			if err := system.RequireTools(ffmpeg); err != nil {
				return err
			}
			if rc.Encoder == "" {
				rc.Encoder = system.GetBestH264Encoder(cmd.Context(), ffmpeg)
				infof(out, "Encoder: %s", rc.Encoder)
			}

			if output == "" {
				output = filepath.Join(defaultOutputDir, textutil.DownloadName(p.Header.Title, "storyboard", p.Header.Version, "mp4"))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return err
			}

			painter, err := caption.NewPainter(rc.Width, rc.Height, rc.FontPath, rc.FontSize)
			if err != nil {
				return err
			}
			if painter.FontName == "basicfont" {
				warnf(out, "No TrueType font found, captions use the built-in bitmap font")
			}

			vp := engine.NewVideoProject(rc, p, video.NewFFmpegEncoder(ffmpeg, ctx.logger()), painter, ctx.logger())
			vp.Out = out
			res, err := vp.Run(cmd.Context(), engine.Options{
				Output:  output,
				WithBGM: !noBGM,
				Session: ctx.session[:8],
			})
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			successf(out, "Done! Video saved: %s (%d segments, %.1fs in %s)", output, res.Segments, res.Duration, res.Total.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default output/<title>_v<version>.mp4)")
	cmd.Flags().BoolVar(&planOnly, "plan-only", false, "Write the YAML render plan instead of encoding")
	cmd.Flags().BoolVar(&noBGM, "no-bgm", false, "Leave the background music out")
	cmd.Flags().StringVar(&transition, "transition", "", "xfade transition between cuts (none, fade, dissolve, wipeleft, ...)")
	cmd.Flags().StringVar(&zoomMode, "zoom-mode", "", "static, center, top-left, top-right, bottom-left, bottom-right, random")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel segment encoders (0 = auto)")
	cmd.Flags().BoolVar(&slate, "slate", false, "Open with a title slate")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a performance report")
	return cmd
}
