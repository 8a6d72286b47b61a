package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/cuts/internal/storyboard"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var caption, duration, mediaPath string
	var at int

	cmd := &cobra.Command{
		Use:   "add <project>",
		Short: "Append a cut, optionally with media and at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				c := p.Insert(&storyboard.RowData{Caption: caption})
				if cmd.Flags().Changed("duration") {
					p.SetDuration(c, duration)
				}
				if mediaPath != "" {
					if err := attach(cmd, ctx, p, c, mediaPath); err != nil {
						return err
					}
				}
				if at > 0 && at != c.No() {
					if err := p.Move(c.No(), at); err != nil {
						return err
					}
				}
				stepf(out, "Cut %d added at %s", c.No(), c.StartTime())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "Caption text")
	cmd.Flags().StringVar(&duration, "duration", "", "Duration in seconds")
	cmd.Flags().StringVar(&mediaPath, "media", "", "Image or video to attach")
	cmd.Flags().IntVar(&at, "at", 0, "1-based position for the new cut")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <project> <no>",
		Short: "Delete a cut",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := ctx.loadProject(out, args[0])
			if err != nil {
				return err
			}
			c, err := cutAt(p, args[1])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete cut %d?", c.No())) {
				infof(out, "Kept cut %d", c.No())
				return nil
			}
			p.Remove(c)
			stepf(out, "Cut %s removed, %d left", args[1], p.Len())
			return ctx.saveProject(out, p, args[0])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <project> <from> <to>",
		Short: "Move a cut to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid cut number %q", args[1])
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid cut number %q", args[2])
			}
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				if err := p.Move(from, to); err != nil {
					return err
				}
				stepf(out, "Cut %d moved to %d", from, to)
				return nil
			})
		},
	}
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var caption, duration string

	cmd := &cobra.Command{
		Use:   "set <project> <no>",
		Short: "Edit the caption or duration of a cut",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("caption") && !flags.Changed("duration") {
				return fmt.Errorf("nothing to set: pass --caption and/or --duration")
			}
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				c, err := cutAt(p, args[1])
				if err != nil {
					return err
				}
				if flags.Changed("caption") {
					p.SetCaption(c, caption)
				}
				if flags.Changed("duration") {
					stored := p.SetDuration(c, duration)
					if stored != duration {
						warnf(out, "Duration stored as %q", stored)
					}
				}
				stepf(out, "Cut %d: %s, starts %s", c.No(), c.Duration(), c.StartTime())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "Caption text")
	cmd.Flags().StringVar(&duration, "duration", "", "Duration in seconds")
	return cmd
}

func newHeaderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "header <project> <field> <value>",
		Short: "Set a header field (title, date, version, format, fps, delivery, loudness, platform)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				if err := p.Header.Set(args[1], args[2]); err != nil {
					return err
				}
				stepf(out, "%s = %q", strings.ToLower(args[1]), args[2])
				return nil
			})
		},
	}
}

func newAttachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <project> <no> <media>",
		Short: "Attach an image or video to a cut",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				c, err := cutAt(p, args[1])
				if err != nil {
					return err
				}
				return attach(cmd, ctx, p, c, args[2])
			})
		},
	}
}

func attach(cmd *cobra.Command, ctx *commandContext, p *storyboard.Project, c *storyboard.Cut, path string) error {
	f, pv, err := ctx.readMedia(cmd.Context(), path)
	if err != nil {
		return err
	}
	id, err := p.BindMedia(c, f)
	if err != nil {
		return err
	}
	p.SetPreview(c, pv)
	stepf(cmd.OutOrStdout(), "Cut %d: %s attached as %s", c.No(), f.Name, id)
	return nil
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <project> <no>",
		Short: "Remove the media of a cut",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				c, err := cutAt(p, args[1])
				if err != nil {
					return err
				}
				p.ClearVisual(c)
				stepf(out, "Cut %d cleared", c.No())
				return nil
			})
		},
	}
}

func newBGMCommand(ctx *commandContext) *cobra.Command {
	var clearFlag bool

	cmd := &cobra.Command{
		Use:   "bgm <project> [audio]",
		Short: "Set or clear the background music",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearFlag == (len(args) == 2) {
				return fmt.Errorf("pass either an audio file or --clear")
			}
			out := cmd.OutOrStdout()
			return ctx.withProject(out, args[0], func(p *storyboard.Project) error {
				if clearFlag {
					p.ClearBGM()
					stepf(out, "BGM cleared")
					return nil
				}
				f, _, err := ctx.readMedia(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				id, err := p.BindBGM(f)
				if err != nil {
					return err
				}
				stepf(out, "BGM %s attached as %s", f.Name, id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Remove the background music")
	return cmd
}
