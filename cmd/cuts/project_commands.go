package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivlev/cuts/internal/storyboard"
	"github.com/ivlev/cuts/internal/timeline"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	var title string
	var rows int
	var force bool

	cmd := &cobra.Command{
		Use:   "new <project.zip|project.json>",
		Short: "Create a project with the default header and blank cuts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := formatOf(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			defaults := ctx.config.Defaults.StoryboardDefaults()
			if cmd.Flags().Changed("rows") {
				defaults.Rows = rows
			}
			p := storyboard.NewWithDefaults(defaults, time.Now())
			p.Header.Title = title

			infof(cmd.OutOrStdout(), "New storyboard with %d cuts", p.Len())
			return ctx.saveProject(cmd.OutOrStdout(), p, path)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().IntVar(&rows, "rows", 0, "Number of blank cuts (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Print the header and the cut list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := ctx.loadProject(out, args[0])
			if err != nil {
				return err
			}

			var header [][]string
			for _, f := range p.Header.Fields() {
				header = append(header, []string{f[0], f[1]})
			}
			bgm := p.BGM()
			bgmLabel := "-"
			if !bgm.Empty() {
				bgmLabel = fmt.Sprintf("%s (%s)", bgm.DisplayName(), bgm.Ref())
			}
			header = append(header, []string{"bgm", bgmLabel})
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, header, nil))

			fmt.Fprintln(out, renderCuts(p, p.Cuts()))
			fmt.Fprintf(out, "Running time %s, %d assets (%s)\n",
				timeline.FormatSeconds(p.Duration()), p.Registry().Len(), humanize.Bytes(uint64(p.Registry().Size())))
			return nil
		},
	}
}

func renderCuts(p *storyboard.Project, cuts []*storyboard.Cut) string {
	rows := make([][]string, 0, len(cuts))
	for _, c := range cuts {
		v := c.Visual()
		visual, id, size := "-", "-", "-"
		if !v.Empty() {
			visual = fmt.Sprintf("%s %s", v.Kind.Tag(), v.DisplayName())
			id = string(v.Ref())
			if a, ok := p.Registry().Get(v.AssetID); ok {
				size = humanize.Bytes(uint64(len(a.Data)))
			} else {
				size = "missing"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(c.No()),
			c.StartTime(),
			c.Duration(),
			c.Caption(),
			visual,
			id,
			size,
		})
	}
	return renderTable(
		[]string{"No", "Start", "Dur", "Caption", "Visual", "Asset", "Size"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assets <project>",
		Short: "List the media held by the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := ctx.loadProject(out, args[0])
			if err != nil {
				return err
			}
			reg := p.Registry()
			var rows [][]string
			for _, id := range reg.IDs() {
				a, _ := reg.Get(id)
				rows = append(rows, []string{string(id), a.Name, a.MediaType, humanize.Bytes(uint64(len(a.Data)))})
			}
			if len(rows) == 0 {
				infof(out, "No assets")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Type", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "find <project> <query>",
		Short: "Search cut captions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := ctx.loadProject(out, args[0])
			if err != nil {
				return err
			}
			found := p.Find(args[1])
			if len(found) == 0 {
				warnf(out, "No cut matches %q", args[1])
				return nil
			}
			fmt.Fprintln(out, renderCuts(p, found))
			return nil
		},
	}
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <from> <to>",
		Short: "Re-export a project as an archive or a data-only document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if args[0] == args[1] {
				return errors.New("source and target are the same file")
			}
			p, err := ctx.loadProject(out, args[0])
			if err != nil {
				return err
			}
			if to, _ := formatOf(args[1]); to == formatDocument && p.Registry().Len() > 0 {
				warnf(out, "Media bytes are not kept in %s", args[1])
			}
			return ctx.saveProject(out, p, args[1])
		},
	}
}
