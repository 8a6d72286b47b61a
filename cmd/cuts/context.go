package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivlev/cuts/internal/archive"
	"github.com/ivlev/cuts/internal/config"
	"github.com/ivlev/cuts/internal/document"
	"github.com/ivlev/cuts/internal/logging"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/preview"
	"github.com/ivlev/cuts/internal/storyboard"
)

var errUnsupportedFormat = errors.New("unsupported project file (use .zip or .json)")

type projectFormat int

const (
	formatArchive projectFormat = iota
	formatDocument
)

func formatOf(path string) (projectFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return formatArchive, nil
	case ".json":
		return formatDocument, nil
	}
	return 0, fmt.Errorf("%w: %s", errUnsupportedFormat, path)
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	log     *zap.Logger
	session string
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		session:      uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		level := cfg.LogLevel
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			level = *c.logLevelFlag
		}
		log, err := logging.NewLogger(level)
		if err != nil {
			c.configErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.log = log.With(zap.String("session", c.session))
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

func (c *commandContext) close() {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func (c *commandContext) previews() preview.Generator {
	p := c.config.Preview
	thumbs := preview.NewImageThumbnailer(p.MaxWidth, p.Quality)
	frames := preview.NewFrameGrabber(p.FFmpeg, p.FFprobe, p.FrameTimeout, thumbs)
	return preview.NewDispatcher(thumbs, frames, c.logger())
}

// loadProject imports a .zip archive or a .json document.
func (c *commandContext) loadProject(w io.Writer, path string) (*storyboard.Project, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	p := storyboard.New()
	switch format {
	case formatArchive:
		report, err := archive.NewPackager(archive.ZipCodec{}, c.logger()).Import(p, data)
		if err != nil {
			return nil, err
		}
		for _, id := range report.Missing {
			warnf(w, "Asset %s is missing from the archive", id)
		}
	case formatDocument:
		if err := document.New(c.logger()).Import(p, data); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// saveProject exports p to path, which bumps the header version.
func (c *commandContext) saveProject(w io.Writer, p *storyboard.Project, path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatArchive:
		data, _, err = archive.NewPackager(archive.ZipCodec{}, c.logger()).Export(p)
	case formatDocument:
		data, _, err = document.New(c.logger()).Export(p)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	successf(w, "Saved %s (v%s)", path, p.Header.Version)
	return nil
}

// withProject loads path, applies fn and writes the result back.
func (c *commandContext) withProject(w io.Writer, path string, fn func(*storyboard.Project) error) error {
	p, err := c.loadProject(w, path)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return c.saveProject(w, p, path)
}

// readMedia loads a file from disk and attaches a preview when one can be
// derived.
func (c *commandContext) readMedia(ctx context.Context, path string) (media.File, *media.Preview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return media.File{}, nil, fmt.Errorf("read media: %w", err)
	}
	f := media.File{Name: filepath.Base(path), Data: data}
	f.Type = media.ResolveType(f)
	pv, _ := c.previews().Generate(ctx, f)
	return f, pv, nil
}

func cutAt(p *storyboard.Project, arg string) (*storyboard.Cut, error) {
	no, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return nil, fmt.Errorf("invalid cut number %q", arg)
	}
	return p.Cut(no)
}
