package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"shrikavin.dev/internal/config"
	"shrikavin.dev/internal/render"
	"shrikavin.dev/internal/services"
	"shrikavin.dev/web"
)

type exportOptions struct {
	OutDir string
	Seed   uint64
	Width  float64
	Height float64
	Frames int
}

// staticAssets point at files relative to the exported index.html
var staticAssets = render.Assets{
	StaticBase:         "static/",
	BackgroundSnapshot: "background.json",
}

func runExport(out io.Writer, o exportOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return export(out, cfg, o)
}

func export(out io.Writer, cfg *config.Config, o exportOptions) error {
	sectionsDir := filepath.Join(o.OutDir, "sections")
	if err := os.MkdirAll(sectionsDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	portfolioService := services.NewPortfolioService(cfg.Portfolio)
	renderer, err := render.New(web.Templates, portfolioService, staticAssets)
	if err != nil {
		return err
	}

	profile := cfg.Portfolio.Profile
	resume := services.NewResumeService(cfg.ResumeFile(), profile)
	link := resume.Link("")
	link.Href = filepath.ToSlash(filepath.Base(resume.Filename()))
	req := render.Request{Resume: link, Now: time.Now()}

	var buf bytes.Buffer
	if err := renderer.Page(&buf, req); err != nil {
		return err
	}
	if err := writeFile(out, filepath.Join(o.OutDir, "index.html"), buf.Bytes()); err != nil {
		return err
	}

	for _, s := range render.Sections {
		buf.Reset()
		if err := renderer.Section(&buf, s.ID, req); err != nil {
			return err
		}
		if err := writeFile(out, filepath.Join(sectionsDir, s.ID+".html"), buf.Bytes()); err != nil {
			return err
		}
	}

	if err := writeJSON(out, filepath.Join(o.OutDir, "portfolio.json"), cfg.Portfolio); err != nil {
		return err
	}

	bg := services.NewBackgroundService(cfg.BackgroundFPS, nil)
	snap, err := bg.Snapshot(o.Width, o.Height, o.Frames, o.Seed)
	if err != nil {
		return fmt.Errorf("background snapshot: %w", err)
	}
	if err := writeJSON(out, filepath.Join(o.OutDir, "background.json"), snap); err != nil {
		return err
	}

	if err := copyStatic(filepath.Join(o.OutDir, "static")); err != nil {
		return err
	}

	if err := copyResume(out, resume, filepath.Join(o.OutDir, link.Href)); err != nil {
		return err
	}

	fmt.Fprintln(out, "Done!")
	return nil
}

func writeFile(out io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  Created %s\n", path)
	return nil
}

func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return writeFile(out, path, data)
}

func copyStatic(dst string) error {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return err
	}
	return fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
}

// copyResume copies the resume next to index.html. A missing resume is
// reported and skipped.
func copyResume(out io.Writer, resume *services.ResumeService, dst string) error {
	f, _, err := resume.Open()
	if errors.Is(err, services.ErrResumeMissing) {
		fmt.Fprintln(out, "  Skipped resume (not found)")
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	return writeFile(out, dst, data)
}
