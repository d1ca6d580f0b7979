package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Pdftoppm renders pages with Poppler's pdftoppm binary.
type Pdftoppm struct {
	Bin string
}

// NewPdftoppm returns a renderer using bin, or "pdftoppm" from PATH.
func NewPdftoppm(bin string) *Pdftoppm {
	if strings.TrimSpace(bin) == "" {
		bin = "pdftoppm"
	}
	return &Pdftoppm{Bin: bin}
}

// Available reports whether the binary can be found.
func (p *Pdftoppm) Available() error {
	_, err := exec.LookPath(p.Bin)
	return err
}

// RenderPage writes the PDF to a temp dir and renders the requested page.
func (p *Pdftoppm) RenderPage(ctx context.Context, pdf []byte, page int, opts Options) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if len(pdf) == 0 {
		return nil, errors.New("empty pdf")
	}
	opts = withDefaults(opts)

	tmpDir, err := os.MkdirTemp("", "docchat-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	input := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	prefix := filepath.Join(tmpDir, "page")

	cmd := exec.CommandContext(ctx, p.Bin, args(input, prefix, page, opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("pdftoppm page %d: %w", page, err)
		}
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, msg)
	}

	out, err := os.ReadFile(prefix + "." + extension(opts.Format))
	if err != nil {
		return nil, fmt.Errorf("read rendered page %d: %w", page, err)
	}
	return out, nil
}

func args(input, prefix string, page int, opts Options) []string {
	n := strconv.Itoa(page)
	out := []string{
		"-" + opts.Format,
		"-r", strconv.Itoa(opts.DPI),
		"-f", n,
		"-l", n,
		"-singlefile",
	}
	if opts.ScaleTo > 0 {
		out = append(out, "-scale-to", strconv.Itoa(opts.ScaleTo))
	}
	return append(out, input, prefix)
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	switch opts.Format {
	case "png", "jpeg", "tiff":
	default:
		opts.Format = def.Format
	}
	return opts
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	default:
		return "png"
	}
}

var _ Renderer = (*Pdftoppm)(nil)
