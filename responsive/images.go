// Package responsive produces resized image variants and rewrites rendered
// HTML so <img> tags reference them through srcset.
package responsive

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"

	"github.com/menteora/quill/core"
	"github.com/menteora/quill/output"
)

// Variant is one resized copy of a source image.
type Variant struct {
	Label    string // file name suffix, e.g. "mobile"
	MaxWidth int    // pixels; narrower images are not upscaled
}

// DefaultVariants are the widths generated for every resizable image.
var DefaultVariants = []Variant{
	{Label: "mobile", MaxWidth: 480},
	{Label: "desktop", MaxWidth: 1280},
}

// DefaultQuality is the JPEG quality used for variants.
const DefaultQuality = 85

// Result counts what Generate produced.
type Result struct {
	Copied   int
	Variants int
	// Failed lists images that could not be decoded and got no variants.
	Failed []string
	// Conflicts lists variant names that would overwrite another source
	// image. Those variants are not written.
	Conflicts []string
}

// Generator copies source images into the output tree and writes resized
// variants next to them.
type Generator struct {
	Variants []Variant // defaults to DefaultVariants
	Quality  int       // defaults to DefaultQuality
	Logger   *log.Logger
}

// Resizable reports whether name has an extension variants are made for.
func Resizable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// VariantName returns "<stem>-<label><ext>" for name.
func VariantName(name, label string) string {
	ext := filepath.Ext(name)
	return core.Stem(name) + "-" + label + ext
}

// Generate copies every regular file in srcDir to dstDir and writes the
// variants of each resizable image. An image that fails to decode is logged
// and listed in Result.Failed; its verbatim copy is kept. A variant whose
// name is taken by another source image is skipped and listed in
// Result.Conflicts. A missing srcDir is not an error.
func (g *Generator) Generate(srcDir, dstDir string) (*Result, error) {
	res := &Result{}

	entries, err := os.ReadDir(srcDir)
	if errors.Is(err, fs.ErrNotExist) {
		g.logger().Debug("images directory missing", "dir", srcDir)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read images directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	sources := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			sources[e.Name()] = true
		}
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		src := filepath.Join(srcDir, name)

		if err := output.CopyFile(src, filepath.Join(dstDir, name)); err != nil {
			return nil, fmt.Errorf("copy image %s: %w", name, err)
		}
		res.Copied++

		if !Resizable(name) {
			continue
		}

		img, err := decodeFile(src)
		if err != nil {
			g.logger().Warn("cannot decode image, skipping variants", "file", name, "err", err)
			res.Failed = append(res.Failed, name)
			continue
		}

		for _, v := range g.variants() {
			variant := VariantName(name, v.Label)
			if sources[variant] {
				g.logger().Warn("variant name collides with a source image, keeping the source", "file", name, "variant", variant)
				res.Conflicts = append(res.Conflicts, variant)
				continue
			}
			data, err := g.encode(resize(img, v.MaxWidth), filepath.Ext(name))
			if err != nil {
				return nil, fmt.Errorf("encode %s variant of %s: %w", v.Label, name, err)
			}
			if err := output.WriteFile(filepath.Join(dstDir, variant), data); err != nil {
				return nil, fmt.Errorf("write %s variant of %s: %w", v.Label, name, err)
			}
			res.Variants++
		}
	}

	return res, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// resize scales img down to maxWidth keeping its aspect ratio. Images
// already narrow enough are returned unchanged.
func resize(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	origWidth, origHeight := bounds.Dx(), bounds.Dy()
	if origWidth <= maxWidth {
		return img
	}

	newHeight := max(origHeight*maxWidth/origWidth, 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

func (g *Generator) encode(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(ext) {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: g.quality()}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (g *Generator) variants() []Variant {
	if len(g.Variants) > 0 {
		return g.Variants
	}
	return DefaultVariants
}

func (g *Generator) quality() int {
	if g.Quality > 0 {
		return g.Quality
	}
	return DefaultQuality
}

func (g *Generator) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}
