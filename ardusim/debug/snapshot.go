package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/valerio/go-ardusim/ardusim/video"
)

// DefaultSnapshotScale enlarges snapshots to the default window size.
const DefaultSnapshotScale = 2

// TakeSnapshot handles the snapshot key for backends: the frame is saved
// to the working directory, errors are logged.
func TakeSnapshot(frame *video.FrameBuffer, name string) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	baseName := "ardusim_snapshot"
	if name != "" {
		baseName = fmt.Sprintf("%s_snapshot", name)
	}

	if _, err := SaveFramePNGToDir(frame, baseName, "", DefaultSnapshotScale); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// ToImage converts a frame to an RGBA image of the same size.
func ToImage(frame *video.FrameBuffer) *image.RGBA {
	w, h := int(frame.Width()), int(frame.Height())
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range frame.ToSlice() {
		img.Set(i%w, i/w, argbToColor(px))
	}
	return img
}

func argbToColor(px uint32) color.RGBA {
	return color.RGBA{
		R: uint8(px >> 16),
		G: uint8(px >> 8),
		B: uint8(px),
		A: uint8(px >> 24),
	}
}

// SaveFramePNGToDir saves a frame as a timestamped PNG, enlarged by scale
// with nearest-neighbour sampling so pixels stay crisp. An empty directory
// means the working directory. It returns the written path.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string, scale int) (string, error) {
	src := ToImage(frame)

	var img image.Image = src
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx()*scale, src.Bounds().Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		img = dst
	}

	timestamp := time.Now().Format("20060102_150405.000")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	b := img.Bounds()
	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "format", "PNG")
	return filePath, nil
}
