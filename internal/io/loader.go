// Image loading, saving and artifact naming
package io

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyFile         = errors.New("image file is empty")
	ErrCorrupted         = errors.New("invalid or corrupted image file")
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger *slog.Logger
}

func NewImageLoader(logger *slog.Logger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage decodes the file at filepath as an 8-bit, 3-channel BGR image.
// The caller owns the returned Mat.
func (il *ImageLoader) LoadImage(filepath string) (gocv.Mat, error) {
	il.logger.Debug("Loading image", "filepath", filepath)

	if !il.isSupportedImageFormat(filepath) {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath)
	}

	info, err := os.Stat(filepath)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to stat image: %w", err)
	}
	if info.Size() == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrEmptyFile, filepath)
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to read image: %w", err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %s: %v", ErrCorrupted, filepath, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrCorrupted, filepath)
	}

	il.logger.Info("Image loaded successfully",
		"filepath", filepath,
		"width", mat.Cols(),
		"height", mat.Rows(),
		"channels", mat.Channels())

	return mat, nil
}

func (il *ImageLoader) SaveImage(mat gocv.Mat, filepath string) error {
	il.logger.Debug("Saving image", "filepath", filepath)

	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}

	if !il.isSupportedImageFormat(filepath) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath)
	}

	success := gocv.IMWrite(filepath, mat)
	if !success {
		return fmt.Errorf("failed to save image: %s", filepath)
	}

	il.logger.Info("Image saved successfully",
		"filepath", filepath,
		"width", mat.Cols(),
		"height", mat.Rows(),
		"channels", mat.Channels())

	return nil
}

func (il *ImageLoader) isSupportedImageFormat(filepath string) bool {
	ext := strings.ToLower(getFileExtension(filepath))

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}

	return false
}

func getFileExtension(filepath string) string {
	for i := len(filepath) - 1; i >= 0; i-- {
		if filepath[i] == '.' {
			return filepath[i:]
		}
		if filepath[i] == '/' || filepath[i] == '\\' {
			break
		}
	}
	return ""
}

func (il *ImageLoader) SupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}

// ArtifactPath names a stage artifact: <outputDir>/<prefix>_<basename of source>
func ArtifactPath(outputDir, prefix, source string) string {
	return filepath.Join(outputDir, prefix+"_"+filepath.Base(source))
}
