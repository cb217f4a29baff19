// Image metadata and validation at stage boundaries
package core

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// maxDimension guards against images that would exhaust memory in the
// wavelet and denoising stages
const maxDimension = 16384

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Channels int          `json:"channels"`
	Type     gocv.MatType `json:"type"`
	Format   string       `json:"format"`
	Size     int64        `json:"size"` // File size in bytes
}

// MetadataOf describes mat as decoded from filepath
func MetadataOf(mat gocv.Mat, filepath string) ImageMetadata {
	meta := ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
		Format:   getFormatFromPath(filepath),
	}
	if info, err := os.Stat(filepath); err == nil {
		meta.Size = info.Size()
	}
	return meta
}

// getFormatFromPath extracts image format from file path
func getFormatFromPath(filepath string) string {
	if filepath == "" {
		return "unknown"
	}

	for i := len(filepath) - 1; i >= 0; i-- {
		if filepath[i] == '.' {
			return filepath[i+1:]
		}
		if filepath[i] == '/' || filepath[i] == '\\' {
			break
		}
	}
	return "unknown"
}

// ValidateImage validates an OpenCV Mat for the pipeline's requirements:
// non-empty, 8-bit samples, one or three channels
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels != 1 && channels != 3 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	if mat.Type() != gocv.MatTypeCV8UC1 && mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("unsupported sample depth: type %v", mat.Type())
	}

	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
