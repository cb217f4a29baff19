package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestValidateImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.ErrorContains(t, ValidateImage(empty), "empty")

	bgr := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC3)
	defer bgr.Close()
	assert.NoError(t, ValidateImage(bgr))

	gray := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC1)
	defer gray.Close()
	assert.NoError(t, ValidateImage(gray))

	bgra := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC4)
	defer bgra.Close()
	assert.ErrorContains(t, ValidateImage(bgra), "channel count")

	float := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV32FC3)
	defer float.Close()
	assert.ErrorContains(t, ValidateImage(float), "sample depth")
}

func TestMetadataOf(t *testing.T) {
	mat := gocv.NewMatWithSize(30, 40, gocv.MatTypeCV8UC3)
	defer mat.Close()

	meta := MetadataOf(mat, "/does/not/exist/photo.jpeg")
	assert.Equal(t, 40, meta.Width)
	assert.Equal(t, 30, meta.Height)
	assert.Equal(t, 3, meta.Channels)
	assert.Equal(t, "jpeg", meta.Format)
	assert.Zero(t, meta.Size)

	assert.Equal(t, "unknown", getFormatFromPath("dir.v2/file"))
	assert.Equal(t, "unknown", getFormatFromPath(""))
}
