package algorithms

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"image-enhancement/internal/wavelet"
)

// WaveletRestore decomposes every channel with a single-level 2D DWT and
// immediately reconstructs it from the same sub-bands. Odd dimensions grow by
// the filter padding.
type WaveletRestore struct{}

func NewWaveletRestore() *WaveletRestore {
	return &WaveletRestore{}
}

func (w *WaveletRestore) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if err := w.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	filter, err := wavelet.Lookup(stringParam(params, "wavelet", wavelet.Bior13.Name))
	if err != nil {
		return gocv.NewMat(), err
	}

	channels := input.Channels()
	if input.Type() != gocv.MatTypeCV8UC1 && input.Type() != gocv.MatTypeCV8UC3 {
		return gocv.NewMat(), fmt.Errorf("unsupported image type: %v", input.Type())
	}

	rows, cols := input.Rows(), input.Cols()
	data := input.ToBytes()

	planes := make([]wavelet.Plane, channels)
	for ch := range planes {
		p := wavelet.NewPlane(rows, cols)
		for i := range p.Data {
			p.Data[i] = float64(data[i*channels+ch])
		}
		planes[ch] = p
	}

	// Channels are independent, reconstruct them concurrently.
	restored := make([]wavelet.Plane, channels)
	var grp errgroup.Group
	for ch := range planes {
		grp.Go(func() error {
			coeffs, err := wavelet.DWT2(planes[ch], filter)
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			out, err := wavelet.IDWT2(coeffs, filter)
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			restored[ch] = out
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return gocv.NewMat(), err
	}

	outRows, outCols := restored[0].Rows, restored[0].Cols
	buf := make([]byte, outRows*outCols*channels)
	for ch, p := range restored {
		for i, v := range p.Data {
			buf[i*channels+ch] = saturateUint8(v)
		}
	}

	shared, err := gocv.NewMatFromBytes(outRows, outCols, input.Type(), buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to build output image: %w", err)
	}
	defer shared.Close()

	return shared.Clone(), nil
}

// saturateUint8 rounds half to even and clamps to [0, 255]
func saturateUint8(v float64) uint8 {
	r := math.RoundToEven(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func (w *WaveletRestore) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"wavelet": wavelet.Bior13.Name,
	}
}

func (w *WaveletRestore) GetName() string {
	return "Wavelet Restoration"
}

func (w *WaveletRestore) GetDescription() string {
	return "Single-level 2D wavelet decomposition and reconstruction"
}

func (w *WaveletRestore) Validate(params map[string]interface{}) error {
	if val, ok := params["wavelet"]; ok {
		name, ok := val.(string)
		if !ok {
			return fmt.Errorf("wavelet must be a string, got %T", val)
		}
		if _, err := wavelet.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

func (w *WaveletRestore) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "wavelet",
			Type:        "string",
			Default:     wavelet.Bior13.Name,
			Description: "Wavelet filter bank",
			Options:     wavelet.Names(),
		},
	}
}
