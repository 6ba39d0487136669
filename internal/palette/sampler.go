package palette

import (
	"image"
	"image/draw"
	"math"
	"sync"
)

type Samples struct {
	Pixels []RGB
	Width  int
	Height int
}

// Sample cover-fits img into a size×size square and flattens it row-major.
func Sample(img image.Image, size int, workerCount int) Samples {
	if img == nil || img.Bounds().Empty() || size <= 0 {
		return Samples{}
	}

	sampled := coverFitNRGBA(toNRGBA(img), size, workerCount)
	width := sampled.Bounds().Dx()
	height := sampled.Bounds().Dy()

	pixels := make([]RGB, 0, width*height)
	for y := 0; y < height; y++ {
		rowOffset := y * sampled.Stride
		for x := 0; x < width; x++ {
			offset := rowOffset + x*4
			pixels = append(pixels, RGB{
				R: sampled.Pix[offset],
				G: sampled.Pix[offset+1],
				B: sampled.Pix[offset+2],
			})
		}
	}

	return Samples{Pixels: pixels, Width: width, Height: height}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

func coverFitNRGBA(src *image.NRGBA, size int, workerCount int) *image.NRGBA {
	sourceWidth := src.Bounds().Dx()
	sourceHeight := src.Bounds().Dy()

	scale := math.Max(float64(size)/float64(sourceWidth), float64(size)/float64(sourceHeight))
	cropWidth := float64(size) / scale
	cropHeight := float64(size) / scale
	offsetX := (float64(sourceWidth) - cropWidth) / 2
	offsetY := (float64(sourceHeight) - cropHeight) / 2

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	workers := clampInt(workerCount, 1, size)

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		startY, endY := splitRange(size, workers, worker)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				sampleY := offsetY + (float64(y)+0.5)/scale - 0.5
				targetRowOffset := y * dst.Stride
				for x := 0; x < size; x++ {
					sampleX := offsetX + (float64(x)+0.5)/scale - 0.5
					r, g, b, a := bilinearSampleNRGBA(src, sampleX, sampleY)
					targetOffset := targetRowOffset + x*4
					dst.Pix[targetOffset] = r
					dst.Pix[targetOffset+1] = g
					dst.Pix[targetOffset+2] = b
					dst.Pix[targetOffset+3] = a
				}
			}
		}(startY, endY)
	}

	wg.Wait()
	return dst
}

func bilinearSampleNRGBA(src *image.NRGBA, x float64, y float64) (uint8, uint8, uint8, uint8) {
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return 0, 0, 0, 0
	}

	x = clampFloat(x, 0, float64(width-1))
	y = clampFloat(y, 0, float64(height-1))

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := minInt(x0+1, width-1)
	y1 := minInt(y0+1, height-1)

	tx := x - float64(x0)
	ty := y - float64(y0)

	offset00 := y0*src.Stride + x0*4
	offset10 := y0*src.Stride + x1*4
	offset01 := y1*src.Stride + x0*4
	offset11 := y1*src.Stride + x1*4

	w00 := (1 - tx) * (1 - ty)
	w10 := tx * (1 - ty)
	w01 := (1 - tx) * ty
	w11 := tx * ty

	channel := func(index int) uint8 {
		value := w00*float64(src.Pix[offset00+index]) +
			w10*float64(src.Pix[offset10+index]) +
			w01*float64(src.Pix[offset01+index]) +
			w11*float64(src.Pix[offset11+index])
		return uint8(math.Round(value))
	}

	return channel(0), channel(1), channel(2), channel(3)
}

func splitRange(length int, workers int, workerIndex int) (int, int) {
	chunkSize := length / workers
	remainder := length % workers
	start := workerIndex*chunkSize + minInt(workerIndex, remainder)
	end := start + chunkSize
	if workerIndex < remainder {
		end++
	}
	return start, end
}
