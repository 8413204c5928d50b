package helper

import (
	"image"
	"image/draw"
	"sync"
)

// DefaultSliceCount splits an image into 4x4 regions compared in parallel.
const DefaultSliceCount = 4

// Clone copies img into a new RGBA image with the same bounds.
func Clone(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// RegionChanged reports whether any pixel inside the given region differs.
func RegionChanged(img1, img2 image.Image, region image.Rectangle) bool {
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r1, g1, b1, a1 := img1.At(x, y).RGBA()
			r2, g2, b2, a2 := img2.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return true
			}
		}
	}
	return false
}

// Changed compares two images region by region, sliceCount regions per axis.
// A nil image or a size mismatch always counts as a change.
func Changed(img1, img2 image.Image, sliceCount int) bool {
	nil1, nil2 := isNil(img1), isNil(img2)
	if nil1 || nil2 {
		return nil1 != nil2
	}

	bounds := img1.Bounds()
	if bounds != img2.Bounds() {
		return true
	}

	if sliceCount < 1 {
		sliceCount = 1
	}

	size := bounds.Size()
	rectWidth := (size.X + sliceCount - 1) / sliceCount
	rectHeight := (size.Y + sliceCount - 1) / sliceCount
	if rectWidth == 0 || rectHeight == 0 {
		return false
	}

	var (
		wait    sync.WaitGroup
		locker  sync.Mutex
		changed bool
	)

	for x := bounds.Min.X; x < bounds.Max.X; x += rectWidth {
		for y := bounds.Min.Y; y < bounds.Max.Y; y += rectHeight {
			region := image.Rect(x, y, x+rectWidth, y+rectHeight).Intersect(bounds)
			wait.Add(1)
			go func() {
				defer wait.Done()
				if RegionChanged(img1, img2, region) {
					locker.Lock()
					changed = true
					locker.Unlock()
				}
			}()
		}
	}
	wait.Wait()

	return changed
}

func isNil(img image.Image) bool {
	switch img := img.(type) {
	case nil:
		return true
	case *image.RGBA:
		return img == nil
	}
	return false
}
