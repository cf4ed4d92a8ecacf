package channels

import "gonum.org/v1/gonum/mat"

// ChannelSet holds the per-pixel planes of one image variant. RGB and Alpha
// are 0-255, Hue is in degrees [0,360), Saturation, Value and Lightness are
// in [0,1]. Every plane is Height x Width.
type ChannelSet struct {
	Width, Height int

	RGB   [3]*mat.Dense
	Alpha *mat.Dense

	Hue        *mat.Dense
	Saturation *mat.Dense
	Value      *mat.Dense
	Lightness  *mat.Dense
}

// PixelChannels is the decoded input of one analysis: the sharp image and a
// blurred copy derived from it.
type PixelChannels struct {
	Raw     *ChannelSet
	Blurred *ChannelSet
}

// Width of the decoded image
func (p *PixelChannels) Width() int {
	return p.Raw.Width
}

// Height of the decoded image
func (p *PixelChannels) Height() int {
	return p.Raw.Height
}
