package channels

// ChannelProvider turns encoded image bytes into raw and blurred channel sets
type ChannelProvider interface {
	Decode(data []byte, blurSigma float64) (*PixelChannels, error)
	Describe() string
}
