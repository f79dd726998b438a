package cache

// Keyer derives cache keys for board artifacts.
type Keyer interface {
	// BoundsKey keys the aggregated bounds of a layer set.
	BoundsKey(boardHash string) string
	// ImageKey keys a rendered face image.
	ImageKey(boardHash string, opts ImageKeyOpts) string
}

// ImageKeyOpts are the render inputs besides the layer files.
type ImageKeyOpts struct {
	Face    string `json:"face"`
	Palette string `json:"palette"`
}

// DefaultKeyer hashes key inputs under a per-artifact prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) BoundsKey(boardHash string) string {
	return hashKey("bounds", boardHash)
}

func (DefaultKeyer) ImageKey(boardHash string, opts ImageKeyOpts) string {
	return hashKey("image", boardHash, opts)
}
