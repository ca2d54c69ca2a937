package abr

// Rect describes a brush bounding box as stored in the record body.
// Legacy records store 16-bit edges, sampled records 32-bit ones; both are
// widened to uint32 here.
type Rect struct {
	Top    uint32
	Left   uint32
	Bottom uint32
	Right  uint32
}

// Width returns Right-Left, or an error when Right < Left.
func (r Rect) Width() (uint32, error) {
	if r.Right < r.Left {
		return 0, &MalformedBoundsError{Rect: r}
	}
	return r.Right - r.Left, nil
}

// Height returns Bottom-Top, or an error when Bottom < Top.
func (r Rect) Height() (uint32, error) {
	if r.Bottom < r.Top {
		return 0, &MalformedBoundsError{Rect: r}
	}
	return r.Bottom - r.Top, nil
}

const (
	// VersionLegacy1 and VersionLegacy2 select the flat length-prefixed layout.
	VersionLegacy1 uint16 = 1
	VersionLegacy2 uint16 = 2
	// VersionSampled6 and VersionSampled10 select the resource-section layout.
	VersionSampled6  uint16 = 6
	VersionSampled10 uint16 = 10

	// BrushTypeSampled is the only legacy brush type carrying raster samples.
	BrushTypeSampled uint16 = 2
	// SupportedDepth is the only accepted sample bit depth.
	SupportedDepth uint16 = 8

	// MaxSampleBytes caps the decoded sample buffer of a single brush.
	MaxSampleBytes = 1 << 30
)

const (
	headerSize = 4

	// Opaque per-record prefix of sampled brushes, by sub-variant.
	sampledSkipVariant1 = 47
	sampledSkipVariant2 = 301

	recordAlign = 4

	maxNameUnits = 4096
	maxSizeHint  = 16 << 20
)

var (
	tag8bim = [4]byte{'8', 'b', 'i', 'm'}
	tagSamp = [4]byte{'s', 'a', 'm', 'p'}
)

// alignUp rounds off up to the next multiple of recordAlign.
func alignUp(off int64) int64 {
	return (off + recordAlign - 1) &^ (recordAlign - 1)
}
