package abr

import "fmt"

// Header holds the two big-endian fields at the start of every ABR stream.
// The meaning of Secondary depends on Major; use ParseLayout rather than
// reading it directly.
type Header struct {
	Major     uint16
	Secondary uint16
}

// Family identifies which record walker handles a stream.
type Family int

const (
	// FamilyLegacy is the flat length-prefixed layout (versions 1 and 2).
	FamilyLegacy Family = iota + 1
	// FamilySampled is the resource-section layout (versions 6 and 10).
	FamilySampled
)

func (f Family) String() string {
	switch f {
	case FamilyLegacy:
		return "Legacy"
	case FamilySampled:
		return "Sampled"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Layout is the header with Secondary resolved to its version-specific
// meaning: Count for legacy streams, Variant for sampled ones.
type Layout struct {
	Header
	Family  Family
	Count   uint16
	Variant uint16
}

// ParseLayout resolves the overloaded secondary field.
func ParseLayout(h Header) (Layout, error) {
	switch h.Major {
	case VersionLegacy1, VersionLegacy2:
		return Layout{Header: h, Family: FamilyLegacy, Count: h.Secondary}, nil
	case VersionSampled6, VersionSampled10:
		if h.Secondary == 1 || h.Secondary == 2 {
			return Layout{Header: h, Family: FamilySampled, Variant: h.Secondary}, nil
		}
	}
	return Layout{}, &UnsupportedVersionError{Major: h.Major, Secondary: h.Secondary}
}

// readHeader consumes the four header bytes.
func readHeader(c *Cursor) (Header, error) {
	major, err := c.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	secondary, err := c.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	return Header{Major: major, Secondary: secondary}, nil
}
