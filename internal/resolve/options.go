package resolve

import (
	"github.com/rs/zerolog"

	"github.com/arx-os/arxos-sub004/internal/domain"
)

// Options tunes a resolution run. The zero value is not ready for use;
// start from DefaultOptions.
type Options struct {
	// Logger receives every degraded path at debug level.
	Logger zerolog.Logger

	// Prefix is the country/state/city address prefix used when the
	// building carries no usable postal address.
	Prefix domain.Address

	// UsePostalAddress fills the prefix from the building's postal
	// address when all of Country, Region and Town are present.
	UsePostalAddress bool

	// AnchorKeywords mark annotations as AR anchors when their name
	// contains one of them, ignoring case.
	AnchorKeywords []string

	// Meshes enables mesh extraction for rooms, equipment and anchors.
	Meshes bool

	// EquipmentKinds overrides the kind of an IFC class. Classes outside
	// the built-in allow-list are resolved as equipment too.
	EquipmentKinds map[string]domain.EquipmentKind
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Logger:           zerolog.Nop(),
		Prefix:           domain.NewAddress("usa", "unknown", "unknown"),
		UsePostalAddress: true,
		AnchorKeywords:   []string{"MARKER", "ANCHOR"},
		Meshes:           true,
	}
}
