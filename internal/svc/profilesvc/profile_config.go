package profilesvc

// ProfileConfig holds configuration parameters for the profile service.
type ProfileConfig struct {
	// PreviewWidth is the width in pixels of the staged image thumbnail
	PreviewWidth int `env:"PREVIEW_WIDTH" default:"160"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`
}
