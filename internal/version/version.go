package version

// Tag is the build version, set with
// -ldflags "-X github.com/dillanmilo/railcore/internal/version.Tag=v1.2.3".
var Tag = "dev"

// String returns Tag, or "dev" when it was blanked at build time.
func String() string {
	if Tag == "" {
		return "dev"
	}
	return Tag
}
