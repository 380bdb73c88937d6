package helmsman

import (
	"fmt"

	"github.com/bft-labs/helmsman/pkg/gate"
	"github.com/bft-labs/helmsman/pkg/inittrack"
	"github.com/bft-labs/helmsman/pkg/lifecycle"
	"github.com/bft-labs/helmsman/pkg/log"
	"github.com/bft-labs/helmsman/pkg/shutdown"
)

// Version information for the helmsman module.
const (
	// Version is the current version of the helmsman module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of all helmsman sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"helmsman":  Version,
		"lifecycle": lifecycle.Version,
		"inittrack": inittrack.Version,
		"shutdown":  shutdown.Version,
		"gate":      gate.Version,
		"log":       log.Version,
	}
}

// CompatibilityMatrix returns the minimum compatible version per sub-module.
func CompatibilityMatrix() map[string]string {
	return map[string]string{
		"helmsman":  MinCompatibleVersion,
		"lifecycle": lifecycle.MinCompatibleVersion,
		"inittrack": inittrack.MinCompatibleVersion,
		"shutdown":  shutdown.MinCompatibleVersion,
		"gate":      gate.MinCompatibleVersion,
		"log":       log.MinCompatibleVersion,
	}
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"inittrack": {inittrack.Version, inittrack.MinCompatibleVersion},
		"shutdown":  {shutdown.Version, shutdown.MinCompatibleVersion},
		"gate":      {gate.Version, gate.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}

	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
