package fasttrack

// Flags is the feature flag state the gate routes against. It is resolved
// once at process startup (from config and environment) and passed by value
// to every Route call; there is no global flag registry and no way to flip a
// flag in a running process.
type Flags struct {
	// FastTrackEnabled opts this deployment into template-baseline routing.
	FastTrackEnabled bool
}
