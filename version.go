package macrograph

// Version is the release of the module, overridable at link time with
// -ldflags "-X github.com/aretw0/macrograph.Version=...".
var Version = "0.1.0"
