// Package version reports the padflow build.
//
// Values are injected at link time and fall back to the VCS stamp the Go
// toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/padflow/version.Version=1.0.0"
package version
