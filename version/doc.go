// Package version reports build information set through -ldflags or read
// from the embedded VCS settings.
//
//	go build -ldflags "-X github.com/kbukum/rxlab/version.Version=v0.3.0"
package version
