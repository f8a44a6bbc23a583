//go:build linux

package clarinet

// CurrentPlatform is the bind-policy column for this build target.
const CurrentPlatform = PlatformLinux
