package dxvk

import "errors"

// Errors returned by device and context operations.
//
// Binding calls never fail: out-of-range slots are ignored and nil unbinds.
// Only object creation and tiled-resource operations report errors.
var (
	// ErrInvalidArg is returned for malformed creation parameters.
	ErrInvalidArg = errors.New("dxvk: invalid argument")

	// ErrTilesNotSupported is returned by tiled-resource operations when the
	// device has no TileManager.
	ErrTilesNotSupported = errors.New("dxvk: tiled resources not supported")

	// ErrStageMismatch is returned when shader source has no entry point for
	// the requested stage.
	ErrStageMismatch = errors.New("dxvk: shader has no entry point for stage")

	// ErrUnknownSink is returned when a configured sink backend is not
	// registered.
	ErrUnknownSink = errors.New("dxvk: unknown sink backend")
)
