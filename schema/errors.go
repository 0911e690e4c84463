package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidContent indicates a content file could not be decoded.
	ErrInvalidContent = errors.New("invalid content")
	// ErrContentNotLoaded indicates content has not been loaded yet.
	ErrContentNotLoaded = errors.New("content not loaded")
	// ErrSurfaceNotReady indicates the display surface has no usable size yet.
	ErrSurfaceNotReady = errors.New("surface not ready")
	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownTheme indicates a theme name that is not registered.
	ErrUnknownTheme = errors.New("unknown theme")
)
