package core

// DefaultUnpackAlignment is the OpenGL default row alignment for uploads.
const DefaultUnpackAlignment = 4

// WithUnpackAlignment runs fn with the device unpack alignment set to n and
// puts DefaultUnpackAlignment back on every exit path, panics included.
func WithUnpackAlignment(dev TextureDevice, n int, fn func() error) error {
	dev.SetUnpackAlignment(n)
	defer dev.SetUnpackAlignment(DefaultUnpackAlignment)
	return fn()
}
