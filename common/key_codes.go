package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyE   = 69 // E key (ASCII)
	KeyH   = 72 // H key (ASCII)
	KeyP   = 80 // P key (ASCII)
	KeyR   = 82 // R key (ASCII)
	KeyS   = 83 // S key (ASCII)
	KeyEsc = 256

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
)

// Mouse buttons, matching GLFW button indices.
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)
