package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR   = 82  // R key (ASCII), resets the orbit view
	KeyEsc = 256 // Escape key (GLFW), quits the viewer

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
)

// PaletteKeys maps the number row to the quick color swatches offered by the viewer.
var PaletteKeys = map[int]string{
	Key1: "red",
	Key2: "#00ff00",
	Key3: "blue",
	Key4: "white",
}

// MouseButton identifies a pointer button. Values match GLFW mouse button codes.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0 // orbit
	MouseButtonRight  MouseButton = 1 // pan
	MouseButtonMiddle MouseButton = 2 // dolly
)
