package theme

import "os"

// Unicode icons
const (
	unicodeIconSuccess = "✓"
	unicodeIconError   = "✗"
	unicodeIconWarning = "!"
	unicodeIconBullet  = "●"
	unicodeIconArrow   = "→"
)

// ASCII Fallback Icons (Private Constants)
const (
	asciiIconSuccess = "[ok]"
	asciiIconError   = "[x]"
	asciiIconWarning = "[!]"
	asciiIconBullet  = "*"
	asciiIconArrow   = "->"
)

// Public Icon Variables
var (
	IconSuccess string
	IconError   string
	IconWarning string
	IconBullet  string
	IconArrow   string
)

// init picks the icon set. PILOT_ICONS=ascii avoids non-ASCII glyphs.
func init() {
	if os.Getenv("PILOT_ICONS") == "ascii" {
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconBullet = asciiIconBullet
		IconArrow = asciiIconArrow
		return
	}

	IconSuccess = unicodeIconSuccess
	IconError = unicodeIconError
	IconWarning = unicodeIconWarning
	IconBullet = unicodeIconBullet
	IconArrow = unicodeIconArrow
}
