package assets

import "fmt"

// maxAssetNameLen bounds names used as file stems under styles/ and templates/.
const maxAssetNameLen = 64

// checkAssetName accepts stems made of ASCII letters, digits, '-' and '_'.
// Anything else, including dots and separators, could reach outside the
// styles/ or templates/ directory once joined with an extension.
func checkAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLen {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidAssetName, len(name), maxAssetNameLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w: %q has %q at byte %d", ErrInvalidAssetName, name, c, i)
		}
	}
	return nil
}
