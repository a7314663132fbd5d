package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "mpimage"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Default output directory for exported images.
//
//	Linux:   $XDG_DATA_HOME/mpimage or ~/.local/share/mpimage
//	macOS:   ~/Library/Application Support/mpimage
func Output() string {
	return filepath.Join(xdg.DataHome, toolName)
}

// Path to the cache directory for scratch data and fetched recipe files.
//
//	Linux:   $XDG_CACHE_HOME/mpimage or ~/.cache/mpimage
//	macOS:   ~/Library/Caches/mpimage
func Cache() string {
	return filepath.Join(xdg.CacheHome, toolName)
}
