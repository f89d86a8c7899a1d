package assets

import (
	"embed"

	"github.com/benbjohnson/hashfs"
)

//go:embed css
var FS embed.FS

var HashFS = hashfs.NewFS(FS)

// StylesheetPath is the cache-busted URL of the console stylesheet.
func StylesheetPath() string {
	return "/assets/" + HashFS.HashName("css/main.css")
}
