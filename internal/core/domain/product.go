package domain

// Product is one installed package tracked by the product registry. The
// plugin file is the unique identifier the update server keys updates by,
// e.g. "plugin-a/plugin-a.php".
type Product struct {
	PluginFile string `json:"plugin_file"`
	Version    string `json:"version"`
	AutoUpdate bool   `json:"auto_update"`
}
