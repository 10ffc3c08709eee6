package domain

import "path"

// UpdateDescriptor describes one available package update. Descriptors are
// transient: they are rebuilt from the server response on every check cycle
// and have no identity beyond it.
type UpdateDescriptor struct {
	PluginFile string            `json:"plugin_file"`
	Slug       string            `json:"slug"`
	NewVersion string            `json:"new_version"`
	Package    string            `json:"package"`
	Requires   string            `json:"requires"`
	Tested     string            `json:"tested"`
	Sections   map[string]string `json:"sections"`
	Icons      map[string]string `json:"icons"`
	Banners    map[string]string `json:"banners"`
	BannersRTL map[string]string `json:"banners_rtl"`
	Homepage   string            `json:"homepage"`
}

// UpdateCheck mirrors the host's update transient: the package versions that
// were checked this cycle and the updates found for them, keyed by plugin
// file.
type UpdateCheck struct {
	Checked  map[string]string
	Response map[string]*UpdateDescriptor
}

// NewUpdateCheck creates an update check for the given checked-versions map.
func NewUpdateCheck(checked map[string]string) *UpdateCheck {
	return &UpdateCheck{
		Checked:  checked,
		Response: make(map[string]*UpdateDescriptor),
	}
}

// DescriptorFromEntry builds an UpdateDescriptor from one entry of the
// server's updates list. Entries without both plugin_file and version are
// rejected; a missing slug falls back to the plugin file's directory name.
func DescriptorFromEntry(entry map[string]any) (*UpdateDescriptor, bool) {
	pluginFile := stringField(entry, "plugin_file")
	version := stringField(entry, "version")
	if pluginFile == "" || version == "" {
		return nil, false
	}

	slug := stringField(entry, "slug")
	if slug == "" {
		slug = path.Dir(pluginFile)
	}

	return &UpdateDescriptor{
		PluginFile: pluginFile,
		Slug:       slug,
		NewVersion: version,
		Package:    stringField(entry, "package"),
		Requires:   stringField(entry, "requires"),
		Tested:     stringField(entry, "tested"),
		Sections:   stringMapField(entry, "sections"),
		Icons:      stringMapField(entry, "icons"),
		Banners:    stringMapField(entry, "banners"),
		BannersRTL: stringMapField(entry, "banners_rtl"),
		Homepage:   stringField(entry, "homepage"),
	}, true
}

func stringField(entry map[string]any, key string) string {
	value, _ := entry[key].(string)
	return value
}

// stringMapField coerces a JSON object field into a string map. Values that
// are not strings are skipped rather than failing the whole entry.
func stringMapField(entry map[string]any, key string) map[string]string {
	raw, ok := entry[key].(map[string]any)
	if !ok {
		return map[string]string{}
	}

	result := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			result[k] = s
		}
	}
	return result
}
