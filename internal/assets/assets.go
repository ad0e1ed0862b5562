package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS fragment by name using the default embedded loader.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML fragment by name using the default embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// MustLoadTemplate is LoadTemplate for fragments known to be embedded.
// Panics if the fragment is missing (programmer error).
func MustLoadTemplate(name string) string {
	content, err := LoadTemplate(name)
	if err != nil {
		panic("failed to load " + name + " template: " + err.Error())
	}
	return content
}

// MustLoadStyle is LoadStyle for fragments known to be embedded.
// Panics if the fragment is missing (programmer error).
func MustLoadStyle(name string) string {
	content, err := LoadStyle(name)
	if err != nil {
		panic("failed to load " + name + " style: " + err.Error())
	}
	return content
}
