package cmd

// Version is stamped here by hand on release tags.
func Version() string {
	return "planedit 0.3.0-dev"
}
