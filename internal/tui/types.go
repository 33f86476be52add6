package tui

type stage int

const (
	stageScanning stage = iota
	stageHome
	stageNotebook
)

const (
	minPanelWidth       = 24
	minMainWidth        = 40
	chromeHeight        = 4
	transcriptCellLimit = 400
)

const heroTagline = "Browse notebooks by their headings."

// keyMatches reports whether the pressed key is one of the configured
// bindings.
func keyMatches(key string, bindings []string) bool {
	for _, binding := range bindings {
		if key == binding {
			return true
		}
	}
	return false
}
