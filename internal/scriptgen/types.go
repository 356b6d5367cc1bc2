package scriptgen

// Scene is one item of the generated video script. Key names are fixed by
// the prompt's output-format contract; downstream stages key off them.
type Scene struct {
	MusicDescription     string `json:"music-description"`
	Speech               string `json:"speech"`
	AnimationDescription string `json:"animation-description"`
	Duration             string `json:"duration"`
}

var requiredKeys = []string{"music-description", "speech", "animation-description", "duration"}
