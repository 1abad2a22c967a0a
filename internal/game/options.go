package game

// MaxMatchCount bounds the series length a client may request.
const MaxMatchCount = 99

// Options are the series settings shared by both sides of a lobby or session.
// The struct is comparable and doubles as the matchmaking key.
type Options struct {
	MatchCount  int  `json:"matchCount"`
	Competitive bool `json:"competitive"`
}

// DefaultOptions is a single untracked game.
var DefaultOptions = Options{MatchCount: 1, Competitive: false}

// Valid reports whether the options describe a playable series.
func (o Options) Valid() bool {
	return o.MatchCount >= 1 && o.MatchCount <= MaxMatchCount
}

// Series reports whether more than one match is played.
func (o Options) Series() bool {
	return o.MatchCount > 1
}

// OptionsOrDefault returns *o, or DefaultOptions when o is nil. ok is false for
// malformed options.
func OptionsOrDefault(o *Options) (Options, bool) {
	if o == nil {
		return DefaultOptions, true
	}
	if !o.Valid() {
		return Options{}, false
	}
	return *o, true
}

// Scores is the running tally of a series, credited by role.
type Scores struct {
	RoleA int `json:"roleA"`
	RoleB int `json:"roleB"`
	Draws int `json:"draws"`
}
