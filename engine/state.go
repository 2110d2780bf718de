package engine

// State is the progression state of a Session.
type State int

const (
	Idle State = iota
	Displaying
	AwaitingChoice
	Navigating
	ChapterComplete
	StoryComplete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Displaying:
		return "displaying"
	case AwaitingChoice:
		return "awaiting_choice"
	case Navigating:
		return "navigating"
	case ChapterComplete:
		return "chapter_complete"
	case StoryComplete:
		return "story_complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
