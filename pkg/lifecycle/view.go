package lifecycle

// Action is something an admin may do to a complaint's feedback.
type Action string

const (
	CreateFeedback Action = "create_feedback"
	UpdateFeedback Action = "update_feedback"
)

// ActionsFor lists the feedback actions valid in the given status.
func ActionsFor(s Status) []Action {
	switch s {
	case Proses:
		return []Action{CreateFeedback}
	case Tanggapi:
		return []Action{UpdateFeedback}
	default:
		return nil
	}
}

func Allows(s Status, a Action) bool {
	for _, allowed := range ActionsFor(s) {
		if allowed == a {
			return true
		}
	}
	return false
}

// Mode tells a renderer how to present the feedback area.
type Mode string

const (
	ModeCompose  Mode = "compose"   // empty editable form
	ModeEdit     Mode = "edit"      // editable form pre-filled from the first feedback
	ModeReadOnly Mode = "read_only" // feedback shown, no form
	ModeCanceled Mode = "canceled"  // cancellation reason shown, no form
)

// FeedbackRef is the minimal feedback data a view needs.
type FeedbackRef struct {
	ID      uint
	Content string
}

// View describes what the moderation screen shows for one complaint.
type View struct {
	Status     Status
	Mode       Mode
	ShowForm   bool
	Action     Action // empty when ShowForm is false
	FeedbackID uint   // target of UpdateFeedback
	Text       string // prefilled feedback, read-only feedback or cancel reason
}

// ViewFor derives the moderation view. feedbacks must be ordered by id
// ascending; only the first entry is used.
func ViewFor(s Status, feedbacks []FeedbackRef, cancelReason string) View {
	v := View{Status: s}
	var first *FeedbackRef
	if len(feedbacks) > 0 {
		first = &feedbacks[0]
	}

	switch s {
	case Proses:
		v.Mode = ModeCompose
		v.ShowForm = true
		v.Action = CreateFeedback
	case Tanggapi:
		v.Mode = ModeEdit
		v.ShowForm = first != nil
		if first != nil {
			v.Action = UpdateFeedback
			v.FeedbackID = first.ID
			v.Text = first.Content
		}
	case Selesai:
		v.Mode = ModeReadOnly
		if first != nil {
			v.Text = first.Content
		}
	case Batal:
		v.Mode = ModeCanceled
		v.Text = cancelReason
		if v.Text == "" {
			v.Text = CancelPlaceholder
		}
	}
	return v
}
