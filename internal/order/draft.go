package order

// Stage is the step of the intake conversation a draft is waiting on.
type Stage int

const (
	StageEnteringDomains Stage = iota
	StageEnteringKeywords
	StageChoosingAction
)

func (s Stage) String() string {
	switch s {
	case StageEnteringDomains:
		return "entering_domains"
	case StageEnteringKeywords:
		return "entering_keywords"
	case StageChoosingAction:
		return "choosing_action"
	}
	return "unknown"
}

// Keywords is the keyword payload attached to a draft: Skipped, Link, File or Photo.
type Keywords interface {
	keywords()
	// Kind names the variant for logs.
	Kind() string
}

// Skipped means the requester chose not to send keywords.
type Skipped struct{}

// Link is a keyword report URL.
type Link struct{ URL string }

// File is an uploaded keyword document.
type File struct{ FileID string }

// Photo is a keyword screenshot with an optional caption.
type Photo struct {
	FileID  string
	Caption string
}

func (Skipped) keywords() {}
func (Link) keywords()    {}
func (File) keywords()    {}
func (Photo) keywords()   {}

func (Skipped) Kind() string { return "skipped" }
func (Link) Kind() string    { return "link" }
func (File) Kind() string    { return "file" }
func (Photo) Kind() string   { return "photo" }

// Draft is the in-progress order of one chat.
type Draft struct {
	Stage    Stage
	Domains  []string
	Keywords Keywords
	Action   Action

	OriginChatID    int64
	OriginMessageID int
	// Username is empty when the chat has no public username.
	Username string
}

// NewDraft starts a conversation from the /start message.
func NewDraft(chatID int64, messageID int) Draft {
	return Draft{
		Stage:           StageEnteringDomains,
		OriginChatID:    chatID,
		OriginMessageID: messageID,
	}
}

// Plural reports whether the draft's texts use plural forms.
func (d Draft) Plural() bool { return len(d.Domains) > 1 }
