package intake

import (
	"strconv"

	"github.com/m3rciful/intakebot/internal/order"
)

// Event is one inbound update of a chat.
type Event interface{ event() }

// Start is the /start command. MessageID is kept so the admin can be shown
// the original message when the requester has no username.
type Start struct{ MessageID int }

// GetID is the /getid command.
type GetID struct{}

// Text is a plain text message.
type Text struct{ Text string }

// Document is an uploaded file.
type Document struct {
	FileID   string
	FileName string
}

// Photo is a photo message; FileID refers to the largest size.
type Photo struct {
	FileID  string
	Caption string
}

// PressKind classifies inline button data.
type PressKind int

const (
	PressUnknown PressKind = iota
	PressCancel
	PressSkip
	PressBackToDomains
	PressBackToKeywords
	PressAction
	PressDone
)

func (k PressKind) String() string {
	switch k {
	case PressCancel:
		return "cancel"
	case PressSkip:
		return "skip"
	case PressBackToDomains:
		return "back_to_domains"
	case PressBackToKeywords:
		return "back_to_keywords"
	case PressAction:
		return "action"
	case PressDone:
		return "done"
	}
	return "unknown"
}

// Press is an inline button press. Action is set for PressAction and
// PressDone; OrderID only for PressDone.
type Press struct {
	CallbackID string
	Kind       PressKind
	Action     order.Action
	OrderID    int64
	// Data is the raw callback data, kept for logs.
	Data string
}

func (Start) event()    {}
func (GetID) event()    {}
func (Text) event()     {}
func (Document) event() {}
func (Photo) event()    {}
func (Press) event()    {}

// Callback data carried by the buttons the engine sends.
const (
	DataCancel         = "cancel"
	DataSkip           = "skip"
	DataBackToDomains  = "back_to_domain"
	DataBackToKeywords = "back_to_keywords"

	// DataProcessed marks an admin button that was already handled.
	DataProcessed = "processedOrder"

	doneInfix = "_done"
)

// DoneData is the callback data of the admin button for order id.
func DoneData(a order.Action, id int64) string {
	return string(a) + doneInfix + strconv.FormatInt(id, 10)
}
