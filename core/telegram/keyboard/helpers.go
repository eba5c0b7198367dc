package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is an inline button whose Data is sent back verbatim.
type InlineBtn struct {
	Text string
	Data string
}

// InlineRows builds an inline keyboard from rows of buttons. Empty rows are
// dropped; nil is returned when no button remains.
func InlineRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline = append(inline, r)
	}
	if len(inline) == 0 {
		return nil
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
