package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/intakebot/internal/intake"
	"github.com/m3rciful/intakebot/internal/order"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data   string
		kind   intake.PressKind
		action order.Action
		id     int64
	}{
		{"cancel", intake.PressCancel, "", 0},
		{"skip", intake.PressSkip, "", 0},
		{"back_to_domain", intake.PressBackToDomains, "", 0},
		{"back_to_keywords", intake.PressBackToKeywords, "", 0},
		{"stop", intake.PressAction, order.ActionStop, 0},
		{"test_done12", intake.PressDone, order.ActionTest, 12},
		{"edit_done1", intake.PressDone, order.ActionEdit, 1},
		{"processedOrder", intake.PressUnknown, "", 0},
		{"test_done", intake.PressUnknown, "", 0},
		{"pay_done5", intake.PressUnknown, "", 0},
		{"test_done99999999999999999999", intake.PressUnknown, "", 0},
		{"", intake.PressUnknown, "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			p := ParseCallback("cb", tc.data)
			assert.Equal(t, tc.kind, p.Kind)
			assert.Equal(t, tc.action, p.Action)
			assert.Equal(t, tc.id, p.OrderID)
			assert.Equal(t, "cb", p.CallbackID)
			assert.Equal(t, tc.data, p.Data)
		})
	}
}

func TestCallbackKey(t *testing.T) {
	assert.Equal(t, CallbackDone, CallbackKey(&tele.Callback{Data: "work_done3"}))
	assert.Equal(t, CallbackScene, CallbackKey(&tele.Callback{Data: "processedOrder"}))
	assert.Equal(t, CallbackScene, CallbackKey(nil))
}
