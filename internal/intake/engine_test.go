package intake

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/intakebot/core/telegram/state"
	"github.com/m3rciful/intakebot/internal/ledger"
	"github.com/m3rciful/intakebot/internal/order"
)

const (
	userChat  int64 = 200
	adminChat int64 = -1001
)

type harness struct {
	t      *testing.T
	engine *Engine
	ledger ledger.Ledger
	out    *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l, err := ledger.NewFileLedger(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)
	return &harness{
		t:      t,
		engine: NewEngine(state.NewMemoryStore[int64, order.Draft](), l, adminChat),
		ledger: l,
		out:    newRecorder(),
	}
}

func (h *harness) do(chatID int64, events ...Event) {
	h.t.Helper()
	for _, ev := range events {
		require.NoError(h.t, h.engine.Handle(context.Background(), h.out, chatID, ev))
	}
}

func (h *harness) draft(chatID int64) order.Draft {
	h.t.Helper()
	d, ok := h.engine.Draft(chatID)
	require.True(h.t, ok, "draft expected")
	return d
}

func press(kind PressKind) Press {
	return Press{CallbackID: "cb-" + kind.String(), Kind: kind}
}

func choose(a order.Action) Press {
	return Press{CallbackID: "cb-" + string(a), Kind: PressAction, Action: a, Data: string(a)}
}

func done(a order.Action, id int64) Press {
	return Press{CallbackID: fmt.Sprintf("cb-done-%d", id), Kind: PressDone, Action: a, OrderID: id, Data: DoneData(a, id)}
}

func TestStartSendsDomainPrompt(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{MessageID: 11})

	d := h.draft(userChat)
	assert.Equal(t, order.StageEnteringDomains, d.Stage)
	assert.Equal(t, 11, d.OriginMessageID)

	msg := h.out.last()
	assert.Equal(t, userChat, msg.ChatID)
	assert.Equal(t, textDomainPrompt, msg.Text)
	assert.Equal(t, []string{DataCancel}, buttonData(msg.Options.Keyboard))
}

func TestStartOverwritesExistingDraft(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{MessageID: 1}, Text{Text: "a.com"})
	require.Equal(t, order.StageEnteringKeywords, h.draft(userChat).Stage)

	h.do(userChat, Start{MessageID: 2})
	d := h.draft(userChat)
	assert.Equal(t, order.StageEnteringDomains, d.Stage)
	assert.Empty(t, d.Domains)
	assert.Equal(t, 2, d.OriginMessageID)
}

func TestStartCapturesUsername(t *testing.T) {
	h := newHarness(t)
	h.out.usernames[userChat] = "alice"
	h.do(userChat, Start{MessageID: 1})
	assert.Equal(t, "alice", h.draft(userChat).Username)
}

func TestGetIDRepliesWithChatID(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, GetID{})

	assert.Equal(t, "200", h.out.last().Text)
	_, ok := h.engine.Draft(userChat)
	assert.False(t, ok)
}

func TestDomainsKeepBlankLines(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "example1.com\n\nexample2.com"})

	d := h.draft(userChat)
	assert.Equal(t, []string{"example1.com", "", "example2.com"}, d.Domains)
	assert.Equal(t, order.StageEnteringKeywords, d.Stage)

	msg := h.out.last()
	assert.Contains(t, msg.Text, "- Файл .xlsx")
	assert.Equal(t, []string{DataSkip, DataBackToDomains, DataCancel}, buttonData(msg.Options.Keyboard))
}

func TestSplitDomainsTrims(t *testing.T) {
	assert.Equal(t, []string{"a.com", "b.com"}, SplitDomains("  a.com \r\nb.com"))
	assert.Equal(t, []string{""}, SplitDomains(""))
}

func TestDomainsRequireText(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Photo{FileID: "p1"})

	assert.Equal(t, order.StageEnteringDomains, h.draft(userChat).Stage)
	assert.Equal(t, textDomainsAsText, h.out.last().Text)
}

func TestKeywordsRejectUnsupportedDocument(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, Document{FileID: "f1", FileName: "keys.pdf"})

	assert.Equal(t, order.StageEnteringKeywords, h.draft(userChat).Stage)
	msg := h.out.last()
	assert.Contains(t, msg.Text, "Некорректный ввод")
	assert.Equal(t, []string{DataBackToDomains, DataCancel}, buttonData(msg.Options.Keyboard))
}

func TestKeywordExtensionsAreCaseSensitive(t *testing.T) {
	_, ok := ParseKeywords(Document{FileID: "f", FileName: "KEYS.TXT"})
	assert.False(t, ok)

	kw, ok := ParseKeywords(Document{FileID: "f", FileName: "keys.xls"})
	require.True(t, ok)
	assert.Equal(t, order.File{FileID: "f"}, kw)
}

func TestKeywordsAccepted(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want order.Keywords
	}{
		{"link", Text{Text: "https://tpv.sr/abc/"}, order.Link{URL: "https://tpv.sr/abc/"}},
		{"file", Document{FileID: "f1", FileName: "k.txt"}, order.File{FileID: "f1"}},
		{"photo", Photo{FileID: "p1", Caption: "top"}, order.Photo{FileID: "p1", Caption: "top"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.do(userChat, Start{}, Text{Text: "a.com\nb.com"}, tc.ev)

			d := h.draft(userChat)
			assert.Equal(t, order.StageChoosingAction, d.Stage)
			assert.Equal(t, tc.want, d.Keywords)

			msg := h.out.last()
			assert.Equal(t, textActionPrompt, msg.Text)
			assert.Equal(t, "Запустить тесты", msg.Options.Keyboard[0][0].Label)
		})
	}
}

func TestKeywordsRejectPlainText(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, Text{Text: "http://tpv.sr/abc"})
	assert.Equal(t, order.StageEnteringKeywords, h.draft(userChat).Stage)
}

func TestSkipShowsSingularMenu(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip))

	d := h.draft(userChat)
	assert.Equal(t, order.StageChoosingAction, d.Stage)
	assert.Equal(t, order.Skipped{}, d.Keywords)

	kb := h.out.last().Options.Keyboard
	assert.Equal(t, "Запустить тест", kb[0][0].Label)
	assert.Equal(t, []string{"test", "work", "edit", "stop", DataBackToKeywords, DataCancel}, buttonData(kb))
}

func TestBackTransitions(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip))

	h.do(userChat, press(PressBackToKeywords))
	assert.Equal(t, order.StageEnteringKeywords, h.draft(userChat).Stage)
	assert.Contains(t, h.out.last().Text, "Введите ключевые слова:")

	h.do(userChat, press(PressBackToDomains))
	assert.Equal(t, order.StageEnteringDomains, h.draft(userChat).Stage)
	assert.Equal(t, textDomainPrompt, h.out.last().Text)
}

func TestPressOutOfStageIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{})
	h.out.reset()

	h.do(userChat, press(PressSkip), choose(order.ActionTest), press(PressUnknown))

	assert.Equal(t, order.StageEnteringDomains, h.draft(userChat).Stage)
	assert.Empty(t, h.out.sent)
	assert.Len(t, h.out.acks, 3)
}

func TestMessagesWithoutDraftAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Text{Text: "a.com"}, press(PressSkip))

	assert.Empty(t, h.out.sent)
	assert.Equal(t, []ackCall{{CallbackID: "cb-skip"}}, h.out.acks)
}

func TestTextWhileChoosingActionIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip))
	h.out.reset()

	h.do(userChat, Text{Text: "hello"})
	assert.Empty(t, h.out.sent)
	assert.Equal(t, order.StageChoosingAction, h.draft(userChat).Stage)
}

func TestCancelFromAnyStage(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip), press(PressCancel))

	_, ok := h.engine.Draft(userChat)
	assert.False(t, ok)
	assert.Equal(t, textCancelled, h.out.last().Text)
	assert.Contains(t, h.out.acks, ackCall{CallbackID: "cb-cancel"})
}

func TestFinalizeSkippedKeywords(t *testing.T) {
	h := newHarness(t)
	h.out.usernames[userChat] = "bob"
	h.do(userChat, Start{MessageID: 5}, Text{Text: "a.com"}, press(PressSkip), choose(order.ActionTest))

	_, ok := h.engine.Draft(userChat)
	assert.False(t, ok)

	admin := h.out.sentTo(adminChat)
	require.Len(t, admin, 2)
	assert.Equal(t, "Заказ от @bob", admin[0].Text)
	assert.Empty(t, h.out.forwards)

	card := admin[1]
	assert.Equal(t, "text", card.Kind)
	assert.True(t, card.Options.HTML)
	assert.Equal(t, "<b>Домен на тест</b>\n\nДомены:\na.com", card.Text)
	require.Len(t, card.Options.Keyboard, 1)
	assert.Equal(t, Button{Label: "Тест запущен", Data: "test_done1"}, card.Options.Keyboard[0][0])

	o, ok, err := h.ledger.Get(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.Order{
		ID:      1,
		ChatID:  userChat,
		Domains: []string{"a.com"},
		Answer:  "Тест запущен",
		AdminNotification: order.AdminNotification{
			ChatID:      adminChat,
			MessageID:   105,
			ButtonLabel: "Тест запущен",
		},
	}, o)

	user := h.out.sentTo(userChat)
	require.GreaterOrEqual(t, len(user), 2)
	assert.Equal(t, textReceived, user[len(user)-2].Text)
	assert.Equal(t, textNewOrderHint, user[len(user)-1].Text)
}

func TestFinalizeForwardsStartWithoutUsername(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{MessageID: 9}, Text{Text: "a.com\nb.com"}, press(PressSkip), choose(order.ActionStop))

	require.Equal(t, []MessageRef{{ChatID: userChat, MessageID: 9}}, h.out.forwards)
	assert.Equal(t, []int64{adminChat}, h.out.forwardedTo)

	admin := h.out.sentTo(adminChat)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0].Text, "<b>Домены на стоп</b>")
	assert.Equal(t, Button{Label: "Проекты отключены", Data: "stop_done1"}, admin[0].Options.Keyboard[0][0])
}

func TestFinalizeAttachments(t *testing.T) {
	t.Run("document", func(t *testing.T) {
		h := newHarness(t)
		h.do(userChat, Start{}, Text{Text: "a.com"}, Document{FileID: "doc-1", FileName: "k.xlsx"}, choose(order.ActionWork))

		card := h.out.sentTo(adminChat)[0]
		assert.Equal(t, "document", card.Kind)
		assert.Equal(t, "doc-1", card.FileID)
		assert.Equal(t, "<b>Домен в работу</b>\n\nДомены:\na.com\n\nКлючевые слова: в файле", card.Text)
	})
	t.Run("photo", func(t *testing.T) {
		h := newHarness(t)
		h.do(userChat, Start{}, Text{Text: "a.com"}, Photo{FileID: "ph-1", Caption: "<top>"}, choose(order.ActionEdit))

		card := h.out.sentTo(adminChat)[0]
		assert.Equal(t, "photo", card.Kind)
		assert.Equal(t, "ph-1", card.FileID)
		assert.Equal(t, "<b>Домен на правки</b>\n\nДомены:\na.com\n\nКлючевые слова: на фото + &lt;top&gt;", card.Text)
		assert.Equal(t, "Правки произведены", card.Options.Keyboard[0][0].Label)
	})
	t.Run("link", func(t *testing.T) {
		h := newHarness(t)
		h.do(userChat, Start{}, Text{Text: "a.com"}, Text{Text: "https://tpv.sr/x/"}, choose(order.ActionTest))

		card := h.out.sentTo(adminChat)[0]
		assert.Equal(t, "text", card.Kind)
		assert.Contains(t, card.Text, "\n\nКлючевые слова: https://tpv.sr/x/")
	})
}

func TestFinalizeKeepsDraftWhenAdminUnreachable(t *testing.T) {
	h := newHarness(t)
	h.out.failOrderTo = adminChat
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip))

	err := h.engine.Handle(context.Background(), h.out, userChat, choose(order.ActionTest))
	require.ErrorIs(t, err, errSendFailed)

	assert.Equal(t, order.StageChoosingAction, h.draft(userChat).Stage)
	orders, err := h.ledger.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCompletionUnknownOrder(t *testing.T) {
	h := newHarness(t)
	h.do(adminChat, done(order.ActionTest, 7))

	assert.Empty(t, h.out.sent)
	assert.Empty(t, h.out.edits)
	assert.Equal(t, []ackCall{{CallbackID: "cb-done-7"}}, h.out.acks)
}

func TestCompletionRepeatedPress(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com\n\nb.com"}, press(PressSkip), choose(order.ActionTest))
	h.out.reset()

	h.do(adminChat, done(order.ActionTest, 1), done(order.ActionTest, 1))

	user := h.out.sentTo(userChat)
	require.Len(t, user, 4)
	want := "<b>✅ Тесты запущены</b>\n\na.com\n\nb.com"
	assert.Equal(t, want, user[0].Text)
	assert.Equal(t, textNewOrderHint, user[1].Text)
	assert.Equal(t, want, user[2].Text)

	o, _, err := h.ledger.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, o.AdminNotification.Touched)

	require.Len(t, h.out.edits, 2)
	edit := h.out.edits[0]
	assert.Equal(t, MessageRef{ChatID: adminChat, MessageID: o.AdminNotification.MessageID}, edit.Msg)
	assert.Equal(t, Keyboard{{{Label: "✅ Тесты запущены", Data: DataProcessed}}}, edit.KB)
	assert.Equal(t, ackCall{CallbackID: "cb-done-1", Text: textCompletedAck}, h.out.acks[1])
}

func TestCompletionStopOrderPrefix(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip), choose(order.ActionStop))
	h.do(adminChat, done(order.ActionStop, 1))

	require.Len(t, h.out.edits, 1)
	assert.Equal(t, "🛑 Проект отключен", h.out.edits[0].KB[0][0].Label)
}

func TestCompletionIgnoresAdminDraft(t *testing.T) {
	h := newHarness(t)
	h.do(userChat, Start{}, Text{Text: "a.com"}, press(PressSkip), choose(order.ActionWork))
	h.do(adminChat, Start{}, Text{Text: "z.com"})

	h.do(adminChat, done(order.ActionWork, 1))
	assert.Equal(t, order.StageEnteringKeywords, h.draft(adminChat).Stage)
}

func TestConcurrentFinalizeAssignsUniqueIDs(t *testing.T) {
	h := newHarness(t)
	const chats = 12

	var wg sync.WaitGroup
	for i := 0; i < chats; i++ {
		chatID := int64(1000 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			for _, ev := range []Event{Start{MessageID: 1}, Text{Text: "a.com"}, press(PressSkip), choose(order.ActionTest)} {
				assert.NoError(t, h.engine.Handle(ctx, h.out, chatID, ev))
			}
		}()
	}
	wg.Wait()

	orders, err := h.ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, chats)

	ids := make([]int64, 0, chats)
	seen := map[int64]bool{}
	for _, o := range orders {
		ids = append(ids, o.ID)
		assert.False(t, seen[o.ChatID], "one order per chat")
		seen[o.ChatID] = true
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}
