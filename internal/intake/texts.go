package intake

import (
	"strings"

	"github.com/m3rciful/intakebot/core/telegram/format"
	"github.com/m3rciful/intakebot/internal/order"
)

// LinkPrefix is the only keyword link format accepted.
const LinkPrefix = "https://tpv.sr/"

// KeywordFileExtensions lists accepted keyword documents. Matching is case-sensitive.
var KeywordFileExtensions = []string{"txt", "xlsx", "xls"}

const (
	textDomainPrompt  = "Введите домен\nЕсли их несколько, то каждый с новой строки. Пример:\nexample1.com\nexample2.com"
	textDomainsAsText = "Пожалуйста, введите домены текстом."
	textActionPrompt  = "Выберите действие:"
	textCancelled     = "Заказ отменен, для новой заявки нажмите /start"
	textReceived      = "Ваш заказ передан в тех отдел. Ожидайте"
	textNewOrderHint  = "<b>Для нового заказа нажмите /start</b>"
	textCompletedAck  = "Заказ успешно обработан"

	// stopMarker is how a stop order's button label is recognized.
	stopMarker = "отключен"
)

var (
	btnCancel         = Button{Label: "Отмена", Data: DataCancel}
	btnSkip           = Button{Label: "Пропустить", Data: DataSkip}
	btnBackToDomains  = Button{Label: "Назад", Data: DataBackToDomains}
	btnBackToKeywords = Button{Label: "Назад", Data: DataBackToKeywords}
)

func domainPrompt() (string, Keyboard) {
	return textDomainPrompt, Keyboard{{btnCancel}}
}

func keywordPrompt() (string, Keyboard) {
	var b strings.Builder
	b.WriteString("Введите ключевые слова:")
	writeFormats(&b)
	b.WriteString("\n- Фото (можно с текстом)\n- Ссылка на Топвизор (Пример: " + LinkPrefix + "uhHFV4-9C/)")
	return b.String(), Keyboard{{btnSkip}, {btnBackToDomains}, {btnCancel}}
}

// keywordReject is sent for unusable keyword input. It has no Skip button.
func keywordReject() (string, Keyboard) {
	var b strings.Builder
	b.WriteString("Некорректный ввод\nОтправьте ключевые слова:")
	writeFormats(&b)
	b.WriteString("\n- Фотография\n- Ссылка на Топвизор (Пример: " + LinkPrefix + "uhHFV4-9C/)")
	return b.String(), Keyboard{{btnBackToDomains}, {btnCancel}}
}

func writeFormats(b *strings.Builder) {
	for _, ext := range KeywordFileExtensions {
		b.WriteString("\n- Файл .")
		b.WriteString(ext)
	}
}

func actionMenu(plural bool) (string, Keyboard) {
	return textActionPrompt, Keyboard{
		{{Label: "Запустить тест" + suffix(plural, "ы"), Data: string(order.ActionTest)}},
		{{Label: "Запустить в работу", Data: string(order.ActionWork)}},
		{{Label: "Произвести правки", Data: string(order.ActionEdit)}},
		{{Label: "Поставить на стоп", Data: string(order.ActionStop)}},
		{btnBackToKeywords},
		{btnCancel},
	}
}

// StatusLabel is the order answer and admin button label for an action.
func StatusLabel(a order.Action, plural bool) string {
	s := suffix(plural, "ы")
	switch a {
	case order.ActionTest:
		return "Тест" + s + " запущен" + s
	case order.ActionWork:
		return "Проект" + s + " запущен" + s
	case order.ActionEdit:
		return "Правки произведены"
	case order.ActionStop:
		return "Проект" + s + " отключен" + s
	}
	return ""
}

func adminHeading(a order.Action, plural bool) string {
	head := "Домен" + suffix(plural, "ы")
	switch a {
	case order.ActionTest:
		return head + " на тест"
	case order.ActionWork:
		return head + " в работу"
	case order.ActionEdit:
		return head + " на правки"
	case order.ActionStop:
		return head + " на стоп"
	}
	return head
}

// adminText renders the order card sent to the admin chat.
func adminText(d order.Draft) string {
	var b strings.Builder
	b.WriteString(format.Bold(adminHeading(d.Action, d.Plural())))
	b.WriteString("\n\nДомены:\n")
	b.WriteString(format.EscapeLines(d.Domains))

	switch kw := d.Keywords.(type) {
	case order.File:
		b.WriteString("\n\nКлючевые слова: в файле")
	case order.Photo:
		b.WriteString("\n\nКлючевые слова: на фото + ")
		b.WriteString(format.EscapeHTML(kw.Caption))
	case order.Link:
		b.WriteString("\n\nКлючевые слова: ")
		b.WriteString(format.EscapeHTML(kw.URL))
	}
	return b.String()
}

func completionText(o order.Order) string {
	return format.Bold("✅ "+format.EscapeHTML(o.Answer)) + "\n\n" + format.EscapeLines(o.Domains)
}

// processedLabel is the admin button label after the order was handled.
func processedLabel(label string) string {
	prefix := "✅"
	if strings.Contains(label, stopMarker) {
		prefix = "🛑"
	}
	return prefix + " " + label
}

func suffix(plural bool, s string) string {
	if plural {
		return s
	}
	return ""
}
