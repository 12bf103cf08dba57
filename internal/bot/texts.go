package bot

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/staffdesk/hrbot/internal/catalog"
)

// tx holds the localized UI strings keyed by message id then locale.
var tx = map[string]map[catalog.Locale]string{
	"start_banner": {
		catalog.LocaleES: "✨ <b>HR Assistant</b>\nTe ayudo con vacaciones, bajas médicas, nómina, formularios y contactos.\nElige abajo o escribe tu consulta.",
		catalog.LocaleUK: "✨ <b>HR Assistant</b>\nДопоможу з відпустками, лікарняними, зарплатою, формами та контактами.\nОбери нижче або напишіть запит.",
	},
	"menu_main": {
		catalog.LocaleES: "Menú principal:",
		catalog.LocaleUK: "Головне меню:",
	},
	"menu_quick_title": {
		catalog.LocaleES: "⚡ <b>Tópicos rápidos</b>\nElige una opción:",
		catalog.LocaleUK: "⚡ <b>Швидкі теми</b>\nОберіть пункт:",
	},
	"menu_forms_title": {
		catalog.LocaleES: "📝 <b>Formularios y documentos</b>\nElige un formulario:",
		catalog.LocaleUK: "📝 <b>Форми та документи</b>\nОберіть форму:",
	},
	"ask_login": {
		catalog.LocaleES: "🔐 Introduce tu <b>login corporativo</b>:",
		catalog.LocaleUK: "🔐 Введіть свій <b>корпоративний логін</b>:",
	},
	"login_not_found": {
		catalog.LocaleES: "❌ No encontré este login. Intenta de nuevo o contacta RR. HH.",
		catalog.LocaleUK: "❌ Не знайдено такий логін. Спробуйте ще раз або зверніться до HR.",
	},
	"profile_not_found": {
		catalog.LocaleES: "❌ Perfil no encontrado. Contacta RR. HH.",
		catalog.LocaleUK: "❌ Профіль не знайдено. Зверніться до HR.",
	},
	"ask_phone": {
		catalog.LocaleES: "📞 Indica tu número (solo dígitos).",
		catalog.LocaleUK: "📞 Вкажіть номер телефону (тільки цифри).",
	},
	"phone_mismatch": {
		catalog.LocaleES: "❌ The number doesn't match. Try again.",
		catalog.LocaleUK: "❌ Номер не співпадає. Спробуйте ще раз.",
	},
	"ask_email": {
		catalog.LocaleES: "✉️ Now enter your work email to receive a code.",
		catalog.LocaleUK: "✉️ Тепер вкажіть робочу пошту, куди надішлемо код.",
	},
	"invalid_email": {
		catalog.LocaleES: "✉️ Please enter a valid email.",
		catalog.LocaleUK: "✉️ Введіть коректну пошту.",
	},
	"code_sent": {
		catalog.LocaleES: "✅ Code sent to your email. Enter it here.",
		catalog.LocaleUK: "✅ Код надіслано на пошту. Введіть його тут.",
	},
	"send_failed": {
		catalog.LocaleES: "❌ Failed to send the code. Try again.",
		catalog.LocaleUK: "❌ Не вдалося надіслати код. Спробуйте ще раз.",
	},
	"verified": {
		catalog.LocaleES: "✅ Verification complete. Access granted.",
		catalog.LocaleUK: "✅ Верифікацію пройдено. Доступ відкрито.",
	},
	"code_expired": {
		catalog.LocaleES: "⌛ Code expired. Send /resend to get a new one.",
		catalog.LocaleUK: "⌛ Код прострочено. Надішліть /resend щоб отримати новий.",
	},
	"code_mismatch": {
		catalog.LocaleES: "❌ Incorrect code. Try again.",
		catalog.LocaleUK: "❌ Невірний код. Спробуйте ще.",
	},
	"too_many_attempts": {
		catalog.LocaleES: "🚫 Too many attempts. Start again: /verify",
		catalog.LocaleUK: "🚫 Забагато спроб. Почніть знову: /verify",
	},
	"resent": {
		catalog.LocaleES: "✅ New code sent. Check your email.",
		catalog.LocaleUK: "✅ Новий код надіслано. Перевірте пошту.",
	},
	"resend_failed": {
		catalog.LocaleES: "❌ Failed to resend code.",
		catalog.LocaleUK: "❌ Не вдалося надіслати новий код.",
	},
	"resend_limit": {
		catalog.LocaleES: "Resend limit reached.",
		catalog.LocaleUK: "Ліміт повторів вичерпано.",
	},
	"no_active_code": {
		catalog.LocaleES: "No active code.",
		catalog.LocaleUK: "Немає активного коду.",
	},
	"need_verification": {
		catalog.LocaleES: "🔒 Primero completa la verificación (botón en el menú).",
		catalog.LocaleUK: "🔒 Щоб отримати відповіді, пройдіть верифікацію (кнопка в меню).",
	},
	"cancelled": {
		catalog.LocaleES: "🚫 Formulario cancelado.",
		catalog.LocaleUK: "🚫 Заповнення скасовано.",
	},
	"saved": {
		catalog.LocaleES: "✅ Datos guardados. ¡Gracias!",
		catalog.LocaleUK: "✅ Дані збережено. Дякуємо!",
	},
	"no_permission": {
		catalog.LocaleES: "⛔ Sin permisos (solo para administradores).",
		catalog.LocaleUK: "⛔ Недостатньо прав (лише для адміністраторів).",
	},
	"reloaded": {
		catalog.LocaleES: "✅ Datos recargados.",
		catalog.LocaleUK: "✅ Дані перезавантажено.",
	},
	"reload_failed": {
		catalog.LocaleES: "❌ Error al cargar: ",
		catalog.LocaleUK: "❌ Помилка завантаження: ",
	},
	"back": {
		catalog.LocaleES: "⬅️ Atrás",
		catalog.LocaleUK: "⬅️ Назад",
	},
	"help": {
		catalog.LocaleES: "Comandos:\n/start — menú\n/help — ayuda\n/cancel — cancelar formulario\n/myid — tu Telegram ID\n/whoami — ver tu perfil\n/logout — desvincular login\n/verify — verificación\n/resend — reenviar código\n/stats — estadísticas (admin)\n/users [offset] [limit] — lista (admin)\n/export_users — exportar CSV (admin)\n/setprofile <login> <json> — guardar perfil (admin)\n/dump_profile <login> — ver perfil crudo (admin)\n/refresh — recargar la hoja (admin)",
		catalog.LocaleUK: "Команди:\n/start — меню\n/help — допомога\n/cancel — скасувати форму\n/myid — ваш Telegram ID\n/whoami — показати профіль\n/logout — відʼєднати логін\n/verify — верифікація\n/resend — надіслати код знову\n/stats — статистика (адмін)\n/users [offset] [limit] — список (адмін)\n/export_users — експорт CSV (адмін)\n/setprofile <login> <json> — зберегти профіль (адмін)\n/dump_profile <login> — подивитись сирий профіль (адмін)\n/refresh — перезавантажити таблицю (адмін)",
	},
}

// T returns the localized string for id, falling back to Spanish.
func T(id string, loc catalog.Locale) string {
	if m, ok := tx[id]; ok {
		if s, ok := m[loc]; ok {
			return s
		}
		return m[catalog.LocaleES]
	}
	return id
}

var boldMarkup = regexp.MustCompile(`\*\*(.+?)\*\*`)

// toHTML escapes text for Telegram HTML mode and converts **bold** runs.
func toHTML(text string) string {
	esc := html.EscapeString(text)
	return boldMarkup.ReplaceAllString(esc, "<b>$1</b>")
}

// profileCard renders the employee profile for the chat.
func profileCard(loc catalog.Locale, p catalog.Profile) string {
	var lines []string
	var title, note string
	if loc == catalog.LocaleUK {
		title = "👤 <b>Ваш профіль</b>"
		note = "Якщо дані некоректні — повідомте HR."
		lines = []string{
			"Імʼя: " + dash(p.FullName),
			"Посада: " + dash(p.Position),
			"Команда: " + dash(p.Team),
			"Email: " + dash(p.Email),
			"Тел.: " + dash(p.Phone),
			"Менеджер: " + dash(p.Manager),
			fmt.Sprintf("Залишок відпустки: %d днів", p.VacationLeft),
			fmt.Sprintf("Зарплата: $%d USD/міс", p.SalaryUSD),
		}
	} else {
		title = "👤 <b>Tu perfil</b>"
		note = "Si ves datos incorrectos, avisa a RR. HH."
		lines = []string{
			"Nombre: " + dash(p.FullName),
			"Puesto: " + dash(p.Position),
			"Equipo: " + dash(p.Team),
			"Email: " + dash(p.Email),
			"Tel.: " + dash(p.Phone),
			"Manager: " + dash(p.Manager),
			fmt.Sprintf("Vacaciones restantes: %d días", p.VacationLeft),
			fmt.Sprintf("Salario: $%d USD/mes", p.SalaryUSD),
		}
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString("╭─╴<b>" + html.EscapeString(p.Login) + "</b>\n│ ")
	escaped := make([]string, 0, len(lines))
	for _, line := range lines {
		escaped = append(escaped, "• "+html.EscapeString(line))
	}
	b.WriteString(strings.Join(escaped, "\n"))
	b.WriteString("\n╰──────────────────\n\n" + note)
	return b.String()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// formInfoText renders an informational form (no in-chat fill).
func formInfoText(loc catalog.Locale, f catalog.Form) string {
	var title, hint, urlTitle string
	if loc == catalog.LocaleUK {
		title = "ℹ️ <b>%s</b>\nНеобхідні поля:"
		hint = "Щоб почати заповнення — натисніть «✍️ Заповнити в боті» та відповідайте на запити полів. /cancel — скасувати."
		urlTitle = "🔗 <b>Заповнити онлайн:</b>"
	} else {
		title = "ℹ️ <b>%s</b>\nCampos necesarios:"
		hint = "Para empezar, pulsa «✍️ Rellenar en el bot» y responde a los campos. /cancel — cancelar."
		urlTitle = "🔗 <b>Rellenar online:</b>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, title, html.EscapeString(f.Name))
	for _, field := range f.Fields {
		b.WriteString("\n• " + html.EscapeString(field))
	}
	b.WriteString("\n\n" + hint)
	if f.URL != "" {
		b.WriteString("\n\n" + urlTitle + "\n" + html.EscapeString(f.URL))
	}
	return b.String()
}

// formChoiceText renders the fill-method chooser for a form.
func formChoiceText(loc catalog.Locale, f catalog.Form) string {
	var desc, opt1, opt2, fieldsTitle string
	if loc == catalog.LocaleUK {
		desc = "Оберіть спосіб заповнення форми:\n\n"
		opt1 = "• <b>В боті</b> — крок за кроком тут у Telegram\n"
		opt2 = "• <b>Google Form</b> — відкрити форму в браузері\n"
		fieldsTitle = "<b>Поля:</b>"
	} else {
		desc = "Elige cómo quieres rellenar este formulario:\n\n"
		opt1 = "• <b>En el bot</b> — paso a paso aquí en Telegram\n"
		opt2 = "• <b>Google Form</b> — abre el formulario en tu navegador\n"
		fieldsTitle = "<b>Campos:</b>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📝 <b>%s</b>\n\n%s%s", html.EscapeString(f.Name), desc, opt1)
	if f.URL != "" {
		b.WriteString(opt2)
	}
	if len(f.Fields) > 0 {
		b.WriteString("\n" + fieldsTitle)
		for _, field := range f.Fields {
			b.WriteString("\n  ▫️ " + html.EscapeString(field))
		}
	}
	return b.String()
}

func askFieldText(loc catalog.Locale, field string) string {
	if loc == catalog.LocaleUK {
		return "✍️ <b>Вкажіть</b>: " + html.EscapeString(field)
	}
	return "✍️ <b>Introduce</b>: " + html.EscapeString(field)
}

func statsText(loc catalog.Locale, total, weekly, msgs, clicks int64) string {
	if loc == catalog.LocaleUK {
		return fmt.Sprintf("📊 <b>Статистика</b>\n• Користувачів всього: <b>%d</b>\n• Активні за 7 днів: <b>%d</b>\n• Повідомлень: <b>%d</b>\n• Кліків: <b>%d</b>", total, weekly, msgs, clicks)
	}
	return fmt.Sprintf("📊 <b>Estadísticas</b>\n• Usuarios totales: <b>%d</b>\n• Activos 7 días: <b>%d</b>\n• Mensajes: <b>%d</b>\n• Clicks: <b>%d</b>", total, weekly, msgs, clicks)
}

func myIDText(loc catalog.Locale, id int64) string {
	if loc == catalog.LocaleUK {
		return fmt.Sprintf("👤 Ваш Telegram ID: %d", id)
	}
	return fmt.Sprintf("👤 Tu Telegram ID: %d", id)
}

func lastSeenShort(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02 15:04")
}
