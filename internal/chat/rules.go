package chat

import (
	"regexp"
	"strings"
)

// RuleEntry is one keyword-triggered canned response. Pattern, when set,
// is tried before the substring keywords. First matching entry wins.
type RuleEntry struct {
	Pattern  *regexp.Regexp
	Keywords []string
	English  string
	Russian  string
}

// ruleTable covers the questions the site gets constantly. Ordered; kept as
// data so the bilingual keyword lists stay editable in one place.
var ruleTable = []RuleEntry{
	{
		Pattern:  regexp.MustCompile(`(?i)\b(hello|hi|hey)\b`),
		Keywords: []string{"привет", "здравствуй", "добрый день", "салам"},
		English:  "Welcome to KVANTUM! I am your AI assistant. How can I help you today? You can ask about our programs, pricing, or book a free consultation.",
		Russian:  "Добро пожаловать в KVANTUM! Я ваш AI-ассистент. Чем могу помочь? Спросите о наших программах, ценах или запишитесь на бесплатную консультацию.",
	},
	{
		Keywords: []string{"price", "cost", "how much", "цена", "стоимость", "сколько"},
		English: "Our programs:\n\n1. Brain Charge (entry level) - 1,000 KGS/RUB\n2. Resources Club - 5,000 KGS/month\n3. Intensive \"Mom & Dad - My 2 Wings\" - $300 / 26,300 KGS\n4. REBOOT course - $1,000\n5. Mentorship - contact our managers for pricing\n\nWould you like to book a free consultation to find the best program for you?",
		Russian: "Наши программы:\n\n1. Зарядка мозга (начальный уровень) - 1 000 сом/руб\n2. Клуб Ресурсы - 5 000 сом/месяц\n3. Интенсив «Мама и Папа - мои 2 крыла» - $300 / 26 300 сом\n4. Курс ПЕРЕЗАГРУЗКА - $1 000\n5. Наставничество - цену уточняйте у менеджеров\n\nХотите записаться на бесплатную консультацию, чтобы подобрать программу?",
	},
	{
		Keywords: []string{"brain", "зарядк", "мозг"},
		English: "Brain Charge is our entry-level program:\n- 21 days\n- 15 minutes per day\n- Starts at 6:00 AM (Kyrgyzstan time)\n- Price: 1,000 KGS/RUB\n\nIt is the simplest way to start your transformation journey!",
		Russian: "Зарядка мозга - наша входная программа:\n- 21 день\n- 15 минут в день\n- Старт в 6:00 утра (по Кыргызстану)\n- Цена: 1 000 сом/руб\n\nЭто самый простой способ начать трансформацию!",
	},
	{
		Keywords: []string{"resource", "club", "клуб", "ресурс"},
		English: "Resources Club helps strengthen your inner state:\n- 4 weeks\n- 2 sessions with Altynai\n- 2 sessions with a curator\n- Focus: confidence, self-worth, inner freedom\n- Price: 5,000 KGS/month\n\nWant to join?",
		Russian: "Клуб Ресурсы укрепляет внутреннее состояние:\n- 4 недели\n- 2 сессии с Алтынай\n- 2 сессии с куратором\n- Фокус: уверенность, самоценность, внутренняя свобода\n- Цена: 5 000 сом/месяц\n\nХотите присоединиться?",
	},
	{
		Keywords: []string{"intensive", "интенсив", "papa", "mama", "папа", "мама"},
		English: "The Intensive \"Mom & Dad - My 2 Wings\" works with ancestral roots:\n- 1 month, 10 lessons, 20 practices\n- 3 Zoom sessions\n- Topics: separation, breaking free from inherited patterns, restoring hierarchy\n- Price: $300 / 26,300 KGS",
		Russian: "Интенсив «Мама и Папа - мои 2 крыла» работает с родовыми корнями:\n- 1 месяц, 10 уроков, 20 практик\n- 3 Zoom-сессии\n- Темы: сепарация, выход из родовых сценариев, восстановление иерархии\n- Цена: $300 / 26 300 сом",
	},
	{
		Keywords: []string{"reboot", "перезагруз"},
		English: "REBOOT - Conscious Reality Management:\n- 8 weeks, 24 sessions\n- 20 lessons, 20 practices\n- 1 personal session with Altynai + 2 curator sessions\n- Topics: values, state management, relationships, finances\n- Price: $1,000",
		Russian: "ПЕРЕЗАГРУЗКА - осознанное управление реальностью:\n- 8 недель, 24 сессии\n- 20 уроков, 20 практик\n- 1 личная сессия с Алтынай + 2 сессии с куратором\n- Темы: ценности, управление состоянием, отношения, финансы\n- Цена: $1 000",
	},
	{
		Keywords: []string{"mentor", "наставни"},
		English: "Mentorship (University of Self-Knowledge) is our premium program:\n- Field reading, emotions & subconscious blocks\n- Quantum field work\n- 30 NLP practices\n- Constellation fundamentals\n- Live practice with curators\n\nContact our managers for pricing!",
		Russian: "Наставничество (Университет самопознания) - наша премиум-программа:\n- Чтение поля, эмоции и подсознательные блоки\n- Работа с квантовым полем\n- 30 НЛП-практик\n- Основы расстановок\n- Живая практика с кураторами\n\nЦену уточняйте у менеджеров!",
	},
	{
		Keywords: []string{"consult", "book", "appointment", "консульта", "запис"},
		English: "To book a free consultation, click the \"Book Consultation\" button on our website, or message us on WhatsApp/Telegram. Entry to individual work is only after a free consultation. We look forward to working with you!",
		Russian: "Чтобы записаться на бесплатную консультацию, нажмите кнопку «Записаться» на сайте или напишите нам в WhatsApp/Telegram. Вход в индивидуальную работу - только после бесплатной консультации. Ждём вас!",
	},
	{
		Keywords: []string{"altynai", "алтынай", "founder", "основатель"},
		English: "Altynai Eshinbekova is the founder of KVANTUM:\n- Specialist in subconscious and quantum field work\n- NLP Master\n- Master of deep analysis sessions\n\nShe works deeply, ecologically, and delivers real results. She personally accompanies clients to their goals.",
		Russian: "Алтынай Эшинбекова - основатель KVANTUM:\n- Специалист по подсознанию и работе с квантовым полем\n- НЛП-мастер\n- Мастер глубинных разборов\n\nРаботает глубоко, экологично и с реальными результатами. Лично сопровождает клиентов к их целям.",
	},
	{
		Keywords: []string{"whatsapp", "telegram", "contact", "вотсап", "телеграм", "связ", "контакт"},
		English: "You can reach us via:\n- WhatsApp: Click the WhatsApp button on our website\n- Telegram: Click the Telegram button\n- Or fill out the contact form and we will reach out to you!\n\nWe are happy to help you start your transformation journey.",
		Russian: "С нами можно связаться:\n- WhatsApp: кнопка WhatsApp на сайте\n- Telegram: кнопка Telegram\n- Или заполните форму обратной связи, и мы сами напишем вам!\n\nБудем рады помочь вам начать трансформацию.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\bpay(ing|ments?)?\b`),
		Keywords: []string{"card", "installment", "оплат", "карт", "рассрочк"},
		English: "We accept bank transfers, Visa/Mastercard and local KGS payments. Installments are available for REBOOT and Mentorship - ask a manager on WhatsApp/Telegram for details.",
		Russian: "Мы принимаем банковские переводы, Visa/Mastercard и оплату в сомах. Для ПЕРЕЗАГРУЗКИ и Наставничества доступна рассрочка - детали у менеджера в WhatsApp/Telegram.",
	},
	{
		Keywords: []string{"schedule", "when", "расписани", "когда", "во сколько"},
		English: "Brain Charge runs daily at 6:00 AM Kyrgyzstan time. Group sessions are scheduled over Zoom; personal sessions are agreed individually after your free consultation.",
		Russian: "Зарядка мозга проходит каждый день в 6:00 по Кыргызстану. Групповые сессии - в Zoom по расписанию, личные сессии назначаются индивидуально после бесплатной консультации.",
	},
	{
		Keywords: []string{"format", "zoom", "online", "формат", "онлайн"},
		English: "All programs run online: lessons and practices in a private area, live sessions over Zoom. You can join from anywhere in the world.",
		Russian: "Все программы проходят онлайн: уроки и практики в закрытом кабинете, живые сессии в Zoom. Присоединиться можно из любой точки мира.",
	},
	{
		Keywords: []string{"result", "testimonial", "review", "результат", "отзыв"},
		English: "Hundreds of people have completed our programs. Testimonials and results are published on the website and our social media - and your free consultation is the best way to see if it fits you.",
		Russian: "Наши программы прошли сотни людей. Отзывы и результаты публикуются на сайте и в соцсетях, а бесплатная консультация - лучший способ понять, подойдёт ли вам программа.",
	},
	{
		Keywords: []string{"refund", "money back", "возврат", "вернуть деньги"},
		English: "Refunds are handled individually within the first week of a program. Message a manager on WhatsApp/Telegram and we will sort it out.",
		Russian: "Возвраты рассматриваются индивидуально в течение первой недели программы. Напишите менеджеру в WhatsApp/Telegram - мы всё решим.",
	},
	{
		Keywords: []string{"location", "where are you", "bishkek", "address", "где вы", "адрес", "бишкек"},
		English: "We are online-first and based in Bishkek, Kyrgyzstan. All programs are available remotely - the WhatsApp and Telegram buttons on the website reach a manager directly.",
		Russian: "Мы работаем онлайн, база - в Бишкеке, Кыргызстан. Все программы доступны удалённо; кнопки WhatsApp и Telegram на сайте ведут напрямую к менеджеру.",
	},
	{
		Keywords: []string{"which program", "recommend", "choose", "какую программу", "что выбрать", "подойдет", "подойдёт"},
		English: "Not sure which program fits? Start with the free consultation - we will look at your goals and suggest the right entry point. Most people begin with Brain Charge and grow from there.",
		Russian: "Не знаете, какую программу выбрать? Начните с бесплатной консультации - разберём ваши цели и подскажем точку входа. Большинство начинает с Зарядки мозга.",
	},
	{
		Keywords: []string{"method", "how do you work", "методик", "подход", "как вы работаете"},
		English: "We combine NLP, subconscious work and quantum field practices: daily practices, group dynamics and personal deep-analysis sessions. Everything is guided - you are never left alone with the material.",
		Russian: "Мы сочетаем НЛП, работу с подсознанием и практики квантового поля: ежедневные практики, групповая динамика и личные глубинные разборы. Всё проходит с сопровождением - вы не остаётесь одни.",
	},
	{
		Keywords: []string{"thank", "спасибо", "благодар"},
		English:  "You're welcome! If anything else comes up - programs, pricing, booking - just ask. And the free consultation is always there for you.",
		Russian:  "Пожалуйста! Если появятся вопросы - программы, цены, запись - просто спросите. И бесплатная консультация всегда к вашим услугам.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\b(bye|goodbye)\b`),
		Keywords: []string{"пока", "до свидания", "до встречи"},
		English:  "Goodbye! Come back any time - and when you are ready, the free consultation is one message away.",
		Russian:  "До свидания! Возвращайтесь в любое время - а когда будете готовы, бесплатная консультация в одном сообщении от вас.",
	},
}

// catchAll is returned when neither the rule table nor the knowledge base
// matched anything.
var catchAll = RuleEntry{
	English: "Thank you for your message! I can help you with:\n\n- Program information and pricing\n- Booking a free consultation\n- Learning about our founder Altynai\n- Understanding how we work\n\nJust ask me anything, or click \"Book Consultation\" to get started!",
	Russian: "Спасибо за сообщение! Я могу помочь с:\n\n- Информацией о программах и ценах\n- Записью на бесплатную консультацию\n- Рассказом о нашем основателе Алтынай\n- Тем, как мы работаем\n\nПросто спросите или нажмите «Записаться на консультацию»!",
}

func (e RuleEntry) reply(lang string) string {
	if lang == "ru" {
		return e.Russian
	}
	return e.English
}

func (e RuleEntry) matches(lower string) bool {
	if e.Pattern != nil && e.Pattern.MatchString(lower) {
		return true
	}
	for _, kw := range e.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchRule walks the rule table in order and returns the first canned
// response, or false when nothing triggers.
func MatchRule(message, lang string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return "", false
	}
	for _, entry := range ruleTable {
		if entry.matches(lower) {
			return entry.reply(lang), true
		}
	}
	return "", false
}

// CatchAllReply is the generic "how can I help" response.
func CatchAllReply(lang string) string {
	return catchAll.reply(lang)
}
