package chat

import "github.com/prometheus/client_golang/prometheus"

var chatTurnsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "kvantum",
		Subsystem: "chat",
		Name:      "turns_total",
		Help:      "Chat turns handled, by reply branch and language",
	},
	[]string{"branch", "lang"}, // branch: llm, rules, lead, booking
)

var bookingsFromChatTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "kvantum",
		Subsystem: "chat",
		Name:      "bookings_total",
		Help:      "Consultations booked through the chat flow",
	},
)

var llmFallbacks = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "kvantum",
		Subsystem: "chat",
		Name:      "llm_fallback_total",
		Help:      "Turns where the completion service failed and rules answered",
	},
)

func init() {
	prometheus.MustRegister(chatTurnsTotal)
	prometheus.MustRegister(bookingsFromChatTotal)
	prometheus.MustRegister(llmFallbacks)
}
