package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the bot.
// Tracks handled commands, identity events, orders and outbound send failures.
type Metrics struct {
	CommandsHandled       *prometheus.CounterVec
	CommandDuration       *prometheus.HistogramVec
	UsersCreated          prometheus.Counter
	RegistrationsComplete prometheus.Counter
	OrdersPlaced          prometheus.Counter
	PurchasesRejected     *prometheus.CounterVec
	SendFailures          prometheus.Counter
}

// New creates a new Metrics instance with every collector registered on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CommandsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socks_bot_commands_total",
			Help: "Total number of handled interactions by command and outcome",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socks_bot_command_duration_seconds",
			Help:    "Duration of command handling including storage round trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "socks_bot_users_created_total",
			Help: "Total number of user records created",
		}),
		RegistrationsComplete: factory.NewCounter(prometheus.CounterOpts{
			Name: "socks_bot_registrations_completed_total",
			Help: "Total number of registration dialogs that collected both email and phone",
		}),
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "socks_bot_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		PurchasesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socks_bot_purchases_rejected_total",
			Help: "Total number of refused purchases by reason",
		}, []string{"reason"}),
		SendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "socks_bot_send_failures_total",
			Help: "Total number of replies the chat platform refused",
		}),
	}
}

// ObserveCommand records one handled interaction
func (m *Metrics) ObserveCommand(command, outcome string, duration time.Duration) {
	m.CommandsHandled.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func (m *Metrics) UserCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) RegistrationCompleted() {
	m.RegistrationsComplete.Inc()
}

func (m *Metrics) OrderPlaced() {
	m.OrdersPlaced.Inc()
}

func (m *Metrics) PurchaseRejected(reason string) {
	m.PurchasesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) SendFailed() {
	m.SendFailures.Inc()
}
