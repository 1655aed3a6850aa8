package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	remindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonflow",
			Name:      "reminders_total",
			Help:      "Reminder delivery attempts by result.",
		},
		[]string{"result"},
	)

	responsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonflow",
			Name:      "reminder_responses_total",
			Help:      "Classified customer replies by action.",
		},
		[]string{"action"},
	)

	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonflow",
			Name:      "queue_jobs_total",
			Help:      "Processed delayed jobs by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(remindersTotal, responsesTotal, jobsTotal)
	})
}

// IncReminder increments the reminder counter for a delivery result label.
func IncReminder(result string) {
	remindersTotal.WithLabelValues(result).Inc()
}

// IncResponse increments the reply counter for an action label.
func IncResponse(action string) {
	responsesTotal.WithLabelValues(action).Inc()
}

// IncJob increments the job counter for a kind and result.
func IncJob(kind, result string) {
	jobsTotal.WithLabelValues(kind, result).Inc()
}
