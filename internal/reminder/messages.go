package reminder

import (
	"fmt"

	"salonflow/internal/models"
)

type messageSet struct {
	reminder      string // args: time, service, master
	confirmAck    string
	cancelAck     string
	rescheduleAck string
	fallback      string
}

var messageSets = map[models.Language]messageSet{
	models.LangRU: {
		reminder: "Напоминаем: завтра в %s у вас запись на %s к мастеру %s.\nОтветьте, пожалуйста:\n1 — подтвердить\n2 — отменить\n3 — перенести",
		confirmAck: "Спасибо! Ваша запись подтверждена. Ждем вас! 💅",
		cancelAck: "Ваша запись отменена. Будем рады видеть вас в другой раз!",
		rescheduleAck: "Хорошо, давайте подберем другое время. Напишите удобные дату и время.",
		fallback: "Извините, я не поняла ваш ответ.\nОтветьте цифрой:\n1 — подтвердить запись\n2 — отменить запись или 3 — перенести",
	},
	models.LangEN: {
		reminder: "Reminder: tomorrow at %s you have an appointment for %s with %s.\nPlease reply:\n1 — confirm\n2 — cancel\n3 — reschedule",
		confirmAck: "Thank you! Your appointment is confirmed. See you soon! 💅",
		cancelAck: "Your appointment has been cancelled. We hope to see you another time!",
		rescheduleAck: "Sure, let's find another time. Send us a date and time that works for you.",
		fallback: "Sorry, I didn't understand your reply.\nPlease answer with a number:\n1 — confirm the appointment\n2 — cancel or 3 — reschedule",
	},
	models.LangES: {
		reminder: "Recordatorio: mañana a las %s tiene una cita para %s con %s.\nResponda por favor:\n1 — confirmar\n2 — cancelar\n3 — reprogramar",
		confirmAck: "¡Gracias! Su cita está confirmada. ¡Le esperamos! 💅",
		cancelAck: "Su cita ha sido cancelada. ¡Esperamos verle en otra ocasión!",
		rescheduleAck: "Claro, busquemos otro horario. Envíenos una fecha y hora que le convenga.",
		fallback: "Perdón, no entendí su respuesta.\nResponda con un número:\n1 — confirmar la cita\n2 — cancelar o 3 — reprogramar",
	},
	models.LangDE: {
		reminder: "Erinnerung: morgen um %s haben Sie einen Termin für %s bei %s.\nBitte antworten Sie:\n1 — bestätigen\n2 — stornieren\n3 — verschieben",
		confirmAck: "Danke! Ihr Termin ist bestätigt. Bis bald! 💅",
		cancelAck: "Ihr Termin wurde storniert. Wir freuen uns auf ein anderes Mal!",
		rescheduleAck: "Gerne, suchen wir einen anderen Termin. Senden Sie uns Datum und Uhrzeit.",
		fallback: "Entschuldigung, ich habe Ihre Antwort nicht verstanden.\nBitte antworten Sie mit einer Zahl:\n1 — Termin bestätigen\n2 — stornieren oder 3 — verschieben",
	},
	models.LangFR: {
		reminder: "Rappel : demain à %s vous avez un rendez-vous pour %s avec %s.\nVeuillez répondre :\n1 — confirmer\n2 — annuler\n3 — reporter",
		confirmAck: "Merci ! Votre rendez-vous est confirmé. À bientôt ! 💅",
		cancelAck: "Votre rendez-vous a été annulé. Au plaisir de vous revoir !",
		rescheduleAck: "Bien sûr, trouvons un autre créneau. Envoyez-nous une date et une heure.",
		fallback: "Désolé, je n'ai pas compris votre réponse.\nRépondez par un chiffre :\n1 — confirmer le rendez-vous\n2 — annuler ou 3 — reporter",
	},
}

func messagesFor(lang models.Language) messageSet {
	if m, ok := messageSets[lang]; ok {
		return m
	}
	return messageSets[models.DefaultLanguage]
}

// reminderMessage renders the pre-appointment notification for a booking.
func reminderMessage(booking *models.Booking) string {
	m := messagesFor(booking.Language)
	master := booking.MasterName
	if master == "" {
		master = "—"
	}
	return fmt.Sprintf(m.reminder, booking.StartAt.Format("15:04"), booking.ServiceName, master)
}

// ackMessage renders the reply sent back after classifying a response.
// Unknown replies get the fallback prompt listing the numeric choices.
func ackMessage(lang models.Language, action models.ResponseAction) string {
	m := messagesFor(lang)
	switch action {
	case models.ActionConfirm:
		return m.confirmAck
	case models.ActionCancel:
		return m.cancelAck
	case models.ActionReschedule:
		return m.rescheduleAck
	default:
		return m.fallback
	}
}
