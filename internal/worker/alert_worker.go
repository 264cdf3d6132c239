package worker

// alert_worker.go
// Processes low-stock alert jobs from QueueAlerts and mails the purchasing
// contact so ingredients get reordered before production stalls.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

type AlertWorker struct {
	mailer  *infra.Mailer
	toEmail string
}

func NewAlertWorker(mailer *infra.Mailer, toEmail string) *AlertWorker {
	return &AlertWorker{mailer: mailer, toEmail: toEmail}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if w.toEmail == "" {
		log.Warn().Str("product", payload.Name).Msg("alert_worker: no alert email configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s", payload.Name)
	body := fmt.Sprintf(
		"Product %s (%s) is at %s, minimum is %s. Restock needed.",
		payload.Name, payload.ProductID,
		payload.CurrentStock.String(), payload.MinStock.String(),
	)

	if err := w.mailer.Send(w.toEmail, subject, body, ""); err != nil {
		log.Error().Err(err).Str("product", payload.Name).Msg("alert_worker: failed to send alert")
		return err
	}
	log.Info().Str("product", payload.Name).Msg("alert_worker: low stock alert sent")
	return nil
}
