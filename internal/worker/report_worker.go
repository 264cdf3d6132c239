package worker

// report_worker.go
// Generates the PDF closing report for a cash session and mails it to the
// supervisor. Runs off the request path so closing the till stays fast.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/infra"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ReportWorker struct {
	sessions    repository.CashRepository
	mailer      *infra.Mailer
	toEmail     string
	storagePath string
}

func NewReportWorker(sessions repository.CashRepository, mailer *infra.Mailer, toEmail, storagePath string) *ReportWorker {
	return &ReportWorker{
		sessions:    sessions,
		mailer:      mailer,
		toEmail:     toEmail,
		storagePath: storagePath,
	}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SessionReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil
	}
	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("report_worker: bad session id")
		return nil
	}

	session, err := w.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("report_worker: load session %s: %w", payload.SessionID, err)
	}

	pdfPath, err := infra.GenerateSessionReportPDF(session, w.storagePath)
	if err != nil {
		return fmt.Errorf("report_worker: generate pdf: %w", err)
	}
	log.Info().Str("session_id", payload.SessionID).Str("pdf", pdfPath).Msg("report_worker: closing report generated")

	if w.toEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Cash session %s closed", payload.SessionID)
	body := fmt.Sprintf("Register %d session closed. Report attached.", session.Register)
	if err := w.mailer.Send(w.toEmail, subject, body, pdfPath); err != nil {
		return fmt.Errorf("report_worker: mail report: %w", err)
	}
	return nil
}
