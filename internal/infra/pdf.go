package infra

// pdf.go — cash session close-out reports rendered with go-pdf/fpdf.
// One A4 page per session: opening float, every manual transaction, and the
// expected / counted / difference summary the supervisor signs off on.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
)

// GenerateSessionReportPDF writes the close-out report for a closed session.
// storagePath is the directory the PDF goes into (created if needed).
// Returns the absolute path to the generated file.
func GenerateSessionReportPDF(session *model.CashSession, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("session_%s.pdf", session.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cash Session Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Session %s", session.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Session info ──────────────────────────────────────────────────────────
	labelW := contentW * 0.35
	valueW := contentW * 0.65

	infoRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(valueW, 6, value, "", 1, "L", false, 0, "")
	}

	infoRow("Register:", fmt.Sprintf("%d", session.Register))
	infoRow("Opened:", session.OpenedAt.Format("02/01/2006 15:04"))
	if session.ClosedAt != nil {
		infoRow("Closed:", session.ClosedAt.Format("02/01/2006 15:04"))
	}
	infoRow("Opening float:", "$"+session.OpeningAmount.StringFixed(2))
	pdf.Ln(4)

	// ── Manual transactions ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, "Manual Transactions", "", 1, "L", false, 0, "")

	col1 := contentW * 0.22 // time
	col2 := contentW * 0.18 // kind
	col3 := contentW * 0.40 // description
	col4 := contentW * 0.20 // amount

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Time", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Kind", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	txnTotal := decimal.Zero
	for _, txn := range session.Transactions {
		descr := txn.Description
		if len(descr) > 40 {
			descr = descr[:39] + "…"
		}
		pdf.CellFormat(col1, 5, txn.CreatedAt.Format("15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, txn.Kind, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, descr, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+txn.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		txnTotal = txnTotal.Add(txn.Amount)
	}
	if len(session.Transactions) == 0 {
		pdf.CellFormat(contentW, 5, "(none)", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(col1+col2+col3, 6, "Net manual movement:", "T", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+txnTotal.StringFixed(2), "T", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// ── Reconciliation summary ────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, "Reconciliation", "", 1, "L", false, 0, "")

	sumRow := func(label string, amount *decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		value := "-"
		if amount != nil {
			value = "$" + amount.StringFixed(2)
		}
		pdf.CellFormat(valueW, 6, value, "", 1, "L", false, 0, "")
	}

	sumRow("Expected amount:", session.ExpectedAmount, false)
	sumRow("Counted amount:", session.ActualAmount, false)
	sumRow("Difference:", session.Difference, true)

	if session.Notes != nil && *session.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 5, "Notes: "+*session.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
