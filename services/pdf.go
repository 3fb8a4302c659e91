package services

import (
	"bytes"
	"fmt"

	"clinic-connect/models"

	"github.com/jung-kurt/gofpdf"
)

// AppointmentSummaryPDF renders the confirmation document attached to the
// booking email.
func AppointmentSummaryPDF(appt models.Appointment, doctor, patient models.User) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(128, 0, 128)
	pdf.CellFormat(0, 10, "Clinic Connect - Appointment Booking", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Appointment Confirmation", "1", 1, "C", false, 0, "")
	addDetail(pdf, "Appointment ID", fmt.Sprintf("%d", appt.ID), true)
	addDetail(pdf, "Doctor", doctor.FullName, true)
	addDetail(pdf, "Patient", patient.FullName, true)
	addDetail(pdf, "Date", appt.Date, true)
	addDetail(pdf, "Time", appt.StartTime+" - "+appt.EndTime, true)
	addDetail(pdf, "Status", appt.Status, false)
	if appt.Reason != "" {
		addDetail(pdf, "Reason", appt.Reason, false)
	}

	pdf.SetY(pdf.GetY() + 12)
	pdf.CellFormat(0, 10, "This is a computer generated document", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addDetail adds a labelled row to the PDF.
func addDetail(pdf *gofpdf.Fpdf, label, value string, isHeader bool) {
	if isHeader {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(255, 255, 255)
	} else {
		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
	}
	pdf.CellFormat(45, 10, label, "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 10, value, "1", 1, "", false, 0, "")
}
