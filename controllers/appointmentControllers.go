package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"clinic-connect/authentication"
	"clinic-connect/models"
	"clinic-connect/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// errSlotTaken aborts the booking transaction when the requested window
// overlaps an existing SCHEDULED appointment.
var errSlotTaken = errors.New("slot already booked")

// AppointmentController owns booking, listing and status updates.
type AppointmentController struct {
	db     *gorm.DB
	log    zerolog.Logger
	mailer services.Mailer
	sms    services.SMSNotifier
	now    func() time.Time
}

func NewAppointmentController(db *gorm.DB, log zerolog.Logger, mailer services.Mailer, sms services.SMSNotifier) *AppointmentController {
	return &AppointmentController{db: db, log: log, mailer: mailer, sms: sms, now: time.Now}
}

type BookAppointmentInput struct {
	DoctorID  uint   `json:"doctor_id" binding:"required"`
	Date      string `json:"appointment_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason_for_visit"`
}

// BookAppointment validates and persists a new appointment. The patient is
// always the authenticated caller. The overlap check and the insert run in
// one transaction so two concurrent requests cannot both claim the window.
func (ac *AppointmentController) BookAppointment(c *gin.Context) {
	var input BookAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	if c.GetString(authentication.CtxRole) != models.RolePatient {
		validationError(c, "Booking must be done by a patient.", nil)
		return
	}
	patientID := c.GetUint(authentication.CtxUserID)

	var doctor models.User
	if err := ac.db.First(&doctor, input.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFoundError(c, "Doctor")
			return
		}
		internalError(c)
		return
	}
	if doctor.Role != models.RoleDoctor {
		validationError(c, "Assigned doctor must have the 'doctor' role.", nil)
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		validationError(c, "Invalid date format, expected YYYY-MM-DD.", nil)
		return
	}
	start, err := time.Parse("15:04", input.StartTime)
	if err != nil {
		validationError(c, "Invalid start time format, expected HH:MM.", nil)
		return
	}
	end, err := time.Parse("15:04", input.EndTime)
	if err != nil {
		validationError(c, "Invalid end time format, expected HH:MM.", nil)
		return
	}

	// Normalized zero-padded strings; lexical order matches clock order.
	dateStr := date.Format("2006-01-02")
	startStr := start.Format("15:04")
	endStr := end.Format("15:04")

	if startStr >= endStr {
		validationError(c, "Appointment start time must be before end time.", nil)
		return
	}
	now := ac.now()
	today := now.Format("2006-01-02")
	if dateStr < today {
		validationError(c, "Appointment cannot be booked for a past date.", nil)
		return
	}
	if dateStr == today && startStr < now.Format("15:04") {
		validationError(c, "Appointment time cannot be in the past.", nil)
		return
	}

	appt := models.Appointment{
		DoctorID:  doctor.ID,
		PatientID: patientID,
		Date:      dateStr,
		StartTime: startStr,
		EndTime:   endStr,
		Status:    models.StatusScheduled,
		Reason:    input.Reason,
	}
	err = ac.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND date = ? AND status = ? AND start_time < ? AND end_time > ?",
				doctor.ID, dateStr, models.StatusScheduled, endStr, startStr).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return errSlotTaken
		}
		return tx.Create(&appt).Error
	})
	if err != nil {
		if errors.Is(err, errSlotTaken) {
			conflictError(c, "The selected time slot is already booked. Please choose a different time.")
			return
		}
		ac.log.Error().Err(err).Uint("doctor_id", doctor.ID).Msg("booking failed")
		internalError(c)
		return
	}

	ac.notifyBooked(appt, doctor)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Appointment booked successfully.",
		"data":    appt,
	})
}

// notifyBooked sends the confirmation email with the PDF summary, and an SMS
// when the patient has a phone. Delivery failures are logged, never surfaced.
func (ac *AppointmentController) notifyBooked(appt models.Appointment, doctor models.User) {
	var patient models.User
	if err := ac.db.First(&patient, appt.PatientID).Error; err != nil {
		ac.log.Warn().Err(err).Uint("patient_id", appt.PatientID).Msg("skipping booking notification")
		return
	}

	summary, err := services.AppointmentSummaryPDF(appt, doctor, patient)
	if err != nil {
		ac.log.Warn().Err(err).Msg("failed to generate appointment PDF")
		summary = nil
	}
	body := "Your appointment with " + doctor.FullName + " on " + appt.Date +
		" from " + appt.StartTime + " to " + appt.EndTime + " has been scheduled."
	if err := ac.mailer.SendAppointmentConfirmation(patient.Email, "Appointment Confirmation", body, "appointment.pdf", summary); err != nil {
		ac.log.Warn().Err(err).Uint("patient_id", patient.ID).Msg("failed to send confirmation email")
	}

	if ac.sms != nil && patient.Phone != nil {
		if err := ac.sms.Send(*patient.Phone, body); err != nil {
			ac.log.Warn().Err(err).Uint("patient_id", patient.ID).Msg("failed to send confirmation SMS")
		}
	}
}

// ListAppointments is role scoped: doctors see their appointments, patients
// see theirs, anyone else gets an empty list.
func (ac *AppointmentController) ListAppointments(c *gin.Context) {
	userID := c.GetUint(authentication.CtxUserID)

	var appointments []models.Appointment
	var err error
	switch c.GetString(authentication.CtxRole) {
	case models.RoleDoctor:
		err = ac.db.Where("doctor_id = ?", userID).Order("date, start_time").Find(&appointments).Error
	case models.RolePatient:
		err = ac.db.Where("patient_id = ?", userID).Order("date, start_time").Find(&appointments).Error
	default:
		appointments = []models.Appointment{}
	}
	if err != nil {
		ac.log.Error().Err(err).Uint("user_id", userID).Msg("failed to list appointments")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": appointments})
}

// UpdateStatus lets only the assigned doctor write a new status. Any other
// caller gets 403 and the appointment stays unchanged.
func (ac *AppointmentController) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		validationError(c, "Invalid appointment id", nil)
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	var appt models.Appointment
	if err := ac.db.First(&appt, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFoundError(c, "Appointment")
			return
		}
		internalError(c)
		return
	}

	if c.GetUint(authentication.CtxUserID) != appt.DoctorID {
		authorizationError(c, "You are not authorized to update this appointment.")
		return
	}
	if !models.ValidStatus(input.Status) {
		validationError(c, "Status must be SCHEDULED, COMPLETED or CANCELLED.", nil)
		return
	}

	if err := ac.db.Model(&appt).Update("status", input.Status).Error; err != nil {
		ac.log.Error().Err(err).Uint("appointment_id", appt.ID).Msg("status update failed")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment status updated.", "data": appt})
}
