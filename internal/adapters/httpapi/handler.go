// Package httpapi exposes the hospital service over a JSON HTTP API.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"wardcore/internal/adapters/exports"
	"wardcore/internal/core"
	"wardcore/pkg/domain"
)

// Handler serves the /api/v1 routes.
type Handler struct {
	svc     *core.Service
	exports exports.Scheduler
}

// NewHandler returns a handler for svc. exports may be nil, in which case the
// export routes are not registered.
func NewHandler(svc *core.Service, exports exports.Scheduler) *Handler {
	return &Handler{svc: svc, exports: exports}
}

// RegisterRoutes mounts every route on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.listPatients)
	g.POST("/patients", h.addPatient)
	g.GET("/patients/:id", h.getPatient)
	g.PATCH("/patients/:id", h.updatePatient)
	g.DELETE("/patients/:id", h.deletePatient)
	g.POST("/patients/:id/discharge", h.dischargePatient)
	g.POST("/patients/:id/vitals", h.updateVitals)
	g.POST("/patients/:id/transfer", h.transferPatient)

	g.GET("/beds", h.listBeds)
	g.POST("/beds", h.addBed)
	g.GET("/beds/:id", h.getBed)
	g.PATCH("/beds/:id", h.updateBed)
	g.DELETE("/beds/:id", h.deleteBed)
	g.POST("/beds/:id/assign", h.assignBed)
	g.POST("/beds/:id/release", h.releaseBed)
	g.PUT("/beds/:id/status", h.updateBedStatus)

	g.GET("/appointments", h.listAppointments)
	g.POST("/appointments", h.addAppointment)
	g.GET("/appointments/:id", h.getAppointment)
	g.PATCH("/appointments/:id", h.updateAppointment)
	g.DELETE("/appointments/:id", h.deleteAppointment)

	g.GET("/orders", h.listOrders)
	g.POST("/orders", h.addOrder)
	g.GET("/orders/:id", h.getOrder)
	g.PATCH("/orders/:id", h.updateOrder)
	g.DELETE("/orders/:id", h.deleteOrder)

	g.GET("/medications", h.listMedications)
	g.POST("/medications", h.addMedication)
	g.GET("/medications/:id", h.getMedication)
	g.PATCH("/medications/:id", h.updateMedication)
	g.DELETE("/medications/:id", h.deleteMedication)
	g.POST("/medications/:id/administer", h.administerMedication)

	g.GET("/staff", h.listStaff)
	g.POST("/staff", h.addStaff)
	g.GET("/staff/:id", h.getStaff)
	g.PATCH("/staff/:id", h.updateStaff)
	g.DELETE("/staff/:id", h.deleteStaff)

	g.GET("/bills", h.listBills)
	g.POST("/bills", h.addBill)
	g.GET("/bills/:id", h.getBill)
	g.PATCH("/bills/:id", h.updateBill)
	g.DELETE("/bills/:id", h.deleteBill)

	g.GET("/alerts", h.listAlerts)
	g.POST("/alerts", h.addAlert)
	g.POST("/alerts/read-all", h.markAllAlertsRead)
	g.POST("/alerts/:id/read", h.markAlertRead)
	g.DELETE("/alerts/:id", h.deleteAlert)

	g.GET("/analytics", h.analytics)
	g.GET("/snapshot", h.snapshot)

	if h.exports != nil {
		g.POST("/exports", h.enqueueExport)
		g.GET("/exports/:id", h.getExport)
	}
}

func respond[T any](c echo.Context, status int, v T, _ domain.Result, err error) error {
	if err != nil {
		return fail(err)
	}
	return c.JSON(status, v)
}

func respondEmpty(c echo.Context, _ domain.Result, err error) error {
	if err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func found[T any](c echo.Context, entity domain.EntityType, get func(string) (T, bool)) error {
	id := c.Param("id")
	v, ok := get(id)
	if !ok {
		return fail(domain.NotFoundError{Entity: entity, ID: id})
	}
	return c.JSON(http.StatusOK, v)
}

// Patients.

func (h *Handler) listPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Patients())
}

func (h *Handler) getPatient(c echo.Context) error {
	return found(c, domain.EntityPatient, h.svc.Patient)
}

func (h *Handler) addPatient(c echo.Context) error {
	var req patientRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, res, err := h.svc.AddPatient(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, p, res, err)
}

func (h *Handler) updatePatient(c echo.Context) error {
	var req patientPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, res, err := h.svc.UpdatePatient(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, p, res, err)
}

func (h *Handler) deletePatient(c echo.Context) error {
	res, err := h.svc.DeletePatient(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

func (h *Handler) dischargePatient(c echo.Context) error {
	p, res, err := h.svc.DischargePatient(c.Request().Context(), c.Param("id"))
	return respond(c, http.StatusOK, p, res, err)
}

func (h *Handler) updateVitals(c echo.Context) error {
	var req vitalsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, res, err := h.svc.UpdatePatientVitals(c.Request().Context(), c.Param("id"), req.toDomain())
	return respond(c, http.StatusOK, p, res, err)
}

func (h *Handler) transferPatient(c echo.Context) error {
	var req transferRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.TransferPatient(c.Request().Context(), c.Param("id"), req.BedID)
	return respond(c, http.StatusOK, b, res, err)
}

// Beds.

func (h *Handler) listBeds(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Beds())
}

func (h *Handler) getBed(c echo.Context) error {
	return found(c, domain.EntityBed, h.svc.Bed)
}

func (h *Handler) addBed(c echo.Context) error {
	var req bedRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.AddBed(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, b, res, err)
}

func (h *Handler) updateBed(c echo.Context) error {
	var req bedPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.UpdateBed(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, b, res, err)
}

func (h *Handler) deleteBed(c echo.Context) error {
	res, err := h.svc.DeleteBed(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

func (h *Handler) assignBed(c echo.Context) error {
	var req assignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.AssignBed(c.Request().Context(), c.Param("id"), req.PatientID)
	return respond(c, http.StatusOK, b, res, err)
}

func (h *Handler) releaseBed(c echo.Context) error {
	b, res, err := h.svc.ReleaseBed(c.Request().Context(), c.Param("id"))
	return respond(c, http.StatusOK, b, res, err)
}

func (h *Handler) updateBedStatus(c echo.Context) error {
	var req bedStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.UpdateBedStatus(c.Request().Context(), c.Param("id"), domain.BedStatus(req.Status))
	return respond(c, http.StatusOK, b, res, err)
}

// Appointments.

func (h *Handler) listAppointments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Appointments())
}

func (h *Handler) getAppointment(c echo.Context) error {
	return found(c, domain.EntityAppointment, h.svc.Appointment)
}

func (h *Handler) addAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, res, err := h.svc.AddAppointment(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, a, res, err)
}

func (h *Handler) updateAppointment(c echo.Context) error {
	var req appointmentPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, res, err := h.svc.UpdateAppointment(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, a, res, err)
}

func (h *Handler) deleteAppointment(c echo.Context) error {
	res, err := h.svc.DeleteAppointment(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

// Orders.

func (h *Handler) listOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Orders())
}

func (h *Handler) getOrder(c echo.Context) error {
	return found(c, domain.EntityOrder, h.svc.Order)
}

func (h *Handler) addOrder(c echo.Context) error {
	var req orderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, res, err := h.svc.AddOrder(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, o, res, err)
}

func (h *Handler) updateOrder(c echo.Context) error {
	var req orderPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, res, err := h.svc.UpdateOrder(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, o, res, err)
}

func (h *Handler) deleteOrder(c echo.Context) error {
	res, err := h.svc.DeleteOrder(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

// Medications.

func (h *Handler) listMedications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Medications())
}

func (h *Handler) getMedication(c echo.Context) error {
	return found(c, domain.EntityMedication, h.svc.Medication)
}

func (h *Handler) addMedication(c echo.Context) error {
	var req medicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, res, err := h.svc.AddMedication(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, m, res, err)
}

func (h *Handler) updateMedication(c echo.Context) error {
	var req medicationPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, res, err := h.svc.UpdateMedication(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, m, res, err)
}

func (h *Handler) deleteMedication(c echo.Context) error {
	res, err := h.svc.DeleteMedication(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

func (h *Handler) administerMedication(c echo.Context) error {
	var req administerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, res, err := h.svc.AdministerMedication(c.Request().Context(), c.Param("id"), req.AdministeredBy, req.Notes)
	return respond(c, http.StatusOK, m, res, err)
}

// Staff.

func (h *Handler) listStaff(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Staff())
}

func (h *Handler) getStaff(c echo.Context) error {
	return found(c, domain.EntityStaff, h.svc.StaffMember)
}

func (h *Handler) addStaff(c echo.Context) error {
	var req staffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	st, res, err := h.svc.AddStaff(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, st, res, err)
}

func (h *Handler) updateStaff(c echo.Context) error {
	var req staffPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	st, res, err := h.svc.UpdateStaff(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, st, res, err)
}

func (h *Handler) deleteStaff(c echo.Context) error {
	res, err := h.svc.DeleteStaff(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

// Bills.

func (h *Handler) listBills(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Bills())
}

func (h *Handler) getBill(c echo.Context) error {
	return found(c, domain.EntityBill, h.svc.Bill)
}

func (h *Handler) addBill(c echo.Context) error {
	var req billRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.AddBill(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, b, res, err)
}

func (h *Handler) updateBill(c echo.Context) error {
	var req billPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, res, err := h.svc.UpdateBill(c.Request().Context(), c.Param("id"), req.toPatch())
	return respond(c, http.StatusOK, b, res, err)
}

func (h *Handler) deleteBill(c echo.Context) error {
	res, err := h.svc.DeleteBill(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

// Alerts.

func (h *Handler) listAlerts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Alerts())
}

func (h *Handler) addAlert(c echo.Context) error {
	var req alertRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, res, err := h.svc.AddAlert(c.Request().Context(), req.toDomain())
	return respond(c, http.StatusCreated, a, res, err)
}

func (h *Handler) markAlertRead(c echo.Context) error {
	a, res, err := h.svc.MarkAlertAsRead(c.Request().Context(), c.Param("id"))
	return respond(c, http.StatusOK, a, res, err)
}

func (h *Handler) markAllAlertsRead(c echo.Context) error {
	res, err := h.svc.MarkAllAlertsAsRead(c.Request().Context())
	return respondEmpty(c, res, err)
}

func (h *Handler) deleteAlert(c echo.Context) error {
	res, err := h.svc.DeleteAlert(c.Request().Context(), c.Param("id"))
	return respondEmpty(c, res, err)
}

// Dashboard.

func (h *Handler) analytics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetAnalytics())
}

func (h *Handler) snapshot(c echo.Context) error {
	snap, version := h.svc.VersionedSnapshot()
	c.Response().Header().Set("X-Store-Version", strconv.FormatUint(version, 10))
	return c.JSON(http.StatusOK, snap)
}

// Exports.

func (h *Handler) enqueueExport(c echo.Context) error {
	var req exportRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	formats := make([]exports.Format, len(req.Formats))
	for i, f := range req.Formats {
		formats[i] = exports.Format(f)
	}
	rec, err := h.exports.Enqueue(c.Request().Context(), exports.Request{Formats: formats, RequestedBy: req.RequestedBy})
	if err != nil {
		if errors.Is(err, exports.ErrQueueFull) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		}
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	return c.JSON(http.StatusAccepted, rec)
}

func (h *Handler) getExport(c echo.Context) error {
	rec, ok := h.exports.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, errorBody{Error: "export not found"})
	}
	return c.JSON(http.StatusOK, rec)
}
