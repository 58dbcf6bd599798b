// Package server exposes the dashboard's JSON API over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coacherp/coacherp/internal/auth"
	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/service"
	"github.com/coacherp/coacherp/internal/state"
	syncengine "github.com/coacherp/coacherp/internal/sync"
)

// Handler carries the services behind the HTTP routes.
type Handler struct {
	students  *service.StudentService
	fees      *service.FeeService
	settings  *service.SettingsService
	dashboard *service.DashboardService
	syncs     *service.SyncService
	gate      *auth.Gate
	jwt       *auth.JWTManager
}

// NewHandler wires the route handlers.
func NewHandler(
	students *service.StudentService,
	fees *service.FeeService,
	settings *service.SettingsService,
	dashboard *service.DashboardService,
	syncs *service.SyncService,
	gate *auth.Gate,
	jwt *auth.JWTManager,
) *Handler {
	return &Handler{
		students:  students,
		fees:      fees,
		settings:  settings,
		dashboard: dashboard,
		syncs:     syncs,
		gate:      gate,
		jwt:       jwt,
	}
}

// --- auth ---

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login checks the admin password and issues a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.gate.Check(req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := h.jwt.Generate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// --- students ---

type enrollRequest struct {
	Name           string     `json:"name" binding:"required"`
	GuardianName   string     `json:"guardianName"`
	Contact        string     `json:"contact"`
	Email          string     `json:"email"`
	Batch          string     `json:"batch"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
	TotalFees      float64    `json:"totalFees" binding:"gte=0"`
	Discount       float64    `json:"discount" binding:"gte=0"`
}

type updateStudentRequest struct {
	Name           string               `json:"name" binding:"required"`
	GuardianName   string               `json:"guardianName"`
	Contact        string               `json:"contact"`
	Email          string               `json:"email"`
	Batch          string               `json:"batch"`
	EnrollmentDate time.Time            `json:"enrollmentDate" binding:"required"`
	Status         models.StudentStatus `json:"status" binding:"required,oneof=Active Left"`
	TotalFees      float64              `json:"totalFees" binding:"gte=0"`
	Discount       float64              `json:"discount" binding:"gte=0"`
}

// ListStudents returns all students in insertion order.
func (h *Handler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"students": h.students.List()})
}

// GetStudent returns one student by id.
func (h *Handler) GetStudent(c *gin.Context) {
	st, err := h.students.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st})
}

// EnrollStudent creates a new student from the manual-entry form.
func (h *Handler) EnrollStudent(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	in := service.EnrollInput{
		Name:         req.Name,
		GuardianName: req.GuardianName,
		Contact:      req.Contact,
		Email:        req.Email,
		Batch:        req.Batch,
		TotalFees:    req.TotalFees,
		Discount:     req.Discount,
	}
	if req.EnrollmentDate != nil {
		in.EnrollmentDate = *req.EnrollmentDate
	}
	st, err := h.students.Enroll(in)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": st})
}

// UpdateStudent replaces a student record (status flips, contact edits).
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	st := models.Student{
		ID:             c.Param("id"),
		Name:           req.Name,
		GuardianName:   req.GuardianName,
		Contact:        req.Contact,
		Email:          req.Email,
		Batch:          req.Batch,
		EnrollmentDate: req.EnrollmentDate,
		Status:         req.Status,
		TotalFees:      req.TotalFees,
		Discount:       req.Discount,
	}
	if err := h.students.Update(st); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	// Respond with the stored record so the preserved payment history is
	// included, not the payment-less request shape.
	updated, err := h.students.Get(st.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": updated})
}

// ImportStudents bulk-enrolls students from an uploaded .xlsx file.
func (h *Handler) ImportStudents(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error opening uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	count, err := h.students.Import(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to import students: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// SelectStudent marks a student as open in the detail view.
func (h *Handler) SelectStudent(c *gin.Context) {
	if err := h.students.Select(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SelectedStudent returns the student open in the detail view.
func (h *Handler) SelectedStudent(c *gin.Context) {
	st, ok := h.students.Selected()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No student selected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st})
}

// --- fees ---

type paymentRequest struct {
	Amount         float64            `json:"amount" binding:"required,gt=0"`
	Mode           models.PaymentMode `json:"mode" binding:"required,oneof=Cash Card UPI Cheque"`
	ReferenceImage string             `json:"referenceImage"`
}

type paymentBatchRequest struct {
	Payments []paymentRequest `json:"payments" binding:"required,min=1,dive"`
}

// RecordPayment appends one payment to a student.
func (h *Handler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	st, err := h.fees.RecordPayment(c.Param("id"), service.PaymentInput{
		Amount:         req.Amount,
		Mode:           req.Mode,
		ReferenceImage: req.ReferenceImage,
	})
	if err != nil {
		h.paymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": st})
}

// RecordPaymentBatch appends several payments to a student in one call.
func (h *Handler) RecordPaymentBatch(c *gin.Context) {
	var req paymentBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	ins := make([]service.PaymentInput, len(req.Payments))
	for i, p := range req.Payments {
		ins[i] = service.PaymentInput{Amount: p.Amount, Mode: p.Mode, ReferenceImage: p.ReferenceImage}
	}
	st, err := h.fees.RecordPayments(c.Param("id"), ins)
	if err != nil {
		h.paymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": st})
}

func (h *Handler) paymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, state.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidPaymentMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
	}
}

// Ledger returns the per-student fee summary, payments newest first.
func (h *Handler) Ledger(c *gin.Context) {
	ledger, err := h.fees.Ledger(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// Transactions returns institute-wide payments, newest first.
func (h *Handler) Transactions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"transactions": h.fees.Transactions(0)})
}

// Dashboard returns the aggregate cards and chart series.
func (h *Handler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Stats())
}

// --- team & batches & profile picture ---

type teamMemberRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required"`
}

type batchRequest struct {
	Name string `json:"name" binding:"required"`
}

type profilePictureRequest struct {
	Picture string `json:"picture" binding:"required"`
}

// ListTeam returns the team members.
func (h *Handler) ListTeam(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"teamMembers": h.settings.TeamMembers()})
}

// AddTeamMember adds a team member.
func (h *Handler) AddTeamMember(c *gin.Context) {
	var req teamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	tm := h.settings.AddTeamMember(req.Name, req.Role)
	c.JSON(http.StatusCreated, gin.H{"teamMember": tm})
}

// RemoveTeamMember removes a team member by id.
func (h *Handler) RemoveTeamMember(c *gin.Context) {
	h.settings.RemoveTeamMember(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ListBatches returns the batch names.
func (h *Handler) ListBatches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"batches": h.settings.Batches()})
}

// AddBatch adds a batch name; duplicates are ignored.
func (h *Handler) AddBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	added := h.settings.AddBatch(req.Name)
	c.JSON(http.StatusOK, gin.H{"added": added, "batches": h.settings.Batches()})
}

// RemoveBatch removes a batch name. Students keep their label.
func (h *Handler) RemoveBatch(c *gin.Context) {
	h.settings.RemoveBatch(c.Param("name"))
	c.Status(http.StatusNoContent)
}

// GetProfilePicture returns the institute profile image.
func (h *Handler) GetProfilePicture(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"picture": h.settings.ProfilePicture()})
}

// SetProfilePicture replaces the institute profile image.
func (h *Handler) SetProfilePicture(c *gin.Context) {
	var req profilePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	h.settings.SetProfilePicture(req.Picture)
	c.Status(http.StatusNoContent)
}

// --- sync ---

type connectRequest struct {
	Code string `json:"code" binding:"required"`
}

// SyncAuthURL returns the provider consent URL for the connect button.
func (h *Handler) SyncAuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.syncs.AuthURL(c.Query("state"))})
}

// SyncConnect exchanges the authorization code and pulls the remote document.
func (h *Handler) SyncConnect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.syncs.Connect(c.Request.Context(), req.Code); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Authorization failed"})
		return
	}
	c.JSON(http.StatusOK, h.syncs.Status())
}

// SyncDisconnect revokes the grant and resets the engine. Idempotent.
func (h *Handler) SyncDisconnect(c *gin.Context) {
	if err := h.syncs.Disconnect(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect"})
		return
	}
	c.JSON(http.StatusOK, h.syncs.Status())
}

// SyncNow forces an immediate push.
func (h *Handler) SyncNow(c *gin.Context) {
	if err := h.syncs.SyncNow(c.Request.Context()); err != nil {
		if errors.Is(err, syncengine.ErrDisconnected) {
			c.JSON(http.StatusConflict, gin.H{"error": "Not connected to remote store"})
			return
		}
		// Failure detail stays in the logs; the indicator shows ERROR.
	}
	c.JSON(http.StatusOK, h.syncs.Status())
}

// SyncStatus returns the sync indicator.
func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.syncs.Status())
}
