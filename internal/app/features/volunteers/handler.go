// internal/app/features/volunteers/handler.go
package volunteers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	volunteerstore "github.com/dalemusser/hopenest/internal/app/store/volunteers"
	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/normalize"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNotFound = "Volunteer not found"

type Handler struct {
	Volunteers *volunteerstore.Store
	Log        *zap.Logger
}

func NewHandler(store *volunteerstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Volunteers: store, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Requests                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type signupRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	CampaignID   string   `json:"campaignId"`
	Availability string   `json:"availability"`
	Skills       []string `json:"skills"`
	Message      string   `json:"message"`

	campaign *primitive.ObjectID
}

func (r *signupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return inputval.New("name", "Name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return inputval.New("email", "Email is required")
	}
	if !inputval.IsValidEmail(normalize.Email(r.Email)) {
		return inputval.New("email", "Please enter a valid email address")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return inputval.New("phone", "Phone is required")
	}
	if r.Availability != "" && !inputval.OneOf(r.Availability,
		models.AvailabilityWeekdays, models.AvailabilityWeekends, models.AvailabilityAny) {
		return inputval.New("availability", "Availability must be weekdays, weekends or any")
	}
	id, ok := params.OptionalObjectID(strings.TrimSpace(r.CampaignID))
	if !ok {
		return inputval.New("campaignId", "Invalid campaign id")
	}
	r.campaign = id
	return nil
}

type statusRequest struct {
	Status string `json:"status"`
}

func (r *statusRequest) Validate() error {
	if !inputval.OneOf(r.Status, models.VolunteerActive, models.VolunteerArchived) {
		return inputval.New("status", "Status must be active or archived")
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// POST /api/volunteers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var req signupRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "volunteers.create")
	defer cancel()

	v, err := h.Volunteers.Create(ctx, models.Volunteer{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalize.Email(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		UserID:       uid,
		CampaignID:   req.campaign,
		Availability: req.Availability,
		Skills:       normalize.List(req.Skills),
		Message:      strings.TrimSpace(req.Message),
	})
	if err != nil {
		respond.Internal(w, h.Log, "Failed to save volunteer", err, zap.String("user_id", uid.Hex()))
		return
	}
	h.Log.Info("volunteer signed up", zap.String("volunteer_id", v.ID.Hex()), zap.String("user_id", uid.Hex()))
	respond.JSON(w, http.StatusCreated, map[string]any{"success": true, "volunteer": v})
}

// GET /api/volunteers (admin)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "volunteers.list")
	defer cancel()

	list, err := h.Volunteers.ListAll(ctx)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to fetch volunteers", err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// GET /api/volunteers/my
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "volunteers.mine")
	defer cancel()

	list, err := h.Volunteers.ListByUser(ctx, uid)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to fetch user volunteers", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "volunteers": list})
}

// PUT /api/volunteers/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}
	var req statusRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	if !h.authorize(w, r, id) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "volunteers.status")
	defer cancel()

	v, err := h.Volunteers.SetStatus(ctx, id, req.Status)
	if errors.Is(err, volunteerstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to update volunteer", err, zap.String("volunteer_id", id.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "volunteer": v})
}

// DELETE /api/volunteers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}

	if !h.authorize(w, r, id) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "volunteers.delete")
	defer cancel()

	err := h.Volunteers.Delete(ctx, id)
	if errors.Is(err, volunteerstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to delete volunteer", err, zap.String("volunteer_id", id.Hex()))
		return
	}
	h.Log.Info("volunteer deleted", zap.String("volunteer_id", id.Hex()))
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Volunteer deleted"})
}

// authorize lets the owner or an admin through. Missing records are 404 for
// everyone.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) bool {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "volunteers.load")
	defer cancel()

	v, err := h.Volunteers.GetByID(ctx, id)
	if errors.Is(err, volunteerstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return false
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load volunteer", err, zap.String("volunteer_id", id.Hex()))
		return false
	}
	if !authz.CanManage(r, v.UserID) {
		respond.Error(w, http.StatusForbidden, respond.CodeForbidden, "Not allowed to modify this volunteer")
		return false
	}
	return true
}
