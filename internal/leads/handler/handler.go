package handler

import (
	"context"
	"net/http"

	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/pipeline"
	"leadqualify_backend/internal/leads/repository"
	"leadqualify_backend/internal/leads/transport"
	"leadqualify_backend/platform/apperr"
	"leadqualify_backend/platform/httpkit"
	"leadqualify_backend/platform/validator"

	"github.com/gin-gonic/gin"
	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgQueueDisabled    = "qualification queue is not configured"
	msgTenantMismatch   = "tenantId does not match the caller's tenant"
	msgBatchFailed      = "failed to fetch new leads"

	tagLeadStatus = "leadstatus"
)

// BatchRunner runs one qualification batch.
type BatchRunner interface {
	RunBatch(ctx context.Context, params pipeline.BatchParams) (pipeline.BatchSummary, error)
}

// BatchEnqueuer schedules a qualification batch on the task queue.
type BatchEnqueuer interface {
	EnqueueQualifyBatch(ctx context.Context, tenantID *uuid.UUID, limit int) (string, error)
}

// PendingLister lists leads by status.
type PendingLister interface {
	ListByStatus(ctx context.Context, params repository.ListParams) ([]domain.Lead, error)
}

type Handler struct {
	runner   BatchRunner
	enqueuer BatchEnqueuer
	leads    PendingLister
	val      *validator.Validator
}

// New builds the qualification handler. enqueuer may be nil when no queue is configured.
// It registers the leadstatus rule on val.
func New(runner BatchRunner, enqueuer BatchEnqueuer, leads PendingLister, val *validator.Validator) *Handler {
	_ = val.RegisterValidation(tagLeadStatus, func(fl playground.FieldLevel) bool {
		return domain.IsKnownStatus(domain.LeadStatus(fl.Field().String()))
	})
	return &Handler{runner: runner, enqueuer: enqueuer, leads: leads, val: val}
}

// RegisterRoutes mounts the operator trigger surface on an admin group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, triggerLimit gin.HandlerFunc) {
	rg.POST("/process", triggerLimit, h.Process)
	rg.POST("/enqueue", triggerLimit, h.Enqueue)
	rg.GET("/pending", h.ListPending)
}

// Process runs a batch synchronously and returns its summary.
func (h *Handler) Process(c *gin.Context) {
	var req transport.RunQualificationRequest
	if !h.bindQuery(c, &req) {
		return
	}

	tenantID, err := scopeTenant(c, req.TenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	// The batch owns claims on leads; a client disconnect must not abort it midway.
	ctx := context.WithoutCancel(c.Request.Context())
	summary, err := h.runner.RunBatch(ctx, pipeline.BatchParams{
		TenantID: tenantID,
		Limit:    req.Limit,
		Trigger:  pipeline.TriggerHTTP,
	})
	if err != nil {
		// The cause stays in the request log; callers get a fixed message.
		_ = c.Error(err)
		httpkit.JSON(c, http.StatusInternalServerError, transport.QualificationErrorResponse{
			Success: false,
			Error:   msgBatchFailed,
		})
		return
	}

	httpkit.OK(c, summary.Response())
}

// Enqueue schedules a batch on the task queue and returns immediately.
func (h *Handler) Enqueue(c *gin.Context) {
	if h.enqueuer == nil {
		httpkit.HandleError(c, apperr.Unavailable(msgQueueDisabled))
		return
	}

	var req transport.RunQualificationRequest
	if !h.bindQuery(c, &req) {
		return
	}

	tenantID, err := scopeTenant(c, req.TenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	taskID, err := h.enqueuer.EnqueueQualifyBatch(c.Request.Context(), tenantID, req.Limit)
	if err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to enqueue qualification batch", err))
		return
	}

	httpkit.JSON(c, http.StatusAccepted, transport.EnqueueQualificationResponse{Queued: true, TaskID: taskID})
}

// ListPending shows leads waiting for qualification (status new by default).
func (h *Handler) ListPending(c *gin.Context) {
	var req transport.PendingLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	tenantID, err := scopeTenant(c, req.TenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	status := domain.LeadStatus(req.Status)
	if status == "" {
		status = domain.LeadStatusNew
	}

	leads, err := h.leads.ListByStatus(c.Request.Context(), repository.ListParams{
		Status:   status,
		TenantID: tenantID,
		Limit:    req.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to list leads", err))
		return
	}

	items := make([]transport.PendingLeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, transport.PendingLeadResponse{
			ID:                    l.ID,
			ClientID:              l.ClientID,
			Name:                  l.Name,
			Email:                 l.Email,
			Status:                string(l.Status),
			QualificationAttempts: l.QualificationAttempts,
			LastError:             l.LastError,
			CreatedAt:             l.CreatedAt,
		})
	}
	httpkit.OK(c, transport.PendingLeadsResponse{Items: items})
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

// scopeTenant pins tenant-bound callers to their own tenant. Platform
// operators (no tenant claim) may target any tenant or all of them.
func scopeTenant(c *gin.Context, requested string) (*uuid.UUID, error) {
	reqTenant := transport.ParseTenantID(requested)

	own := httpkit.GetIdentity(c).TenantID()
	if own == nil {
		return reqTenant, nil
	}
	if reqTenant != nil && *reqTenant != *own {
		return nil, apperr.Forbidden(msgTenantMismatch)
	}
	return own, nil
}
