package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/record/repository"
	"searchsync-backend/internal/sync/dto"
	"searchsync-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

// noticeDismissedKey stores the RFC3339 time until which the error
// notice stays hidden
const noticeDismissedKey = "error_notice_dismissed_until"

// ConnectionTester is the diagnostic passthrough to the remote API
type ConnectionTester interface {
	TestConnection(ctx context.Context, target string) (int, string, error)
}

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
	settings    repository.SettingsRepository
	tester      ConnectionTester
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase, settings repository.SettingsRepository, tester ConnectionTester) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
		settings:    settings,
		tester:      tester,
	}
}

// Callback receives an asynchronous completion notice from the remote API.
// Authenticated solely by the uid match against the stored sync state.
func (h *SyncHandler) Callback(c *gin.Context) {
	uid := c.Param("uid")

	var payload dto.CallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	err := h.syncUsecase.HandleCallback(c.Request.Context(), uid, &payload)
	if err != nil {
		if errors.Is(err, usecase.ErrMalformedCallback) || errors.Is(err, usecase.ErrStaleCallback) {
			// Logged upstream; an explicit response instead of a bare drop
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Initiate clears sync status and returns the eligible-count snapshot
func (h *SyncHandler) Initiate(c *gin.Context) {
	var req dto.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.syncUsecase.Initiate(req.ErrorsOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProcessNext claims and dispatches the next batch page
func (h *SyncHandler) ProcessNext(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.syncUsecase.ProcessNextPage(c.Request.Context(), req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Validate reconciles local statuses against the remote index
func (h *SyncHandler) Validate(c *gin.Context) {
	resp, err := h.syncUsecase.Validate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TestConnection forwards a diagnostic request to the remote API and
// returns the raw response without mutating any state
func (h *SyncHandler) TestConnection(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	_ = c.ShouldBindJSON(&req)

	status, body, err := h.tester.TestConnection(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "status_code": status, "response": body})
}

// Notice reports how many records sit in ERROR, honoring a 24h dismissal
func (h *SyncHandler) Notice(c *gin.Context) {
	count, err := h.syncUsecase.ErrorCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dismissed := false
	if raw, err := h.settings.Get(noticeDismissedKey); err == nil && raw != "" {
		if until, perr := time.Parse(time.RFC3339, raw); perr == nil && time.Now().Before(until) {
			dismissed = true
		}
	}

	c.JSON(http.StatusOK, gin.H{"errors": count, "dismissed": dismissed})
}

// DismissNotice hides the error notice for 24 hours
func (h *SyncHandler) DismissNotice(c *gin.Context) {
	until := time.Now().Add(24 * time.Hour)
	if err := h.settings.Set(noticeDismissedKey, until.Format(time.RFC3339)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed_until": until.Format(time.RFC3339)})
}

// SyncRecord triggers a gated dispatch for one record
func (h *SyncHandler) SyncRecord(c *gin.Context) {
	h.triggerRecord(c, false)
}

// DeleteRecord triggers a delete dispatch for one record
func (h *SyncHandler) DeleteRecord(c *gin.Context) {
	h.triggerRecord(c, true)
}

func (h *SyncHandler) triggerRecord(c *gin.Context, deleted bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	result, err := h.syncUsecase.SyncRecord(c.Request.Context(), uint(id), deleted)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch result.Outcome {
	case usecase.DispatchAccepted:
		c.JSON(http.StatusOK, gin.H{"status": "publishing", "response": result.Response})
	case usecase.DispatchBusy:
		// Non-fatal rejection: a publish is already in progress
		c.JSON(http.StatusConflict, gin.H{"status": "busy", "message": result.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": result.Message})
	}
}

// RecordStatus returns the resolved status plus its presentation data
func (h *SyncHandler) RecordStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	status, err := h.syncUsecase.ResolveStatus(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	merge := c.Query("merge_publishing") == "true"
	info := domain.Describe(status, merge)
	c.JSON(http.StatusOK, gin.H{"status": status, "color": info.Color, "title": info.Title})
}
