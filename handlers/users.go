// users.go - Identity provider webhook and admin user management
// This file keeps the local users table in step with the identity provider:
// 1. Signed user.* events create, update and delete users
// 2. Admins change roles
// 3. Every stored role is mirrored back to the provider through the role sync outbox

package handlers // Declares the package name

import ( // Import required packages
	"context"  // Background delivery
	"errors"   // Sentinel checks
	"io"       // Raw body reads
	"net/http" // HTTP status codes

	"go-marketplace-backend/database"   // Database connection
	"go-marketplace-backend/identity"   // Webhook verification and payloads
	"go-marketplace-backend/logger"     // Structured logging
	"go-marketplace-backend/metrics"    // Webhook counters
	"go-marketplace-backend/middleware" // Caller lookup
	"go-marketplace-backend/models"     // Roles
	"go-marketplace-backend/mqtt"       // User change notifications
	"go-marketplace-backend/outbox"     // Role sync delivery
	"go-marketplace-backend/services"   // User service layer

	"github.com/gin-gonic/gin" // Gin web framework
)

const maxWebhookBody = 1 << 20 // 1 MiB

// Users - Handlers that need the webhook verifier and the role sync dispatcher
type Users struct {
	verifier   identity.Verifier
	dispatcher *outbox.Dispatcher
	log        logger.Logger
}

// NewUsers - Builds the user handlers. dispatcher may be nil, leaving rows for a later drain.
func NewUsers(verifier identity.Verifier, dispatcher *outbox.Dispatcher) *Users {
	return &Users{verifier: verifier, dispatcher: dispatcher, log: logger.With("component", "users")}
}

// deliver - Makes one bounded push of a recorded role. Anything short of success stays
// pending in the outbox for the background loop, so it is only logged and never fails the request.
func (h *Users) deliver(ctx context.Context, sync *models.RoleSync) {
	if h.dispatcher == nil || sync == nil {
		return
	}
	if err := h.dispatcher.DeliverNow(ctx, sync.ID); err != nil {
		h.log.Warn("role push deferred", "sync_id", sync.ID, "user_id", sync.UserID, "err", err)
	}
}

// Webhook - POST /api/webhooks
//
// Request Flow:
// 1. Verify the signature over the raw body (400 when invalid, nothing is read)
// 2. Decode the event
// 3. user.created / user.updated: upsert by email, then push the stored role
// 4. user.deleted: delete by id
// 5. Anything else is acknowledged and ignored
//
// Storage failures answer 500 so the provider redelivers; handling is idempotent.
func (h *Users) Webhook(c *gin.Context) {
	msgID := c.GetHeader("svix-id")

	// STEP 1: Verify the signature before touching the payload
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.reject(c, "unknown", "Error reading webhook body", err)
		return
	}
	if err := h.verifier.Verify(body, c.Request.Header); err != nil {
		h.reject(c, "unknown", "Error verifying webhook", err)
		return
	}

	// STEP 2: Decode the event
	evt, data, err := identity.ParseEvent(body)
	if err != nil {
		h.reject(c, "unknown", "Error parsing webhook", err)
		return
	}
	h.log.Info("webhook received", "msg_id", msgID, "type", evt.Type, "user_id", data.ID)

	ctx := c.Request.Context()
	switch evt.Type {
	// STEP 3: Create or update
	case identity.EventUserCreated, identity.EventUserUpdated:
		if data.ID == "" || data.Email() == "" {
			h.reject(c, evt.Type, "Missing required data", nil)
			return
		}
		user, sync, err := services.SyncUser(ctx, database.DB, services.SyncInput{
			ID:      data.ID,
			Email:   data.Email(),
			Name:    data.DisplayName(),
			Picture: data.ImageURL,
		})
		if err != nil {
			h.fail(c, evt.Type, err)
			return
		}
		h.log.Info("user upserted", "user_id", user.ID, "role", user.Role)
		h.deliver(ctx, sync)
		h.notify(evt.Type, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})

	// STEP 4: Delete
	case identity.EventUserDeleted:
		if data.ID == "" {
			h.reject(c, evt.Type, "Missing user ID", nil)
			return
		}
		deleted, err := services.DeleteUser(ctx, database.DB, data.ID)
		if errors.Is(err, services.ErrUserOwnsStores) {
			h.reject(c, evt.Type, "User owns stores", err)
			return
		}
		if err != nil {
			h.fail(c, evt.Type, err)
			return
		}
		h.log.Info("user deleted", "user_id", data.ID, "existed", deleted)
		h.notify(evt.Type, gin.H{"id": data.ID})

	// STEP 5: Unknown event types are acknowledged so the provider stops redelivering
	default:
		h.log.Debug("webhook ignored", "msg_id", msgID, "type", evt.Type)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "ignored").Inc()
		c.String(http.StatusOK, "Webhook received")
		return
	}

	metrics.WebhookEvents.WithLabelValues(evt.Type, "ok").Inc()
	c.String(http.StatusOK, "Webhook received")
}

// reject - Permanent failure: 400 with a plain-text description
func (h *Users) reject(c *gin.Context, eventType, msg string, err error) {
	h.log.Warn("webhook rejected", "type", eventType, "reason", msg, "err", err)
	metrics.WebhookEvents.WithLabelValues(eventType, "rejected").Inc()
	c.String(http.StatusBadRequest, msg)
}

// fail - Validation errors are permanent (400); anything else is retryable (500)
func (h *Users) fail(c *gin.Context, eventType string, err error) {
	if services.IsValidation(err) {
		h.reject(c, eventType, err.Error(), err)
		return
	}
	h.log.Error("webhook processing failed", "type", eventType, "err", err)
	metrics.WebhookEvents.WithLabelValues(eventType, "error").Inc()
	c.String(http.StatusInternalServerError, "Error processing webhook")
}

// notify - Announces a user change ("user.created" -> marketplace/users/created)
func (h *Users) notify(eventType string, payload interface{}) {
	action := eventType
	if len(eventType) > len("user.") {
		action = eventType[len("user."):]
	}
	if err := mqtt.Publish(mqtt.UserTopic(action), payload); err != nil {
		h.log.Warn("publish user change", "type", eventType, "err", err)
	}
}

// RoleInput - Body of PUT /api/admin/users/:id/role
type RoleInput struct {
	Role models.Role `json:"role" binding:"required,oneof=USER SELLER ADMIN"`
}

// ListUsers - GET /api/admin/users
func (h *Users) ListUsers(c *gin.Context) {
	users, err := services.ListUsers(c.Request.Context(), database.DB, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetRole - PUT /api/admin/users/:id/role stores the role and mirrors it to the provider
func (h *Users) SetRole(c *gin.Context) {
	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	caller := middleware.CallerFrom(c)
	user, sync, err := services.SetUserRole(c.Request.Context(), database.DB, caller, c.Param("id"), input.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("role changed", "user_id", user.ID, "role", user.Role, "by", caller.UserID)
	h.deliver(c.Request.Context(), sync)
	h.notify("user.updated", gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
	c.JSON(http.StatusOK, user)
}
