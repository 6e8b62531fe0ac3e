package api

import (
	"context"  // Cleanup of stored objects
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"time"     // Storage path timestamps

	"eventflow/internal/domain"     // Importing domain models
	"eventflow/internal/middleware" // Session access
	"eventflow/internal/storage"    // Object store and upload helpers
	"eventflow/internal/store"      // Document store
	"eventflow/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// multipartOverhead is the room left for multipart headers above MaxFileSize
const multipartOverhead = 1 << 20

// BudgetResponse is a budget with its per-category aggregates
type BudgetResponse struct {
	Budget         *domain.Budget         `json:"budget"`
	CategoryTotals []domain.CategoryTotal `json:"category_totals"`
}

// AddItemRequest is the body of POST /budgets/:id/items
type AddItemRequest struct {
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required,gte=0"` // Zero is a valid amount
}

// ItemResponse is a budget item together with the budget total after the write
type ItemResponse struct {
	Item        *domain.BudgetItem `json:"item"`
	TotalAmount float64            `json:"total_amount"`
}

func newBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{Budget: b, CategoryTotals: b.CategoryTotals()}
}

// GetEventBudgetHandler returns the event's budget, creating it on first access
func GetEventBudgetHandler(st *store.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		eventID := c.Param("id")
		key := utils.BudgetKey(sess.UserID, eventID)

		var cached BudgetResponse
		if cache.Get(ctx, key, &cached) && cached.Budget != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
		budget, err := st.GetOrCreateBudget(ctx, sess, eventID)
		if err != nil {
			respondError(c, err, "Failed to load budget", logrus.Fields{"user_id": sess.UserID, "event_id": eventID})
			return
		}
		resp := newBudgetResponse(budget)
		cache.Set(ctx, key, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// AddBudgetItemHandler appends an item to one of the caller's budgets
func AddBudgetItemHandler(st *store.Store, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AddItemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		budgetID := c.Param("id")
		item, budget, err := st.AddBudgetItem(ctx, sess, budgetID, domain.NewBudgetItem{
			Category:    req.Category,
			Description: req.Description,
			Amount:      *req.Amount,
		})
		if err != nil {
			respondError(c, err, "Failed to add budget item", logrus.Fields{"user_id": sess.UserID, "budget_id": budgetID})
			return
		}
		cache.Invalidate(ctx, utils.BudgetKey(sess.UserID, budget.EventID))
		logrus.WithFields(logrus.Fields{
			"user_id":   sess.UserID,
			"budget_id": budgetID,
			"item_id":   item.ID,
			"amount":    item.Amount,
		}).Info("Budget item added")
		c.JSON(http.StatusCreated, ItemResponse{Item: item, TotalAmount: budget.TotalAmount})
	}
}

// UploadAttachmentHandler stores a multipart "file" and attaches it to a budget item.
// The declared size and type are checked first, then the content itself is sniffed.
func UploadAttachmentHandler(st *store.Store, objects storage.ObjectStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		budgetID, itemID := c.Param("id"), c.Param("itemId")
		fields := logrus.Fields{"user_id": sess.UserID, "budget_id": budgetID, "item_id": itemID}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxFileSize+multipartOverhead)
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "File size must be less than 5MB"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}
		if err := storage.ValidateFile(storage.FileInfo{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		}); err != nil {
			respondError(c, err, "Rejected upload", fields)
			return
		}

		// Check the target before moving any bytes
		budget, err := st.GetBudget(ctx, sess, budgetID)
		if err != nil {
			respondError(c, err, "Failed to load budget", fields)
			return
		}
		i := budget.FindItem(itemID)
		if i < 0 {
			respondError(c, domain.NotFoundf("item %s in budget %s", itemID, budgetID), "Unknown budget item", fields)
			return
		}
		if budget.Items[i].Attachment != nil {
			respondError(c, domain.Validationf("item %s already has an attachment", itemID), "Rejected upload", fields)
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(c, err, "Failed to read upload", fields)
			return
		}
		defer f.Close()
		contentType, content, err := storage.SniffContent(f)
		if err != nil {
			respondError(c, err, "Rejected upload", fields)
			return
		}

		task := storage.Upload(ctx, objects,
			storage.GenerateStoragePath(sess.UserID, budget.EventID, fh.Filename, time.Now()),
			content, fh.Size,
			func(p storage.Progress) {
				logrus.WithFields(logrus.Fields{"budget_id": budgetID, "percent": p.Percent}).Debug("Upload progress")
			})
		path := task.Path()
		fields["path"] = path
		url, err := task.Wait()
		if err != nil {
			respondError(c, err, "Failed to store file", fields)
			return
		}

		item, updated, err := st.AttachFile(ctx, sess, budgetID, itemID, domain.Attachment{
			Path: path,
			Name: fh.Filename,
			URL:  url,
		})
		if err != nil {
			// Do not leave an object nothing points to
			if delErr := objects.Delete(context.WithoutCancel(ctx), path); delErr != nil {
				logrus.WithFields(logrus.Fields{"path": path, "error": delErr.Error()}).Warn("Failed to remove unattached object")
			}
			respondError(c, err, "Failed to attach file", fields)
			return
		}
		cache.Invalidate(ctx, utils.BudgetKey(sess.UserID, updated.EventID))
		logrus.WithFields(logrus.Fields{
			"user_id":      sess.UserID,
			"budget_id":    budgetID,
			"item_id":      itemID,
			"path":         path,
			"content_type": contentType,
			"size":         fh.Size,
		}).Info("Attachment stored")
		c.JSON(http.StatusCreated, ItemResponse{Item: item, TotalAmount: updated.TotalAmount})
	}
}
