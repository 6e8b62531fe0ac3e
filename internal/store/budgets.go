package store

import (
	"context" // Context for database operations
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"math"    // Float checks

	"eventflow/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// errStaleVersion reports that another writer updated the budget first
var errStaleVersion = errors.New("budget version changed")

// totalDriftTolerance absorbs float rounding when checking totals on read
const totalDriftTolerance = 1e-6

// CreateBudget creates the empty budget of one of the session user's events.
// A second budget for the same event yields ErrConflict.
func (s *Store) CreateBudget(ctx context.Context, sess domain.Session, eventID string) (*domain.Budget, error) {
	if _, err := s.GetEvent(ctx, sess, eventID); err != nil {
		return nil, err
	}
	budget := domain.NewBudget(s.newID(), sess.UserID, eventID, s.now()) // Empty budget with default categories
	if err := s.db.WithContext(ctx).Create(budget).Error; err != nil {
		if isDuplicate(err) {
			return nil, domain.Conflictf("budget for event %s already exists", eventID)
		}
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return budget, nil
}

// GetEventBudget returns the session user's budget for an event
func (s *Store) GetEventBudget(ctx context.Context, sess domain.Session, eventID string) (*domain.Budget, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var budget domain.Budget // Fetch budget from database
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, sess.UserID).
		Order("created_at desc").
		First(&budget).Error
	if isNotFound(err) {
		return nil, domain.NotFoundf("budget for event %s", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("get event budget: %w", err)
	}
	if err := s.checkBudget(&budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

// GetBudget returns one of the session user's budgets by id
func (s *Store) GetBudget(ctx context.Context, sess domain.Session, budgetID string) (*domain.Budget, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var budget domain.Budget
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, sess.UserID).
		First(&budget).Error
	if isNotFound(err) {
		return nil, domain.NotFoundf("budget %s", budgetID)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	if err := s.checkBudget(&budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

// GetOrCreateBudget returns the event's budget, creating it on first access.
// Concurrent callers for the same event all receive the same budget: the
// unique (event_id, user_id) index lets one create win and the rest re-read it.
func (s *Store) GetOrCreateBudget(ctx context.Context, sess domain.Session, eventID string) (*domain.Budget, error) {
	budget, err := s.GetEventBudget(ctx, sess, eventID)
	if err == nil {
		return budget, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	budget, err = s.CreateBudget(ctx, sess, eventID)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"user_id":   sess.UserID,
			"event_id":  eventID,
			"budget_id": budget.ID,
		}).Info("Budget created")
		return budget, nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
		return nil, err
	}

	// Lost the create race (or the insert failed for another reason): the
	// winner's budget is the answer when it exists.
	if existing, getErr := s.GetEventBudget(ctx, sess, eventID); getErr == nil {
		return existing, nil
	}
	return nil, err
}

// AddBudgetItem appends an item to the budget and adds its amount to the total.
// The write only applies when the budget is unchanged since it was read; on a
// conflict the budget is re-read and the append retried. It returns the new
// item and the budget as written.
func (s *Store) AddBudgetItem(ctx context.Context, sess domain.Session, budgetID string, in domain.NewBudgetItem) (*domain.BudgetItem, *domain.Budget, error) {
	var added domain.BudgetItem
	budget, err := s.updateBudget(ctx, sess, budgetID, func(b *domain.Budget) error {
		item := in
		if err := b.ValidateItem(&item); err != nil {
			return err
		}
		now := s.now()
		added = domain.BudgetItem{
			ID:          s.newID(),
			Category:    item.Category,
			Description: item.Description,
			Amount:      item.Amount,
			Attachment:  item.Attachment,
			CreatedAt:   domain.StoreTime(now),
		}
		b.AppendItem(added, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &added, budget, nil
}

// AttachFile sets the attachment of an existing item. Items keep the first
// attachment they receive.
func (s *Store) AttachFile(ctx context.Context, sess domain.Session, budgetID, itemID string, attachment domain.Attachment) (*domain.BudgetItem, *domain.Budget, error) {
	if err := s.validate.Struct(attachment); err != nil {
		return nil, nil, domain.Validationf("attachment: %v", err)
	}
	var updated domain.BudgetItem
	budget, err := s.updateBudget(ctx, sess, budgetID, func(b *domain.Budget) error {
		i := b.FindItem(itemID)
		if i < 0 {
			return domain.NotFoundf("item %s in budget %s", itemID, budgetID)
		}
		if b.Items[i].Attachment != nil {
			return domain.Validationf("item %s already has an attachment", itemID)
		}
		now := domain.StoreTime(s.now())
		a := attachment
		b.Items[i].Attachment = &a
		b.Items[i].UpdatedAt = &now
		b.UpdatedAt = &now
		updated = b.Items[i]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, budget, nil
}

// updateBudget runs a read-mutate-write cycle guarded by the version column
func (s *Store) updateBudget(ctx context.Context, sess domain.Session, budgetID string, mutate func(*domain.Budget) error) (*domain.Budget, error) {
	for attempt := 1; attempt <= s.writeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err // Caller gave up
		}
		budget, err := s.GetBudget(ctx, sess, budgetID)
		if err != nil {
			return nil, err
		}
		if err := mutate(budget); err != nil {
			return nil, err
		}
		err = s.saveBudget(ctx, budget)
		if err == nil {
			return budget, nil
		}
		if !errors.Is(err, errStaleVersion) {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"budget_id": budgetID,
			"attempt":   attempt,
		}).Debug("Budget write conflict, retrying")
	}
	return nil, domain.Conflictf("budget %s is being updated concurrently, try again", budgetID)
}

// saveBudget writes items, total and timestamp when the stored version still
// matches the one that was read, and bumps the version.
func (s *Store) saveBudget(ctx context.Context, b *domain.Budget) error {
	res := s.db.WithContext(ctx).Model(&domain.Budget{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]any{
			"items":        b.Items,
			"total_amount": b.TotalAmount,
			"updated_at":   b.UpdatedAt,
			"version":      gorm.Expr("version + 1"), // Bump on every write
		})
	if res.Error != nil {
		return fmt.Errorf("save budget: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errStaleVersion // Another writer got there first
	}
	b.Version++
	return nil
}

func (s *Store) checkBudget(b *domain.Budget) error {
	if err := s.checkDocument("budget", b.ID, b); err != nil {
		return err
	}
	if drift := b.TotalDrift(); math.Abs(drift) > totalDriftTolerance {
		logrus.WithFields(logrus.Fields{
			"budget_id":    b.ID,
			"total_amount": b.TotalAmount,
			"items_total":  b.ItemsTotal(),
		}).Warn("Budget total does not match its items")
	}
	return nil
}
