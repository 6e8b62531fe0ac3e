package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBudget(t *testing.T) {
	s := newTestStore(t)
	sess := newTestUser(t, s, "ana@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())

	budget, err := s.CreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, budget.EventID)
	assert.Equal(t, sess.UserID, budget.UserID)
	assert.Equal(t, domain.DefaultCategories, []string(budget.Categories))
	assert.Zero(t, budget.TotalAmount)

	_, err = s.CreateBudget(ctx, sess, event.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := s.GetEventBudget(ctx, sess, event.ID)
	require.NoError(t, err)
	assert.Equal(t, budget.ID, got.ID)
}

func TestCreateBudget_UnknownEvent(t *testing.T) {
	s := newTestStore(t)
	owner := newTestUser(t, s, "ana@example.com")
	other := newTestUser(t, s, "bob@example.com")
	event := newTestEvent(t, s, owner, "Gala", time.Now())

	_, err := s.CreateBudget(context.Background(), other, event.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetOrCreateBudget(context.Background(), owner, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddBudgetItem(t *testing.T) {
	s := newTestStore(t)
	sess := newTestUser(t, s, "ana@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())
	budget, err := s.GetOrCreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)

	item, updated, err := s.AddBudgetItem(ctx, sess, budget.ID, domain.NewBudgetItem{
		Category:    "Sound",
		Description: " Line array ",
		Amount:      2500.75,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Line array", item.Description)
	assert.Len(t, updated.Items, 1)
	assert.InDelta(t, 2500.75, updated.TotalAmount, 1e-9)
	assert.Equal(t, budget.Version+1, updated.Version)

	stored, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, item.ID, stored.Items[0].ID)
	assert.InDelta(t, 2500.75, stored.TotalAmount, 1e-9)
	assert.Equal(t, updated.Version, stored.Version)
	require.NotNil(t, stored.UpdatedAt)
}

func TestAddBudgetItem_Rejects(t *testing.T) {
	s := newTestStore(t)
	sess := newTestUser(t, s, "ana@example.com")
	other := newTestUser(t, s, "bob@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())
	budget, err := s.GetOrCreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)

	_, _, err = s.AddBudgetItem(ctx, sess, budget.ID, domain.NewBudgetItem{Category: "Catering", Description: "Food", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = s.AddBudgetItem(ctx, sess, budget.ID, domain.NewBudgetItem{Category: "Sound", Description: "PA", Amount: -5})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = s.AddBudgetItem(ctx, other, budget.ID, domain.NewBudgetItem{Category: "Sound", Description: "PA", Amount: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
	assert.Zero(t, stored.Version)
}

func TestAddBudgetItem_ConcurrentWritesAllLand(t *testing.T) {
	const writers = 8
	s := newTestStore(t, WithWriteAttempts(writers+2))
	sess := newTestUser(t, s, "ana@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())
	budget, err := s.GetOrCreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.AddBudgetItem(ctx, sess, budget.ID, domain.NewBudgetItem{
				Category:    domain.DefaultCategories[i%len(domain.DefaultCategories)],
				Description: fmt.Sprintf("item %d", i),
				Amount:      float64(i + 1),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, writers)
	assert.InDelta(t, float64(writers*(writers+1)/2), stored.TotalAmount, 1e-9)
	assert.InDelta(t, stored.ItemsTotal(), stored.TotalAmount, 1e-9)
	assert.Equal(t, uint(writers), stored.Version)
}

func TestSaveBudget_StaleVersion(t *testing.T) {
	s := newTestStore(t)
	sess := newTestUser(t, s, "ana@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())
	budget, err := s.GetOrCreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)

	first, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)
	second, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)

	now := time.Now()
	first.AppendItem(domain.BudgetItem{ID: "a", Category: "Sound", Description: "PA", Amount: 10, CreatedAt: domain.StoreTime(now)}, now)
	require.NoError(t, s.saveBudget(ctx, first))

	// second was read before first was written
	second.AppendItem(domain.BudgetItem{ID: "b", Category: "Image", Description: "LED", Amount: 20, CreatedAt: domain.StoreTime(now)}, now)
	err = s.saveBudget(ctx, second)
	assert.True(t, errors.Is(err, errStaleVersion))

	stored, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "a", stored.Items[0].ID)
}

func TestUpdateBudget_ExhaustedRetriesIsConflict(t *testing.T) {
	s := newTestStore(t, WithWriteAttempts(3))
	sess := newTestUser(t, s, "ana@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())
	budget, err := s.GetOrCreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)

	attempts := 0
	_, err = s.updateBudget(ctx, sess, budget.ID, func(b *domain.Budget) error {
		attempts++
		// Another writer lands between every read and write
		require.NoError(t, s.db.Model(&domain.Budget{}).Where("id = ?", b.ID).
			Update("version", b.Version+1).Error)
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, attempts)
}

func TestGetOrCreateBudget_ConcurrentCallersShareOneBudget(t *testing.T) {
	const callers = 6
	s := newTestStore(t)
	sess := newTestUser(t, s, "ana@example.com")
	event := newTestEvent(t, s, sess, "Gala", time.Now())

	var wg sync.WaitGroup
	ids := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := s.GetOrCreateBudget(context.Background(), sess, event.ID)
			errs[i] = err
			if err == nil {
				ids[i] = b.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	var count int64
	require.NoError(t, s.db.Model(&domain.Budget{}).Where("event_id = ?", event.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAttachFile(t *testing.T) {
	s := newTestStore(t)
	sess := newTestUser(t, s, "ana@example.com")
	ctx := context.Background()
	event := newTestEvent(t, s, sess, "Gala", time.Now())
	budget, err := s.GetOrCreateBudget(ctx, sess, event.ID)
	require.NoError(t, err)
	item, _, err := s.AddBudgetItem(ctx, sess, budget.ID, domain.NewBudgetItem{Category: "Lighting", Description: "Rig", Amount: 900})
	require.NoError(t, err)

	attachment := domain.Attachment{Path: "events/e/budgets/u/1-quote.pdf", Name: "quote.pdf", URL: "http://localhost/files/events/e/budgets/u/1-quote.pdf"}
	attached, updated, err := s.AttachFile(ctx, sess, budget.ID, item.ID, attachment)
	require.NoError(t, err)
	require.NotNil(t, attached.Attachment)
	assert.Equal(t, attachment, *attached.Attachment)
	assert.InDelta(t, 900, updated.TotalAmount, 1e-9)

	// The first attachment stays
	_, _, err = s.AttachFile(ctx, sess, budget.ID, item.ID, domain.Attachment{Path: "p", Name: "n", URL: "u"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = s.AttachFile(ctx, sess, budget.ID, "missing", attachment)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = s.AttachFile(ctx, sess, budget.ID, item.ID, domain.Attachment{Path: "p"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := s.GetBudget(ctx, sess, budget.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Items[0].Attachment)
	assert.Equal(t, attachment.Path, stored.Items[0].Attachment.Path)
}
