package leads

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/nwade/leadvault/internal/database/models"
	"github.com/nwade/leadvault/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLeadService(t *testing.T) (*Service, uuid.UUID) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	return NewService(db), user.ID
}

func sampleInput(email string) LeadInput {
	return LeadInput{
		FirstName: "Dana",
		LastName:  "Klein",
		Email:     email,
		Phone:     "+1-555-0142",
		Company:   "Hooli",
		City:      "Austin",
		State:     "TX",
		Source:    "google_ads",
		Score:     65,
		LeadValue: 4200,
	}
}

func TestService_Create(t *testing.T) {
	svc, owner := setupLeadService(t)
	ctx := context.Background()

	t.Run("stores lead with normalized email", func(t *testing.T) {
		lead, err := svc.Create(ctx, owner, sampleInput("  Dana@Hooli.COM "))
		require.NoError(t, err)

		assert.Equal(t, "dana@hooli.com", lead.Email)
		assert.Equal(t, owner, lead.CreatedBy)
		assert.Equal(t, models.LeadStatusNew, lead.Status)
		assert.NotEqual(t, uuid.Nil, lead.ID)
	})

	t.Run("strips control characters from text fields", func(t *testing.T) {
		in := sampleInput("sanitized@hooli.com")
		in.FirstName = "Da\x00na\x07"
		in.Company = "Hooli\x1b Inc"

		lead, err := svc.Create(ctx, owner, in)
		require.NoError(t, err)

		assert.Equal(t, "Dana", lead.FirstName)
		assert.Equal(t, "Hooli Inc", lead.Company)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, sampleInput("once@hooli.com"))
		require.NoError(t, err)

		_, err = svc.Create(ctx, owner, sampleInput("once@hooli.com"))
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestService_OwnerScoping(t *testing.T) {
	svc, owner := setupLeadService(t)
	ctx := context.Background()

	stranger := uuid.New()
	lead, err := svc.Create(ctx, owner, sampleInput("scoped@hooli.com"))
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		_, err := svc.Get(ctx, stranger, lead.ID)
		assert.ErrorIs(t, err, ErrLeadNotFound)

		got, err := svc.Get(ctx, owner, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, lead.ID, got.ID)
	})

	t.Run("update", func(t *testing.T) {
		_, err := svc.Update(ctx, stranger, lead.ID, sampleInput("scoped@hooli.com"))
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		err := svc.Delete(ctx, stranger, lead.ID)
		assert.ErrorIs(t, err, ErrLeadNotFound)

		require.NoError(t, svc.Delete(ctx, owner, lead.ID))
		err = svc.Delete(ctx, owner, lead.ID)
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})
}

func TestService_Update(t *testing.T) {
	svc, owner := setupLeadService(t)
	ctx := context.Background()

	lead, err := svc.Create(ctx, owner, sampleInput("mutate@hooli.com"))
	require.NoError(t, err)

	in := sampleInput("mutate@hooli.com")
	in.Status = "qualified"
	in.IsQualified = true
	in.Score = 90

	updated, err := svc.Update(ctx, owner, lead.ID, in)
	require.NoError(t, err)

	assert.Equal(t, lead.ID, updated.ID)
	assert.Equal(t, lead.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.Equal(t, models.LeadStatusQualified, updated.Status)
	assert.True(t, updated.IsQualified)
	assert.Equal(t, 90, updated.Score)
}

func TestService_BulkCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("mandatory field pre-pass aborts the batch", func(t *testing.T) {
		svc, owner := setupLeadService(t)

		inputs := []LeadInput{
			sampleInput("good@hooli.com"),
			{LastName: "NoEmail"},
		}

		_, err := svc.BulkCreate(ctx, owner, inputs)
		require.Error(t, err)

		var fieldErr *BatchFieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, 1, fieldErr.Index)

		// nothing inserted before the rejection
		result, listErr := svc.List(ctx, owner, &ListQuery{Page: 1, Limit: 20, SortBy: "created_at", SortOrder: "desc"})
		require.NoError(t, listErr)
		assert.Equal(t, int64(0), result.Total)
	})

	t.Run("rows violating record rules fail individually", func(t *testing.T) {
		svc, owner := setupLeadService(t)

		noPhone := sampleInput("no-phone@hooli.com")
		noPhone.Phone = ""
		badEmail := sampleInput("not-an-email")
		badScore := sampleInput("big-score@hooli.com")
		badScore.Score = 900
		negValue := sampleInput("neg-value@hooli.com")
		negValue.LeadValue = -10

		outcome, err := svc.BulkCreate(ctx, owner, []LeadInput{
			sampleInput("clean@hooli.com"),
			noPhone,
			badEmail,
			badScore,
			negValue,
		})
		require.NoError(t, err)

		assert.Equal(t, 5, outcome.Total)
		assert.Equal(t, 1, outcome.Successful)
		assert.Equal(t, 4, outcome.Failed)
		assert.Equal(t, 0, outcome.DuplicateCount)

		// only the clean row landed
		result, err := svc.List(ctx, owner, &ListQuery{Page: 1, Limit: 20, SortBy: "created_at", SortOrder: "desc"})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Total)
		assert.Equal(t, "clean@hooli.com", result.Leads[0].Email)
	})

	t.Run("reports at most ten duplicate emails", func(t *testing.T) {
		svc, owner := setupLeadService(t)

		var inputs []LeadInput
		for i := 0; i < 12; i++ {
			email := fmt.Sprintf("dupe%d@hooli.com", i)
			_, err := svc.Create(ctx, owner, sampleInput(email))
			require.NoError(t, err)
			inputs = append(inputs, sampleInput(email))
		}

		outcome, err := svc.BulkCreate(ctx, owner, inputs)
		require.NoError(t, err)

		assert.Equal(t, 12, outcome.Total)
		assert.Equal(t, 0, outcome.Successful)
		assert.Equal(t, 12, outcome.Failed)
		assert.Equal(t, 12, outcome.DuplicateCount)
		assert.Len(t, outcome.DuplicateEmails, 10)
	})
}
