package isoclausestore_test

import (
	"testing"

	isoclausestore "github.com/dalemusser/ecahub/internal/app/store/isoclauses"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/ecahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := isoclausestore.New(db)

	for _, n := range []string{"7.5", "4.1", "5.2"} {
		_, err := s.Create(ctx, models.ISOClause{Number: n, Title: "Clause " + n})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, models.ISOClause{Number: "4.1", Title: "Again"})
	assert.ErrorIs(t, err, isoclausestore.ErrDuplicateNumber)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "4.1", list[0].Number)
	assert.Equal(t, "7.5", list[2].Number)
	assert.NotNil(t, list[0].Requirements)
	assert.NotNil(t, list[0].Guidelines)
}

func TestUpdate_DuplicateNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := isoclausestore.New(db)

	a, err := s.Create(ctx, models.ISOClause{Number: "8.1", Title: "Operations"})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.ISOClause{Number: "8.2", Title: "Requirements"})
	require.NoError(t, err)

	err = s.Update(ctx, a.ID, models.ISOClause{Number: "8.2", Title: "Clash"})
	assert.ErrorIs(t, err, isoclausestore.ErrDuplicateNumber)

	require.NoError(t, s.Update(ctx, a.ID, models.ISOClause{Number: "8.1", Title: "Operational planning", Requirements: []string{"plan"}}))
	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Operational planning", got.Title)
	assert.Equal(t, []string{"plan"}, got.Requirements)

	assert.ErrorIs(t, s.Update(ctx, primitive.NewObjectID(), models.ISOClause{Number: "9.9"}), isoclausestore.ErrNotFound)
}

func TestGuidelines(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := isoclausestore.New(db)

	cl, err := s.Create(ctx, models.ISOClause{Number: "6.1", Title: "Risks"})
	require.NoError(t, err)

	g, err := s.AddGuideline(ctx, cl.ID, models.GuidelineDocument{Title: "Risk register", FileURL: "https://files.example.org/risk.pdf"})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.False(t, g.UploadedAt.IsZero())

	_, err = s.AddGuideline(ctx, primitive.NewObjectID(), models.GuidelineDocument{Title: "x"})
	assert.ErrorIs(t, err, isoclausestore.ErrNotFound)

	got, err := s.GetByID(ctx, cl.ID)
	require.NoError(t, err)
	require.Len(t, got.Guidelines, 1)
	assert.Equal(t, g.ID, got.Guidelines[0].ID)

	require.NoError(t, s.RemoveGuideline(ctx, cl.ID, g.ID))
	assert.ErrorIs(t, s.RemoveGuideline(ctx, cl.ID, g.ID), isoclausestore.ErrGuidelineNotFound)
	assert.ErrorIs(t, s.RemoveGuideline(ctx, primitive.NewObjectID(), g.ID), isoclausestore.ErrNotFound)
}
