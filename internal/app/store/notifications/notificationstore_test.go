package notificationstore_test

import (
	"testing"

	notificationstore "github.com/dalemusser/ecahub/internal/app/store/notifications"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/ecahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, s *notificationstore.Store, title string, target ...models.Role) models.Notification {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := s.Create(ctx, models.Notification{
		Title:    title,
		Message:  "body",
		Type:     models.NotifyAnnouncement,
		Priority: models.PriorityMedium,
		Target:   target,
	})
	require.NoError(t, err)
	return n
}

func TestVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := notificationstore.New(db)

	schoolsOnly := create(t, s, "For schools", models.RoleSchool)
	create(t, s, "For everyone", models.RoleSchool, models.RoleECA)

	_, err := s.GetVisible(ctx, schoolsOnly.ID, models.RoleECA)
	assert.ErrorIs(t, err, notificationstore.ErrNotFound)
	got, err := s.GetVisible(ctx, schoolsOnly.ID, models.RoleSchool)
	require.NoError(t, err)
	assert.Equal(t, "For schools", got.Title)

	eca, err := s.ListForRole(ctx, models.RoleECA, 0)
	require.NoError(t, err)
	require.Len(t, eca, 1)
	assert.Equal(t, "For everyone", eca[0].Title)

	school, err := s.ListForRole(ctx, models.RoleSchool, 0)
	require.NoError(t, err)
	assert.Len(t, school, 2)

	limited, err := s.ListForRole(ctx, models.RoleSchool, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateRetargets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := notificationstore.New(db)

	n := create(t, s, "Reminder", models.RoleSchool)
	n.Target = []models.Role{models.RoleECA}
	n.Priority = models.PriorityHigh
	require.NoError(t, s.Update(ctx, n.ID, n))

	_, err := s.GetVisible(ctx, n.ID, models.RoleSchool)
	assert.ErrorIs(t, err, notificationstore.ErrNotFound)
	got, err := s.GetVisible(ctx, n.ID, models.RoleECA)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, got.Priority)

	require.NoError(t, s.Delete(ctx, n.ID))
	assert.ErrorIs(t, s.Delete(ctx, n.ID), notificationstore.ErrNotFound)
}
