package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/system/indexes"
	"github.com/dalemusser/ecahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(ctx context.Context, t *testing.T, c *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := c.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	// SetupTestDB already ran EnsureAll once
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	want := map[string][]string{
		"users":             {"uniq_users_email", "idx_users_school_role_fullnameci", "idx_users_role"},
		"schools":           {"uniq_schools_nameci", "idx_schools_nameci__id"},
		"clubs":             {"idx_clubs_nameci__id", "idx_clubs_category_status", "idx_clubs_reg_school"},
		"events":            {"idx_events_startsat__id", "idx_events_status_endsat", "idx_events_club", "idx_events_reg_school"},
		"trainings":         {"idx_trainings_startsat__id", "idx_trainings_school", "idx_trainings_registered_users"},
		"training_feedback": {"uniq_feedback_training_user"},
		"documents":         {"uniq_documents_lineage_version", "idx_documents_school_category_titleci"},
		"notifications":     {"idx_notifications_target_createdat"},
		"iso_clauses":       {"uniq_isoclauses_number"},
		"messages":          {"idx_messages_recipients_createdat", "idx_messages_sender_createdat"},
		"audit_events":      {"idx_audit_timestamp", "idx_audit_user_timestamp", "idx_audit_category_type_timestamp"},
	}

	for coll, expected := range want {
		got := indexNames(ctx, t, db.Collection(coll))
		for _, name := range expected {
			if !got[name] {
				t.Errorf("expected index %q to exist on %s collection", name, coll)
			}
		}
	}
}

func TestEnsureAll_RebuildsRenamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("iso_clauses")
	if _, err := c.Indexes().DropOne(ctx, "uniq_isoclauses_number"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "number", Value: 1}}}); err != nil {
		t.Fatalf("create plain: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if !indexNames(ctx, t, c)["uniq_isoclauses_number"] {
		t.Error("expected unique number index to be restored")
	}
}
