package migrate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cultureshare-api-io/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationCollection = "_migrations"

// Migration is a one-shot, versioned data repair. Up must be idempotent: a
// crashed run leaves no status record, so the next boot replays it.
type Migration struct {
	Version     string
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

type MigrationStatus struct {
	Version   string    `bson:"version"`
	AppliedAt time.Time `bson:"applied_at"`
	Success   bool      `bson:"success"`
}

type Manager struct {
	db         *mongo.Database
	migrations []Migration
}

func NewManager(db *mongo.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) Add(migration Migration) *Manager {
	m.migrations = append(m.migrations, migration)
	return m
}

// Run applies pending migrations in version order.
func (m *Manager) Run(ctx context.Context) error {
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})

	coll := m.db.Collection(migrationCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create migration index: %w", err)
	}

	for _, migration := range m.migrations {
		applied, err := m.isApplied(ctx, migration.Version)
		if err != nil {
			return fmt.Errorf("failed to check migration status for %s: %w", migration.Version, err)
		}
		if applied {
			continue
		}

		util.LogInfof("running migration %s: %s", migration.Version, migration.Description)

		start := time.Now()
		err = migration.Up(ctx, m.db)
		duration := time.Since(start)

		status := MigrationStatus{
			Version:   migration.Version,
			AppliedAt: time.Now(),
			Success:   err == nil,
		}

		if err != nil {
			util.LogError(fmt.Sprintf("migration %s failed after %v", migration.Version, duration), err)
			if _, saveErr := coll.InsertOne(ctx, status); saveErr != nil {
				util.LogError("failed to save migration status", saveErr)
			}
			return fmt.Errorf("migration %s failed: %w", migration.Version, err)
		}

		if _, err = coll.InsertOne(ctx, status); err != nil {
			return fmt.Errorf("failed to save migration status: %w", err)
		}

		util.LogInfof("migration %s completed in %v", migration.Version, duration)
	}

	return nil
}

func (m *Manager) isApplied(ctx context.Context, version string) (bool, error) {
	count, err := m.db.Collection(migrationCollection).
		CountDocuments(ctx, bson.M{"version": version, "success": true})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
