package db

import (
	"fmt"

	"doable/internal/auth"
	"doable/internal/task"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&task.Item{},
		&auth.User{},
	); err != nil {
		return err
	}

	stmts := []string{
		// Load path: owner's list, newest first.
		`create index if not exists idx_todos_owner_created on todos(owner_id, created_at desc);`,
		// Bulk clear path: owner's completed records.
		`create index if not exists idx_todos_owner_completed on todos(owner_id, completed);`,
		// Tag containment filters.
		`create index if not exists idx_todos_tags on todos using gin (tags);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
