package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

var letterChecks = []string{
	`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('owner', 'admin', 'pupil'))`,
	`ALTER TABLE questions ADD CONSTRAINT questions_correct_answer_check CHECK (correct_answer IN ('A', 'B', 'C', 'D'))`,
	`ALTER TABLE answers ADD CONSTRAINT answers_selected_option_check CHECK (selected_option IN ('A', 'B', 'C', 'D'))`,
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range letterChecks {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range []string{
				`ALTER TABLE answers DROP CONSTRAINT IF EXISTS answers_selected_option_check`,
				`ALTER TABLE questions DROP CONSTRAINT IF EXISTS questions_correct_answer_check`,
				`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`,
			} {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
