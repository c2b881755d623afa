package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				if _, err := tx.NewCreateTable().Model((*userModel)(nil)).IfNotExists().Exec(ctx); err != nil {
					return err
				}
				if _, err := tx.NewCreateTable().Model((*questionModel)(nil)).IfNotExists().Exec(ctx); err != nil {
					return err
				}
				if _, err := tx.NewCreateTable().Model((*answerModel)(nil)).IfNotExists().
					ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
					ForeignKey(`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`).
					Exec(ctx); err != nil {
					return err
				}
				_, err := tx.NewCreateIndex().Model((*answerModel)(nil)).
					Index("answers_user_id_idx").IfNotExists().Column("user_id").Exec(ctx)
				return err
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []interface{}{(*answerModel)(nil), (*questionModel)(nil), (*userModel)(nil)} {
				if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
