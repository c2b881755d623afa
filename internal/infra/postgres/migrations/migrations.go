package migrations

import (
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the schema history; each file registers itself in init.
var Migrations = migrate.NewMigrations()

type userModel struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Username     string `bun:"username,notnull,unique,type:varchar(150)"`
	PasswordHash string `bun:"password_hash,notnull,type:varchar(255)"`
	Role         string `bun:"role,notnull,type:varchar(16),default:'pupil'"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Text          string `bun:"text,notnull,type:varchar(500)"`
	OptionA       string `bun:"option_a,notnull,type:varchar(150)"`
	OptionB       string `bun:"option_b,notnull,type:varchar(150)"`
	OptionC       string `bun:"option_c,notnull,type:varchar(150)"`
	OptionD       string `bun:"option_d,notnull,type:varchar(150)"`
	CorrectAnswer string `bun:"correct_answer,notnull,type:char(1)"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         int64     `bun:"user_id,notnull"`
	QuestionID     int64     `bun:"question_id,notnull"`
	SelectedOption string    `bun:"selected_option,notnull,type:char(1)"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
