package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shinejewelry/internal/domain"
)

type ContactRepo struct{ db *sqlx.DB }

func NewContactRepo(db *sqlx.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Save(msg domain.ContactMessage) error {
	_, err := r.db.Exec(`INSERT INTO contacts(id, name, email, message) VALUES(?,?,?,?)`,
		uuid.NewString(), msg.Name, msg.Email, msg.Message)
	return err
}
