package store

import (
	"database/sql"
	"fmt"

	"github.com/streamslot/streamslot/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(name, email, phone string) (*model.User, error) {
	result, err := s.db.Exec(
		"INSERT INTO users (name, email, phone) VALUES (?, ?, ?)",
		name, email, phone,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	var u model.User

	err := s.db.QueryRow(
		"SELECT id, name, email, phone, created_at FROM users WHERE email = ?",
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &u, nil
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	var u model.User

	err := s.db.QueryRow(
		"SELECT id, name, email, phone, created_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &u, nil
}
