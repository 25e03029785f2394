package repository

import (
	"database/sql"

	"rolebot/internal/entities"
	"rolebot/internal/infrastructure"
)

// AccountRepository stores operator logins for the admin HTTP API.
type AccountRepository struct {
	client *infrastructure.SQLiteClient
}

func NewAccountRepository(client *infrastructure.SQLiteClient) *AccountRepository {
	return &AccountRepository{client: client}
}

func (r *AccountRepository) Create(account *entities.Account) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	_, err := r.client.DB.Exec(
		"INSERT INTO accounts (username, password_hash, role) VALUES (?, ?, ?)",
		account.Username, account.PasswordHash, account.Role)
	return err
}

func (r *AccountRepository) GetByUsername(username string) (*entities.Account, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var account entities.Account
	err := r.client.DB.QueryRow(
		"SELECT id, username, password_hash, role FROM accounts WHERE username = ?",
		username).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Role)

	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
