package repository

import (
	"database/sql"
	"fmt"

	"rolebot/internal/infrastructure"
)

// RoleRepository persists explicit role assignments. A user without a row
// holds the default role "user"; writing "user" therefore deletes the row so
// the table never carries a second copy of the default.
type RoleRepository struct {
	client *infrastructure.SQLiteClient
}

func NewRoleRepository(client *infrastructure.SQLiteClient) *RoleRepository {
	return &RoleRepository{client: client}
}

func (r *RoleRepository) GetRole(userID int64) (string, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var role string
	err := r.client.DB.QueryRow(
		"SELECT role FROM roles WHERE user_id = ?", userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "user", nil
	}
	if err != nil {
		return "", fmt.Errorf("get role for %d: %w", userID, err)
	}
	return role, nil
}

// SetRole replaces any previous assignment (last-write-wins, no history).
func (r *RoleRepository) SetRole(userID int64, role string) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var err error
	if role == "user" {
		_, err = r.client.DB.Exec("DELETE FROM roles WHERE user_id = ?", userID)
	} else {
		_, err = r.client.DB.Exec(
			"INSERT OR REPLACE INTO roles (user_id, role) VALUES (?, ?)", userID, role)
	}
	if err != nil {
		return fmt.Errorf("set role %s for %d: %w", role, userID, err)
	}
	return nil
}

func (r *RoleRepository) UsersWithRole(role string) ([]int64, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	rows, err := r.client.DB.Query("SELECT user_id FROM roles WHERE role = ?", role)
	if err != nil {
		return nil, fmt.Errorf("users with role %s: %w", role, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
