package repository

import (
	"database/sql"
	"fmt"

	"rolebot/internal/infrastructure"
)

type SettingsRepository struct {
	client *infrastructure.SQLiteClient
}

func NewSettingsRepository(client *infrastructure.SQLiteClient) *SettingsRepository {
	return &SettingsRepository{client: client}
}

func (r *SettingsRepository) Get(key string) (string, bool, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var value string
	err := r.client.DB.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepository) Set(key, value string) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	_, err := r.client.DB.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepository) All() (map[string]string, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	rows, err := r.client.DB.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
