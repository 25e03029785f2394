package repository

import (
	"database/sql"
	"fmt"
	"time"

	"rolebot/internal/entities"
	"rolebot/internal/infrastructure"
)

// ChatRepository tracks every chat the bot has ever seen. Rows are never
// deleted; blocking is a flag in a separate table.
type ChatRepository struct {
	client *infrastructure.SQLiteClient
}

func NewChatRepository(client *infrastructure.SQLiteClient) *ChatRepository {
	return &ChatRepository{client: client}
}

// RecordSeen inserts the chat on first contact and refreshes the username on
// later ones. Called for every inbound event, before any access check.
func (r *ChatRepository) RecordSeen(chatID int64, username, chatType string) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	_, err := r.client.DB.Exec(`
		INSERT INTO chats (chat_id, username, chat_type) VALUES (?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET username = excluded.username
	`, chatID, username, chatType)
	if err != nil {
		return fmt.Errorf("record chat %d: %w", chatID, err)
	}
	return nil
}

func (r *ChatRepository) AllChats() ([]entities.Chat, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	rows, err := r.client.DB.Query(
		"SELECT chat_id, COALESCE(username, ''), COALESCE(chat_type, ''), first_seen FROM chats")
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []entities.Chat
	for rows.Next() {
		var c entities.Chat
		var firstSeen int64
		if err := rows.Scan(&c.ChatID, &c.Username, &c.ChatType, &firstSeen); err != nil {
			return nil, err
		}
		c.FirstSeen = time.Unix(firstSeen, 0).UTC()
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// ChatsByAudience resolves a broadcast target to concrete chat IDs. An
// unknown target resolves to nothing rather than erroring; command handlers
// validate the target before it is ever persisted.
func (r *ChatRepository) ChatsByAudience(target string) ([]int64, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var query string
	switch target {
	case entities.TargetIndividuals:
		query = "SELECT chat_id FROM chats WHERE chat_type = 'private'"
	case entities.TargetGroups:
		query = "SELECT chat_id FROM chats WHERE chat_type IN ('group', 'supergroup')"
	case entities.TargetAll:
		query = "SELECT chat_id FROM chats"
	default:
		return nil, nil
	}

	rows, err := r.client.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("chats by audience %s: %w", target, err)
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

func (r *ChatRepository) CountChats() (int, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var count int
	err := r.client.DB.QueryRow("SELECT COUNT(*) FROM chats").Scan(&count)
	return count, err
}

func (r *ChatRepository) SetBlocked(chatID int64, blocked bool) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	val := 0
	if blocked {
		val = 1
	}
	_, err := r.client.DB.Exec(`
		INSERT OR REPLACE INTO blocked_users (chat_id, blocked, updated_on)
		VALUES (?, ?, strftime('%s','now'))
	`, chatID, val)
	if err != nil {
		return fmt.Errorf("set blocked %d: %w", chatID, err)
	}
	return nil
}

func (r *ChatRepository) IsBlocked(chatID int64) (bool, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	var blocked int
	err := r.client.DB.QueryRow(
		"SELECT blocked FROM blocked_users WHERE chat_id = ?", chatID).Scan(&blocked)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return blocked == 1, nil
}
