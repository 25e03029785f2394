package repository

import (
	"fmt"
	"time"

	"rolebot/internal/entities"
	"rolebot/internal/infrastructure"
)

// ScheduleRepository persists time-delayed broadcasts. The sent flag only
// ever moves 0 -> 1; cancellation is row deletion.
type ScheduleRepository struct {
	client *infrastructure.SQLiteClient
}

func NewScheduleRepository(client *infrastructure.SQLiteClient) *ScheduleRepository {
	return &ScheduleRepository{client: client}
}

func (r *ScheduleRepository) Add(target, text string, sendTime time.Time) (int64, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	res, err := r.client.DB.Exec(`
		INSERT INTO scheduled_messages (target_type, message, send_time)
		VALUES (?, ?, ?)
	`, target, text, sendTime.Unix())
	if err != nil {
		return 0, fmt.Errorf("add scheduled broadcast: %w", err)
	}
	return res.LastInsertId()
}

// Due returns broadcasts whose send time has passed and which have not been
// marked sent. A sent broadcast is never returned again.
func (r *ScheduleRepository) Due(now time.Time) ([]entities.ScheduledBroadcast, error) {
	return r.query(
		"SELECT id, target_type, message, send_time, sent FROM scheduled_messages WHERE sent = 0 AND send_time <= ?",
		now.Unix())
}

// Pending returns all unsent broadcasts ordered by send time, for
// /list_scheduled and index-based cancellation.
func (r *ScheduleRepository) Pending() ([]entities.ScheduledBroadcast, error) {
	return r.query(
		"SELECT id, target_type, message, send_time, sent FROM scheduled_messages WHERE sent = 0 ORDER BY send_time ASC")
}

func (r *ScheduleRepository) MarkSent(id int64) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	_, err := r.client.DB.Exec("UPDATE scheduled_messages SET sent = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark broadcast %d sent: %w", id, err)
	}
	return nil
}

func (r *ScheduleRepository) Delete(id int64) error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	_, err := r.client.DB.Exec("DELETE FROM scheduled_messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete broadcast %d: %w", id, err)
	}
	return nil
}

// DeleteAllPending cancels every unsent broadcast. Sent rows are kept as a
// delivery record and are out of the deletion scope.
func (r *ScheduleRepository) DeleteAllPending() error {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	_, err := r.client.DB.Exec("DELETE FROM scheduled_messages WHERE sent = 0")
	if err != nil {
		return fmt.Errorf("delete pending broadcasts: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) query(q string, args ...any) ([]entities.ScheduledBroadcast, error) {
	r.client.Mu.Lock()
	defer r.client.Mu.Unlock()

	rows, err := r.client.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scheduled broadcasts: %w", err)
	}
	defer rows.Close()

	var out []entities.ScheduledBroadcast
	for rows.Next() {
		var b entities.ScheduledBroadcast
		var sendTime int64
		var sent int
		if err := rows.Scan(&b.ID, &b.Target, &b.Text, &sendTime, &sent); err != nil {
			return nil, err
		}
		b.SendTime = time.Unix(sendTime, 0).UTC()
		b.Sent = sent == 1
		out = append(out, b)
	}
	return out, rows.Err()
}
