package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-platform/internal/domain"
)

// NotificationRepository defines persistence access for notifications.
// Every query filters on the full (recipient_role, recipient_id) pair;
// id values may collide across the member and operator spaces.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipient domain.Recipient, limit int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, recipient domain.Recipient) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipient domain.Recipient) (int64, error)
	Delete(ctx context.Context, id string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a Postgres-backed implementation.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (id, recipient_id, recipient_role, title, message, category, icon, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.Recipient.ID,
		n.Recipient.Role,
		n.Title,
		n.Message,
		n.Category,
		n.Icon,
		n.IsRead,
		n.CreatedAt,
	)
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        SELECT id, recipient_id, recipient_role, title, message, category, icon, is_read, created_at
        FROM notifications WHERE id=$1`

	return scanNotification(r.pool.QueryRow(ctx, query, id))
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient domain.Recipient, limit int) ([]*domain.Notification, error) {
	const query = `
        SELECT id, recipient_id, recipient_role, title, message, category, icon, is_read, created_at
        FROM notifications
        WHERE recipient_role=$1 AND recipient_id=$2
        ORDER BY created_at DESC
        LIMIT $3`

	rows, err := r.pool.Query(ctx, query, recipient.Role, recipient.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient domain.Recipient) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM notifications
        WHERE recipient_role=$1 AND recipient_id=$2 AND NOT is_read`

	var count int64
	if err := r.pool.QueryRow(ctx, query, recipient.Role, recipient.ID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipient domain.Recipient) (int64, error) {
	const query = `
        UPDATE notifications SET is_read=TRUE
        WHERE recipient_role=$1 AND recipient_id=$2 AND NOT is_read`

	cmd, err := r.pool.Exec(ctx, query, recipient.Role, recipient.ID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notifications WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(
		&n.ID,
		&n.Recipient.ID,
		&n.Recipient.Role,
		&n.Title,
		&n.Message,
		&n.Category,
		&n.Icon,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
