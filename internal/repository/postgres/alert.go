package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Insert(ctx context.Context, alert *model.Alert) (uuid.UUID, error) {
	query := `
		INSERT INTO alerts (
			id, hardware_name, organization, site, alert_type, alert_value,
			authorized, hardware_active, timestamp, raw_data, processed,
			recipients_notified, processing_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.HardwareName,
		alert.Organization,
		alert.Site,
		alert.AlertType,
		alert.AlertValue,
		alert.Authorized,
		alert.HardwareActive,
		alert.Timestamp,
		alert.RawData,
		alert.Processed,
		alert.RecipientsNotified,
		alert.ProcessingMs,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert alert: %w", err)
	}
	return alert.ID, nil
}

func (r *alertRepository) MarkProcessed(ctx context.Context, id uuid.UUID, recipientsNotified int) error {
	query := `
		UPDATE alerts
		SET processed = true, recipients_notified = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, recipientsNotified, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert processed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *alertRepository) Get(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE id = $1
	`
	var alert model.Alert
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) List(ctx context.Context, limit int) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		ORDER BY timestamp DESC
		LIMIT $1
	`
	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM alerts
		WHERE timestamp < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old alerts: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
