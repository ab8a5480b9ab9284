package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
	"github.com/iradwatkins/steppers-inventory/internal/port"
)

// MySQLStore is the durable baseline for ticket-type inventory. Sales are
// recorded with a conditional update so the store never oversells even when
// several instances share it.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (m *MySQLStore) GetTicketType(ctx context.Context, ticketTypeID string) (*port.TicketTypeRow, error) {
	var row port.TicketTypeRow
	err := m.db.QueryRowContext(ctx, `
		SELECT id, event_id, total_quantity, quantity_sold
		FROM ticket_types WHERE id = ?`, ticketTypeID,
	).Scan(&row.ID, &row.EventID, &row.TotalQuantity, &row.SoldQuantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket type: %w", err)
	}
	return &row, nil
}

func (m *MySQLStore) RecordSale(ctx context.Context, ticketTypeID string, quantity int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE ticket_types
		SET quantity_sold = quantity_sold + ?, updated_at = NOW()
		WHERE id = ? AND quantity_sold + ? <= total_quantity`,
		quantity, ticketTypeID, quantity,
	)
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (m *MySQLStore) AdjustCapacity(ctx context.Context, ticketTypeID string, delta int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE ticket_types
		SET total_quantity = total_quantity + ?, updated_at = NOW()
		WHERE id = ? AND total_quantity + ? >= quantity_sold`,
		delta, ticketTypeID, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust capacity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}
