package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/woutervis/wotohe/internal/model"
)

type DeviceStore struct {
	db *sql.DB
}

func NewDeviceStore(db *sql.DB) *DeviceStore {
	return &DeviceStore{db: db}
}

const deviceCols = `id, token, user_name, user_agent, created_at`

func scanDevice(scanner interface{ Scan(...any) error }) (*model.Device, error) {
	var d model.Device
	err := scanner.Scan(&d.ID, &d.Token, &d.UserName, &d.UserAgent, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Register records a push target. Registering a token that already
// exists returns the existing device unchanged rather than creating a
// duplicate.
func (s *DeviceStore) Register(token, userName, userAgent string) (*model.Device, error) {
	existing, err := s.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO devices (id, token, user_name, user_agent) VALUES (?, ?, ?, ?)`,
		id, token, userName, userAgent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert device: %w", err)
	}
	return s.GetByID(id)
}

func (s *DeviceStore) GetByID(id string) (*model.Device, error) {
	row := s.db.QueryRow(`SELECT `+deviceCols+` FROM devices WHERE id = ?`, id)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

func (s *DeviceStore) GetByToken(token string) (*model.Device, error) {
	row := s.db.QueryRow(`SELECT `+deviceCols+` FROM devices WHERE token = ?`, token)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get device by token: %w", err)
	}
	return d, nil
}

func (s *DeviceStore) List() ([]model.Device, error) {
	rows, err := s.db.Query(`SELECT ` + deviceCols + ` FROM devices ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []model.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

func (s *DeviceStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	return nil
}

// DeleteBatch removes a set of devices in a single transaction. Pruning
// dead tokens after a multicast uses this so a partial cleanup never
// commits.
func (s *DeviceStore) DeleteBatch(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM devices WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete device %s: %w", id, err)
		}
	}
	return tx.Commit()
}
