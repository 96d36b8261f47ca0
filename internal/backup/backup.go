// Package backup ships encrypted snapshots of the task database to
// S3-compatible storage on a schedule.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration. Backups stay disabled
// until the bucket, credentials, and passphrase are all set.
type Config struct {
	S3         S3Config
	Passphrase string
	Interval   time.Duration
}

// Manager takes periodic snapshots of the database, encrypts them, and
// uploads them.
type Manager struct {
	mu         sync.RWMutex
	cfg        Config
	db         *sql.DB
	client     s3Client
	logger     *slog.Logger
	lastBackup *time.Time
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	m := &Manager{cfg: cfg, db: db, logger: logger}
	if m.configured() {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func (m *Manager) configured() bool {
	return m.cfg.S3.Bucket != "" && m.cfg.S3.AccessKey != "" &&
		m.cfg.S3.SecretKey != "" && m.cfg.Passphrase != ""
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether backups will actually run.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// LastBackup returns the time of the last successful backup, if any.
func (m *Manager) LastBackup() *time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBackup
}

// Start begins the scheduled backup loop. A disabled manager does
// nothing.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Info("backups disabled, not starting")
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.RunBackup(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunBackup snapshots the database, encrypts the snapshot, and uploads
// it. The snapshot uses VACUUM INTO so a consistent copy is taken while
// the database stays live.
func (m *Manager) RunBackup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("backup not configured")
	}

	tmpDir, err := os.MkdirTemp("", "wotohe-backup-*")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "wotohe.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return fmt.Errorf("snapshot db: %w", err)
	}

	plaintext, err := os.ReadFile(snapshot)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	encrypted, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("backups/wotohe-%s.db.enc", now.Format("20060102-150405"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(encrypted),
	})
	if err != nil {
		return fmt.Errorf("upload backup: %w", err)
	}

	m.mu.Lock()
	m.lastBackup = &now
	m.mu.Unlock()

	m.logger.Info("backup uploaded", "key", key, "bytes", len(encrypted))
	return nil
}
