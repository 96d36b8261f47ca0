package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/woutervis/wotohe/internal/database"
)

type fakeS3 struct {
	keys    []string
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.keys = append(f.keys, *input.Key)
	f.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerDisabledWithoutConfig(t *testing.T) {
	m := NewManager(Config{}, nil, testLogger())
	if m.Enabled() {
		t.Fatal("manager should be disabled without S3 config")
	}
	if err := m.RunBackup(context.Background()); err == nil {
		t.Fatal("expected error running backup while disabled")
	}
	// Start on a disabled manager is a no-op; Stop must not hang.
	m.Start(context.Background())
	m.Stop()
}

func TestRunBackupUploadsDecryptableSnapshot(t *testing.T) {
	dir := t.TempDir()
	db, err := database.Open(dir + "/wotohe.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := Config{
		S3: S3Config{
			Bucket:    "backups",
			AccessKey: "key",
			SecretKey: "secret",
		},
		Passphrase: "household-secret",
	}
	m := NewManager(cfg, db, testLogger())
	fake := &fakeS3{}
	m.client = fake

	if err := m.RunBackup(context.Background()); err != nil {
		t.Fatalf("run backup: %v", err)
	}

	if len(fake.keys) != 1 {
		t.Fatalf("uploads = %d, want 1", len(fake.keys))
	}
	decrypted, err := Decrypt(fake.objects[fake.keys[0]], "household-secret")
	if err != nil {
		t.Fatalf("decrypt uploaded backup: %v", err)
	}
	if !bytes.HasPrefix(decrypted, []byte("SQLite format 3")) {
		t.Error("decrypted backup is not a SQLite database")
	}
	if m.LastBackup() == nil {
		t.Error("last backup time not recorded")
	}
}
