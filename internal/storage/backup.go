package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// BackupManager creates, verifies, lists, prunes and restores database backups.
type BackupManager struct {
	db     *DB
	dbPath string
}

// NewBackupManager creates a backup manager for an open database.
func NewBackupManager(db *DB) *BackupManager {
	return &BackupManager{db: db, dbPath: db.Path()}
}

// BackupConfig holds configuration for backup operations.
type BackupConfig struct {
	// Dir is where backups are written. Empty means a "backups" directory
	// next to the database file.
	Dir string

	// Name is the file name without extension. Empty means a timestamped name.
	Name string

	// Verify opens the backup after writing it.
	Verify bool

	// Keep is how many backups to retain after a successful backup. 0 keeps all.
	Keep int

	// Encryption, when set with a password, replaces the verified backup
	// with an encrypted ".db.enc" file.
	Encryption *EncryptionConfig
}

// DefaultBackupConfig returns a BackupConfig with sensible defaults.
func DefaultBackupConfig() *BackupConfig {
	return &BackupConfig{Verify: true, Keep: 7}
}

func (bm *BackupManager) dir(config *BackupConfig) string {
	if config != nil && config.Dir != "" {
		return config.Dir
	}
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// returns its path.
func (bm *BackupManager) Backup(ctx context.Context, config *BackupConfig) (string, error) {
	if config == nil {
		config = DefaultBackupConfig()
	}

	backupDir := bm.dir(config)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := config.Name
	if name == "" {
		name = "carddex_" + time.Now().Format("20060102_150405")
	}
	backupPath := filepath.Join(backupDir, name+".db")

	if _, err := bm.db.Conn().ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if config.Verify {
		if err := bm.VerifyBackup(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	if config.Encryption != nil && config.Encryption.Password != "" {
		encPath := backupPath + EncryptedBackupExt
		err := EncryptFile(backupPath, encPath, config.Encryption)
		_ = os.Remove(backupPath)
		if err != nil {
			_ = os.Remove(encPath)
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
		backupPath = encPath
	}

	if config.Keep > 0 {
		if err := bm.Prune(config.Dir, config.Keep); err != nil {
			return backupPath, fmt.Errorf("backup written but pruning failed: %w", err)
		}
	}

	return backupPath, nil
}

// VerifyBackup checks that a backup is a readable SQLite database holding
// the collection schema.
func (bm *BackupManager) VerifyBackup(backupPath string) error {
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check failed: %s", result)
	}

	var tables int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('cards', 'decks')`).Scan(&tables)
	if err != nil {
		return fmt.Errorf("failed to query backup schema: %w", err)
	}
	if tables != 2 {
		return fmt.Errorf("backup is missing collection tables")
	}

	return nil
}

// BackupInfo contains information about a backup file.
type BackupInfo struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	Checksum  string    `json:"checksum"`
	Encrypted bool      `json:"encrypted"`
}

// ListBackups returns the backups in dir (or the default directory), newest first.
func (bm *BackupManager) ListBackups(dir string) ([]BackupInfo, error) {
	backupDir := bm.dir(&BackupConfig{Dir: dir})

	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		encrypted := strings.HasSuffix(entry.Name(), ".db"+EncryptedBackupExt)
		if entry.IsDir() || !(encrypted || strings.HasSuffix(entry.Name(), ".db")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(backupDir, entry.Name())
		checksum, err := calculateChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Name:      entry.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Checksum:  checksum,
			Encrypted: encrypted,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})

	return backups, nil
}

// Prune deletes all but the newest keep backups in dir.
func (bm *BackupManager) Prune(dir string, keep int) error {
	backups, err := bm.ListBackups(dir)
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}

	var errs error
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", b.Name, err))
		}
	}
	return errs
}

// Restore replaces the database file at dbPath with a verified backup. An
// encrypted backup is decrypted with password first. The database must be
// closed by the caller; the previous file is kept with an ".old" suffix.
func Restore(dbPath, backupPath, password string) error {
	bm := &BackupManager{dbPath: dbPath}

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	tempPath := dbPath + ".restore.tmp"
	if encrypted {
		err = DecryptFile(backupPath, tempPath, password)
	} else {
		err = copyFile(backupPath, tempPath)
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if err := bm.VerifyBackup(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("backup verification failed: %w", err)
	}

	if _, err := os.Stat(dbPath); err == nil {
		oldPath := dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}

	if err := os.Rename(tempPath, dbPath); err != nil {
		return fmt.Errorf("failed to replace database with backup: %w", err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}

// calculateChecksum calculates the SHA-256 checksum of a file.
func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
