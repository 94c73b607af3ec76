package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BackupScheduler runs backups on a fixed interval until its context ends
// or Stop is called.
type BackupScheduler struct {
	manager *BackupManager
	config  *SchedulerConfig

	mu           sync.RWMutex
	cancel       context.CancelFunc
	done         chan struct{}
	lastBackup   time.Time
	lastPath     string
	lastError    error
	backupCount  int
	failureCount int
}

// SchedulerConfig holds configuration for the backup scheduler.
type SchedulerConfig struct {
	// Interval is how often to run backups.
	Interval time.Duration

	// BackupConfig is used for every backup.
	BackupConfig *BackupConfig

	// StartImmediately runs one backup as soon as the scheduler starts.
	StartImmediately bool

	// OnBackupComplete is called after each attempt, successful or not.
	OnBackupComplete func(backupPath string, err error)
}

// DefaultSchedulerConfig returns a scheduler config with daily backups.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval:     24 * time.Hour,
		BackupConfig: DefaultBackupConfig(),
	}
}

// NewBackupScheduler creates a new backup scheduler.
func NewBackupScheduler(manager *BackupManager, config *SchedulerConfig) *BackupScheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &BackupScheduler{manager: manager, config: config}
}

// Start launches the scheduler loop. It returns an error if already running.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("scheduler is already running")
	}
	if s.config.Interval <= 0 {
		return fmt.Errorf("backup interval must be positive, got %s", s.config.Interval)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	return nil
}

// Stop stops the scheduler and waits for an in-flight backup to finish.
func (s *BackupScheduler) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

func (s *BackupScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.config.StartImmediately {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs one backup immediately and records the outcome.
func (s *BackupScheduler) RunOnce(ctx context.Context) (string, error) {
	path, err := s.manager.Backup(ctx, s.config.BackupConfig)

	s.mu.Lock()
	s.lastBackup = time.Now()
	s.lastPath = path
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.backupCount++
	}
	s.mu.Unlock()

	if s.config.OnBackupComplete != nil {
		s.config.OnBackupComplete(path, err)
	}
	return path, err
}

// SchedulerStatus contains information about the scheduler state.
type SchedulerStatus struct {
	Running      bool          `json:"running"`
	Interval     time.Duration `json:"interval"`
	LastBackup   time.Time     `json:"last_backup"`
	LastPath     string        `json:"last_path"`
	BackupCount  int           `json:"backup_count"`
	FailureCount int           `json:"failure_count"`
	LastError    string        `json:"last_error,omitempty"`
}

// Status returns the current scheduler status.
func (s *BackupScheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		Running:      s.cancel != nil,
		Interval:     s.config.Interval,
		LastBackup:   s.lastBackup,
		LastPath:     s.lastPath,
		BackupCount:  s.backupCount,
		FailureCount: s.failureCount,
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	return status
}

// ListBackups lists the backups in the scheduler's backup directory, newest first.
func (s *BackupScheduler) ListBackups() ([]BackupInfo, error) {
	dir := ""
	if s.config.BackupConfig != nil {
		dir = s.config.BackupConfig.Dir
	}
	return s.manager.ListBackups(dir)
}
