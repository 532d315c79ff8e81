package testutil

import (
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// FileSuite is a base suite for tests that read and write pool config files.
// Each suite gets its own temp directory and an observed logger.
type FileSuite struct {
	suite.Suite
	tempDir   string
	startTime time.Time

	Log  *zap.Logger
	Logs *observer.ObservedLogs
}

// SetupSuite runs before all tests in the suite
func (s *FileSuite) SetupSuite() {
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "stockpile-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// SetupTest gives every test a fresh observed logger
func (s *FileSuite) SetupTest() {
	s.Log, s.Logs = ObservedLogger()
}

// TearDownSuite runs after all tests in the suite
func (s *FileSuite) TearDownSuite() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// TempDir returns the temporary directory path
func (s *FileSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile creates a temporary file with content
func (s *FileSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.tempDir, name)
	err := os.WriteFile(path, content, 0o644)
	require.NoError(s.T(), err)
	return path
}
