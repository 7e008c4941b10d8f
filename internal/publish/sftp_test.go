package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rhyrak/fce-compiler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Uploading needs a live SFTP server; these tests cover everything that
// fails before a connection is attempted.

func TestUploadFiles_Validation(t *testing.T) {
	ctx := context.Background()
	existing := filepath.Join(t.TempDir(), "fce.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o644))

	testCases := []struct {
		name          string
		cfg           config.PublishConfig
		files         []string
		errorContains string
	}{
		{
			name:          "missing credentials",
			cfg:           config.PublishConfig{},
			files:         []string{existing},
			errorContains: "missing SFTP_HOST",
		},
		{
			name:          "missing local file",
			cfg:           config.PublishConfig{Host: "localhost", User: "u", Pass: "p", InsecureIgnoreHostKey: true},
			files:         []string{filepath.Join(t.TempDir(), "nope.json")},
			errorContains: "no such file",
		},
		{
			name:          "no host key policy",
			cfg:           config.PublishConfig{Host: "localhost", User: "u", Pass: "p"},
			files:         []string{existing},
			errorContains: "no known_hosts file",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := UploadFiles(ctx, tc.cfg, tc.files...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestUploadFiles_MissingCredentialsSentinel(t *testing.T) {
	err := UploadFiles(context.Background(), config.PublishConfig{Host: "h"})
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

func TestUploadFiles_CanceledContext(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "fce.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 192.0.2.0/24 is reserved for documentation and never answers
	cfg := config.PublishConfig{Host: "192.0.2.1", User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	err := UploadFiles(ctx, cfg, existing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial canceled")
}

func TestHostKeyCallback(t *testing.T) {
	cb, err := HostKeyCallback(config.PublishConfig{InsecureIgnoreHostKey: true})
	require.NoError(t, err)
	assert.NotNil(t, cb)

	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	require.NoError(t, os.WriteFile(knownHosts, nil, 0o600))
	cb, err = HostKeyCallback(config.PublishConfig{KnownHostsFile: knownHosts})
	require.NoError(t, err)
	assert.NotNil(t, cb)

	_, err = HostKeyCallback(config.PublishConfig{KnownHostsFile: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	_, err = HostKeyCallback(config.PublishConfig{})
	assert.Error(t, err)
}

type fakeConn struct {
	closed chan struct{}
}

func (c *fakeConn) Close() error {
	close(c.closed)
	return nil
}

func TestDialContext_ClosesLateConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	conn := &fakeConn{closed: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := dialContext(ctx, func() (*fakeConn, error) {
			close(started)
			<-release
			return conn, nil
		})
		done <- err
	}()

	<-started
	cancel()
	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	close(release)
	select {
	case <-conn.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("connection completed after cancel was not closed")
	}
}

func TestDialContext_Success(t *testing.T) {
	conn := &fakeConn{closed: make(chan struct{})}
	got, err := dialContext(context.Background(), func() (*fakeConn, error) {
		return conn, nil
	})
	require.NoError(t, err)
	assert.Same(t, conn, got)
}
