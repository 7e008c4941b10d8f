package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"github.com/rhyrak/fce-compiler/internal/config"
	"github.com/rhyrak/fce-compiler/internal/logging"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var ErrMissingCredentials = errors.New("publish: missing SFTP_HOST / SFTP_USER / SFTP_PASS")

const dialTimeout = 20 * time.Second

// HostKeyCallback picks host key verification for the target. known_hosts
// wins; skipping verification must be asked for explicitly.
func HostKeyCallback(cfg config.PublishConfig) (ssh.HostKeyCallback, error) {
	if cfg.KnownHostsFile != "" {
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("publish: known hosts: %w", err)
		}
		return cb, nil
	}
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return nil, fmt.Errorf("publish: no known_hosts file configured")
}

// UploadFiles copies the local files into the remote directory, keeping
// their base names.
func UploadFiles(ctx context.Context, cfg config.PublishConfig, localPaths ...string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return ErrMissingCredentials
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	for _, p := range localPaths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	cb, err := HostKeyCallback(cfg)
	if err != nil {
		return err
	}
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         dialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	sshClient, err := dialContext(ctx, func() (*ssh.Client, error) {
		return ssh.Dial("tcp", addr, sshCfg)
	})
	if err != nil {
		return fmt.Errorf("publish: dial %s: %w", addr, err)
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("publish: new sftp client: %w", err)
	}
	defer client.Close()

	if err := client.MkdirAll(cfg.RemoteDir); err != nil {
		return fmt.Errorf("publish: mkdir %s: %w", cfg.RemoteDir, err)
	}

	log := logging.For("publish")
	for _, p := range localPaths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		remotePath := path.Join(cfg.RemoteDir, filepath.Base(p))
		if err := upload(client, p, remotePath); err != nil {
			return err
		}
		log.Info().Str("file", p).Str("remote", fmt.Sprintf("sftp://%s%s", addr, remotePath)).Msg("Uploaded")
	}
	return nil
}

// dialContext runs dial until it returns or ctx is done. A connection that
// completes after cancellation is closed.
func dialContext[C io.Closer](ctx context.Context, dial func() (C, error)) (C, error) {
	var zero C
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("dial canceled: %w", err)
	}
	type dialRes struct {
		conn C
		err  error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := dial()
		ch <- dialRes{conn: c, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.err == nil {
				r.conn.Close()
			}
		}()
		return zero, fmt.Errorf("dial canceled: %w", ctx.Err())
	case r := <-ch:
		return r.conn, r.err
	}
}

func upload(client *sftp.Client, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("publish: open local file: %w", err)
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("publish: create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("publish: upload copy: %w", err)
	}
	return nil
}
