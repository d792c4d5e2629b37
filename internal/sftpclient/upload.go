// Package sftpclient uploads exported files to an SFTP drop box.
package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"course-catalog/internal/config"
)

type Config struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string

	// KnownHosts is an OpenSSH known_hosts file. It is required unless
	// InsecureIgnoreHostKey is set.
	KnownHosts            string
	InsecureIgnoreHostKey bool

	Timeout time.Duration
}

func FromConfig(c config.SFTPConfig) Config {
	return Config{
		Host:                  c.Host,
		Port:                  c.Port,
		User:                  c.User,
		Pass:                  c.Pass,
		RemoteDir:             c.Dir,
		KnownHosts:            c.KnownHosts,
		InsecureIgnoreHostKey: c.InsecureIgnoreHostKey,
	}
}

func (cfg Config) withDefaults() Config {
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "."
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return cfg
}

func (cfg Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if cfg.KnownHosts == "" {
		return nil, errors.New("sftp: no known_hosts file configured and host key checking not disabled")
	}
	cb, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("sftp: known_hosts: %w", err)
	}
	return cb, nil
}

// UploadFile uploads one local file as remoteFileName under cfg.RemoteDir.
func UploadFile(ctx context.Context, cfg Config, localPath string, remoteFileName string) error {
	_, err := upload(ctx, cfg, []string{localPath}, []string{remoteFileName}, nil)
	return err
}

// UploadFiles uploads every local file, keeping its base name, over a single
// connection. It returns the remote paths written so far.
func UploadFiles(ctx context.Context, cfg Config, localPaths []string, logger *slog.Logger) ([]string, error) {
	names := make([]string, len(localPaths))
	for i, p := range localPaths {
		names[i] = filepath.Base(p)
	}
	return upload(ctx, cfg, localPaths, names, logger)
}

func upload(ctx context.Context, cfg Config, localPaths, remoteNames []string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, errors.New("sftp: host, user and password are required")
	}
	cfg = cfg.withDefaults()

	for _, p := range localPaths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("sftp: local file: %w", err)
		}
	}

	cb, err := cfg.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshClient, err := dial(ctx, cfg, cb)
	if err != nil {
		return nil, err
	}
	defer sshClient.Close()

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("sftp: new client: %w", err)
	}
	defer sftpCli.Close()

	if err := sftpCli.MkdirAll(cfg.RemoteDir); err != nil {
		return nil, fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}

	var done []string
	for i, local := range localPaths {
		if err := ctx.Err(); err != nil {
			return done, fmt.Errorf("sftp: upload canceled: %w", err)
		}
		remotePath := path.Join(cfg.RemoteDir, remoteNames[i])
		n, err := copyFile(sftpCli, local, remotePath)
		if err != nil {
			return done, err
		}
		logger.Info("uploaded", "local", local, "remote", remotePath, "bytes", n)
		done = append(done, remotePath)
	}
	return done, nil
}

func dial(ctx context.Context, cfg Config, cb ssh.HostKeyCallback) (*ssh.Client, error) {
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         cfg.Timeout,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sftp: dial error: %w", err)
	}

	// Bound the handshake by the timeout and by ctx.
	_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	stop()
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("sftp: handshake: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}

func copyFile(cli *sftp.Client, localPath, remotePath string) (int64, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	dst, err := cli.Create(remotePath)
	if err != nil {
		return 0, fmt.Errorf("sftp: create remote file %s: %w", remotePath, err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("sftp: upload %s: %w", remotePath, err)
	}
	return n, nil
}
