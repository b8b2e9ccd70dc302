// Package install creates new system containers.
package install

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"virtualos/internal/auth"
	"virtualos/internal/logging"
	"virtualos/internal/system"

	"github.com/klauspost/compress/zip"
	"golang.org/x/crypto/bcrypt"
)

var (
	logger = logging.GetLogger().WithPrefix("install")

	// ErrInvalidOptions indicates unusable installation options
	ErrInvalidOptions = errors.New("invalid installation options")
	// ErrExists indicates the target container already exists
	ErrExists = errors.New("container already exists")
)

// UserSpec is an account to create.
type UserSpec struct {
	Name     string
	Password string
}

// Options describe the system to install.
type Options struct {
	SystemName string
	Users      []UserSpec
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

func (o Options) validate(path string) error {
	if !strings.HasSuffix(path, system.ContainerSuffix) {
		return fmt.Errorf("%w: %s does not end with %s", ErrInvalidOptions, path, system.ContainerSuffix)
	}
	if strings.TrimSpace(o.SystemName) == "" {
		return fmt.Errorf("%w: empty system name", ErrInvalidOptions)
	}
	if len(o.Users) == 0 {
		return fmt.Errorf("%w: at least one user is required", ErrInvalidOptions)
	}
	seen := make(map[string]bool, len(o.Users))
	for _, u := range o.Users {
		if u.Name == "" || strings.ContainsAny(u.Name, ":/ \t\r\n") {
			return fmt.Errorf("%w: bad user name %q", ErrInvalidOptions, u.Name)
		}
		if seen[u.Name] {
			return fmt.Errorf("%w: duplicate user %q", ErrInvalidOptions, u.Name)
		}
		seen[u.Name] = true
	}
	return nil
}

type member struct {
	name string
	data []byte
}

// Install writes a new container at path. It never overwrites an existing
// file, and removes a partially written one on failure.
func Install(path string, opts Options) (err error) {
	if err := opts.validate(path); err != nil {
		return err
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	members, err := layout(opts, cost)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
		if err != nil {
			logger.Warn("Removing incomplete container %s", path)
			_ = os.Remove(path)
		}
	}()

	if err = write(f, members); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Info("Installed system %q with %d user(s) at %s", opts.SystemName, len(opts.Users), path)
	return nil
}

// layout lists the container members in write order.
func layout(opts Options, cost int) ([]member, error) {
	info, err := system.EncodeInfo(system.Info{SystemName: strings.TrimSpace(opts.SystemName)})
	if err != nil {
		return nil, err
	}

	var users, passwords strings.Builder
	homes := make([]member, 0, len(opts.Users))
	for _, u := range opts.Users {
		hash, err := auth.HashPassword(u.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", u.Name, err)
		}
		fmt.Fprintf(&users, "%s:/home/%s\n", u.Name, u.Name)
		fmt.Fprintf(&passwords, "%s:%s\n", u.Name, hash)
		homes = append(homes, member{name: "home/" + u.Name + "/"})
	}

	members := []member{
		{name: "sys/"},
		{name: strings.TrimPrefix(system.InfoFile, "/"), data: info},
		{name: "sys/usr/"},
		{name: strings.TrimPrefix(auth.UsersFile, "/"), data: []byte(users.String())},
		{name: strings.TrimPrefix(auth.PasswordsFile, "/"), data: []byte(passwords.String())},
		{name: "home/"},
	}
	return append(members, homes...), nil
}

func write(w io.Writer, members []member) error {
	zw := zip.NewWriter(w)
	now := time.Now()
	for _, m := range members {
		header := &zip.FileHeader{Name: m.name, Modified: now, Method: zip.Deflate}
		if strings.HasSuffix(m.name, "/") {
			header.Method = zip.Store
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if len(m.data) > 0 {
			if _, err := fw.Write(m.data); err != nil {
				return err
			}
		}
	}
	return zw.Close()
}
