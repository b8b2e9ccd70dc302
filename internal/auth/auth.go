// Package auth implements the login gate of a running system.
//
// Credentials live in two colon-delimited files inside the container:
// UsersFile lists "name:..." records and PasswordsFile lists "name:hash"
// records. A user is valid only when both files name it.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"virtualos/internal/fs"
	"virtualos/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

const (
	// UsersFile lists known users, one "name:..." record per line.
	UsersFile = "/sys/usr/users.info"
	// PasswordsFile lists "name:hash" records.
	PasswordsFile = "/sys/usr/passwd.info"
)

var (
	logger = logging.GetLogger().WithPrefix("auth")

	// ErrCredentialsMissing indicates the container lacks a credential file
	ErrCredentialsMissing = errors.New("credential files not found in /sys/usr/")
)

// Store is the read access the gate needs.
type Store interface {
	ReadFile(input string, cwd fs.VirtualPath) (string, error)
}

// Prompter asks the user for input and reports failures.
type Prompter interface {
	Input(prefix string) (string, error)
	Password(prefix string) (string, error)
	Error(msg string)
}

// Comparer checks a plaintext password against a stored hash.
type Comparer interface {
	CompareWithHash(plain, hash string) bool
}

// BcryptComparer compares against bcrypt hashes.
type BcryptComparer struct{}

// CompareWithHash implements Comparer.
func (BcryptComparer) CompareWithHash(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashPassword produces the stored form of a password.
func HashPassword(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// User is an authenticated user.
type User struct {
	Name string
}

// State is the gate's position in the login exchange.
type State int

const (
	AwaitingName State = iota
	AwaitingPassword
	Authenticated
)

func (s State) String() string {
	switch s {
	case AwaitingName:
		return "AwaitingName"
	case AwaitingPassword:
		return "AwaitingPassword"
	case Authenticated:
		return "Authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Gate runs the name/password exchange until a user authenticates.
type Gate struct {
	store    Store
	prompt   Prompter
	comparer Comparer
	state    State
}

// NewGate creates a gate. A nil comparer means bcrypt.
func NewGate(store Store, prompt Prompter, comparer Comparer) *Gate {
	if comparer == nil {
		comparer = BcryptComparer{}
	}
	return &Gate{store: store, prompt: prompt, comparer: comparer}
}

// State reports where the exchange currently is.
func (g *Gate) State() State {
	return g.state
}

// Login loops until a user authenticates. Wrong names and passwords are
// reported and retried. It only fails when the credential files are
// unreadable or the prompter fails (io.EOF when input ends).
func (g *Gate) Login() (User, error) {
	g.state = AwaitingName
	var name string

	for {
		switch g.state {
		case AwaitingName:
			input, err := g.prompt.Input("System User")
			if err != nil {
				return User{}, err
			}
			exists, err := g.UserExists(input)
			if err != nil {
				return User{}, err
			}
			if !exists {
				logger.Info("Login attempt for unknown user %q", input)
				g.prompt.Error("No user found with name " + input)
				continue
			}
			name = input
			g.state = AwaitingPassword

		case AwaitingPassword:
			password, err := g.prompt.Password(name + "'s password")
			if err != nil {
				return User{}, err
			}
			valid, err := g.ValidatePassword(name, password)
			if err != nil {
				return User{}, err
			}
			if !valid {
				logger.Info("Invalid password for user %q", name)
				g.prompt.Error("Invalid password for user: " + name)
				g.state = AwaitingName
				continue
			}
			g.state = Authenticated

		case Authenticated:
			logger.Info("User %q logged in", name)
			return User{Name: name}, nil
		}
	}
}

// UserExists reports whether the users file lists name.
func (g *Gate) UserExists(name string) (bool, error) {
	records, err := g.records(UsersFile)
	if err != nil {
		return false, err
	}
	_, ok := lookup(records, name)
	return ok, nil
}

// ValidatePassword checks password against the passwords file. A user
// without a password record can never log in.
func (g *Gate) ValidatePassword(name, password string) (bool, error) {
	records, err := g.records(PasswordsFile)
	if err != nil {
		return false, err
	}
	hash, ok := lookup(records, name)
	if !ok {
		logger.Warn("User %q has no password record", name)
		return false, nil
	}
	return g.comparer.CompareWithHash(password, hash), nil
}

func (g *Gate) records(path string) ([]string, error) {
	text, err := g.store.ReadFile(path, fs.Root)
	if err != nil {
		if errors.Is(err, fs.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.Split(text, "\n"), nil
}

// lookup finds the first record for name and returns its second field.
func lookup(lines []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		user, rest, _ := strings.Cut(line, ":")
		if user == name {
			rest, _, _ = strings.Cut(rest, ":")
			return rest, true
		}
	}
	return "", false
}
