package runtime

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// HashPassword renders the SHA-256 hex digest of a plaintext password, the
// form ACL SETUSER's `>password` rule stores — generalized directly from
// the teacher's internal/auth.HashKey (API key hashing) to ACL password
// hashing; same primitive, same constant-time verification story.
func HashPassword(password string) string {
	h := sha256.Sum256([]byte(password))
	return hex.EncodeToString(h[:])
}

// VerifyPassword reports whether password matches hash, using a
// constant-time comparison exactly as the teacher's internal/auth.VerifyKey
// does for API keys.
func VerifyPassword(password, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(hash)) == 1
}

// GenPass generates an ACL GENPASS password: bits/4 hex characters from
// crypto/rand (bits defaults to 256 ⇒ 64 hex chars), mirroring the
// teacher's GenerateAPIKey random-source choice (crypto/rand, not
// math/rand).
func GenPass(bits int) (string, error) {
	if bits <= 0 {
		bits = 256
	}
	nbytes := (bits + 7) / 8
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := hex.EncodeToString(buf)
	return out[:bits/4], nil
}

// User is one ACL user entry.
type User struct {
	Name           string
	PasswordHashes []string
	Enabled        bool
	NoPass         bool
	AllCommands    bool
	AllKeys        bool
	AllChannels    bool
}

func newDefaultUser() *User {
	return &User{Name: "default", Enabled: true, NoPass: true, AllCommands: true, AllKeys: true, AllChannels: true}
}

func (u *User) hasPassword(password string) bool {
	for _, h := range u.PasswordHashes {
		if VerifyPassword(password, h) {
			return true
		}
	}
	return false
}

func (u *User) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "user %s ", u.Name)
	if u.Enabled {
		b.WriteString("on ")
	} else {
		b.WriteString("off ")
	}
	if u.NoPass {
		b.WriteString("nopass ")
	}
	for _, h := range u.PasswordHashes {
		fmt.Fprintf(&b, "#%s ", h)
	}
	if u.AllKeys {
		b.WriteString("~* ")
	}
	if u.AllChannels {
		b.WriteString("&* ")
	}
	if u.AllCommands {
		b.WriteString("+@all")
	} else {
		b.WriteString("-@all")
	}
	return strings.TrimSpace(b.String())
}

// AuthState is the server-wide auth/ACL configuration (spec §4.3): an
// optional requirepass, the ACL user table, and the running ACL log.
type AuthState struct {
	mu           sync.Mutex
	requirepass  string // password hash; empty means unset
	users        map[string]*User
	aclLog       []string
	aclLogMaxLen int
}

func NewAuthState() *AuthState {
	return &AuthState{users: map[string]*User{"default": newDefaultUser()}, aclLogMaxLen: 128}
}

// SetAclLogMaxLen bridges CONFIG SET acllog-max-len: truncates the current
// log to the new bound and caps future appends to it.
func (a *AuthState) SetAclLogMaxLen(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.aclLogMaxLen = n
	if n >= 0 && len(a.aclLog) > n {
		a.aclLog = a.aclLog[len(a.aclLog)-n:]
	}
}

// AclLogMaxLen returns the current acllog-max-len bound, for CONFIG GET.
func (a *AuthState) AclLogMaxLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aclLogMaxLen
}

// Required reports whether any credential is configured at all
// (requirepass or a user with non-empty passwords).
func (a *AuthState) Required() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requiredLocked()
}

func (a *AuthState) requiredLocked() bool {
	if a.requirepass != "" {
		return true
	}
	for _, u := range a.users {
		if len(u.PasswordHashes) > 0 && !u.NoPass {
			return true
		}
	}
	return false
}

// SetRequirePass sets or clears (on empty password) the default user's
// requirepass, per the CONFIG SET requirepass bridge (spec §4.3).
func (a *AuthState) SetRequirePass(password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	def := a.users["default"]
	if password == "" {
		a.requirepass = ""
		def.NoPass = true
		def.PasswordHashes = nil
		return
	}
	hash := HashPassword(password)
	a.requirepass = hash
	def.NoPass = false
	def.PasswordHashes = []string{hash}
}

// RequirePassHash returns the current requirepass hash, or "" if unset —
// used by the CONFIG GET bridge.
func (a *AuthState) RequirePassHash() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requirepass
}

// Authenticate validates username/password (default user when username
// is ""). Returns true on success.
func (a *AuthState) Authenticate(username, password string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if username == "" {
		username = "default"
	}
	u, ok := a.users[username]
	if !ok || !u.Enabled {
		return false
	}
	if u.NoPass {
		return true
	}
	return u.hasPassword(password)
}

// Session is per-connection state (spec §9: "per-session state ... must
// not leak across connections"): auth status and the MULTI/WATCH
// transaction state.
type Session struct {
	AuthenticatedUser string
	Proto             int

	InMultiQueue bool
	QueueError   bool
	Queue        [][][]byte
	Watches      map[string]uint64

	// ClientID is assigned once per connection and survives RESET; it is
	// the identity CLIENT ID/LIST/KILL address (spec §4.2 [NEW]).
	ClientID   int64
	ClientName string
}

// NewSession returns a fresh session with the bootstrap defaults: the
// default user implicitly authenticated (spec §4.3: "On bootstrap:
// default user `default` is authenticated").
func NewSession() *Session {
	return &Session{AuthenticatedUser: "default", Proto: 2}
}

// Reset returns the session to bootstrap defaults (CLIENT RESET, spec §9),
// preserving the connection's ClientID.
func (s *Session) Reset() {
	id := s.ClientID
	*s = *NewSession()
	s.ClientID = id
}

func (s *Session) authenticated() bool {
	return s.AuthenticatedUser != ""
}

// NoAuthGate implements the admission gate run before any special-command
// or dispatcher routing (spec §4.3): rejects with NOAUTH when auth is
// required and the session hasn't authenticated.
func (a *AuthState) NoAuthGate(s *Session) error {
	if a.Required() && !s.authenticated() {
		return rkerrors.NoAuth()
	}
	return nil
}

// HandleAuth implements AUTH [user] password.
func (a *AuthState) HandleAuth(argv [][]byte, s *Session) (resp.Frame, error) {
	var username, password string
	switch len(argv) {
	case 2:
		password = string(argv[1])
	case 3:
		username, password = string(argv[1]), string(argv[2])
	default:
		return resp.Frame{}, rkerrors.WrongArity("AUTH")
	}
	if !a.Required() {
		return resp.Frame{}, rkerrors.AuthNotConfigured()
	}
	if !a.Authenticate(username, password) {
		return resp.Frame{}, rkerrors.WrongPass()
	}
	if username == "" {
		username = "default"
	}
	s.AuthenticatedUser = username
	return resp.OK(), nil
}

// HandleHello implements HELLO [2|3] [AUTH user pwd].
func (a *AuthState) HandleHello(argv [][]byte, s *Session) (resp.Frame, error) {
	proto := s.Proto
	idx := 1
	if len(argv) > 1 && isDigits(string(argv[1])) {
		n, err := strconv.Atoi(string(argv[1]))
		if err != nil || (n != 2 && n != 3) {
			return resp.Frame{}, rkerrors.NoProto()
		}
		proto = n
		idx = 2
	}
	for idx < len(argv) {
		switch upper(argv[idx]) {
		case "AUTH":
			if idx+2 >= len(argv) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			username, password := string(argv[idx+1]), string(argv[idx+2])
			if !a.Authenticate(username, password) {
				return resp.Frame{}, rkerrors.WrongPass()
			}
			if username == "" {
				username = "default"
			}
			s.AuthenticatedUser = username
			idx += 3
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	if err := a.NoAuthGate(s); err != nil {
		return resp.Frame{}, err
	}
	s.Proto = proto
	return resp.Array([]resp.Frame{
		resp.BulkFromString("server"), resp.BulkFromString("redikv"),
		resp.BulkFromString("version"), resp.BulkFromString("1.0.0"),
		resp.BulkFromString("proto"), resp.Int(int64(proto)),
		resp.BulkFromString("id"), resp.Int(1),
		resp.BulkFromString("mode"), resp.BulkFromString("standalone"),
		resp.BulkFromString("role"), resp.BulkFromString("master"),
		resp.BulkFromString("modules"), resp.Array(nil),
	}), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// HandleACL dispatches ACL subcommands (spec §4.3).
func (a *AuthState) HandleACL(argv [][]byte, s *Session) (resp.Frame, error) {
	if len(argv) < 2 {
		return resp.Frame{}, rkerrors.WrongArity("ACL")
	}
	switch upper(argv[1]) {
	case "WHOAMI":
		return resp.BulkFromString(s.AuthenticatedUser), nil
	case "LIST":
		return resp.Array(a.listDescriptions()), nil
	case "USERS":
		return resp.Array(a.userNames()), nil
	case "CAT":
		return resp.Array([]resp.Frame{resp.BulkFromString("keyspace"), resp.BulkFromString("read"), resp.BulkFromString("write")}), nil
	case "GETUSER":
		if len(argv) != 3 {
			return resp.Frame{}, rkerrors.WrongArity("ACL")
		}
		return a.getUser(string(argv[2])), nil
	case "SETUSER":
		if len(argv) < 3 {
			return resp.Frame{}, rkerrors.WrongArity("ACL")
		}
		if err := a.setUser(string(argv[2]), argv[3:]); err != nil {
			return resp.Frame{}, err
		}
		return resp.OK(), nil
	case "DELUSER":
		if len(argv) < 3 {
			return resp.Frame{}, rkerrors.WrongArity("ACL")
		}
		n, err := a.delUsers(stringArgs(argv[2:]))
		if err != nil {
			return resp.Frame{}, err
		}
		return resp.Int(n), nil
	case "GENPASS":
		bits := 256
		if len(argv) == 3 {
			n, err := strconv.Atoi(string(argv[2]))
			if err != nil {
				return resp.Frame{}, rkerrors.ValueNotInteger()
			}
			bits = n
		}
		pass, err := GenPass(bits)
		if err != nil {
			return resp.Frame{}, err
		}
		return resp.BulkFromString(pass), nil
	case "LOG":
		return a.handleACLLog(argv[2:]), nil
	case "HELP":
		return resp.Array([]resp.Frame{resp.BulkFromString("ACL <subcommand>")}), nil
	default:
		return resp.Frame{}, rkerrors.SyntaxError()
	}
}

func (a *AuthState) listDescriptions() []resp.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := a.sortedNamesLocked()
	out := make([]resp.Frame, 0, len(names))
	for _, n := range names {
		out = append(out, resp.BulkFromString(a.users[n].describe()))
	}
	return out
}

func (a *AuthState) userNames() []resp.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := a.sortedNamesLocked()
	out := make([]resp.Frame, 0, len(names))
	for _, n := range names {
		out = append(out, resp.BulkFromString(n))
	}
	return out
}

func (a *AuthState) sortedNamesLocked() []string {
	names := make([]string, 0, len(a.users))
	for n := range a.users {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (a *AuthState) getUser(name string) resp.Frame {
	a.mu.Lock()
	u, ok := a.users[name]
	a.mu.Unlock()
	if !ok {
		return resp.NullArray()
	}
	flags := []resp.Frame{resp.BulkFromString("off")}
	if u.Enabled {
		flags = []resp.Frame{resp.BulkFromString("on")}
	}
	if u.NoPass {
		flags = append(flags, resp.BulkFromString("nopass"))
	}
	return resp.Array([]resp.Frame{
		resp.BulkFromString("flags"), resp.Array(flags),
		resp.BulkFromString("passwords"), resp.Array(passwordFrames(u.PasswordHashes)),
		resp.BulkFromString("commands"), resp.BulkFromString(commandsRule(u)),
		resp.BulkFromString("keys"), resp.BulkFromString(keysRule(u)),
		resp.BulkFromString("channels"), resp.BulkFromString(channelsRule(u)),
	})
}

func passwordFrames(hashes []string) []resp.Frame {
	out := make([]resp.Frame, len(hashes))
	for i, h := range hashes {
		out[i] = resp.BulkFromString(h)
	}
	return out
}

func commandsRule(u *User) string {
	if u.AllCommands {
		return "+@all"
	}
	return "-@all"
}

func keysRule(u *User) string {
	if u.AllKeys {
		return "~*"
	}
	return ""
}

func channelsRule(u *User) string {
	if u.AllChannels {
		return "&*"
	}
	return ""
}

// setUser applies ACL SETUSER's rule grammar (spec §4.3): on|off|nopass|
// resetpass|allcommands|allkeys|allchannels|+@all|~*|&*|>password|
// <password. Unknown rules return a syntax error; the user is created on
// first reference if it doesn't already exist.
func (a *AuthState) setUser(name string, rules [][]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[name]
	if !ok {
		u = &User{Name: name}
		a.users[name] = u
	}
	for _, r := range rules {
		rule := string(r)
		switch {
		case rule == "on":
			u.Enabled = true
		case rule == "off":
			u.Enabled = false
		case rule == "nopass":
			u.NoPass = true
			u.PasswordHashes = nil
		case rule == "resetpass":
			u.NoPass = false
			u.PasswordHashes = nil
		case rule == "allcommands" || rule == "+@all":
			u.AllCommands = true
		case rule == "-@all":
			u.AllCommands = false
		case rule == "allkeys" || rule == "~*":
			u.AllKeys = true
		case rule == "allchannels" || rule == "&*":
			u.AllChannels = true
		case strings.HasPrefix(rule, ">"):
			u.NoPass = false
			u.PasswordHashes = append(u.PasswordHashes, HashPassword(rule[1:]))
		case strings.HasPrefix(rule, "<"):
			removePassword(u, HashPassword(rule[1:]))
		default:
			return rkerrors.SyntaxError()
		}
	}
	if name == "default" {
		a.syncRequirePassLocked()
	}
	return nil
}

func (a *AuthState) syncRequirePassLocked() {
	def := a.users["default"]
	if def.NoPass || len(def.PasswordHashes) == 0 {
		a.requirepass = ""
		return
	}
	a.requirepass = def.PasswordHashes[0]
}

func removePassword(u *User, hash string) {
	out := u.PasswordHashes[:0]
	for _, h := range u.PasswordHashes {
		if h != hash {
			out = append(out, h)
		}
	}
	u.PasswordHashes = out
}

// delUsers deletes each named user; "default" is rejected (spec §4.3:
// "DELUSER default is rejected").
func (a *AuthState) delUsers(names []string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, n := range names {
		if n == "default" {
			return 0, rkerrors.SyntaxError()
		}
	}
	var n int64
	for _, name := range names {
		if _, ok := a.users[name]; ok {
			delete(a.users, name)
			n++
		}
	}
	return n, nil
}

func (a *AuthState) handleACLLog(args [][]byte) resp.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(args) == 1 && upper(args[0]) == "RESET" {
		a.aclLog = nil
		return resp.OK()
	}
	entries := a.aclLog
	if len(args) == 1 {
		if n, err := strconv.Atoi(string(args[0])); err == nil && n < len(entries) {
			entries = entries[len(entries)-n:]
		}
	}
	out := make([]resp.Frame, len(entries))
	for i, e := range entries {
		out[i] = resp.BulkFromString(e)
	}
	return resp.Array(out)
}

func stringArgs(argv [][]byte) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = string(a)
	}
	return out
}

func upper(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
