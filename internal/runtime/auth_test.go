package runtime

import (
	"testing"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash := HashPassword("hunter2")
	assert.True(t, VerifyPassword("hunter2", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestGenPassLength(t *testing.T) {
	p, err := GenPass(256)
	require.NoError(t, err)
	assert.Len(t, p, 64)

	p2, err := GenPass(0)
	require.NoError(t, err)
	assert.Len(t, p2, 64)
}

func TestAuthStateNotRequiredByDefault(t *testing.T) {
	a := NewAuthState()
	assert.False(t, a.Required())
	assert.True(t, a.Authenticate("", "anything"))
}

func TestSetRequirePassEnforcesAuth(t *testing.T) {
	a := NewAuthState()
	a.SetRequirePass("secret")
	assert.True(t, a.Required())
	assert.False(t, a.Authenticate("", "wrong"))
	assert.True(t, a.Authenticate("", "secret"))

	a.SetRequirePass("")
	assert.False(t, a.Required())
}

func TestNoAuthGate(t *testing.T) {
	a := NewAuthState()
	s := NewSession()
	require.NoError(t, a.NoAuthGate(s))

	a.SetRequirePass("secret")
	s2 := &Session{}
	err := a.NoAuthGate(s2)
	require.Error(t, err)
	ce, ok := err.(*rkerrors.CommandError)
	require.True(t, ok)
	assert.Equal(t, "NOAUTH Authentication required.", ce.Reply())
}

func TestHandleAuthWrongPassAndSuccess(t *testing.T) {
	a := NewAuthState()
	a.SetRequirePass("secret")
	s := &Session{}

	_, err := a.HandleAuth([][]byte{[]byte("AUTH"), []byte("bad")}, s)
	require.Error(t, err)

	f, err := a.HandleAuth([][]byte{[]byte("AUTH"), []byte("secret")}, s)
	require.NoError(t, err)
	assert.True(t, f.Equal(resp.OK()))
	assert.Equal(t, "default", s.AuthenticatedUser)
}

func TestHandleAuthWithoutConfiguredPassword(t *testing.T) {
	a := NewAuthState()
	s := &Session{}
	_, err := a.HandleAuth([][]byte{[]byte("AUTH"), []byte("whatever")}, s)
	require.Error(t, err)
}

func TestHandleHelloDefaultsAndBadProto(t *testing.T) {
	a := NewAuthState()
	s := NewSession()

	f, err := a.HandleHello([][]byte{[]byte("HELLO")}, s)
	require.NoError(t, err)
	assert.Equal(t, resp.KindArray, f.Kind)

	_, err = a.HandleHello([][]byte{[]byte("HELLO"), []byte("4")}, s)
	require.Error(t, err)
}

func TestACLSetUserGetUserWhoAmI(t *testing.T) {
	a := NewAuthState()
	s := NewSession()

	_, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("SETUSER"), []byte("alice"), []byte("on"), []byte(">pw1"), []byte("~*"), []byte("+@all")}, s)
	require.NoError(t, err)

	f, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("GETUSER"), []byte("alice")}, s)
	require.NoError(t, err)
	assert.Equal(t, resp.KindArray, f.Kind)

	assert.True(t, a.Authenticate("alice", "pw1"))

	who, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("WHOAMI")}, s)
	require.NoError(t, err)
	assert.True(t, who.Equal(resp.BulkFromString("default")))
}

func TestACLDelUserRejectsDefault(t *testing.T) {
	a := NewAuthState()
	s := NewSession()
	_, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("DELUSER"), []byte("default")}, s)
	require.Error(t, err)
}

func TestACLDelUserRemovesUser(t *testing.T) {
	a := NewAuthState()
	s := NewSession()
	_, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("SETUSER"), []byte("bob"), []byte("on")}, s)
	require.NoError(t, err)

	n, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("DELUSER"), []byte("bob")}, s)
	require.NoError(t, err)
	assert.True(t, n.Equal(resp.Int(1)))
}

func TestACLGenPass(t *testing.T) {
	a := NewAuthState()
	s := NewSession()
	f, err := a.HandleACL([][]byte{[]byte("ACL"), []byte("GENPASS")}, s)
	require.NoError(t, err)
	assert.Equal(t, resp.KindBulkString, f.Kind)
	assert.Len(t, f.Bulk, 64)
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	s.AuthenticatedUser = "alice"
	s.InMultiQueue = true
	s.Reset()
	assert.Equal(t, "default", s.AuthenticatedUser)
	assert.False(t, s.InMultiQueue)
}
