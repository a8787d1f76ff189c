// Package errors defines the typed error taxonomy for the redikv engine.
// Every error the core can produce implements CommandError and carries
// enough information to render the exact RESP reply the wire boundary is
// contractually required to send; ToReply is the single function that
// performs that conversion so no dispatch path hand-rolls a reply string.
package errors

import "fmt"

// Kind classifies a CommandError into the families named by the spec:
// command-frame errors, store errors, protocol errors, and TLS config
// errors.
type Kind string

const (
	KindInvalidCommandFrame Kind = "invalid_command_frame"
	KindUnknownCommand      Kind = "unknown_command"
	KindWrongArity          Kind = "wrong_arity"
	KindInvalidInteger      Kind = "invalid_integer"
	KindSyntaxError         Kind = "syntax_error"
	KindNoSuchKey           Kind = "no_such_key"
	KindInvalidUTF8         Kind = "invalid_utf8"
	KindInvalidFrame        Kind = "invalid_frame"

	KindValueNotInteger     Kind = "value_not_integer"
	KindHashValueNotInteger Kind = "hash_value_not_integer"
	KindValueNotFloat       Kind = "value_not_float"
	KindIntegerOverflow     Kind = "integer_overflow"
	KindKeyNotFound         Kind = "key_not_found"
	KindWrongType           Kind = "wrong_type"
	KindInvalidHllValue     Kind = "invalid_hll_value"
	KindIndexOutOfRange     Kind = "index_out_of_range"
	KindInvalidDumpPayload  Kind = "invalid_dump_payload"
	KindBusyKey             Kind = "busy_key"

	KindInvalidBulkLength      Kind = "invalid_bulk_length"
	KindInvalidMultibulkLength Kind = "invalid_multibulk_length"
	KindIncomplete             Kind = "incomplete"
	KindInvalidPrefix          Kind = "invalid_prefix"
	KindUnsupportedResp3Type   Kind = "unsupported_resp3_type"

	KindNoAuth         Kind = "noauth"
	KindWrongPass      Kind = "wrongpass"
	KindAuthNotConfig  Kind = "auth_not_configured"
	KindOOM            Kind = "oom"
	KindUnsupportedCmd Kind = "unsupported_command"
	KindNoProto        Kind = "noproto"
	KindGateExceeded   Kind = "gate_exceeded"

	KindTLSSafetyGate   Kind = "tls_safety_gate"
	KindTLSOperational  Kind = "tls_operational_knob"
	KindTLSHardenedDrop Kind = "tls_hardened_rejected"
)

// CommandError is any error the dispatch pipeline can produce. Message is
// already formatted in bit-exact Redis wording; Prefix is the RESP error
// prefix token ("ERR", "WRONGTYPE", "NOAUTH", ...).
type CommandError struct {
	Kind    Kind
	Prefix  string
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// Reply renders the RESP error line, without the trailing CRLF, e.g.
// "ERR syntax error" or "WRONGTYPE Operation against a key holding the
// wrong kind of value".
func (e *CommandError) Reply() string {
	if e.Prefix == "" {
		return e.Message
	}
	return e.Prefix + " " + e.Message
}

func newErr(kind Kind, prefix, msg string) *CommandError {
	return &CommandError{Kind: kind, Prefix: prefix, Message: msg}
}

// --- Command / protocol level constructors -------------------------------

func InvalidCommandFrame() *CommandError {
	return newErr(KindInvalidCommandFrame, "ERR", "Protocol error: invalid command frame")
}

func InvalidBulkLength() *CommandError {
	return newErr(KindInvalidBulkLength, "ERR", "Protocol error: invalid bulk length")
}

func InvalidMultibulkLength() *CommandError {
	return newErr(KindInvalidMultibulkLength, "ERR", "Protocol error: invalid multibulk length")
}

func UnsupportedResp3Type(prefix byte) *CommandError {
	return newErr(KindUnsupportedResp3Type, "ERR",
		fmt.Sprintf("Protocol error: unsupported RESP3 type prefix '%c'", prefix))
}

// UnknownCommand renders the fixed "unknown command" wording with a
// space-separated, single-quoted args preview capped to the spec's byte
// budgets.
func UnknownCommand(name string, argsPreview string) *CommandError {
	if len(name) > 128 {
		name = name[:128]
	}
	return newErr(KindUnknownCommand, "ERR",
		fmt.Sprintf("unknown command '%s', with args beginning with: %s", name, argsPreview))
}

func WrongArity(cmd string) *CommandError {
	return newErr(KindWrongArity, "ERR", fmt.Sprintf("wrong number of arguments for '%s' command", cmd))
}

func ValueNotInteger() *CommandError {
	return newErr(KindValueNotInteger, "ERR", "value is not an integer or out of range")
}

// InvalidExpireTime renders the SETEX/PSETEX/SET-with-EX/PX family's
// zero-or-negative expire time rejection — tagged KindInvalidInteger per
// the spec's boundary-behavior taxonomy (§8: "SETEX k 0 v -> InvalidInteger").
func InvalidExpireTime(cmd string) *CommandError {
	return newErr(KindInvalidInteger, "ERR", fmt.Sprintf("invalid expire time in '%s' command", cmd))
}

func ValueNotFloat() *CommandError {
	return newErr(KindValueNotFloat, "ERR", "value is not a valid float")
}

func SyntaxError() *CommandError {
	return newErr(KindSyntaxError, "ERR", "syntax error")
}

// SyntaxErrorWith renders an ERR reply with caller-supplied wording, for
// the handful of command-level rejections (MULTI/EXEC/WATCH/DISCARD
// misuse) whose message isn't the generic "syntax error" text.
func SyntaxErrorWith(msg string) *CommandError {
	return newErr(KindSyntaxError, "ERR", msg)
}

func NoSuchKey() *CommandError {
	return newErr(KindNoSuchKey, "ERR", "no such key")
}

// InvalidFrame renders an AOF record stream decode failure: a record that
// is not a well-formed Array-of-BulkStrings argv encoding.
func InvalidFrame() *CommandError {
	return newErr(KindInvalidFrame, "ERR", "Bad file format reading the append only file")
}

// DBIndexOutOfRange renders SELECT's rejection of any index but the
// single in-scope logical DB 0.
func DBIndexOutOfRange() *CommandError {
	return newErr(KindSyntaxError, "ERR", "DB index is out of range")
}

func UnsupportedCommand(name string) *CommandError {
	return newErr(KindUnsupportedCmd, "ERR", fmt.Sprintf("unsupported command '%s'", name))
}

// CommandNotSupportedInBuild renders the fixed reply for command families
// this engine recognizes but never wires into the transport at all
// (pub/sub) — distinct wording from UnsupportedCommand, which names the
// offending command for families that are merely stubbed.
func CommandNotSupportedInBuild() *CommandError {
	return newErr(KindUnsupportedCmd, "ERR", "command not supported in this build")
}

func UnknownClusterSubcommand() *CommandError {
	return newErr(KindSyntaxError, "ERR", "Unknown subcommand or wrong number of arguments for 'CLUSTER'. Try CLUSTER HELP.")
}

// --- Store level constructors ---------------------------------------------

func WrongType() *CommandError {
	return newErr(KindWrongType, "WRONGTYPE", "Operation against a key holding the wrong kind of value")
}

func InvalidHllValue() *CommandError {
	return newErr(KindInvalidHllValue, "WRONGTYPE", "Key is not a valid HyperLogLog string value.")
}

func IndexOutOfRange() *CommandError {
	return newErr(KindIndexOutOfRange, "ERR", "index out of range")
}

func InvalidDumpPayload() *CommandError {
	return newErr(KindInvalidDumpPayload, "ERR", "Bad data format")
}

func BusyKey() *CommandError {
	return newErr(KindBusyKey, "BUSYKEY", "Target key name already exists.")
}

func IntegerOverflow() *CommandError {
	return newErr(KindIntegerOverflow, "ERR", "increment or decrement would overflow")
}

func HashValueNotInteger() *CommandError {
	return newErr(KindHashValueNotInteger, "ERR", "hash value is not an integer")
}

// --- Auth / admission constructors -----------------------------------------

func NoAuth() *CommandError {
	return newErr(KindNoAuth, "NOAUTH", "Authentication required.")
}

func WrongPass() *CommandError {
	return newErr(KindWrongPass, "WRONGPASS", "invalid username-password pair or user is disabled.")
}

func AuthNotConfigured() *CommandError {
	return newErr(KindAuthNotConfig, "ERR", "AUTH <password> called without any password configured for the default user. Are you sure your configuration is correct?")
}

func OOM() *CommandError {
	return newErr(KindOOM, "OOM", "command not allowed when used memory > 'maxmemory'.")
}

// NoProto renders HELLO's rejection of any protocol version other than 2
// or 3.
func NoProto() *CommandError {
	return newErr(KindNoProto, "NOPROTO", "unsupported protocol version")
}

// GateArrayLenExceeded renders the preflight gate's rejection of a
// command array exceeding the configured compatibility limit.
func GateArrayLenExceeded() *CommandError {
	return newErr(KindGateExceeded, "ERR", "Protocol error: command array exceeds compatibility gate")
}

// GateBulkLenExceeded renders the preflight gate's rejection of a bulk
// argument exceeding the configured compatibility limit.
func GateBulkLenExceeded() *CommandError {
	return newErr(KindGateExceeded, "ERR", "Protocol error: bulk exceeds compatibility gate")
}

// UnsupportedConfigParameter renders CONFIG SET's rejection of a key
// outside the dynamic/static catalog.
func UnsupportedConfigParameter() *CommandError {
	return newErr(KindSyntaxError, "ERR", "Unsupported CONFIG parameter")
}

// ToReply converts any error into its RESP error-line form. Non-CommandError
// values are wrapped as an opaque ERR so the runtime boundary can always
// produce a single, well-formed reply.
func ToReply(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*CommandError); ok {
		return ce.Reply()
	}
	return "ERR " + err.Error()
}

// KindOf extracts the Kind of an error, or "" if it is not a CommandError.
func KindOf(err error) Kind {
	if ce, ok := err.(*CommandError); ok {
		return ce.Kind
	}
	return ""
}
