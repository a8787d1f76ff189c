package errors

import "testing"

func TestReplyFormatting(t *testing.T) {
	cases := []struct {
		name string
		err  *CommandError
		want string
	}{
		{"wrong type", WrongType(), "WRONGTYPE Operation against a key holding the wrong kind of value"},
		{"oom", OOM(), "OOM command not allowed when used memory > 'maxmemory'."},
		{"noauth", NoAuth(), "NOAUTH Authentication required."},
		{"wrongpass", WrongPass(), "WRONGPASS invalid username-password pair or user is disabled."},
		{"syntax", SyntaxError(), "ERR syntax error"},
		{"wrong arity", WrongArity("SET"), "ERR wrong number of arguments for 'SET' command"},
		{"invalid hll", InvalidHllValue(), "WRONGTYPE Key is not a valid HyperLogLog string value."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Reply(); got != tc.want {
				t.Fatalf("Reply() = %q, want %q", got, tc.want)
			}
			if got := ToReply(tc.err); got != tc.want {
				t.Fatalf("ToReply() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnknownCommandTruncatesName(t *testing.T) {
	longName := ""
	for i := 0; i < 200; i++ {
		longName += "a"
	}
	err := UnknownCommand(longName, "'x'")
	if len(err.Message) > 400 {
		t.Fatalf("message unexpectedly long: %d bytes", len(err.Message))
	}
}

func TestToReplyEmptyPrefixIsBareMessage(t *testing.T) {
	plain := &CommandError{Message: "boom"}
	if got := ToReply(plain); got != "boom" {
		t.Fatalf("got %q", got)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(WrongType()) != KindWrongType {
		t.Fatal("expected KindWrongType")
	}
	if KindOf(nil) != "" {
		t.Fatal("expected empty kind for nil")
	}
}
