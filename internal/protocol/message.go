package protocol

import (
	"errors"
	"strings"
)

// FieldSeparator delimits positional fields within one message.
// Field values never contain an unescaped separator.
const FieldSeparator = "|"

var ErrEmptyMessage = errors.New("protocol: empty message")

// Message is one decoded protocol record: a code plus positional args.
// Ephemeral, constructed per exchange, never retained.
type Message struct {
	Code string
	Args []string
}

// Build joins a command code and its positional fields into wire text.
func Build(code string, args ...string) string {
	if len(args) == 0 {
		return code + FieldSeparator
	}
	return code + FieldSeparator + strings.Join(args, FieldSeparator)
}

// Parse splits wire text into a Message. The first field is the code;
// the rest are positional args in order.
func Parse(text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}
	fields := strings.Split(text, FieldSeparator)
	return Message{Code: fields[0], Args: fields[1:]}, nil
}

// Outcome classifies one server reply against the expected success
// prefix for an operation.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDomainError
	OutcomeUnknown
)

// Classify maps a reply code onto an outcome for the given expected
// success prefix. Error-prefixed codes are domain errors; anything
// else unrecognized is surfaced as unknown.
func (m Message) Classify(successPrefix string) Outcome {
	switch {
	case strings.HasPrefix(m.Code, successPrefix):
		return OutcomeSuccess
	case strings.HasPrefix(m.Code, ErrPrefix):
		return OutcomeDomainError
	default:
		return OutcomeUnknown
	}
}

// Detail returns the first positional arg, the conventional slot for
// human-readable rejection detail on ERR replies.
func (m Message) Detail() string {
	if len(m.Args) == 0 {
		return ""
	}
	return m.Args[0]
}

// AssetTokens parses the comma-joined token field of an ASLIST reply,
// filtering empty tokens. A success reply missing the token field
// degrades to an empty set; servers that omit the trailing count are
// tolerated the same way.
func (m Message) AssetTokens() []string {
	if len(m.Args) == 0 {
		return []string{}
	}
	raw := strings.Split(m.Args[0], ",")
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// AssetCount returns the trailing count field of an ASLIST reply, or
// "" when the server omitted it. Carried as metadata only.
func (m Message) AssetCount() string {
	if len(m.Args) < 2 {
		return ""
	}
	return m.Args[1]
}
