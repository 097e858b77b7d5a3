package model

import (
	"fmt"
	"strings"
)

// HelpKind identifies a single-use hint
type HelpKind string

const (
	HelpFiftyFifty HelpKind = "fifty_fifty"
	HelpAudience   HelpKind = "audience_help"
	HelpFriendCall HelpKind = "friend_call"
)

// HelpKinds returns every supported hint
func HelpKinds() []HelpKind {
	return []HelpKind{HelpFiftyFifty, HelpAudience, HelpFriendCall}
}

// ParseHelpKind converts user input to a HelpKind
func ParseHelpKind(s string) (HelpKind, error) {
	kind := HelpKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range HelpKinds() {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidHelpKind, s)
}

// HelpPayload is the recorded result of one hint. Which field is set
// depends on the HelpKind it is stored under.
type HelpPayload struct {
	Variants map[AnswerKey]string `json:"variants,omitempty"` // fifty_fifty: the two remaining answers
	Votes    map[AnswerKey]int    `json:"votes,omitempty"`    // audience_help: percentage per key
	Guess    string               `json:"guess,omitempty"`    // friend_call: what the friend says
	GuessKey AnswerKey            `json:"guess_key,omitempty"`
}

// HelpHash records the hints used on one game question
type HelpHash map[HelpKind]HelpPayload
