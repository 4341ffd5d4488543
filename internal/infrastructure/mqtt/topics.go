package mqtt

import "strings"

// IsWildcard reports whether topic is a filter rather than a concrete topic.
func IsWildcard(topic string) bool {
	return strings.ContainsAny(topic, "+#")
}

// ValidatePublishTopic checks that topic can be published to:
// it must be non-empty and contain no wildcard characters.
func ValidatePublishTopic(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if IsWildcard(topic) {
		return ErrWildcardTopic
	}
	return nil
}
