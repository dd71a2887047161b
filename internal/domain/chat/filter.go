package chat

import "strings"

// Tab selects which slice of the room list the viewer is looking at.
type Tab string

const (
	TabAll     Tab = "all"
	TabUnread  Tab = "unread"
	TabGroup   Tab = "group"
	TabEvent   Tab = "event"
	TabNetwork Tab = "network"
)

// ParseTab maps a raw tab value onto a supported one, defaulting to "all".
func ParseTab(raw string) Tab {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case TabUnread:
		return TabUnread
	case TabGroup:
		return TabGroup
	case TabEvent:
		return TabEvent
	case TabNetwork:
		return TabNetwork
	default:
		return TabAll
	}
}

// FilterCriteria is the immutable (tab, search) pair a reload runs under.
type FilterCriteria struct {
	Tab    Tab
	Search string
}

// Normalized returns a sanitized copy: trimmed search, valid tab.
func (f FilterCriteria) Normalized() FilterCriteria {
	return FilterCriteria{
		Tab:    ParseTab(string(f.Tab)),
		Search: strings.TrimSpace(f.Search),
	}
}

// Equal compares two criteria on their normalized pair, not per field.
func (f FilterCriteria) Equal(other FilterCriteria) bool {
	return f.Normalized() == other.Normalized()
}
