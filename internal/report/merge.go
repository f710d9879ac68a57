package report

import "strings"

const (
	avatarMarker = `<div class="avatar"`
	avatarEnd    = "</div>"
	titleMarker  = `<span id="user-title"`
	titleEnd     = "</span>"
)

// MergeAvatarAndTitle carries the avatar block and user-title text of a
// previously stored document into a freshly uploaded one. Both documents are
// expected to contain a single `<div class="avatar" ...>` block and a single
// `<span id="user-title" ...>` span; when a marker is missing on either side
// the corresponding splice is skipped and the new document wins. Never fails.
func MergeAvatarAndTitle(oldHTML, newHTML string) string {
	merged := spliceAvatar(oldHTML, newHTML)
	return spliceTitle(oldHTML, merged)
}

func spliceAvatar(oldHTML, merged string) string {
	oldStart := strings.Index(oldHTML, avatarMarker)
	if oldStart == -1 {
		return merged
	}
	oldEnd := strings.Index(oldHTML[oldStart:], avatarEnd)
	newStart := strings.Index(merged, avatarMarker)
	if oldEnd == -1 || newStart == -1 {
		return merged
	}
	newEnd := strings.Index(merged[newStart:], avatarEnd)
	if newEnd == -1 {
		return merged
	}
	oldBlock := oldHTML[oldStart : oldStart+oldEnd+len(avatarEnd)]
	return merged[:newStart] + oldBlock + merged[newStart+newEnd+len(avatarEnd):]
}

func spliceTitle(oldHTML, merged string) string {
	oldStart := strings.Index(oldHTML, titleMarker)
	newStart := strings.Index(merged, titleMarker)
	if oldStart == -1 || newStart == -1 {
		return merged
	}
	oldInnerStart := strings.Index(oldHTML[oldStart:], ">")
	newInnerStart := strings.Index(merged[newStart:], ">")
	if oldInnerStart == -1 || newInnerStart == -1 {
		return merged
	}
	oldInnerStart += oldStart
	newInnerStart += newStart
	oldInnerEnd := strings.Index(oldHTML[oldInnerStart:], titleEnd)
	newInnerEnd := strings.Index(merged[newInnerStart:], titleEnd)
	if oldInnerEnd == -1 || newInnerEnd == -1 {
		return merged
	}
	oldInner := oldHTML[oldInnerStart+1 : oldInnerStart+oldInnerEnd]
	openTag := merged[newStart : newInnerStart+1]
	return merged[:newStart] + openTag + oldInner + titleEnd + merged[newInnerStart+newInnerEnd+len(titleEnd):]
}
