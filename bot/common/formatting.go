package common

import (
	"fmt"
	"strings"
	"time"

	"lottery/domain/entities"
)

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatParticipant renders one participant as "Name (`ID`)"
func FormatParticipant(p entities.Participant) string {
	name := p.DisplayName()
	if name == p.ID {
		return fmt.Sprintf("`%s`", p.ID)
	}
	return fmt.Sprintf("%s (`%s`)", name, p.ID)
}

// FormatRankedList renders participants as a numbered list in draw order,
// truncated to fit in maxChars with a "...and N more" footer
func FormatRankedList(participants []entities.Participant, maxChars int) string {
	if len(participants) == 0 {
		return "_none_"
	}

	// room kept for the footer while more lines follow
	const footerReserve = 24

	var b strings.Builder
	for idx, p := range participants {
		line := fmt.Sprintf("**%d.** %s\n", idx+1, FormatParticipant(p))
		limit := maxChars
		if idx < len(participants)-1 {
			limit -= footerReserve
		}
		if b.Len()+len(line) > limit {
			fmt.Fprintf(&b, "...and %d more", len(participants)-idx)
			return b.String()
		}
		b.WriteString(line)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// FormatCount formats an integer with thousand separators
func FormatCount(n int) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	str := fmt.Sprintf("%d", n)

	digits := len(str)
	if digits <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (digits-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}
